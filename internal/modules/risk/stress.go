package risk

import (
	"math"
	"sort"

	"github.com/aristath/fx-sentinel/internal/domain"
)

// StressScenario is one named historical shock catalog entry. Shocks are
// signed fractional currency moves against the base currency.
type StressScenario struct {
	Name        string
	Description string
	Shocks      map[domain.Currency]float64
}

// stressCatalog is the fixed set of named historical scenarios applied to
// every assessment. Shock magnitudes approximate the realized peak moves of
// each episode.
var stressCatalog = []StressScenario{
	{
		Name:        "gfc_2008",
		Description: "Global financial crisis, flight to safety",
		Shocks: map[domain.Currency]float64{
			domain.CurrencyEUR: -0.12,
			domain.CurrencyGBP: -0.26,
			domain.CurrencyJPY: 0.19,
			domain.CurrencyAUD: -0.30,
			domain.CurrencyCHF: 0.06,
		},
	},
	{
		Name:        "eur_crisis_2012",
		Description: "Eurozone sovereign debt crisis",
		Shocks: map[domain.Currency]float64{
			domain.CurrencyEUR: -0.10,
			domain.CurrencyGBP: -0.04,
			domain.CurrencyCHF: 0.05,
			domain.CurrencyJPY: 0.04,
		},
	},
	{
		Name:        "chf_depeg_2015",
		Description: "SNB abandons the EUR/CHF floor",
		Shocks: map[domain.Currency]float64{
			domain.CurrencyCHF: 0.20,
			domain.CurrencyEUR: -0.03,
		},
	},
	{
		Name:        "brexit_2016",
		Description: "UK votes to leave the EU",
		Shocks: map[domain.Currency]float64{
			domain.CurrencyGBP: -0.11,
			domain.CurrencyEUR: -0.03,
			domain.CurrencyJPY: 0.04,
		},
	},
	{
		Name:        "covid_2020",
		Description: "March 2020 liquidity shock",
		Shocks: map[domain.Currency]float64{
			domain.CurrencyAUD: -0.13,
			domain.CurrencyGBP: -0.08,
			domain.CurrencyEUR: -0.04,
			domain.CurrencyJPY: 0.03,
			domain.CurrencyCHF: 0.02,
		},
	},
}

// RunStressTests applies the full scenario catalog. Loss per currency is
// exposure times |shock| (hedgeable risk is two-sided), and scenarios are
// ranked by total loss descending with a severity label derived from
// loss as a fraction of total exposure.
func (e *Engine) RunStressTests(exposures []domain.CurrencyExposure, totalExposure float64) []domain.StressResult {
	results := make([]domain.StressResult, 0, len(stressCatalog))

	for _, scenario := range stressCatalog {
		result := domain.StressResult{
			Scenario:    scenario.Name,
			Description: scenario.Description,
			Losses:      make(map[domain.Currency]float64),
		}

		for _, exp := range exposures {
			shock, ok := scenario.Shocks[exp.Currency]
			if !ok {
				continue
			}
			loss := exp.AmountBase * math.Abs(shock)
			result.Losses[exp.Currency] = loss
			result.TotalLoss += loss
		}

		result.Severity = severity(result.TotalLoss, totalExposure)
		results = append(results, result)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].TotalLoss > results[j].TotalLoss
	})

	return results
}

// severity buckets a stress loss relative to total exposure
func severity(loss, totalExposure float64) domain.StressSeverity {
	if totalExposure <= 0 {
		return domain.SeverityLow
	}
	switch fraction := loss / totalExposure; {
	case fraction > 0.20:
		return domain.SeveritySevere
	case fraction > 0.10:
		return domain.SeverityHigh
	case fraction > 0.05:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}
