package risk

import (
	"fmt"
	"math"

	"github.com/aristath/fx-sentinel/internal/domain"
	"github.com/aristath/fx-sentinel/pkg/formulas"
)

// Score aggregates concentration, volatility and diversification into a
// bounded [0,100] risk score:
//
//	40*maxConcentration + min(40, 200*avgAnnualVol) + max(0, 20 - 2*currencyCount)
//
// A portfolio with no foreign exposure scores 0.
func (e *Engine) Score(
	exposures []domain.CurrencyExposure,
	profiles map[domain.Currency]domain.VolatilityProfile,
	concentration domain.ConcentrationMetrics,
) float64 {
	if len(exposures) == 0 {
		return 0
	}

	avgVol := 0.0
	for _, exp := range exposures {
		avgVol += profiles[exp.Currency].Annual
	}
	avgVol /= float64(len(exposures))

	score := 40*concentration.MaxConcentration +
		math.Min(40, 200*avgVol) +
		math.Max(0, 20-2*float64(len(exposures)))

	return formulas.Clamp(score, 0, 100)
}

// Recommendations derives qualitative guidance from fixed rule thresholds
func (e *Engine) Recommendations(
	score float64,
	exposures []domain.CurrencyExposure,
	profiles map[domain.Currency]domain.VolatilityProfile,
	concentration domain.ConcentrationMetrics,
	factors []domain.RiskFactor,
) []string {
	if len(exposures) == 0 {
		return nil
	}

	var recs []string

	if concentration.MaxConcentration > e.params.ConcentrationThreshold {
		recs = append(recs, fmt.Sprintf(
			"Diversify: %s is %.1f%% of foreign exposure, above the %.0f%% concentration threshold",
			concentration.MaxCurrency,
			concentration.MaxConcentration*100,
			e.params.ConcentrationThreshold*100))
	}

	for _, f := range factors {
		if f.Type == domain.FactorCorrelation && math.Abs(f.Correlation) > e.params.HighCorrelationThreshold {
			recs = append(recs, fmt.Sprintf(
				"%s and %s are highly correlated (%.2f); their risks compound rather than diversify",
				f.Currencies[0], f.Currencies[1], f.Correlation))
			break
		}
	}

	for _, exp := range exposures {
		if profiles[exp.Currency].Annual > e.params.HighVolatilityThreshold {
			recs = append(recs, fmt.Sprintf(
				"%s volatility is elevated (%.1f%% annualized); consider hedging this exposure",
				exp.Currency, profiles[exp.Currency].Annual*100))
			break
		}
	}

	if score >= e.params.RiskAlertScore {
		recs = append(recs, fmt.Sprintf(
			"Overall currency risk score %.0f is above the alert level; review hedge coverage promptly", score))
	}

	if len(recs) == 0 {
		recs = append(recs, "Currency risk is within configured tolerances; no action required")
	}

	return recs
}
