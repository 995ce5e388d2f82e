package risk

import (
	"math"
	"sort"

	"github.com/aristath/fx-sentinel/internal/domain"
)

// Concentration computes the Herfindahl index, the largest and top-3
// relative exposures, and flags every exposure above the configured
// concentration threshold.
func (e *Engine) Concentration(exposures []domain.CurrencyExposure) domain.ConcentrationMetrics {
	metrics := domain.ConcentrationMetrics{}

	for _, exp := range exposures {
		metrics.Herfindahl += exp.RelativeExposure * exp.RelativeExposure
		if exp.RelativeExposure > metrics.MaxConcentration {
			metrics.MaxConcentration = exp.RelativeExposure
			metrics.MaxCurrency = exp.Currency
		}
		// Exposures arrive ranked descending
		if exp.Rank <= 3 {
			metrics.Top3Concentration += exp.RelativeExposure
		}
		if exp.RelativeExposure > e.params.ConcentrationThreshold {
			metrics.Flagged = append(metrics.Flagged, exp.Currency)
		}
	}

	return metrics
}

// DecomposeRiskFactors produces one "individual" factor per currency
// (exposure x volatility) and one "correlation" factor per currency pair
// whose |correlation| exceeds the configured threshold, with magnitude
// 2*e_i*e_j*vol_i*vol_j*corr. Factors are ranked descending by absolute
// contribution with relative percentages normalized to the total.
func (e *Engine) DecomposeRiskFactors(
	exposures []domain.CurrencyExposure,
	profiles map[domain.Currency]domain.VolatilityProfile,
	matrix *domain.CorrelationMatrix,
) []domain.RiskFactor {
	var factors []domain.RiskFactor

	for _, exp := range exposures {
		factors = append(factors, domain.RiskFactor{
			Type:         domain.FactorIndividual,
			Currencies:   []domain.Currency{exp.Currency},
			Contribution: exp.AmountBase * profiles[exp.Currency].Daily,
		})
	}

	for i := 0; i < len(exposures); i++ {
		for j := i + 1; j < len(exposures); j++ {
			a, b := exposures[i], exposures[j]
			corr, ok := matrix.Get(a.Currency, b.Currency)
			if !ok || math.Abs(corr) <= e.params.CorrelationThreshold {
				continue
			}
			factors = append(factors, domain.RiskFactor{
				Type:         domain.FactorCorrelation,
				Currencies:   []domain.Currency{a.Currency, b.Currency},
				Correlation:  corr,
				Contribution: 2 * a.AmountBase * b.AmountBase * profiles[a.Currency].Daily * profiles[b.Currency].Daily * corr,
			})
		}
	}

	totalAbs := 0.0
	for _, f := range factors {
		totalAbs += math.Abs(f.Contribution)
	}
	if totalAbs > 0 {
		for i := range factors {
			factors[i].Relative = math.Abs(factors[i].Contribution) / totalAbs * 100
		}
	}

	sort.SliceStable(factors, func(i, j int) bool {
		return math.Abs(factors[i].Contribution) > math.Abs(factors[j].Contribution)
	})

	return factors
}
