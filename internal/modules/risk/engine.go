package risk

import (
	"math"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/aristath/fx-sentinel/internal/config"
	"github.com/aristath/fx-sentinel/internal/domain"
	"github.com/aristath/fx-sentinel/pkg/formulas"
)

// Engine computes the three Value-at-Risk methodologies plus Expected
// Shortfall. All figures are daily-horizon losses in base currency,
// reported as positive numbers.
type Engine struct {
	params config.RiskParams
	log    zerolog.Logger
}

// NewEngine creates a new risk measure engine
func NewEngine(params config.RiskParams, log zerolog.Logger) *Engine {
	return &Engine{
		params: params,
		log:    log.With().Str("component", "risk_engine").Logger(),
	}
}

// zScore returns the standard normal quantile for a confidence level
// (1.645 for 0.95, 2.326 for 0.99)
func zScore(confidence float64) float64 {
	return distuv.Normal{Mu: 0, Sigma: 1}.Quantile(confidence)
}

// HistoricalVaR indexes each currency's sorted return history at the
// (1-confidence) percentile, scales by exposure, and sums across
// currencies. Summing ignores cross-currency correlation; that is a known
// limitation of the method, not a bug.
//
// A currency without history falls back to its (default) volatility times
// the normal quantile, so one missing series does not abort the assessment.
func (e *Engine) HistoricalVaR(
	exposures []domain.CurrencyExposure,
	profiles map[domain.Currency]domain.VolatilityProfile,
	confidence float64,
) float64 {
	total := 0.0
	for _, exp := range exposures {
		profile := profiles[exp.Currency]
		if len(profile.Returns) < 2 {
			total += exp.AmountBase * profile.Daily * zScore(confidence)
			continue
		}

		sorted := formulas.SortedCopy(profile.Returns)
		idx := formulas.PercentileIndex(1-confidence, len(sorted))
		total += exp.AmountBase * math.Abs(sorted[idx])
	}
	return total
}

// ParametricVaR computes variance-covariance VaR:
// portfolio variance = sum_ij e_i*e_j*vol_i*vol_j*corr_ij, VaR = stdev * z
func (e *Engine) ParametricVaR(
	exposures []domain.CurrencyExposure,
	profiles map[domain.Currency]domain.VolatilityProfile,
	matrix *domain.CorrelationMatrix,
	confidence float64,
) float64 {
	if len(exposures) == 0 {
		return 0
	}

	variance := 0.0
	for _, a := range exposures {
		volA := profiles[a.Currency].Daily
		for _, b := range exposures {
			volB := profiles[b.Currency].Daily
			corr, ok := matrix.Get(a.Currency, b.Currency)
			if !ok {
				// No correlation data for the pair: treat as uncorrelated
				corr = 0
			}
			variance += a.AmountBase * b.AmountBase * volA * volB * corr
		}
	}
	if variance <= 0 {
		return 0
	}

	return math.Sqrt(variance) * zScore(confidence)
}

// VaRFromSample indexes an ascending-sorted simulated P&L sample at the
// (1-confidence) percentile
func VaRFromSample(sample []float64, confidence float64) float64 {
	if len(sample) == 0 {
		return 0
	}
	idx := formulas.PercentileIndex(1-confidence, len(sample))
	return math.Max(0, -sample[idx])
}

// ExpectedShortfallFromSample averages the absolute value of all simulated
// outcomes at or beyond the VaR percentile index
func ExpectedShortfallFromSample(sample []float64, confidence float64) float64 {
	if len(sample) == 0 {
		return 0
	}
	idx := formulas.PercentileIndex(1-confidence, len(sample))
	sum := 0.0
	for i := 0; i <= idx; i++ {
		sum += math.Abs(sample[i])
	}
	return sum / float64(idx+1)
}
