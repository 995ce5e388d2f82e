package volatility

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/fx-sentinel/internal/domain"
	"github.com/aristath/fx-sentinel/pkg/formulas"
)

// Analyzer builds a symmetric currency-pair correlation matrix from the
// return series retained in the volatility profiles.
type Analyzer struct {
	log zerolog.Logger
}

// NewAnalyzer creates a new correlation analyzer
func NewAnalyzer(log zerolog.Logger) *Analyzer {
	return &Analyzer{
		log: log.With().Str("component", "correlation").Logger(),
	}
}

// Analyze computes Pearson correlation for every unordered currency pair.
// Series are aligned to the shortest common length, taking the most recent
// observations. Currencies without return series (volatility fallbacks)
// contribute no pairs; their correlations stay undefined and callers fall
// back accordingly.
func (a *Analyzer) Analyze(profiles map[domain.Currency]domain.VolatilityProfile) *domain.CorrelationMatrix {
	matrix := domain.NewCorrelationMatrix()

	// Deterministic iteration order
	currencies := make([]domain.Currency, 0, len(profiles))
	minLen := 0
	for currency, profile := range profiles {
		if len(profile.Returns) < 2 {
			continue
		}
		currencies = append(currencies, currency)
		if minLen == 0 || len(profile.Returns) < minLen {
			minLen = len(profile.Returns)
		}
	}
	sort.Slice(currencies, func(i, j int) bool { return currencies[i] < currencies[j] })

	if len(currencies) < 2 {
		return matrix
	}

	// Align all series to the most recent minLen observations
	aligned := make(map[domain.Currency][]float64, len(currencies))
	for _, currency := range currencies {
		returns := profiles[currency].Returns
		aligned[currency] = returns[len(returns)-minLen:]
	}

	for i := 0; i < len(currencies); i++ {
		for j := i + 1; j < len(currencies); j++ {
			// Zero-variance series yield correlation 0, not NaN
			corr := formulas.Correlation(aligned[currencies[i]], aligned[currencies[j]])
			matrix.Set(currencies[i], currencies[j], corr)
		}
	}

	a.log.Debug().
		Int("currencies", len(currencies)).
		Int("aligned_length", minLen).
		Msg("Correlation matrix computed")

	return matrix
}
