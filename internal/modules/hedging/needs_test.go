package hedging

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/fx-sentinel/internal/config"
	"github.com/aristath/fx-sentinel/internal/domain"
)

func needAnalyzer() *NeedAnalyzer {
	return NewNeedAnalyzer(config.DefaultRiskParams(), zerolog.Nop())
}

func assessmentWith(exposures ...domain.CurrencyExposure) *domain.RiskAssessment {
	a := &domain.RiskAssessment{UserID: "needs-user", Exposures: exposures}
	for _, exp := range exposures {
		a.RiskFactors = append(a.RiskFactors, domain.RiskFactor{
			Type:         domain.FactorIndividual,
			Currencies:   []domain.Currency{exp.Currency},
			Contribution: exp.AmountBase * 0.01,
		})
	}
	return a
}

func TestAnalyzeHighPriorityConcentration(t *testing.T) {
	analyzer := needAnalyzer()

	assessment := assessmentWith(domain.CurrencyExposure{
		Currency: domain.CurrencyUSD, AmountBase: 100000, RelativeExposure: 0.40, Rank: 1,
	})
	profiles := map[domain.Currency]domain.VolatilityProfile{
		domain.CurrencyUSD: {Annual: 0.10},
	}

	needs := analyzer.Analyze(assessment, profiles)
	require.Len(t, needs, 1)

	need := needs[0]
	assert.Equal(t, domain.PriorityHigh, need.Priority)
	assert.InDelta(t, 0.8, need.RecommendedRatio, 1e-9) // min(0.8, 2*0.40)
	assert.Equal(t, 90, need.HorizonDays)
	assert.Equal(t, "immediate", need.Urgency)
	assert.InDelta(t, 1000.0, need.RiskContribution, 1e-9)
}

func TestAnalyzeExactConcentrationBoundaryIsHigh(t *testing.T) {
	analyzer := needAnalyzer()

	// A 100000 exposure in a 400000 portfolio sits exactly on the 25%
	// threshold and still counts as concentrated
	assessment := assessmentWith(domain.CurrencyExposure{
		Currency: domain.CurrencyUSD, AmountBase: 100000, RelativeExposure: 0.25, Rank: 1,
	})
	profiles := map[domain.Currency]domain.VolatilityProfile{
		domain.CurrencyUSD: {Annual: 0.18},
	}

	needs := analyzer.Analyze(assessment, profiles)
	require.Len(t, needs, 1)

	need := needs[0]
	assert.Equal(t, domain.PriorityHigh, need.Priority)
	assert.InDelta(t, 0.5, need.RecommendedRatio, 1e-9) // min(0.8, 2*0.25)
	assert.Equal(t, 90, need.HorizonDays)
	assert.Equal(t, "immediate", need.Urgency)
}

func TestAnalyzeJustBelowConcentrationBoundaryIsLow(t *testing.T) {
	analyzer := needAnalyzer()

	assessment := assessmentWith(domain.CurrencyExposure{
		Currency: domain.CurrencyUSD, AmountBase: 99600, RelativeExposure: 0.249, Rank: 1,
	})
	profiles := map[domain.Currency]domain.VolatilityProfile{
		domain.CurrencyUSD: {Annual: 0.10},
	}

	needs := analyzer.Analyze(assessment, profiles)
	require.Len(t, needs, 1)

	need := needs[0]
	assert.Equal(t, domain.PriorityLow, need.Priority)
	assert.InDelta(t, 0.3735, need.RecommendedRatio, 1e-9) // min(0.4, 1.5*0.249)
	assert.Equal(t, 365, need.HorizonDays)
	assert.Equal(t, "opportunistic", need.Urgency)
}

func TestAnalyzeMediumPriorityVolatility(t *testing.T) {
	analyzer := needAnalyzer()

	assessment := assessmentWith(domain.CurrencyExposure{
		Currency: domain.CurrencyAUD, AmountBase: 50000, RelativeExposure: 0.20, Rank: 1,
	})
	profiles := map[domain.Currency]domain.VolatilityProfile{
		domain.CurrencyAUD: {Annual: 0.22},
	}

	needs := analyzer.Analyze(assessment, profiles)
	require.Len(t, needs, 1)

	need := needs[0]
	assert.Equal(t, domain.PriorityMedium, need.Priority)
	assert.InDelta(t, 0.44, need.RecommendedRatio, 1e-9) // min(0.6, 2*0.22)
	assert.Equal(t, 180, need.HorizonDays)
	assert.Equal(t, "within_30_days", need.Urgency)
}

func TestAnalyzeQuietExposureNeedsNothing(t *testing.T) {
	analyzer := needAnalyzer()

	assessment := assessmentWith(domain.CurrencyExposure{
		Currency: domain.CurrencyCHF, AmountBase: 10000, RelativeExposure: 0.10, Rank: 1,
	})
	profiles := map[domain.Currency]domain.VolatilityProfile{
		domain.CurrencyCHF: {Annual: 0.08},
	}

	assert.Empty(t, analyzer.Analyze(assessment, profiles))
}

func TestAnalyzeSortsByPriorityThenContribution(t *testing.T) {
	analyzer := needAnalyzer()

	assessment := assessmentWith(
		domain.CurrencyExposure{Currency: domain.CurrencyCHF, AmountBase: 20000, RelativeExposure: 0.17, Rank: 3},
		domain.CurrencyExposure{Currency: domain.CurrencyUSD, AmountBase: 60000, RelativeExposure: 0.50, Rank: 1},
		domain.CurrencyExposure{Currency: domain.CurrencyGBP, AmountBase: 40000, RelativeExposure: 0.33, Rank: 2},
	)
	profiles := map[domain.Currency]domain.VolatilityProfile{
		domain.CurrencyUSD: {Annual: 0.10},
		domain.CurrencyGBP: {Annual: 0.10},
		domain.CurrencyCHF: {Annual: 0.10},
	}

	needs := analyzer.Analyze(assessment, profiles)
	require.Len(t, needs, 3)

	// Both high-priority needs first, larger contribution leading
	assert.Equal(t, domain.CurrencyUSD, needs[0].Currency)
	assert.Equal(t, domain.PriorityHigh, needs[0].Priority)
	assert.Equal(t, domain.CurrencyGBP, needs[1].Currency)
	assert.Equal(t, domain.PriorityHigh, needs[1].Priority)
	assert.Equal(t, domain.CurrencyCHF, needs[2].Currency)
	assert.Equal(t, domain.PriorityLow, needs[2].Priority)
}

func TestAnalyzeMissingRiskFactor(t *testing.T) {
	analyzer := needAnalyzer()

	assessment := &domain.RiskAssessment{
		Exposures: []domain.CurrencyExposure{
			{Currency: domain.CurrencyUSD, AmountBase: 100000, RelativeExposure: 0.40, Rank: 1},
		},
	}
	profiles := map[domain.Currency]domain.VolatilityProfile{
		domain.CurrencyUSD: {Annual: 0.10},
	}

	needs := analyzer.Analyze(assessment, profiles)
	require.Len(t, needs, 1)
	assert.Equal(t, 0.0, needs[0].RiskContribution)
}
