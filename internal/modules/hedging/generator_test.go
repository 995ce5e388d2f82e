package hedging

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/fx-sentinel/internal/config"
	"github.com/aristath/fx-sentinel/internal/domain"
)

func testGenerator() *Generator {
	return NewGenerator(config.DefaultRiskParams(), NewSimplePricer(), zerolog.Nop())
}

func highNeed(currency domain.Currency, exposure float64) domain.HedgingNeed {
	return domain.HedgingNeed{
		Currency:         currency,
		Exposure:         exposure,
		RelativeExposure: 0.40,
		Priority:         domain.PriorityHigh,
		RiskContribution: exposure * 0.01,
		AnnualVolatility: 0.12,
		RecommendedRatio: 0.6,
		HorizonDays:      90,
		Urgency:          "immediate",
	}
}

func flatProfiles(currencies ...domain.Currency) map[domain.Currency]domain.VolatilityProfile {
	profiles := make(map[domain.Currency]domain.VolatilityProfile)
	for _, c := range currencies {
		profiles[c] = domain.VolatilityProfile{Currency: c, Daily: 0.0075, Annual: 0.12}
	}
	return profiles
}

func TestGenerateSingleInstrumentCandidates(t *testing.T) {
	gen := testGenerator()

	needs := []domain.HedgingNeed{highNeed(domain.CurrencyUSD, 100000)}
	candidates := gen.Generate(needs, flatProfiles(domain.CurrencyUSD), domain.NewCorrelationMatrix())

	// Forward, option and collar qualify; the swap minimum (250k) does not
	ids := make(map[string]bool)
	for _, c := range candidates {
		ids[c.ID] = true
	}
	assert.True(t, ids["single-forward-USD"])
	assert.True(t, ids["single-option-USD"])
	assert.True(t, ids["single-collar-USD"])
	assert.False(t, ids["single-swap-USD"])
}

func TestGenerateSingleRespectsRecommendedRatio(t *testing.T) {
	gen := testGenerator()

	needs := []domain.HedgingNeed{highNeed(domain.CurrencyUSD, 100000)}
	candidates := gen.Generate(needs, flatProfiles(domain.CurrencyUSD), domain.NewCorrelationMatrix())

	for _, c := range candidates {
		if c.Type != domain.StrategySingle {
			continue
		}
		assert.Equal(t, 0.6, c.HedgeRatio)
		require.Len(t, c.Allocations, 1)
		assert.Equal(t, 1.0, c.Allocations[0].Portion)
		assert.InDelta(t, 60000.0, c.Allocations[0].Amount, 1e-9)
		assert.Greater(t, c.TotalCost, 0.0)
	}
}

func TestGenerateOptionCostUsesPricerWhenHigher(t *testing.T) {
	gen := testGenerator()

	// 12% annual vol over 90 days: 0.4*0.12*sqrt(90/365)*10000 ~ 238 bps,
	// well above the catalog's 80 bps
	needs := []domain.HedgingNeed{highNeed(domain.CurrencyUSD, 100000)}
	candidates := gen.Generate(needs, flatProfiles(domain.CurrencyUSD), domain.NewCorrelationMatrix())

	var option *domain.StrategyCandidate
	for i := range candidates {
		if candidates[i].ID == "single-option-USD" {
			option = &candidates[i]
		}
	}
	require.NotNil(t, option)
	assert.Greater(t, option.Allocations[0].CostBps, 80.0)
}

func TestGenerateCombinationForLargeHighPriorityNeed(t *testing.T) {
	gen := testGenerator()

	needs := []domain.HedgingNeed{highNeed(domain.CurrencyUSD, 200000)}
	candidates := gen.Generate(needs, flatProfiles(domain.CurrencyUSD), domain.NewCorrelationMatrix())

	var combo *domain.StrategyCandidate
	for i := range candidates {
		if candidates[i].Type == domain.StrategyCombination {
			combo = &candidates[i]
		}
	}
	require.NotNil(t, combo)
	assert.Equal(t, "combo-forward-option-USD", combo.ID)
	require.Len(t, combo.Allocations, 2)
	assert.Equal(t, 0.7, combo.Allocations[0].Portion)
	assert.Equal(t, 0.3, combo.Allocations[1].Portion)
	// 0.7*0.95 + 0.3*0.85
	assert.InDelta(t, 0.92, combo.Effectiveness, 1e-9)
}

func TestGenerateNoCombinationForSmallNeed(t *testing.T) {
	gen := testGenerator()

	// At the size threshold, not above it
	needs := []domain.HedgingNeed{highNeed(domain.CurrencyUSD, 100000)}
	candidates := gen.Generate(needs, flatProfiles(domain.CurrencyUSD), domain.NewCorrelationMatrix())

	for _, c := range candidates {
		assert.NotEqual(t, domain.StrategyCombination, c.Type)
	}
}

func TestCombinationSkippedWhenTenorTooShort(t *testing.T) {
	gen := testGenerator()

	need := highNeed(domain.CurrencyUSD, 200000)
	need.HorizonDays = 270 // Beyond the option's 180-day maximum tenor

	_, ok := gen.combination(need, flatProfiles(domain.CurrencyUSD))
	assert.False(t, ok)
}

func TestGenerateBasketWithEnoughNeeds(t *testing.T) {
	gen := testGenerator()

	needs := []domain.HedgingNeed{
		highNeed(domain.CurrencyUSD, 150000),
		highNeed(domain.CurrencyGBP, 100000),
		highNeed(domain.CurrencyJPY, 50000),
	}
	candidates := gen.Generate(needs, flatProfiles(domain.CurrencyUSD, domain.CurrencyGBP, domain.CurrencyJPY), domain.NewCorrelationMatrix())

	var basket *domain.StrategyCandidate
	for i := range candidates {
		if candidates[i].Type == domain.StrategyBasket {
			basket = &candidates[i]
		}
	}
	require.NotNil(t, basket)
	assert.Equal(t, "basket-swap", basket.ID)
	assert.InDelta(t, 300000.0, basket.Exposure, 1e-9)
	assert.Len(t, basket.Currencies, 3)
	// Pooled notional earns the 80% discount on the swap's 20 bps
	assert.InDelta(t, 4.0, basket.Allocations[0].CostBps, 1e-9)
	assert.Equal(t, 0.75, basket.Effectiveness)
}

func TestGenerateNoBasketBelowMinimumNeeds(t *testing.T) {
	gen := testGenerator()

	needs := []domain.HedgingNeed{
		highNeed(domain.CurrencyUSD, 150000),
		highNeed(domain.CurrencyGBP, 150000),
	}
	candidates := gen.Generate(needs, flatProfiles(domain.CurrencyUSD, domain.CurrencyGBP), domain.NewCorrelationMatrix())

	for _, c := range candidates {
		assert.NotEqual(t, domain.StrategyBasket, c.Type)
	}
}

func TestGenerateNaturalHedgeFromMatrix(t *testing.T) {
	gen := testGenerator()

	needs := []domain.HedgingNeed{
		highNeed(domain.CurrencyUSD, 80000),
		highNeed(domain.CurrencyJPY, 50000),
	}
	matrix := domain.NewCorrelationMatrix()
	matrix.Set(domain.CurrencyUSD, domain.CurrencyJPY, -0.9)

	candidates := gen.Generate(needs, flatProfiles(domain.CurrencyUSD, domain.CurrencyJPY), matrix)

	var natural *domain.StrategyCandidate
	for i := range candidates {
		if candidates[i].Type == domain.StrategyNatural {
			natural = &candidates[i]
		}
	}
	require.NotNil(t, natural)
	assert.InDelta(t, 80000.0, natural.Exposure, 1e-9)
	assert.InDelta(t, 0.625, natural.HedgeRatio, 1e-9) // 50000/80000
	assert.Empty(t, natural.Allocations)
	assert.Equal(t, 0.0, natural.TotalCost)
	assert.Equal(t, 0.70, natural.Effectiveness)
	assert.Equal(t, domain.LiquidityHigh, natural.Liquidity)
}

func TestGenerateNoNaturalHedgeForWeakCorrelation(t *testing.T) {
	gen := testGenerator()

	needs := []domain.HedgingNeed{
		highNeed(domain.CurrencyUSD, 80000),
		highNeed(domain.CurrencyJPY, 50000),
	}
	matrix := domain.NewCorrelationMatrix()
	matrix.Set(domain.CurrencyUSD, domain.CurrencyJPY, -0.1)

	candidates := gen.Generate(needs, flatProfiles(domain.CurrencyUSD, domain.CurrencyJPY), matrix)

	for _, c := range candidates {
		assert.NotEqual(t, domain.StrategyNatural, c.Type)
	}
}

func TestGenerateNaturalHedgeFallbackList(t *testing.T) {
	gen := testGenerator()

	// No matrix data at all: AUD/JPY is on the fallback list
	needs := []domain.HedgingNeed{
		highNeed(domain.CurrencyAUD, 60000),
		highNeed(domain.CurrencyJPY, 40000),
	}
	candidates := gen.Generate(needs, flatProfiles(domain.CurrencyAUD, domain.CurrencyJPY), domain.NewCorrelationMatrix())

	found := false
	for _, c := range candidates {
		if c.Type == domain.StrategyNatural {
			found = true
		}
	}
	assert.True(t, found)
}

func TestGenerateMatrixOverridesFallbackList(t *testing.T) {
	gen := testGenerator()

	// Computed data shows the pair is positively correlated; the fallback
	// list entry must not resurrect the natural hedge
	needs := []domain.HedgingNeed{
		highNeed(domain.CurrencyAUD, 60000),
		highNeed(domain.CurrencyJPY, 40000),
	}
	matrix := domain.NewCorrelationMatrix()
	matrix.Set(domain.CurrencyAUD, domain.CurrencyJPY, 0.5)

	candidates := gen.Generate(needs, flatProfiles(domain.CurrencyAUD, domain.CurrencyJPY), matrix)

	for _, c := range candidates {
		assert.NotEqual(t, domain.StrategyNatural, c.Type)
	}
}

func TestGenerateRatiosAlwaysInBounds(t *testing.T) {
	gen := testGenerator()
	params := config.DefaultRiskParams()

	need := highNeed(domain.CurrencyUSD, 100000)
	need.RecommendedRatio = 0.05 // Below the configured floor
	candidates := gen.Generate([]domain.HedgingNeed{need}, flatProfiles(domain.CurrencyUSD), domain.NewCorrelationMatrix())

	require.NotEmpty(t, candidates)
	for _, c := range candidates {
		assert.GreaterOrEqual(t, c.HedgeRatio, params.HedgeRatioMin)
		assert.LessOrEqual(t, c.HedgeRatio, params.HedgeRatioMax)
	}
}
