package risk

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/fx-sentinel/internal/cache"
	"github.com/aristath/fx-sentinel/internal/config"
	"github.com/aristath/fx-sentinel/internal/domain"
	"github.com/aristath/fx-sentinel/internal/events"
	"github.com/aristath/fx-sentinel/internal/marketdata"
)

func servicePrices(start float64, n int, step float64) []float64 {
	prices := make([]float64, n)
	prices[0] = start
	for i := 1; i < n; i++ {
		if i%2 == 0 {
			prices[i] = prices[i-1] * (1 + step)
		} else {
			prices[i] = prices[i-1] * (1 - step)
		}
	}
	return prices
}

func serviceProvider() *marketdata.StaticProvider {
	p := marketdata.NewStaticProvider()
	p.SetRate(domain.CurrencyUSD, domain.CurrencyEUR, 0.90)
	p.SetRate(domain.CurrencyGBP, domain.CurrencyEUR, 1.15)
	p.SetPrices(domain.CurrencyUSD, servicePrices(1.10, 120, 0.006))
	p.SetPrices(domain.CurrencyGBP, servicePrices(0.85, 120, 0.009))
	return p
}

func newTestService(provider marketdata.Provider) *Service {
	params := config.DefaultRiskParams()
	// Keep test runs fast
	params.MonteCarloTrials = 2000
	return NewService(provider, cache.NewMemory(), events.NewManager(zerolog.Nop()), params, zerolog.Nop())
}

func servicePortfolio() domain.Portfolio {
	return domain.Portfolio{
		UserID:       "svc-user",
		BaseCurrency: domain.CurrencyEUR,
		Accounts: []domain.Account{
			{Currency: domain.CurrencyEUR, Balance: 40000},
			{Currency: domain.CurrencyUSD, Balance: 80000},
			{Currency: domain.CurrencyGBP, Balance: 25000},
		},
	}
}

func TestCalculateFullPipeline(t *testing.T) {
	service := newTestService(serviceProvider())

	outcome, err := service.Calculate(context.Background(), servicePortfolio())
	require.NoError(t, err)

	a := outcome.Assessment
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "svc-user", a.UserID)
	assert.Equal(t, domain.CurrencyEUR, a.BaseCurrency)
	assert.Len(t, a.Exposures, 2)

	// Three methods at each of the two configured confidence levels
	assert.Len(t, a.VaR, 6)
	assert.Greater(t, a.ExpectedShortfall, 0.0)
	assert.NotEmpty(t, a.StressTests)
	assert.NotEmpty(t, a.RiskFactors)
	assert.NotEmpty(t, a.Recommendations)
	assert.Greater(t, a.RiskScore, 0.0)

	// Intermediate statistics are surfaced for the hedging pipeline
	assert.Len(t, outcome.Profiles, 2)
	assert.NotNil(t, outcome.Matrix)
}

func TestCalculateVaRConfidenceOrdering(t *testing.T) {
	service := newTestService(serviceProvider())

	outcome, err := service.Calculate(context.Background(), servicePortfolio())
	require.NoError(t, err)

	a := outcome.Assessment
	for _, method := range []domain.VaRMethod{domain.VaRHistorical, domain.VaRParametric, domain.VaRMonteCarlo} {
		var95 := a.VaRAt(method, 0.95)
		var99 := a.VaRAt(method, 0.99)
		assert.Greater(t, var95, 0.0, "method %s", method)
		assert.GreaterOrEqual(t, var99, var95, "method %s", method)
	}
}

func TestCalculateNoForeignExposure(t *testing.T) {
	service := newTestService(serviceProvider())

	portfolio := domain.Portfolio{
		UserID:       "base-only",
		BaseCurrency: domain.CurrencyEUR,
		Accounts: []domain.Account{
			{Currency: domain.CurrencyEUR, Balance: 100000},
		},
	}

	outcome, err := service.Calculate(context.Background(), portfolio)
	require.NoError(t, err)

	a := outcome.Assessment
	assert.Empty(t, a.Exposures)
	assert.Empty(t, a.VaR)
	assert.Empty(t, a.StressTests)
	assert.Equal(t, 0.0, a.RiskScore)
	assert.Equal(t, 0.0, a.ExpectedShortfall)
}

func TestCalculateCachesAssessment(t *testing.T) {
	service := newTestService(serviceProvider())

	outcome, err := service.Calculate(context.Background(), servicePortfolio())
	require.NoError(t, err)

	cached, ok, err := service.Latest("svc-user")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, outcome.Assessment.ID, cached.ID)
}

func TestCalculateMissingRateFails(t *testing.T) {
	provider := marketdata.NewStaticProvider()
	service := newTestService(provider)

	_, err := service.Calculate(context.Background(), servicePortfolio())
	require.Error(t, err)
	assert.True(t, domain.IsDataUnavailable(err))

	_, ok, cacheErr := service.Latest("svc-user")
	require.NoError(t, cacheErr)
	assert.False(t, ok)
}

func TestCalculateCancelledContext(t *testing.T) {
	service := newTestService(serviceProvider())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := service.Calculate(ctx, servicePortfolio())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCalculateFallbackVolatilityStillSucceeds(t *testing.T) {
	// Rates available but no price history: volatility falls back to the
	// configured default and the assessment completes
	provider := marketdata.NewStaticProvider()
	provider.SetRate(domain.CurrencyUSD, domain.CurrencyEUR, 0.90)
	provider.SetRate(domain.CurrencyGBP, domain.CurrencyEUR, 1.15)
	service := newTestService(provider)

	outcome, err := service.Calculate(context.Background(), servicePortfolio())
	require.NoError(t, err)

	for _, profile := range outcome.Profiles {
		assert.True(t, profile.Fallback)
	}
	assert.Greater(t, outcome.Assessment.RiskScore, 0.0)
}

func TestPortfoliosSnapshot(t *testing.T) {
	service := newTestService(serviceProvider())

	_, err := service.Calculate(context.Background(), servicePortfolio())
	require.NoError(t, err)

	other := servicePortfolio()
	other.UserID = "another-user"
	_, err = service.Calculate(context.Background(), other)
	require.NoError(t, err)

	portfolios := service.Portfolios()
	require.Len(t, portfolios, 2)
	assert.Equal(t, "another-user", portfolios[0].UserID)
	assert.Equal(t, "svc-user", portfolios[1].UserID)
}
