package volatility

import (
	"context"
	"math"

	"github.com/rs/zerolog"

	"github.com/aristath/fx-sentinel/internal/config"
	"github.com/aristath/fx-sentinel/internal/domain"
	"github.com/aristath/fx-sentinel/internal/marketdata"
	"github.com/aristath/fx-sentinel/pkg/formulas"
)

// Estimator derives per-currency return series and volatility profiles
// from historical price data.
type Estimator struct {
	provider marketdata.Provider
	params   config.RiskParams
	log      zerolog.Logger
}

// NewEstimator creates a new volatility estimator
func NewEstimator(provider marketdata.Provider, params config.RiskParams, log zerolog.Logger) *Estimator {
	return &Estimator{
		provider: provider,
		params:   params,
		log:      log.With().Str("component", "volatility").Logger(),
	}
}

// EstimateAll computes a volatility profile for every currency. Per-currency
// estimation has no cross-currency dependency, so the work fans out across
// goroutines and joins on a channel.
//
// A currency whose price history is unavailable gets the configured default
// annual volatility instead of failing the whole batch; downstream risk
// scoring tolerates approximate inputs.
func (e *Estimator) EstimateAll(ctx context.Context, currencies []domain.Currency, base domain.Currency) map[domain.Currency]domain.VolatilityProfile {
	type result struct {
		currency domain.Currency
		profile  domain.VolatilityProfile
	}
	results := make(chan result, len(currencies))

	for _, currency := range currencies {
		go func(ccy domain.Currency) {
			results <- result{currency: ccy, profile: e.estimate(ctx, ccy, base)}
		}(currency)
	}

	profiles := make(map[domain.Currency]domain.VolatilityProfile, len(currencies))
	for range currencies {
		res := <-results
		profiles[res.currency] = res.profile
	}
	close(results)

	return profiles
}

// estimate computes one currency's profile
func (e *Estimator) estimate(ctx context.Context, currency, base domain.Currency) domain.VolatilityProfile {
	prices, err := e.provider.GetHistoricalPrices(ctx, currency, base, e.params.LookbackDays)
	if err != nil {
		e.log.Warn().
			Err(err).
			Str("currency", string(currency)).
			Float64("default_annual_vol", e.params.DefaultAnnualVolatility).
			Msg("Price history unavailable, using default volatility")
		return e.fallbackProfile(currency)
	}

	returns := formulas.CalculateReturns(prices)
	if len(returns) < 2 {
		e.log.Warn().
			Str("currency", string(currency)).
			Int("observations", len(returns)).
			Msg("Insufficient price history, using default volatility")
		return e.fallbackProfile(currency)
	}

	daily := formulas.StdDev(returns)
	return domain.VolatilityProfile{
		Currency: currency,
		Daily:    daily,
		Weekly:   formulas.ScaleVolatility(daily, 7),
		Monthly:  formulas.ScaleVolatility(daily, 30),
		Annual:   formulas.ScaleVolatility(daily, formulas.TradingDaysPerYear),
		Trend:    e.trend(returns),
		Returns:  returns,
	}
}

// fallbackProfile builds a profile from the configured default annual
// volatility, scaled back down to the shorter horizons
func (e *Estimator) fallbackProfile(currency domain.Currency) domain.VolatilityProfile {
	annual := e.params.DefaultAnnualVolatility
	daily := annual / math.Sqrt(formulas.TradingDaysPerYear)
	return domain.VolatilityProfile{
		Currency: currency,
		Daily:    daily,
		Weekly:   formulas.ScaleVolatility(daily, 7),
		Monthly:  formulas.ScaleVolatility(daily, 30),
		Annual:   annual,
		Trend:    "stable",
		Fallback: true,
	}
}

// trend labels whether recent rolling volatility is rising or falling
// relative to the full window
func (e *Estimator) trend(returns []float64) string {
	window := e.params.VolatilityTrendWindow
	rolling := formulas.RollingStdDev(returns, window)
	if rolling == nil {
		return "stable"
	}

	// Skip the warm-up zeros at the head of the rolling series
	active := rolling[window-1:]
	if len(active) < 2 {
		return "stable"
	}

	latest := active[len(active)-1]
	average := formulas.Mean(active)
	if average == 0 {
		return "stable"
	}

	switch ratio := latest / average; {
	case ratio > 1.2:
		return "rising"
	case ratio < 0.8:
		return "falling"
	default:
		return "stable"
	}
}
