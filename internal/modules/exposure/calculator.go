package exposure

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/fx-sentinel/internal/domain"
	"github.com/aristath/fx-sentinel/internal/marketdata"
)

// Calculator converts portfolio account balances into base-currency
// exposures with relative weights and a size ranking.
type Calculator struct {
	provider marketdata.Provider
	log      zerolog.Logger
}

// NewCalculator creates a new exposure calculator
func NewCalculator(provider marketdata.Provider, log zerolog.Logger) *Calculator {
	return &Calculator{
		provider: provider,
		log:      log.With().Str("component", "exposure").Logger(),
	}
}

// Result bundles the exposures with portfolio totals
type Result struct {
	Exposures      []domain.CurrencyExposure
	TotalExposure  float64 // Sum of foreign exposures in base currency
	PortfolioValue float64 // Includes base-currency balances
}

// Calculate converts every foreign-currency balance to base currency and
// ranks the resulting exposures descending by size.
//
// A missing exchange rate aborts the whole calculation: the total is
// meaningless without it, and silently substituting a rate would corrupt
// every relative weight downstream. The caller decides whether to exclude
// the account and retry.
func (c *Calculator) Calculate(ctx context.Context, portfolio domain.Portfolio) (*Result, error) {
	// Accumulate per currency; a user may hold several accounts in one currency
	byCurrency := make(map[domain.Currency]*domain.CurrencyExposure)
	totalForeign := 0.0
	portfolioValue := 0.0

	for _, account := range portfolio.Accounts {
		if account.Currency == portfolio.BaseCurrency {
			portfolioValue += account.Balance
			continue
		}

		rate, err := c.provider.GetExchangeRate(ctx, account.Currency, portfolio.BaseCurrency)
		if err != nil {
			return nil, fmt.Errorf("exposure calculation aborted: %w", err)
		}

		amountBase := account.Balance * rate
		portfolioValue += amountBase
		totalForeign += amountBase

		if existing, ok := byCurrency[account.Currency]; ok {
			existing.AmountBase += amountBase
			existing.OriginalAmount += account.Balance
			continue
		}
		byCurrency[account.Currency] = &domain.CurrencyExposure{
			Currency:       account.Currency,
			AmountBase:     amountBase,
			OriginalAmount: account.Balance,
			ExchangeRate:   rate,
		}
	}

	exposures := make([]domain.CurrencyExposure, 0, len(byCurrency))
	for _, exp := range byCurrency {
		if totalForeign > 0 {
			exp.RelativeExposure = exp.AmountBase / totalForeign
		}
		exposures = append(exposures, *exp)
	}

	// Rank descending by absolute size; currency code breaks exact ties so
	// the ordering is deterministic
	sort.Slice(exposures, func(i, j int) bool {
		if exposures[i].AmountBase != exposures[j].AmountBase {
			return exposures[i].AmountBase > exposures[j].AmountBase
		}
		return exposures[i].Currency < exposures[j].Currency
	})
	for i := range exposures {
		exposures[i].Rank = i + 1
	}

	c.log.Debug().
		Int("currencies", len(exposures)).
		Float64("total_foreign", totalForeign).
		Msg("Exposures calculated")

	return &Result{
		Exposures:      exposures,
		TotalExposure:  totalForeign,
		PortfolioValue: portfolioValue,
	}, nil
}
