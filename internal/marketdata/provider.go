package marketdata

import (
	"context"

	"github.com/aristath/fx-sentinel/internal/domain"
)

// Provider is the market-data collaborator contract. Calls may be slow,
// fail, or return partial data; every response is treated as final for
// that call, retries are the provider's concern.
type Provider interface {
	// GetExchangeRate returns the rate converting one unit of from into to
	GetExchangeRate(ctx context.Context, from, to domain.Currency) (float64, error)

	// GetHistoricalPrices returns an ordered (oldest-first) price series for
	// currency quoted in base, covering at most days observations
	GetHistoricalPrices(ctx context.Context, currency, base domain.Currency, days int) ([]float64, error)
}
