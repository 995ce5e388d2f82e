package marketdata

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/fx-sentinel/internal/domain"
)

func TestStaticSameCurrencyRate(t *testing.T) {
	p := NewStaticProvider()

	rate, err := p.GetExchangeRate(context.Background(), domain.CurrencyEUR, domain.CurrencyEUR)
	require.NoError(t, err)
	assert.Equal(t, 1.0, rate)
}

func TestStaticSetRateStoresInverse(t *testing.T) {
	p := NewStaticProvider()
	p.SetRate(domain.CurrencyUSD, domain.CurrencyEUR, 0.90)

	rate, err := p.GetExchangeRate(context.Background(), domain.CurrencyUSD, domain.CurrencyEUR)
	require.NoError(t, err)
	assert.Equal(t, 0.90, rate)

	inverse, err := p.GetExchangeRate(context.Background(), domain.CurrencyEUR, domain.CurrencyUSD)
	require.NoError(t, err)
	assert.InDelta(t, 1/0.90, inverse, 1e-12)
}

func TestStaticMissingRate(t *testing.T) {
	p := NewStaticProvider()

	_, err := p.GetExchangeRate(context.Background(), domain.CurrencyJPY, domain.CurrencyEUR)
	require.Error(t, err)
	assert.True(t, domain.IsDataUnavailable(err))
}

func TestStaticHistoricalPricesTrimmed(t *testing.T) {
	p := NewStaticProvider()
	series := make([]float64, 100)
	for i := range series {
		series[i] = 1.0 + float64(i)*0.001
	}
	p.SetPrices(domain.CurrencyUSD, series)

	got, err := p.GetHistoricalPrices(context.Background(), domain.CurrencyUSD, domain.CurrencyEUR, 30)
	require.NoError(t, err)
	require.Len(t, got, 30)
	// The most recent prices survive the trim.
	assert.Equal(t, series[len(series)-1], got[len(got)-1])
	assert.Equal(t, series[len(series)-30], got[0])
}

func TestStaticHistoricalPricesCopied(t *testing.T) {
	p := NewStaticProvider()
	p.SetPrices(domain.CurrencyUSD, []float64{1.0, 1.1, 1.2})

	got, err := p.GetHistoricalPrices(context.Background(), domain.CurrencyUSD, domain.CurrencyEUR, 0)
	require.NoError(t, err)
	got[0] = 99.0

	again, err := p.GetHistoricalPrices(context.Background(), domain.CurrencyUSD, domain.CurrencyEUR, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, again[0])
}

func TestStaticMissingHistory(t *testing.T) {
	p := NewStaticProvider()

	_, err := p.GetHistoricalPrices(context.Background(), domain.CurrencyCHF, domain.CurrencyEUR, 90)
	require.Error(t, err)
	assert.True(t, domain.IsDataUnavailable(err))
}

func TestStaticLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	payload := `{
		"rates": {"USD/EUR": 0.92, "GBP/EUR": 1.16},
		"prices": {"USD": [1.08, 1.09, 1.10]}
	}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	p := NewStaticProvider()
	require.NoError(t, p.LoadFile(path))

	rate, err := p.GetExchangeRate(context.Background(), domain.CurrencyUSD, domain.CurrencyEUR)
	require.NoError(t, err)
	assert.Equal(t, 0.92, rate)

	prices, err := p.GetHistoricalPrices(context.Background(), domain.CurrencyUSD, domain.CurrencyEUR, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.08, 1.09, 1.10}, prices)

	// LoadFile does not synthesize inverse pairs.
	_, err = p.GetExchangeRate(context.Background(), domain.CurrencyEUR, domain.CurrencyUSD)
	assert.Error(t, err)
}

func TestStaticLoadFileMissing(t *testing.T) {
	p := NewStaticProvider()
	err := p.LoadFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
