package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/aristath/fx-sentinel/internal/domain"
)

// StaticProvider serves exchange rates and price histories from an in-memory
// snapshot. It backs the CLI and the test suite; production deployments plug
// in a live provider behind the same interface.
type StaticProvider struct {
	mu     sync.RWMutex
	rates  map[string]float64            // "FROM/TO" -> rate
	prices map[domain.Currency][]float64 // oldest-first, quoted in the snapshot's base currency
}

// NewStaticProvider creates an empty static provider
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		rates:  make(map[string]float64),
		prices: make(map[domain.Currency][]float64),
	}
}

// snapshotFile is the on-disk JSON layout for LoadFile
type snapshotFile struct {
	Rates  map[string]float64   `json:"rates"`
	Prices map[string][]float64 `json:"prices"`
}

// LoadFile replaces the provider's data with the contents of a JSON snapshot
func (p *StaticProvider) LoadFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read market data file: %w", err)
	}

	var snap snapshotFile
	if err := json.Unmarshal(raw, &snap); err != nil {
		return fmt.Errorf("failed to parse market data file: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.rates = make(map[string]float64, len(snap.Rates))
	for pair, rate := range snap.Rates {
		p.rates[pair] = rate
	}
	p.prices = make(map[domain.Currency][]float64, len(snap.Prices))
	for ccy, series := range snap.Prices {
		p.prices[domain.Currency(ccy)] = series
	}
	return nil
}

// SetRate stores the rate for one direction and its inverse
func (p *StaticProvider) SetRate(from, to domain.Currency, rate float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rates[string(from)+"/"+string(to)] = rate
	if rate != 0 {
		p.rates[string(to)+"/"+string(from)] = 1 / rate
	}
}

// SetPrices stores a price history for a currency
func (p *StaticProvider) SetPrices(currency domain.Currency, prices []float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prices[currency] = prices
}

// GetExchangeRate implements Provider
func (p *StaticProvider) GetExchangeRate(_ context.Context, from, to domain.Currency) (float64, error) {
	if from == to {
		return 1.0, nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if rate, ok := p.rates[string(from)+"/"+string(to)]; ok {
		return rate, nil
	}
	return 0, &domain.DataUnavailableError{Currency: from, Resource: "exchange_rate"}
}

// GetHistoricalPrices implements Provider
func (p *StaticProvider) GetHistoricalPrices(_ context.Context, currency, _ domain.Currency, days int) ([]float64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	series, ok := p.prices[currency]
	if !ok || len(series) == 0 {
		return nil, &domain.DataUnavailableError{Currency: currency, Resource: "price_history"}
	}

	if days > 0 && len(series) > days {
		series = series[len(series)-days:]
	}
	out := make([]float64, len(series))
	copy(out, series)
	return out, nil
}
