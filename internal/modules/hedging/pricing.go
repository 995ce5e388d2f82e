package hedging

import "math"

// PricingProvider isolates instrument pricing approximations from strategy
// generation and optimization, so a real pricing model can replace them
// without touching either.
type PricingProvider interface {
	// OptionPremiumBps quotes an at-the-money option premium in basis points
	// of notional for the given annual volatility and tenor
	OptionPremiumBps(annualVol float64, horizonDays int) float64
}

// SimplePricer is the built-in approximation used as a cost-estimation
// input. It is not a pricing model.
type SimplePricer struct{}

// NewSimplePricer creates the default pricing provider
func NewSimplePricer() *SimplePricer {
	return &SimplePricer{}
}

// OptionPremiumBps uses the Brenner-Subrahmanyam ATM approximation
// premium ~= 0.4 * sigma * sqrt(T) of notional
func (p *SimplePricer) OptionPremiumBps(annualVol float64, horizonDays int) float64 {
	if annualVol <= 0 || horizonDays <= 0 {
		return 0
	}
	years := float64(horizonDays) / 365.0
	return 0.4 * annualVol * math.Sqrt(years) * 10000
}
