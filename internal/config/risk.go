package config

import (
	"github.com/aristath/fx-sentinel/internal/domain"
)

// RiskParams is the single configuration object for the whole risk and
// hedging parameter surface. Callers start from DefaultRiskParams and
// override individual fields before construction; components never reach
// for package-level constants.
type RiskParams struct {
	// Risk measurement
	ConfidenceLevels         []float64 // e.g. 0.95, 0.99
	LookbackDays             int       // Price-history window for return series
	MonteCarloTrials         int
	MonteCarloBatches        int   // Independent simulation batches run concurrently
	MonteCarloSeed           int64 // Base seed; batch b uses Seed+b
	ConcentrationThreshold   float64
	CorrelationThreshold     float64 // |corr| above this becomes a pairwise risk factor
	HighCorrelationThreshold float64 // Triggers the correlation recommendation
	DefaultAnnualVolatility  float64 // Fallback when price history is unavailable
	VolatilityTrendWindow    int     // Rolling window for the volatility trend label
	RiskAlertScore           float64 // Score at or above which observers get a risk alert

	// Hedging analysis
	HighVolatilityThreshold   float64 // Annual vol above this forces a medium-priority need
	LowConcentrationThreshold float64
	LowVolatilityThreshold    float64
	NaturalHedgeCorrelation   float64 // Pairs at or below this qualify for a natural hedge
	CombinationSizeThreshold  float64 // High-priority needs above this also get a combo candidate
	BasketMinNeeds            int
	BasketCostDiscount        float64
	BasketEffectiveness       float64
	NaturalHedgeEffectiveness float64

	// Hedge-ratio optimization
	HedgeRatioMin        float64
	HedgeRatioMax        float64
	GridStep             float64
	GradientEpsilon      float64
	LearningRate         float64
	ConvergenceThreshold float64
	MaxIterations        int
	RatioModeration      float64 // Penalty weight on |ratio-0.5|; 0 disables

	// Cost model
	OpportunityCostRate float64 // Annual, prorated to horizon
	TransactionFeeFixed float64 // Per instrument leg
	TransactionFeeBps   float64

	// Instrument catalog (externally supplied)
	Instruments []domain.HedgeInstrument
}

// LookbackShort, LookbackMedium and LookbackLong are the supported
// price-history windows, in days.
const (
	LookbackShort  = 30
	LookbackMedium = 90
	LookbackLong   = 252
)

// DefaultRiskParams returns the baseline parameter set. Every value here can
// be overridden by the caller before the services are constructed.
func DefaultRiskParams() RiskParams {
	return RiskParams{
		ConfidenceLevels:         []float64{0.95, 0.99},
		LookbackDays:             LookbackMedium,
		MonteCarloTrials:         10000,
		MonteCarloBatches:        8,
		MonteCarloSeed:           1,
		ConcentrationThreshold:   0.25,
		CorrelationThreshold:     0.70,
		HighCorrelationThreshold: 0.80,
		DefaultAnnualVolatility:  0.15,
		VolatilityTrendWindow:    20,
		RiskAlertScore:           75,

		HighVolatilityThreshold:   0.20,
		LowConcentrationThreshold: 0.15,
		LowVolatilityThreshold:    0.15,
		NaturalHedgeCorrelation:   -0.30,
		CombinationSizeThreshold:  100000,
		BasketMinNeeds:            3,
		BasketCostDiscount:        0.80,
		BasketEffectiveness:       0.75,
		NaturalHedgeEffectiveness: 0.70,

		HedgeRatioMin:        0.25,
		HedgeRatioMax:        1.0,
		GridStep:             0.1,
		GradientEpsilon:      0.01,
		LearningRate:         0.1,
		ConvergenceThreshold: 1e-4,
		MaxIterations:        100,
		RatioModeration:      0.05,

		OpportunityCostRate: 0.02,
		TransactionFeeFixed: 25,
		TransactionFeeBps:   5,

		Instruments: DefaultInstrumentCatalog(),
	}
}

// DefaultInstrumentCatalog is the baseline hedge-instrument catalog.
// Deployments replace it with their broker's quoted terms.
func DefaultInstrumentCatalog() []domain.HedgeInstrument {
	return []domain.HedgeInstrument{
		{
			Type:          domain.InstrumentForward,
			CostBps:       30,
			Effectiveness: 0.95,
			MinAmount:     10000,
			MaxTenorDays:  365,
			Liquidity:     domain.LiquidityHigh,
		},
		{
			Type:          domain.InstrumentOption,
			CostBps:       80,
			Effectiveness: 0.85,
			MinAmount:     25000,
			MaxTenorDays:  180,
			Liquidity:     domain.LiquidityHigh,
		},
		{
			Type:          domain.InstrumentCollar,
			CostBps:       45,
			Effectiveness: 0.80,
			MinAmount:     50000,
			MaxTenorDays:  365,
			Liquidity:     domain.LiquidityMedium,
		},
		{
			Type:          domain.InstrumentSwap,
			CostBps:       20,
			Effectiveness: 0.90,
			MinAmount:     250000,
			MaxTenorDays:  730,
			Liquidity:     domain.LiquidityMedium,
		},
	}
}

// InstrumentByType finds a catalog entry by instrument type
func (p *RiskParams) InstrumentByType(t domain.InstrumentType) (domain.HedgeInstrument, bool) {
	for _, inst := range p.Instruments {
		if inst.Type == t {
			return inst, true
		}
	}
	return domain.HedgeInstrument{}, false
}
