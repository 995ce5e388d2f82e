package hedging

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/aristath/fx-sentinel/internal/config"
	"github.com/aristath/fx-sentinel/internal/domain"
	"github.com/aristath/fx-sentinel/pkg/formulas"
)

// Generator builds candidate strategies from the configured instrument
// catalog: per-need single-instrument and combination candidates, plus
// portfolio-level basket and natural-hedge candidates.
type Generator struct {
	params config.RiskParams
	pricer PricingProvider
	log    zerolog.Logger
}

// NewGenerator creates a new strategy generator
func NewGenerator(params config.RiskParams, pricer PricingProvider, log zerolog.Logger) *Generator {
	return &Generator{
		params: params,
		pricer: pricer,
		log:    log.With().Str("component", "strategy_generator").Logger(),
	}
}

// fallbackInverselyCorrelated lists currency pairs treated as natural-hedge
// candidates when the computed correlation matrix has no data for them.
// The computed matrix always wins when a pair is present.
var fallbackInverselyCorrelated = map[string]bool{
	"AUD/JPY": true,
	"CHF/USD": true,
	"CHF/EUR": true,
}

// Generate emits all candidates for the given needs. Per-need candidates
// come first, then the portfolio-level basket and natural hedges.
func (g *Generator) Generate(
	needs []domain.HedgingNeed,
	profiles map[domain.Currency]domain.VolatilityProfile,
	matrix *domain.CorrelationMatrix,
) []domain.StrategyCandidate {
	var candidates []domain.StrategyCandidate

	for _, need := range needs {
		candidates = append(candidates, g.singleInstrument(need, profiles)...)

		if need.Priority == domain.PriorityHigh && need.Exposure > g.params.CombinationSizeThreshold {
			if combo, ok := g.combination(need, profiles); ok {
				candidates = append(candidates, combo)
			}
		}
	}

	if basket, ok := g.basket(needs); ok {
		candidates = append(candidates, basket)
	}
	candidates = append(candidates, g.naturalHedges(needs, matrix)...)

	g.log.Debug().
		Int("needs", len(needs)).
		Int("candidates", len(candidates)).
		Msg("Strategy candidates generated")

	return candidates
}

// singleInstrument emits one candidate per catalog entry the need can use:
// minimum amount at or below the exposure, maximum tenor covering the horizon
func (g *Generator) singleInstrument(
	need domain.HedgingNeed,
	profiles map[domain.Currency]domain.VolatilityProfile,
) []domain.StrategyCandidate {
	var out []domain.StrategyCandidate

	for _, inst := range g.params.Instruments {
		if inst.MinAmount > need.Exposure || inst.MaxTenorDays < need.HorizonDays {
			continue
		}

		candidate := domain.StrategyCandidate{
			ID:         fmt.Sprintf("single-%s-%s", inst.Type, need.Currency),
			Type:       domain.StrategySingle,
			Currencies: []domain.Currency{need.Currency},
			Exposure:   need.Exposure,
			Allocations: []domain.InstrumentAllocation{{
				Instrument:    inst.Type,
				Portion:       1.0,
				CostBps:       g.instrumentCostBps(inst, need, profiles),
				Effectiveness: inst.Effectiveness,
			}},
			HorizonDays:   need.HorizonDays,
			Effectiveness: inst.Effectiveness,
			Liquidity:     inst.Liquidity,
		}
		candidate.ApplyRatio(g.clampRatio(need.RecommendedRatio))
		out = append(out, candidate)
	}

	return out
}

// combination emits a 70/30 forward+option candidate for large high-priority
// needs. It returns ok=false silently when either leg would fall below its
// instrument minimum or the catalog lacks one of the legs.
func (g *Generator) combination(
	need domain.HedgingNeed,
	profiles map[domain.Currency]domain.VolatilityProfile,
) (domain.StrategyCandidate, bool) {
	forward, okF := g.params.InstrumentByType(domain.InstrumentForward)
	option, okO := g.params.InstrumentByType(domain.InstrumentOption)
	if !okF || !okO {
		return domain.StrategyCandidate{}, false
	}
	if forward.MaxTenorDays < need.HorizonDays || option.MaxTenorDays < need.HorizonDays {
		return domain.StrategyCandidate{}, false
	}

	const forwardPortion, optionPortion = 0.7, 0.3
	if need.Exposure*forwardPortion < forward.MinAmount || need.Exposure*optionPortion < option.MinAmount {
		return domain.StrategyCandidate{}, false
	}

	candidate := domain.StrategyCandidate{
		ID:         fmt.Sprintf("combo-forward-option-%s", need.Currency),
		Type:       domain.StrategyCombination,
		Currencies: []domain.Currency{need.Currency},
		Exposure:   need.Exposure,
		Allocations: []domain.InstrumentAllocation{
			{
				Instrument:    domain.InstrumentForward,
				Portion:       forwardPortion,
				CostBps:       forward.CostBps,
				Effectiveness: forward.Effectiveness,
			},
			{
				Instrument:    domain.InstrumentOption,
				Portion:       optionPortion,
				CostBps:       g.instrumentCostBps(option, need, profiles),
				Effectiveness: option.Effectiveness,
			},
		},
		HorizonDays:   need.HorizonDays,
		Effectiveness: forwardPortion*forward.Effectiveness + optionPortion*option.Effectiveness,
		Liquidity:     lowerLiquidity(forward.Liquidity, option.Liquidity),
	}
	candidate.ApplyRatio(g.clampRatio(need.RecommendedRatio))
	return candidate, true
}

// basket emits one swap-based candidate spanning all needs when there are
// at least BasketMinNeeds of them. The pooled notional earns the configured
// cost discount; effectiveness is reduced because the basket hedges the
// aggregate, not each currency exactly.
func (g *Generator) basket(needs []domain.HedgingNeed) (domain.StrategyCandidate, bool) {
	if len(needs) < g.params.BasketMinNeeds {
		return domain.StrategyCandidate{}, false
	}
	swap, ok := g.params.InstrumentByType(domain.InstrumentSwap)
	if !ok {
		return domain.StrategyCandidate{}, false
	}

	totalExposure := 0.0
	weightedRatio := 0.0
	horizon := 0
	currencies := make([]domain.Currency, 0, len(needs))
	for _, need := range needs {
		totalExposure += need.Exposure
		weightedRatio += need.RecommendedRatio * need.Exposure
		currencies = append(currencies, need.Currency)
		if need.HorizonDays > horizon {
			horizon = need.HorizonDays
		}
	}
	if totalExposure < swap.MinAmount || swap.MaxTenorDays < horizon {
		return domain.StrategyCandidate{}, false
	}

	candidate := domain.StrategyCandidate{
		ID:         "basket-swap",
		Type:       domain.StrategyBasket,
		Currencies: currencies,
		Exposure:   totalExposure,
		Allocations: []domain.InstrumentAllocation{{
			Instrument:    domain.InstrumentSwap,
			Portion:       1.0,
			CostBps:       swap.CostBps * (1 - g.params.BasketCostDiscount),
			Effectiveness: g.params.BasketEffectiveness,
		}},
		HorizonDays:   horizon,
		Effectiveness: g.params.BasketEffectiveness,
		Liquidity:     swap.Liquidity,
	}
	candidate.ApplyRatio(g.clampRatio(weightedRatio / totalExposure))
	return candidate, true
}

// naturalHedges pairs needs whose currencies are negatively correlated.
// The smaller exposure offsets part of the larger one, so the hedge ratio
// is min/max, there is no direct cost, and effectiveness is moderate.
func (g *Generator) naturalHedges(
	needs []domain.HedgingNeed,
	matrix *domain.CorrelationMatrix,
) []domain.StrategyCandidate {
	var out []domain.StrategyCandidate

	for i := 0; i < len(needs); i++ {
		for j := i + 1; j < len(needs); j++ {
			a, b := needs[i], needs[j]
			if !g.naturallyOffsetting(a.Currency, b.Currency, matrix) {
				continue
			}

			smaller, larger := a, b
			if smaller.Exposure > larger.Exposure {
				smaller, larger = larger, smaller
			}
			if larger.Exposure == 0 {
				continue
			}

			horizon := a.HorizonDays
			if b.HorizonDays > horizon {
				horizon = b.HorizonDays
			}

			out = append(out, domain.StrategyCandidate{
				ID:            fmt.Sprintf("natural-%s-%s", a.Currency, b.Currency),
				Type:          domain.StrategyNatural,
				Currencies:    []domain.Currency{a.Currency, b.Currency},
				Exposure:      larger.Exposure,
				HedgeRatio:    smaller.Exposure / larger.Exposure,
				HorizonDays:   horizon,
				Effectiveness: g.params.NaturalHedgeEffectiveness,
				Liquidity:     domain.LiquidityHigh,
			})
		}
	}

	return out
}

// naturallyOffsetting prefers the computed correlation matrix and only
// consults the hardcoded pair list when the matrix has no data for the pair
func (g *Generator) naturallyOffsetting(a, b domain.Currency, matrix *domain.CorrelationMatrix) bool {
	if corr, ok := matrix.Get(a, b); ok {
		return corr <= g.params.NaturalHedgeCorrelation
	}
	if a > b {
		a, b = b, a
	}
	return fallbackInverselyCorrelated[string(a)+"/"+string(b)]
}

// instrumentCostBps prices option-type instruments with the pricing
// provider; everything else uses the catalog's quoted basis points
func (g *Generator) instrumentCostBps(
	inst domain.HedgeInstrument,
	need domain.HedgingNeed,
	profiles map[domain.Currency]domain.VolatilityProfile,
) float64 {
	if inst.Type != domain.InstrumentOption {
		return inst.CostBps
	}
	premium := g.pricer.OptionPremiumBps(profiles[need.Currency].Annual, need.HorizonDays)
	if premium <= 0 {
		return inst.CostBps
	}
	return math.Max(inst.CostBps, premium)
}

// clampRatio silently bounds a ratio to the configured range
func (g *Generator) clampRatio(ratio float64) float64 {
	return formulas.Clamp(ratio, g.params.HedgeRatioMin, g.params.HedgeRatioMax)
}

// lowerLiquidity returns the less liquid of two tiers
func lowerLiquidity(a, b domain.LiquidityTier) domain.LiquidityTier {
	if a.Score() <= b.Score() {
		return a
	}
	return b
}
