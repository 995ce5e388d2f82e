package hedging

import (
	"context"
	"math"

	"github.com/rs/zerolog"

	"github.com/aristath/fx-sentinel/internal/config"
	"github.com/aristath/fx-sentinel/internal/domain"
	"github.com/aristath/fx-sentinel/pkg/formulas"
)

// Optimizer tunes each candidate's hedge ratio to maximize a cost/risk
// utility. The utility is nonconvex in general, so the search is a coarse
// grid pass refined by finite-difference gradient ascent.
type Optimizer struct {
	params config.RiskParams
	log    zerolog.Logger
}

// NewOptimizer creates a new hedge-ratio optimizer
func NewOptimizer(params config.RiskParams, log zerolog.Logger) *Optimizer {
	return &Optimizer{
		params: params,
		log:    log.With().Str("component", "hedge_optimizer").Logger(),
	}
}

// utility scores a hedge ratio for a candidate:
//
//	0.6*riskReduction + 0.3*costScore + 0.1*effectiveness - moderation*|ratio-0.5|
//
// riskReduction is the hedged fraction of the exposure's risk, costScore is
// the direct cost normalized against 1% of exposure and capped, and the
// moderation term nudges the search away from extreme ratios.
func (o *Optimizer) utility(candidate *domain.StrategyCandidate, ratio float64) float64 {
	riskReduction := ratio * candidate.Effectiveness

	costScore := 1.0
	if candidate.Exposure > 0 {
		normalized := candidate.CostAt(ratio) / (candidate.Exposure * 0.01)
		costScore = 1 - math.Min(1, normalized)
	}

	return 0.6*riskReduction +
		0.3*costScore +
		0.1*candidate.Effectiveness -
		o.params.RatioModeration*math.Abs(ratio-0.5)
}

// Optimize searches the configured ratio range for the best utility and
// applies the winning ratio to the candidate.
//
// Natural hedges are skipped: their ratio is fixed by the offsetting
// balances, not chosen.
//
// The search never fails. Hitting the iteration cap before the convergence
// threshold simply returns the best ratio seen, and every returned ratio is
// clamped inside [HedgeRatioMin, HedgeRatioMax]. A cancelled context also
// returns the best ratio found so far.
func (o *Optimizer) Optimize(ctx context.Context, candidate *domain.StrategyCandidate) float64 {
	if candidate.Type == domain.StrategyNatural {
		return candidate.HedgeRatio
	}

	lo, hi := o.params.HedgeRatioMin, o.params.HedgeRatioMax

	// Coarse grid pass
	bestRatio := lo
	bestScore := math.Inf(-1)
	step := o.params.GridStep
	if step <= 0 {
		step = 0.1
	}
	for ratio := lo; ratio <= hi+1e-9; ratio += step {
		r := formulas.Clamp(ratio, lo, hi)
		if score := o.utility(candidate, r); score > bestScore {
			bestScore = score
			bestRatio = r
		}
	}

	// Local refinement by gradient ascent from the grid winner
	eps := o.params.GradientEpsilon
	ratio := bestRatio
	for iter := 0; iter < o.params.MaxIterations; iter++ {
		if ctx.Err() != nil {
			break
		}

		up := o.utility(candidate, formulas.Clamp(ratio+eps, lo, hi))
		down := o.utility(candidate, formulas.Clamp(ratio-eps, lo, hi))
		gradient := (up - down) / (2 * eps)

		next := formulas.Clamp(ratio+o.params.LearningRate*gradient, lo, hi)
		if score := o.utility(candidate, next); score > bestScore {
			bestScore = score
			bestRatio = next
		}

		if math.Abs(next-ratio) < o.params.ConvergenceThreshold {
			break
		}
		ratio = next
	}

	candidate.ApplyRatio(bestRatio)
	return bestRatio
}
