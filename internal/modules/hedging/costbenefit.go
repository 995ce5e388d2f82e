package hedging

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/fx-sentinel/internal/config"
	"github.com/aristath/fx-sentinel/internal/domain"
)

// macroScenario is one fixed cost/benefit scenario. Probabilities across
// the set sum to 1.
type macroScenario struct {
	name        string
	probability float64
	move        float64 // Signed fractional currency move
}

var macroScenarios = []macroScenario{
	{name: "base_case", probability: 0.50, move: 0.0},
	{name: "favorable", probability: 0.20, move: 0.05},
	{name: "adverse", probability: 0.25, move: -0.10},
	{name: "extreme_adverse", probability: 0.05, move: -0.25},
}

// Analyzer prices each candidate's costs against its risk benefits and
// ranks candidates by a weighted blend.
type Analyzer struct {
	params config.RiskParams
	log    zerolog.Logger
}

// NewAnalyzer creates a new cost/benefit analyzer
func NewAnalyzer(params config.RiskParams, log zerolog.Logger) *Analyzer {
	return &Analyzer{
		params: params,
		log:    log.With().Str("component", "cost_benefit").Logger(),
	}
}

// Analyze evaluates one candidate at its current hedge ratio. The result is
// a pure function of the candidate, the needs it covers and the assessment;
// re-analyzing an unchanged candidate reproduces the same figures.
func (a *Analyzer) Analyze(
	candidate *domain.StrategyCandidate,
	needIndex map[domain.Currency]domain.HedgingNeed,
	assessment *domain.RiskAssessment,
) domain.CostBenefitAnalysis {
	ratio := candidate.HedgeRatio
	eff := candidate.Effectiveness
	hedged := candidate.Exposure * ratio

	// Aggregate the covered needs; multi-currency candidates hedge several
	riskContribution := 0.0
	relativeCovered := 0.0
	weightedVol := 0.0
	coveredExposure := 0.0
	for _, currency := range candidate.Currencies {
		need, ok := needIndex[currency]
		if !ok {
			continue
		}
		riskContribution += need.RiskContribution
		relativeCovered += need.RelativeExposure
		weightedVol += need.AnnualVolatility * need.Exposure
		coveredExposure += need.Exposure
	}
	if coveredExposure > 0 {
		weightedVol /= coveredExposure
	}

	analysis := domain.CostBenefitAnalysis{
		DirectCost:         candidate.TotalCost,
		OpportunityCost:    candidate.Exposure * a.params.OpportunityCostRate * float64(candidate.HorizonDays) / 365.0,
		HedgeEffectiveness: eff,
	}
	if len(candidate.Allocations) > 0 {
		analysis.TransactionCost = a.params.TransactionFeeFixed*float64(len(candidate.Allocations)) +
			hedged*a.params.TransactionFeeBps/10000.0
	}
	analysis.TotalCost = analysis.DirectCost + analysis.OpportunityCost + analysis.TransactionCost

	analysis.RiskReduction = riskContribution * ratio * eff
	analysis.VolatilityReduction = candidate.Exposure * weightedVol * ratio * eff
	analysis.DownsideProtection = assessment.VaRAt(domain.VaRParametric, 0.95) * relativeCovered * ratio * eff
	analysis.TotalBenefit = analysis.RiskReduction + analysis.VolatilityReduction + analysis.DownsideProtection

	// +1 keeps the ratio defined for zero-cost strategies
	analysis.BenefitCostRatio = analysis.TotalBenefit / (analysis.TotalCost + 1)

	analysis.Scenarios = a.scenarios(candidate, analysis.TotalCost)

	return analysis
}

// scenarios evaluates the fixed macro scenario set for a candidate
func (a *Analyzer) scenarios(candidate *domain.StrategyCandidate, totalCost float64) []domain.ScenarioOutcome {
	out := make([]domain.ScenarioOutcome, 0, len(macroScenarios))
	protection := candidate.HedgeRatio * candidate.Effectiveness

	for _, s := range macroScenarios {
		unhedged := 0.0
		if s.move < 0 {
			unhedged = candidate.Exposure * math.Abs(s.move)
		}
		hedgedLoss := unhedged * (1 - protection)

		out = append(out, domain.ScenarioOutcome{
			Name:         s.name,
			Probability:  s.probability,
			MarketMove:   s.move,
			UnhedgedLoss: unhedged,
			HedgedLoss:   hedgedLoss,
			HedgeCost:    totalCost,
			NetBenefit:   unhedged - hedgedLoss - totalCost,
		})
	}
	return out
}

// rankScore blends benefit-cost ratio, absolute risk reduction, hedge
// effectiveness, liquidity and a simplicity bonus for single-instrument
// strategies into one deterministic ranking score
func (a *Analyzer) rankScore(candidate *domain.StrategyCandidate) float64 {
	analysis := candidate.Analysis

	bcrScore := math.Min(1, analysis.BenefitCostRatio/3)
	riskScore := 0.0
	if candidate.Exposure > 0 {
		riskScore = math.Min(1, analysis.RiskReduction/(candidate.Exposure*0.01))
	}
	simplicity := 0.0
	if candidate.Type == domain.StrategySingle {
		simplicity = 1.0
	}

	return 0.30*bcrScore +
		0.25*riskScore +
		0.20*analysis.HedgeEffectiveness +
		0.15*candidate.Liquidity.Score() +
		0.10*simplicity
}

// Rank analyzes every candidate against the needs and assessment and
// returns them best-first. The sort is stable, so re-ranking an unchanged,
// already-ranked list yields the same order; near-exact score ties break on
// raw risk-reduction magnitude.
func (a *Analyzer) Rank(
	candidates []domain.StrategyCandidate,
	needs []domain.HedgingNeed,
	assessment *domain.RiskAssessment,
) []domain.StrategyCandidate {
	needIndex := make(map[domain.Currency]domain.HedgingNeed, len(needs))
	for _, need := range needs {
		needIndex[need.Currency] = need
	}

	ranked := make([]domain.StrategyCandidate, len(candidates))
	copy(ranked, candidates)
	for i := range ranked {
		analysis := a.Analyze(&ranked[i], needIndex, assessment)
		ranked[i].Analysis = &analysis
		ranked[i].RankScore = a.rankScore(&ranked[i])
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if math.Abs(ranked[i].RankScore-ranked[j].RankScore) > 1e-9 {
			return ranked[i].RankScore > ranked[j].RankScore
		}
		return ranked[i].Analysis.RiskReduction > ranked[j].Analysis.RiskReduction
	})

	return ranked
}
