package hedging

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/fx-sentinel/internal/config"
	"github.com/aristath/fx-sentinel/internal/domain"
)

// NeedAnalyzer flags which exposures require hedging, with priority,
// urgency, a recommended starting hedge ratio and a time horizon.
type NeedAnalyzer struct {
	params config.RiskParams
	log    zerolog.Logger
}

// NewNeedAnalyzer creates a new hedging-need analyzer
func NewNeedAnalyzer(params config.RiskParams, log zerolog.Logger) *NeedAnalyzer {
	return &NeedAnalyzer{
		params: params,
		log:    log.With().Str("component", "hedging_needs").Logger(),
	}
}

// Analyze evaluates each exposure against the priority ladder:
//
//	concentration > 25%          -> high,   ratio min(0.8, 2*concentration), 90d
//	annual volatility > 20%      -> medium, ratio min(0.6, 2*volatility),   180d
//	concentration or vol > 15%   -> low,    ratio min(0.4, 1.5*max(c,v)),   365d
//
// Exposures below every threshold need no hedge. The ladder checks strictly
// greater-than, so an exposure at exactly 25% concentration falls through to
// the next branch. Needs are sorted by priority, then risk contribution.
func (a *NeedAnalyzer) Analyze(
	assessment *domain.RiskAssessment,
	profiles map[domain.Currency]domain.VolatilityProfile,
) []domain.HedgingNeed {
	var needs []domain.HedgingNeed

	for _, exp := range assessment.Exposures {
		concentration := exp.RelativeExposure
		vol := profiles[exp.Currency].Annual

		need := domain.HedgingNeed{
			Currency:         exp.Currency,
			Exposure:         exp.AmountBase,
			RelativeExposure: concentration,
			RiskContribution: riskContribution(assessment, exp.Currency),
			AnnualVolatility: vol,
		}

		switch {
		case concentration >= a.params.ConcentrationThreshold:
			need.Priority = domain.PriorityHigh
			need.RecommendedRatio = math.Min(0.8, 2*concentration)
			need.HorizonDays = 90
			need.Urgency = "immediate"
		case vol > a.params.HighVolatilityThreshold:
			need.Priority = domain.PriorityMedium
			need.RecommendedRatio = math.Min(0.6, 2*vol)
			need.HorizonDays = 180
			need.Urgency = "within_30_days"
		case concentration > a.params.LowConcentrationThreshold || vol > a.params.LowVolatilityThreshold:
			need.Priority = domain.PriorityLow
			need.RecommendedRatio = math.Min(0.4, 1.5*math.Max(concentration, vol))
			need.HorizonDays = 365
			need.Urgency = "opportunistic"
		default:
			continue
		}

		needs = append(needs, need)
	}

	sort.SliceStable(needs, func(i, j int) bool {
		if needs[i].Priority != needs[j].Priority {
			return needs[i].Priority.Before(needs[j].Priority)
		}
		return needs[i].RiskContribution > needs[j].RiskContribution
	})

	a.log.Debug().
		Int("exposures", len(assessment.Exposures)).
		Int("needs", len(needs)).
		Msg("Hedging needs analyzed")

	return needs
}

// riskContribution looks up the currency's individual risk factor
func riskContribution(assessment *domain.RiskAssessment, currency domain.Currency) float64 {
	for _, f := range assessment.RiskFactors {
		if f.Type == domain.FactorIndividual && len(f.Currencies) == 1 && f.Currencies[0] == currency {
			return f.Contribution
		}
	}
	return 0
}
