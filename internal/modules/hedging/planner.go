package hedging

import (
	"fmt"

	"github.com/aristath/fx-sentinel/internal/config"
	"github.com/aristath/fx-sentinel/internal/domain"
)

// Planner turns the top-ranked strategy into a phased rollout
type Planner struct {
	params config.RiskParams
}

// NewPlanner creates a new implementation planner
func NewPlanner(params config.RiskParams) *Planner {
	return &Planner{params: params}
}

// Plan builds the three-phase rollout for a candidate. Phase durations are
// fixed except monitoring, which runs for the hedge horizon.
func (p *Planner) Plan(candidate *domain.StrategyCandidate) *domain.ImplementationPlan {
	plan := &domain.ImplementationPlan{
		StrategyID: candidate.ID,
		Phases: []domain.PlanPhase{
			{
				Name:         "preparation",
				DurationDays: 2,
				Tasks: []string{
					"Confirm current exposure amounts against latest balances",
					"Obtain dealer quotes for each instrument leg",
					"Verify counterparty limits and documentation",
				},
				Deliverables: []string{
					"Executed quote comparison",
					"Approved trade tickets",
				},
			},
			{
				Name:         "initial_execution",
				DurationDays: 1,
				Tasks: []string{
					"Execute all instrument legs at quoted levels",
					"Record booked rates and fees",
					"Reconcile booked notionals against the target hedge ratio",
				},
				Deliverables: []string{
					"Trade confirmations",
					"Booked hedge position summary",
				},
			},
			{
				Name:         "monitoring",
				DurationDays: candidate.HorizonDays,
				Tasks: []string{
					"Track hedge effectiveness against realized currency moves",
					"Review exposure drift and rebalance when material",
					"Reassess ahead of instrument expiry",
				},
				Deliverables: []string{
					"Periodic effectiveness reports",
					"Rollover or unwind decision",
				},
			},
		},
		Prerequisites: p.prerequisites(candidate),
		Risks:         p.risks(candidate),
		MonitoringMetrics: []string{
			"Hedge effectiveness ratio",
			"Mark-to-market P&L of hedge positions",
			"Basis between hedge instrument and underlying exposure",
			"Correlation stability across hedged currencies",
		},
	}
	return plan
}

func (p *Planner) prerequisites(candidate *domain.StrategyCandidate) []string {
	prereqs := []string{"Active trading agreement with an FX counterparty"}

	hedged := candidate.Exposure * candidate.HedgeRatio
	if hedged > p.params.CombinationSizeThreshold {
		prereqs = append(prereqs, fmt.Sprintf("Credit line covering a %.0f notional hedge", hedged))
	}
	for _, a := range candidate.Allocations {
		switch a.Instrument {
		case domain.InstrumentOption, domain.InstrumentCollar:
			prereqs = append(prereqs, "Options trading approval on the account")
		case domain.InstrumentSwap:
			prereqs = append(prereqs, "ISDA master agreement in place")
		}
	}
	if candidate.Type == domain.StrategyNatural {
		prereqs = append(prereqs, "Ability to rebalance holdings across both currencies")
	}
	return dedupe(prereqs)
}

func (p *Planner) risks(candidate *domain.StrategyCandidate) []string {
	risks := []string{
		"Exposure may drift from the hedged notional before expiry",
		"Counterparty default on unsettled legs",
	}
	switch candidate.Type {
	case domain.StrategyCombination, domain.StrategyBasket:
		risks = append(risks, "Legs may fill at different levels, leaving residual exposure")
	case domain.StrategyNatural:
		risks = append(risks, "The offsetting correlation may weaken under stress")
	}
	if candidate.Liquidity != domain.LiquidityHigh {
		risks = append(risks, "Unwinding before expiry may incur a wide spread")
	}
	return risks
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, s := range items {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
