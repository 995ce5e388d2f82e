package hedging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/fx-sentinel/internal/config"
	"github.com/aristath/fx-sentinel/internal/domain"
)

func testPlanner() *Planner {
	return NewPlanner(config.DefaultRiskParams())
}

func TestPlanPhases(t *testing.T) {
	planner := testPlanner()

	candidate := forwardCandidate(100000)
	plan := planner.Plan(candidate)

	assert.Equal(t, candidate.ID, plan.StrategyID)
	require.Len(t, plan.Phases, 3)

	assert.Equal(t, "preparation", plan.Phases[0].Name)
	assert.Equal(t, 2, plan.Phases[0].DurationDays)
	assert.Equal(t, "initial_execution", plan.Phases[1].Name)
	assert.Equal(t, 1, plan.Phases[1].DurationDays)
	assert.Equal(t, "monitoring", plan.Phases[2].Name)
	// Monitoring runs for the hedge horizon
	assert.Equal(t, candidate.HorizonDays, plan.Phases[2].DurationDays)

	for _, phase := range plan.Phases {
		assert.NotEmpty(t, phase.Tasks)
		assert.NotEmpty(t, phase.Deliverables)
	}
	assert.NotEmpty(t, plan.MonitoringMetrics)
}

func TestPlanPrerequisitesForSwap(t *testing.T) {
	planner := testPlanner()

	candidate := &domain.StrategyCandidate{
		ID:       "basket-swap",
		Type:     domain.StrategyBasket,
		Exposure: 300000,
		Allocations: []domain.InstrumentAllocation{
			{Instrument: domain.InstrumentSwap, Portion: 1.0},
		},
		HedgeRatio:  0.6,
		HorizonDays: 365,
	}

	plan := planner.Plan(candidate)

	assert.Contains(t, plan.Prerequisites, "ISDA master agreement in place")
	// 180k hedged notional is above the credit-line threshold
	found := false
	for _, p := range plan.Prerequisites {
		if len(p) > 11 && p[:11] == "Credit line" {
			found = true
		}
	}
	assert.True(t, found, "expected a credit-line prerequisite, got %v", plan.Prerequisites)
}

func TestPlanPrerequisitesForOption(t *testing.T) {
	planner := testPlanner()

	candidate := &domain.StrategyCandidate{
		ID:       "single-option-USD",
		Type:     domain.StrategySingle,
		Exposure: 50000,
		Allocations: []domain.InstrumentAllocation{
			{Instrument: domain.InstrumentOption, Portion: 1.0},
		},
		HedgeRatio:  0.5,
		HorizonDays: 90,
	}

	plan := planner.Plan(candidate)
	assert.Contains(t, plan.Prerequisites, "Options trading approval on the account")
}

func TestPlanRisksForNaturalHedge(t *testing.T) {
	planner := testPlanner()

	candidate := &domain.StrategyCandidate{
		ID:          "natural-USD-JPY",
		Type:        domain.StrategyNatural,
		Exposure:    80000,
		HedgeRatio:  0.625,
		HorizonDays: 90,
		Liquidity:   domain.LiquidityHigh,
	}

	plan := planner.Plan(candidate)

	found := false
	for _, r := range plan.Risks {
		if r == "The offsetting correlation may weaken under stress" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestPlanPrerequisitesDeduplicated(t *testing.T) {
	planner := testPlanner()

	candidate := &domain.StrategyCandidate{
		ID:       "combo-forward-option-USD",
		Type:     domain.StrategyCombination,
		Exposure: 50000,
		Allocations: []domain.InstrumentAllocation{
			{Instrument: domain.InstrumentOption, Portion: 0.5},
			{Instrument: domain.InstrumentCollar, Portion: 0.5},
		},
		HedgeRatio:  0.5,
		HorizonDays: 90,
	}

	plan := planner.Plan(candidate)

	count := 0
	for _, p := range plan.Prerequisites {
		if p == "Options trading approval on the account" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
