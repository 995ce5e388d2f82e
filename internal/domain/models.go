package domain

import (
	"sort"
	"strings"
	"time"
)

// Currency represents an ISO 4217 currency code
type Currency string

const (
	CurrencyEUR Currency = "EUR"
	CurrencyUSD Currency = "USD"
	CurrencyGBP Currency = "GBP"
	CurrencyJPY Currency = "JPY"
	CurrencyCHF Currency = "CHF"
	CurrencyAUD Currency = "AUD"
)

// AccountType classifies a portfolio account
type AccountType string

const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountInvestment AccountType = "investment"
)

// Account is a single balance held in one currency
type Account struct {
	Currency Currency    `json:"currency"`
	Balance  float64     `json:"balance"`
	Type     AccountType `json:"type"`
}

// Portfolio is the caller-supplied snapshot the risk pipeline consumes
type Portfolio struct {
	UserID       string    `json:"user_id"`
	BaseCurrency Currency  `json:"base_currency"`
	Accounts     []Account `json:"accounts"`
}

// CurrencyExposure is one foreign-currency position converted to base currency
type CurrencyExposure struct {
	Currency         Currency `json:"currency"`
	AmountBase       float64  `json:"amount_base"`       // Absolute exposure in base currency
	OriginalAmount   float64  `json:"original_amount"`   // Balance in the account currency
	ExchangeRate     float64  `json:"exchange_rate"`     // Rate used for conversion
	RelativeExposure float64  `json:"relative_exposure"` // Fraction of total foreign exposure
	Rank             int      `json:"rank"`              // 1 = largest exposure
}

// VolatilityProfile holds return volatility for one currency across horizons.
// Returns keeps the recent daily-return window so correlation and simulation
// can reuse it without refetching history.
type VolatilityProfile struct {
	Currency Currency  `json:"currency"`
	Daily    float64   `json:"daily"`
	Weekly   float64   `json:"weekly"`
	Monthly  float64   `json:"monthly"`
	Annual   float64   `json:"annual"`
	Trend    string    `json:"trend"` // rising, falling, stable
	Returns  []float64 `json:"-"`
	Fallback bool      `json:"fallback"` // True when history was unavailable and defaults were used
}

// CorrelationMatrix maps unordered currency pairs to Pearson correlation.
// The diagonal is implicitly 1 and lookups are symmetric.
type CorrelationMatrix struct {
	pairs map[string]float64
}

// NewCorrelationMatrix creates an empty correlation matrix
func NewCorrelationMatrix() *CorrelationMatrix {
	return &CorrelationMatrix{pairs: make(map[string]float64)}
}

func pairKey(a, b Currency) string {
	if a > b {
		a, b = b, a
	}
	return string(a) + "/" + string(b)
}

// Set stores the correlation for an unordered currency pair
func (m *CorrelationMatrix) Set(a, b Currency, corr float64) {
	if a == b {
		return
	}
	m.pairs[pairKey(a, b)] = corr
}

// Get returns the correlation for a pair. The diagonal is always 1.
// ok is false when the pair was never computed.
func (m *CorrelationMatrix) Get(a, b Currency) (corr float64, ok bool) {
	if a == b {
		return 1.0, true
	}
	corr, ok = m.pairs[pairKey(a, b)]
	return corr, ok
}

// Snapshot returns a copy of all stored pairs, keyed "AAA/BBB" with the
// currencies in lexical order
func (m *CorrelationMatrix) Snapshot() map[string]float64 {
	out := make(map[string]float64, len(m.pairs))
	for k, v := range m.pairs {
		out[k] = v
	}
	return out
}

// Pairs returns the stored pair keys in deterministic (sorted) order
func (m *CorrelationMatrix) Pairs() []string {
	keys := make([]string, 0, len(m.pairs))
	for k := range m.pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SplitPairKey splits a "AAA/BBB" pair key back into its currencies
func SplitPairKey(key string) (Currency, Currency) {
	parts := strings.SplitN(key, "/", 2)
	if len(parts) != 2 {
		return "", ""
	}
	return Currency(parts[0]), Currency(parts[1])
}

// VaRMethod identifies a Value-at-Risk methodology
type VaRMethod string

const (
	VaRHistorical VaRMethod = "historical"
	VaRParametric VaRMethod = "parametric"
	VaRMonteCarlo VaRMethod = "monte_carlo"
)

// VaRResult is one VaR figure for one method at one confidence level
type VaRResult struct {
	Method     VaRMethod `json:"method"`
	Confidence float64   `json:"confidence"` // e.g. 0.95
	Value      float64   `json:"value"`      // Loss in base currency, positive
}

// ConcentrationMetrics summarizes how concentrated the foreign exposure is
type ConcentrationMetrics struct {
	Herfindahl        float64    `json:"herfindahl"`
	MaxConcentration  float64    `json:"max_concentration"`
	MaxCurrency       Currency   `json:"max_currency"`
	Top3Concentration float64    `json:"top3_concentration"`
	Flagged           []Currency `json:"flagged"` // Exposures above the concentration threshold
}

// RiskFactorType distinguishes standalone from correlation-driven factors
type RiskFactorType string

const (
	FactorIndividual  RiskFactorType = "individual"
	FactorCorrelation RiskFactorType = "correlation"
)

// RiskFactor is one entry of the risk decomposition, ranked by |Contribution|
type RiskFactor struct {
	Type         RiskFactorType `json:"type"`
	Currencies   []Currency     `json:"currencies"` // One for individual, two for correlation
	Contribution float64        `json:"contribution"`
	Relative     float64        `json:"relative"` // Percent of total absolute contribution
	Correlation  float64        `json:"correlation,omitempty"`
}

// StressSeverity buckets stress losses relative to total exposure
type StressSeverity string

const (
	SeverityLow    StressSeverity = "low"
	SeverityMedium StressSeverity = "medium"
	SeverityHigh   StressSeverity = "high"
	SeveritySevere StressSeverity = "severe"
)

// StressResult is the outcome of one named historical stress scenario
type StressResult struct {
	Scenario    string               `json:"scenario"`
	Description string               `json:"description"`
	TotalLoss   float64              `json:"total_loss"`
	Severity    StressSeverity       `json:"severity"`
	Losses      map[Currency]float64 `json:"losses"`
}

// RiskAssessment is the full output of one risk calculation run.
// A new assessment supersedes the previous one for the same user; it is
// never mutated after creation.
type RiskAssessment struct {
	ID                string               `json:"id"`
	UserID            string               `json:"user_id"`
	Timestamp         time.Time            `json:"timestamp"`
	BaseCurrency      Currency             `json:"base_currency"`
	TotalExposure     float64              `json:"total_exposure"` // Sum of foreign exposures in base currency
	PortfolioValue    float64              `json:"portfolio_value"`
	Exposures         []CurrencyExposure   `json:"exposures"`
	VaR               []VaRResult          `json:"var"`
	ExpectedShortfall float64              `json:"expected_shortfall"`
	Concentration     ConcentrationMetrics `json:"concentration"`
	RiskFactors       []RiskFactor         `json:"risk_factors"`
	StressTests       []StressResult       `json:"stress_tests"`
	Correlations      map[string]float64   `json:"correlations"`
	RiskScore         float64              `json:"risk_score"` // Bounded [0,100]
	Recommendations   []string             `json:"recommendations"`
}

// VaRAt returns the VaR value for a method and confidence level, or 0 when absent
func (a *RiskAssessment) VaRAt(method VaRMethod, confidence float64) float64 {
	for _, v := range a.VaR {
		if v.Method == method && v.Confidence == confidence {
			return v.Value
		}
	}
	return 0
}

// HedgePriority orders hedging needs
type HedgePriority string

const (
	PriorityHigh   HedgePriority = "high"
	PriorityMedium HedgePriority = "medium"
	PriorityLow    HedgePriority = "low"
)

// order is used for sorting needs; lower sorts first
func (p HedgePriority) order() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	default:
		return 2
	}
}

// Before reports whether p sorts ahead of other
func (p HedgePriority) Before(other HedgePriority) bool {
	return p.order() < other.order()
}

// HedgingNeed flags one exposure that requires hedging
type HedgingNeed struct {
	Currency         Currency      `json:"currency"`
	Exposure         float64       `json:"exposure"`
	RelativeExposure float64       `json:"relative_exposure"`
	Priority         HedgePriority `json:"priority"`
	RiskContribution float64       `json:"risk_contribution"`
	AnnualVolatility float64       `json:"annual_volatility"`
	RecommendedRatio float64       `json:"recommended_ratio"` // In [0,1]
	HorizonDays      int           `json:"horizon_days"`
	Urgency          string        `json:"urgency"`
}

// InstrumentType identifies a hedging instrument class
type InstrumentType string

const (
	InstrumentForward InstrumentType = "forward"
	InstrumentOption  InstrumentType = "option"
	InstrumentSwap    InstrumentType = "swap"
	InstrumentCollar  InstrumentType = "collar"
)

// LiquidityTier grades how easily an instrument trades
type LiquidityTier string

const (
	LiquidityHigh   LiquidityTier = "high"
	LiquidityMedium LiquidityTier = "medium"
	LiquidityLow    LiquidityTier = "low"
)

// Score maps a liquidity tier to a [0,1] weight for strategy ranking
func (t LiquidityTier) Score() float64 {
	switch t {
	case LiquidityHigh:
		return 1.0
	case LiquidityMedium:
		return 0.6
	default:
		return 0.3
	}
}

// HedgeInstrument is one externally configured catalog entry
type HedgeInstrument struct {
	Type          InstrumentType `json:"type"`
	CostBps       float64        `json:"cost_bps"`
	Effectiveness float64        `json:"effectiveness"` // In [0,1]
	MinAmount     float64        `json:"min_amount"`
	MaxTenorDays  int            `json:"max_tenor_days"`
	Liquidity     LiquidityTier  `json:"liquidity"`
}

// StrategyType classifies hedge strategy candidates
type StrategyType string

const (
	StrategySingle      StrategyType = "single"
	StrategyCombination StrategyType = "combination"
	StrategyBasket      StrategyType = "basket"
	StrategyNatural     StrategyType = "natural"
)

// InstrumentAllocation is one instrument leg within a strategy candidate.
// Portion and CostBps are fixed at generation time; Amount and Cost are
// recomputed whenever the hedge ratio changes.
type InstrumentAllocation struct {
	Instrument    InstrumentType `json:"instrument"`
	Portion       float64        `json:"portion"` // Fraction of the hedged amount
	CostBps       float64        `json:"cost_bps"`
	Effectiveness float64        `json:"effectiveness"`
	Amount        float64        `json:"amount"`
	Cost          float64        `json:"cost"`
}

// StrategyCandidate is one hedge strategy under evaluation
type StrategyCandidate struct {
	ID            string                 `json:"id"`
	Type          StrategyType           `json:"type"`
	Currencies    []Currency             `json:"currencies"`
	Exposure      float64                `json:"exposure"`
	Allocations   []InstrumentAllocation `json:"allocations"`
	HedgeRatio    float64                `json:"hedge_ratio"`
	HorizonDays   int                    `json:"horizon_days"`
	TotalCost     float64                `json:"total_cost"`
	Effectiveness float64                `json:"effectiveness"`
	Liquidity     LiquidityTier          `json:"liquidity"`
	Analysis      *CostBenefitAnalysis   `json:"analysis,omitempty"`
	RankScore     float64                `json:"rank_score"`
}

// CostAt returns the direct instrument cost of hedging ratio×exposure
func (c *StrategyCandidate) CostAt(ratio float64) float64 {
	total := 0.0
	for _, a := range c.Allocations {
		total += c.Exposure * ratio * a.Portion * a.CostBps / 10000.0
	}
	return total
}

// ApplyRatio sets the hedge ratio and recomputes per-leg amounts and costs
func (c *StrategyCandidate) ApplyRatio(ratio float64) {
	c.HedgeRatio = ratio
	c.TotalCost = 0
	for i := range c.Allocations {
		a := &c.Allocations[i]
		a.Amount = c.Exposure * ratio * a.Portion
		a.Cost = a.Amount * a.CostBps / 10000.0
		c.TotalCost += a.Cost
	}
}

// ScenarioOutcome is one macro scenario evaluated in cost/benefit analysis
type ScenarioOutcome struct {
	Name          string  `json:"name"`
	Probability   float64 `json:"probability"`
	MarketMove    float64 `json:"market_move"` // Signed fractional move of the hedged currency
	UnhedgedLoss  float64 `json:"unhedged_loss"`
	HedgedLoss    float64 `json:"hedged_loss"`
	HedgeCost     float64 `json:"hedge_cost"`
	NetBenefit    float64 `json:"net_benefit"`
}

// CostBenefitAnalysis prices a candidate's costs against its benefits
type CostBenefitAnalysis struct {
	DirectCost          float64           `json:"direct_cost"`
	OpportunityCost     float64           `json:"opportunity_cost"`
	TransactionCost     float64           `json:"transaction_cost"`
	TotalCost           float64           `json:"total_cost"`
	RiskReduction       float64           `json:"risk_reduction"`
	VolatilityReduction float64           `json:"volatility_reduction"`
	DownsideProtection  float64           `json:"downside_protection"`
	TotalBenefit        float64           `json:"total_benefit"`
	BenefitCostRatio    float64           `json:"benefit_cost_ratio"`
	HedgeEffectiveness  float64           `json:"hedge_effectiveness"`
	Scenarios           []ScenarioOutcome `json:"scenarios"`
}

// PlanPhase is one stage of a hedge rollout
type PlanPhase struct {
	Name         string   `json:"name"`
	DurationDays int      `json:"duration_days"`
	Tasks        []string `json:"tasks"`
	Deliverables []string `json:"deliverables"`
}

// ImplementationPlan is the phased rollout for the top-ranked strategy
type ImplementationPlan struct {
	StrategyID        string      `json:"strategy_id"`
	Phases            []PlanPhase `json:"phases"`
	Prerequisites     []string    `json:"prerequisites"`
	Risks             []string    `json:"risks"`
	MonitoringMetrics []string    `json:"monitoring_metrics"`
}

// RecommendationBundle is the full hedging output returned to the caller
type RecommendationBundle struct {
	UserID     string              `json:"user_id"`
	Needs      []HedgingNeed       `json:"needs"`
	Strategies []StrategyCandidate `json:"strategies"` // Ranked best-first
	Plan       *ImplementationPlan `json:"plan,omitempty"`
}
