package eval

import (
	"time"

	"github.com/google/uuid"

	"github.com/mannaalive/import-api/internal/models"
)

// ScenarioKind identifies one of the three canonical parameter perturbations.
type ScenarioKind string

const (
	ScenarioBase         ScenarioKind = "base"
	ScenarioConservative ScenarioKind = "conservative"
	ScenarioOptimistic   ScenarioKind = "optimistic"
)

// PillarStatus is the qualitative verdict for one viability pillar.
type PillarStatus string

const (
	StatusGreen   PillarStatus = "green"
	StatusYellow  PillarStatus = "yellow"
	StatusRed     PillarStatus = "red"
	StatusUnknown PillarStatus = "unknown"
)

// Decision is the engine's final verdict for a product.
type Decision string

const (
	DecisionApprove   Decision = "approve"
	DecisionReject    Decision = "reject"
	DecisionNeedsData Decision = "needs_data"
)

// Classification labels for the total score. Boundaries are fixed at 80/60/40.
const (
	ClassTopTier = "top tier"
	ClassViable  = "viable"
	ClassRisky   = "risky"
	ClassDiscard = "discard"
)

// TriageStatus describes what a product is missing before it can be decided.
type TriageStatus string

const (
	TriageReady           TriageStatus = "ready"
	TriageNeedsSimulation TriageStatus = "needs_simulation"
	TriageNeedsMarket     TriageStatus = "needs_market"
	TriageNeedsCosts      TriageStatus = "needs_costs"
)

// ScenarioResult is the fully computed cost/profit breakdown for one set of
// commercial assumptions. All monetary fields are rounded to 2 decimals,
// payback to 1. Produced fresh on every call, never mutated.
type ScenarioResult struct {
	Kind ScenarioKind `json:"kind"`
	Name string       `json:"name"`

	Quantity     int     `json:"quantity"`
	ExchangeRate float64 `json:"exchange_rate"`

	FobTotalUSD       float64 `json:"fob_total_usd"`
	FreightTotalUSD   float64 `json:"freight_total_usd"`
	InsuranceTotalUSD float64 `json:"insurance_total_usd"`
	CustomsValueUSD   float64 `json:"customs_value_usd"`

	EstimatedTotalCostUSD float64 `json:"estimated_total_cost_usd"`
	EstimatedTotalCostBRL float64 `json:"estimated_total_cost_brl"`
	UnitCostBRL           float64 `json:"unit_cost_brl"`

	TargetSalePriceBRL float64 `json:"target_sale_price_brl"`
	NetSalePriceBRL    float64 `json:"net_sale_price_brl"`

	ProfitUnitBRL  float64 `json:"profit_unit_brl"`
	ProfitTotalBRL float64 `json:"profit_total_brl"`

	ROIUnitPct  float64  `json:"roi_unit_pct"`
	ROITotalPct float64  `json:"roi_total_pct"`
	PaybackDays *float64 `json:"payback_days"`

	EstimatedMarginPct float64 `json:"estimated_margin_pct"`

	Approved bool   `json:"approved"`
	Reason   string `json:"reason,omitempty"`
}

// ScoreBreakdown is the multi-factor viability score with its sub-scores,
// supporting raw figures and decision-oriented justification bullets.
type ScoreBreakdown struct {
	TotalScore     int    `json:"total_score"`
	Classification string `json:"classification"`

	DemandScore      int `json:"demand_score"`
	CompetitionScore int `json:"competition_score"`
	MarginScore      int `json:"margin_score"`
	RiskScore        int `json:"risk_score"`

	// Supporting raw figures (nil when the input was absent).
	SalesPerDay         *int     `json:"sales_per_day"`
	SalesPerMonth       *int     `json:"sales_per_month"`
	Visits              *int     `json:"visits"`
	CompetitorCount     *int     `json:"competitor_count"`
	FullRatioPct        *float64 `json:"full_ratio_pct"`
	PriceAverageBRL     *float64 `json:"price_average_brl"`
	EstimatedMarginPct  *float64 `json:"estimated_margin_pct"`
	HasLatestSimulation bool     `json:"has_latest_simulation"`

	Reasons []string `json:"reasons"`
	Notes   []string `json:"notes,omitempty"`
}

// CompletenessItem is one entry of the fixed data-readiness checklist.
type CompletenessItem struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	IsComplete bool   `json:"is_complete"`
}

// CompletenessReport summarizes how much of the checklist is filled in.
type CompletenessReport struct {
	Percent int                `json:"percent"`
	Items   []CompletenessItem `json:"items"`
	Missing []string           `json:"missing"`
}

// Blocker is a hard stop; any blocker forces decision=reject regardless of
// how good the economics look.
type Blocker struct {
	Key    string `json:"key"`
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

// Metric is a labeled figure attached to a pillar for display purposes.
type Metric struct {
	Key   string   `json:"key"`
	Label string   `json:"label"`
	Value *float64 `json:"value"`
	Unit  string   `json:"unit,omitempty"`
	Help  string   `json:"help,omitempty"`
}

// PillarAssessment is the qualitative view of one viability dimension.
type PillarAssessment struct {
	Key        string       `json:"key"` // market | unit_economics | operations | risk
	Title      string       `json:"title"`
	Status     PillarStatus `json:"status"`
	Summary    string       `json:"summary"`
	NextAction string       `json:"next_action,omitempty"`
	Metrics    []Metric     `json:"metrics"`
}

// EvaluationHeader carries product identity and coarse presence flags.
type EvaluationHeader struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Category    string    `json:"category,omitempty"`

	HasMarketData     bool `json:"has_market_data"`
	HasRegulatoryCode bool `json:"has_regulatory_code"`
	HasSupplier       bool `json:"has_supplier"`
	HasDimensions     bool `json:"has_dimensions"`

	LatestDecision *models.ProductDecision `json:"latest_decision"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EvaluationResult is the full structured viability judgment for one product.
type EvaluationResult struct {
	Header       EvaluationHeader   `json:"header"`
	Completeness CompletenessReport `json:"completeness"`

	Decision       Decision `json:"decision"`
	DecisionReason string   `json:"decision_reason"`

	Score *ScoreBreakdown `json:"score"`

	Pillars   []PillarAssessment `json:"pillars"`
	Scenarios []ScenarioResult   `json:"scenarios"`

	Blockers []Blocker `json:"blockers"`
	Notes    []string  `json:"notes"`
}

// SimulationSummary is the slice of a persisted simulation embedded in a
// triage entry.
type SimulationSummary struct {
	ID        uuid.UUID `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Approved  bool      `json:"approved"`

	UnitCostBRL        float64 `json:"unit_cost_brl"`
	TargetSalePriceBRL float64 `json:"target_sale_price_brl"`
	EstimatedMarginPct float64 `json:"estimated_margin_pct"`
}

// TriageEntry is one row of the fleet-wide prioritization list.
type TriageEntry struct {
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	Category    string    `json:"category,omitempty"`
	CreatedAt   time.Time `json:"created_at"`

	FobPriceUSD  *float64 `json:"fob_price_usd"`
	FreightUSD   *float64 `json:"freight_usd"`
	InsuranceUSD *float64 `json:"insurance_usd"`

	HasFob              bool `json:"has_fob"`
	HasFreight          bool `json:"has_freight"`
	HasMarketData       bool `json:"has_market_data"`
	HasLatestSimulation bool `json:"has_latest_simulation"`

	Status       TriageStatus `json:"status"`
	NextAction   string       `json:"next_action"`
	PriorityRank int          `json:"priority_rank"` // lower = more urgent

	LastSimulation *SimulationSummary `json:"last_simulation"`
	Score          *ScoreBreakdown    `json:"score"`

	Alerts []string `json:"alerts"`
}

// EvaluationInput bundles the records a collaborator hands the engine for one
// evaluation. The engine never loads or navigates persistence on its own.
type EvaluationInput struct {
	Product          models.Product
	Regulatory       *models.RegulatoryCode
	Market           *models.MarketSnapshot
	LatestSimulation *models.ImportSimulation
	LatestDecision   *models.ProductDecision
}
