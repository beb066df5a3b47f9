package eval

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mannaalive/import-api/internal/models"
)

// Engine is the product viability evaluation engine. It is stateless apart
// from its configuration; every method is a pure function of the records the
// caller supplies, so concurrent use needs no coordination.
type Engine struct {
	cfg    Config
	scores *ScoreEngine
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg, scores: NewScoreEngine()}
}

func (e *Engine) Config() Config {
	return e.cfg
}

// Evaluate turns one product's records into the full structured viability
// judgment: completeness, three scenarios, blockers, pillars, score and the
// final decision.
func (e *Engine) Evaluate(in EvaluationInput) EvaluationResult {
	p := in.Product
	hasMarketData := in.Market != nil
	hasDimensions := HasDimensions(p)

	completeness := EvaluateCompleteness(p, hasMarketData)

	baseline := BaselineFrom(p, in.Market, in.LatestSimulation, e.cfg)
	scenarios := BuildScenarios(baseline, e.cfg)
	base, conservative := scenarios[0], scenarios[1]

	blockers, notes := DetectBlockers(p, in.Regulatory)

	pillars := AssessPillars(PillarInput{
		Product:       p,
		Market:        in.Market,
		Base:          base,
		Conservative:  conservative,
		Blockers:      blockers,
		HasDimensions: hasDimensions,
		FobUnitUSD:    baseline.FobUnitUSD,
	})

	decision, decisionReason := Decide(blockers, hasMarketData, baseline.TargetSalePriceBRL, baseline.FobUnitUSD, conservative)

	allNotes := make([]string, 0, len(notes)+3)
	allNotes = append(allNotes, "Current assumption: estimated total cost ≈ customs value × 2 (simplification).")
	allNotes = append(allNotes, notes...)
	if p.RegulatoryCodeID == nil {
		allNotes = append(allNotes, "Without a regulatory code, taxes and compliance are underestimated.")
	}
	if !hasMarketData {
		allNotes = append(allNotes, "Without market data, the demand/competition assessment is inconclusive.")
	}

	// Score failure degrades to a nil section, never aborts an evaluation.
	var score *ScoreBreakdown
	if b, err := e.scores.Compute(ScoreInput{Product: p, Market: in.Market, LatestSimulation: in.LatestSimulation}); err == nil {
		score = &b
	}

	return EvaluationResult{
		Header: EvaluationHeader{
			ProductID:   p.ID,
			ProductName: p.Name,
			Category:    p.Category,

			HasMarketData:     hasMarketData,
			HasRegulatoryCode: p.RegulatoryCodeID != nil,
			HasSupplier:       p.SupplierID != nil,
			HasDimensions:     hasDimensions,

			LatestDecision: in.LatestDecision,

			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		},
		Completeness: completeness,

		Decision:       decision,
		DecisionReason: decisionReason,

		Score: score,

		Pillars:   pillars,
		Scenarios: scenarios,

		Blockers: blockers,
		Notes:    allNotes,
	}
}

// Score computes the standalone score breakdown for one product.
func (e *Engine) Score(in ScoreInput) (ScoreBreakdown, error) {
	return e.scores.Compute(in)
}

// SimulationRequest carries the caller-supplied assumptions for a persisted
// simulation run. Freight/insurance totals default to the product's unit
// rates × quantity when nil.
type SimulationRequest struct {
	Quantity           int      `json:"quantity"`
	ExchangeRate       float64  `json:"exchange_rate"`
	TargetSalePriceBRL float64  `json:"target_sale_price_brl"`
	FreightTotalUSD    *float64 `json:"freight_total_usd"`
	InsuranceTotalUSD  *float64 `json:"insurance_total_usd"`
}

var (
	ErrMissingFob       = errors.New("product has no FOB price")
	ErrInvalidAssumption = errors.New("quantity and exchange rate must be positive")
)

// SimulateImport runs the cost model once with explicit assumptions and
// shapes the result as a persistable simulation row. Unlike the evaluation's
// conservative rule, the persisted variant always checks the minimum margin,
// and all failing reasons are reported together.
func (e *Engine) SimulateImport(p models.Product, req SimulationRequest) (models.ImportSimulation, error) {
	if p.FobPriceUSD == nil {
		return models.ImportSimulation{}, ErrMissingFob
	}
	if req.Quantity <= 0 || req.ExchangeRate <= 0 {
		return models.ImportSimulation{}, ErrInvalidAssumption
	}

	freightTotal := floatOrZero(p.FreightUSD) * float64(req.Quantity)
	if req.FreightTotalUSD != nil {
		freightTotal = *req.FreightTotalUSD
	}
	insuranceTotal := floatOrZero(p.InsuranceUSD) * float64(req.Quantity)
	if req.InsuranceTotalUSD != nil {
		insuranceTotal = *req.InsuranceTotalUSD
	}

	res := CalculateScenario(ScenarioParams{
		Kind:               ScenarioBase,
		Name:               "Simulation",
		Quantity:           req.Quantity,
		ExchangeRate:       req.ExchangeRate,
		FobUnitUSD:         *p.FobPriceUSD,
		FreightTotalUSD:    freightTotal,
		InsuranceTotalUSD:  insuranceTotal,
		TargetSalePriceBRL: req.TargetSalePriceBRL,
	}, e.cfg)

	approved := true
	var reasons []string
	if res.CustomsValueUSD > e.cfg.MaxCustomsValueUSD {
		approved = false
		reasons = append(reasons, fmt.Sprintf("Exceeds the %.0f USD customs value limit per shipment.", e.cfg.MaxCustomsValueUSD))
	}
	if res.EstimatedMarginPct < e.cfg.MinConservativeMarginPct {
		approved = false
		reasons = append(reasons, fmt.Sprintf("Margin below %.0f%%.", e.cfg.MinConservativeMarginPct))
	}
	reason := "Approved under the configured criteria."
	if len(reasons) > 0 {
		reason = strings.Join(reasons, " ")
	}

	return models.ImportSimulation{
		ProductID:    p.ID,
		Quantity:     req.Quantity,
		ExchangeRate: req.ExchangeRate,

		FobTotalUSD:       res.FobTotalUSD,
		FreightTotalUSD:   res.FreightTotalUSD,
		InsuranceTotalUSD: res.InsuranceTotalUSD,
		CustomsValueUSD:   res.CustomsValueUSD,

		EstimatedTotalCostUSD: res.EstimatedTotalCostUSD,
		EstimatedTotalCostBRL: res.EstimatedTotalCostBRL,
		UnitCostBRL:           res.UnitCostBRL,

		TargetSalePriceBRL: res.TargetSalePriceBRL,
		EstimatedMarginPct: res.EstimatedMarginPct,

		Approved: approved,
		Reason:   reason,
	}, nil
}
