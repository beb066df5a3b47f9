package eval

import (
	"fmt"
	"math"

	"github.com/mannaalive/import-api/internal/models"
)

// ScenarioParams is one set of commercial assumptions for the cost model.
type ScenarioParams struct {
	Kind ScenarioKind
	Name string

	Quantity     int
	ExchangeRate float64 // BRL per USD

	FobUnitUSD        float64
	FreightTotalUSD   float64
	InsuranceTotalUSD float64

	TargetSalePriceBRL float64

	// SalesPerDay is used only for payback estimation; 0 means unknown.
	SalesPerDay float64
}

// CalculateScenario runs the landed-cost model for one set of assumptions.
// It is a pure function: same inputs, same (rounded) outputs.
//
// Cost heuristic: estimated total cost ≈ customs value × 2. This deliberately
// coarse approximation of duties+logistics+handling is the same rule the
// persisted simulations use; changing it would break comparisons against
// historical runs.
func CalculateScenario(p ScenarioParams, cfg Config) ScenarioResult {
	fobTotal := p.FobUnitUSD * float64(p.Quantity)
	customsValue := fobTotal + p.FreightTotalUSD + p.InsuranceTotalUSD

	estimatedTotalCostUSD := customsValue * 2.0
	estimatedTotalCostBRL := estimatedTotalCostUSD * p.ExchangeRate

	// Degenerate quantity collapses to a single-unit lot instead of dividing
	// by zero; margin/ROI clamping below keeps the verdict punitive.
	unitCostBRL := estimatedTotalCostBRL
	if p.Quantity > 0 {
		unitCostBRL = estimatedTotalCostBRL / float64(p.Quantity)
	}

	totalFeePct := cfg.MarketplaceFeePct + cfg.AdsPct
	netSalePriceBRL := p.TargetSalePriceBRL * (1 - totalFeePct)

	profitUnitBRL := netSalePriceBRL - unitCostBRL - cfg.PerUnitLocalCostBRL
	profitTotalBRL := profitUnitBRL * float64(p.Quantity)

	capitalTotalBRL := unitCostBRL * float64(p.Quantity)
	roiUnitPct := -100.0
	if unitCostBRL > 0 {
		roiUnitPct = profitUnitBRL / unitCostBRL * 100
	}
	roiTotalPct := -100.0
	if capitalTotalBRL > 0 {
		roiTotalPct = profitTotalBRL / capitalTotalBRL * 100
	}

	var paybackDays *float64
	if p.SalesPerDay > 0 && profitUnitBRL > 0 {
		days := round1(capitalTotalBRL / (p.SalesPerDay * profitUnitBRL))
		paybackDays = &days
	}

	marginPct := -100.0
	if p.TargetSalePriceBRL > 0 {
		marginPct = (p.TargetSalePriceBRL - unitCostBRL) / p.TargetSalePriceBRL * 100
	}

	approved := true
	reason := ""
	if customsValue > cfg.MaxCustomsValueUSD {
		approved = false
		reason = fmt.Sprintf("customs value above %.0f USD limit", cfg.MaxCustomsValueUSD)
	} else if p.Kind == ScenarioConservative && marginPct < cfg.MinConservativeMarginPct {
		approved = false
		reason = fmt.Sprintf("margin below %.0f%% conservative minimum", cfg.MinConservativeMarginPct)
	}

	return ScenarioResult{
		Kind: p.Kind,
		Name: p.Name,

		Quantity:     p.Quantity,
		ExchangeRate: p.ExchangeRate,

		FobTotalUSD:       round2(fobTotal),
		FreightTotalUSD:   round2(p.FreightTotalUSD),
		InsuranceTotalUSD: round2(p.InsuranceTotalUSD),
		CustomsValueUSD:   round2(customsValue),

		EstimatedTotalCostUSD: round2(estimatedTotalCostUSD),
		EstimatedTotalCostBRL: round2(estimatedTotalCostBRL),
		UnitCostBRL:           round2(unitCostBRL),

		TargetSalePriceBRL: round2(p.TargetSalePriceBRL),
		NetSalePriceBRL:    round2(netSalePriceBRL),

		ProfitUnitBRL:  round2(profitUnitBRL),
		ProfitTotalBRL: round2(profitTotalBRL),

		ROIUnitPct:  round2(roiUnitPct),
		ROITotalPct: round2(roiTotalPct),
		PaybackDays: paybackDays,

		EstimatedMarginPct: round2(marginPct),

		Approved: approved,
		Reason:   reason,
	}
}

// Baseline is the observed-or-defaulted anchor the three canonical scenarios
// are perturbed from.
type Baseline struct {
	Quantity           int
	ExchangeRate       float64
	TargetSalePriceBRL float64
	FobUnitUSD         float64
	FreightTotalUSD    float64
	InsuranceTotalUSD  float64
	SalesPerDay        float64
}

// BaselineFrom derives the scenario baseline for a product: quantity, FX and
// target price come from the latest persisted simulation when there is one,
// otherwise from config defaults and the market's average price. Freight and
// insurance totals fall back to config defaults when the product has no unit
// rates.
func BaselineFrom(p models.Product, market *models.MarketSnapshot, lastSim *models.ImportSimulation, cfg Config) Baseline {
	fobUnit := floatOrZero(p.FobPriceUSD)
	freightUnit := floatOrZero(p.FreightUSD)
	insuranceUnit := floatOrZero(p.InsuranceUSD)

	qty := cfg.DefaultQuantity
	fx := cfg.DefaultExchangeRate
	target := 0.0

	if lastSim != nil {
		if lastSim.Quantity > 0 {
			qty = lastSim.Quantity
		}
		if lastSim.ExchangeRate > 0 {
			fx = lastSim.ExchangeRate
		}
		if lastSim.TargetSalePriceBRL > 0 {
			target = lastSim.TargetSalePriceBRL
		}
	}
	if target <= 0 && market != nil {
		target = floatOrZero(market.PriceAverageBRL)
	}
	if target < 0 {
		target = 0
	}

	freightTotal := cfg.DefaultFreightTotalUSD
	if freightUnit > 0 {
		freightTotal = freightUnit * float64(qty)
	}
	insuranceTotal := cfg.DefaultInsuranceTotalUSD
	if insuranceUnit > 0 {
		insuranceTotal = insuranceUnit * float64(qty)
	}

	salesPerDay := 0.0
	if market != nil && market.SalesPerDay != nil {
		salesPerDay = float64(*market.SalesPerDay)
	}

	return Baseline{
		Quantity:           qty,
		ExchangeRate:       fx,
		TargetSalePriceBRL: target,
		FobUnitUSD:         fobUnit,
		FreightTotalUSD:    freightTotal,
		InsuranceTotalUSD:  insuranceTotal,
		SalesPerDay:        salesPerDay,
	}
}

// BuildScenarios produces the canonical base / conservative / optimistic
// results from a baseline. Only the conservative verdict feeds the final
// decision; the other two are informational.
func BuildScenarios(b Baseline, cfg Config) []ScenarioResult {
	base := CalculateScenario(ScenarioParams{
		Kind:               ScenarioBase,
		Name:               "Base",
		Quantity:           b.Quantity,
		ExchangeRate:       b.ExchangeRate,
		FobUnitUSD:         b.FobUnitUSD,
		FreightTotalUSD:    b.FreightTotalUSD,
		InsuranceTotalUSD:  b.InsuranceTotalUSD,
		TargetSalePriceBRL: b.TargetSalePriceBRL,
		SalesPerDay:        b.SalesPerDay,
	}, cfg)

	conservativeQty := int(float64(b.Quantity) * 0.6)
	if conservativeQty < 50 {
		conservativeQty = 50
	}
	conservative := CalculateScenario(ScenarioParams{
		Kind:               ScenarioConservative,
		Name:               "Conservative",
		Quantity:           conservativeQty,
		ExchangeRate:       b.ExchangeRate * 1.05,
		FobUnitUSD:         b.FobUnitUSD * 1.03,
		FreightTotalUSD:    b.FreightTotalUSD * 1.15,
		InsuranceTotalUSD:  b.InsuranceTotalUSD * 1.10,
		TargetSalePriceBRL: b.TargetSalePriceBRL * 0.95,
		SalesPerDay:        b.SalesPerDay,
	}, cfg)

	optimistic := CalculateScenario(ScenarioParams{
		Kind:               ScenarioOptimistic,
		Name:               "Optimistic",
		Quantity:           int(float64(b.Quantity) * 1.3),
		ExchangeRate:       b.ExchangeRate * 0.97,
		FobUnitUSD:         math.Max(0, b.FobUnitUSD*0.98),
		FreightTotalUSD:    b.FreightTotalUSD * 0.95,
		InsuranceTotalUSD:  b.InsuranceTotalUSD * 0.95,
		TargetSalePriceBRL: b.TargetSalePriceBRL * 1.03,
		SalesPerDay:        b.SalesPerDay,
	}, cfg)

	return []ScenarioResult{base, conservative, optimistic}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
