package eval

import (
	"math"
	"testing"

	"github.com/mannaalive/import-api/internal/models"
)

func TestCalculateScenario_WorkedExample(t *testing.T) {
	res := CalculateScenario(ScenarioParams{
		Kind:               ScenarioBase,
		Name:               "Base",
		Quantity:           100,
		ExchangeRate:       5.0,
		FobUnitUSD:         10.0,
		FreightTotalUSD:    200.0,
		InsuranceTotalUSD:  50.0,
		TargetSalePriceBRL: 300.0,
		SalesPerDay:        20,
	}, DefaultConfig())

	if res.FobTotalUSD != 1000.0 {
		t.Fatalf("fob total: expected 1000, got %v", res.FobTotalUSD)
	}
	if res.CustomsValueUSD != 1250.0 {
		t.Fatalf("customs value: expected 1250, got %v", res.CustomsValueUSD)
	}
	if res.EstimatedTotalCostUSD != 2500.0 {
		t.Fatalf("total cost USD: expected 2500, got %v", res.EstimatedTotalCostUSD)
	}
	if res.EstimatedTotalCostBRL != 12500.0 {
		t.Fatalf("total cost BRL: expected 12500, got %v", res.EstimatedTotalCostBRL)
	}
	if res.UnitCostBRL != 125.0 {
		t.Fatalf("unit cost: expected 125, got %v", res.UnitCostBRL)
	}
	if res.NetSalePriceBRL != 237.0 {
		t.Fatalf("net sale price: expected 237 (21%% total fees), got %v", res.NetSalePriceBRL)
	}
	if res.ProfitUnitBRL != 109.0 {
		t.Fatalf("profit/unit: expected 109, got %v", res.ProfitUnitBRL)
	}
	if res.ProfitTotalBRL != 10900.0 {
		t.Fatalf("profit total: expected 10900, got %v", res.ProfitTotalBRL)
	}
	if res.ROIUnitPct != 87.2 {
		t.Fatalf("roi/unit: expected 87.2, got %v", res.ROIUnitPct)
	}
	if res.EstimatedMarginPct != 58.33 {
		t.Fatalf("margin: expected 58.33, got %v", res.EstimatedMarginPct)
	}
	if res.PaybackDays == nil || *res.PaybackDays != 5.7 {
		t.Fatalf("payback: expected 5.7 days, got %v", res.PaybackDays)
	}
	if !res.Approved {
		t.Fatalf("expected approved, got reason %q", res.Reason)
	}
}

func TestCalculateScenario_CustomsCapRejects(t *testing.T) {
	res := CalculateScenario(ScenarioParams{
		Kind:               ScenarioBase,
		Quantity:           200,
		ExchangeRate:       5.0,
		FobUnitUSD:         20.0, // 4000 USD FOB alone
		TargetSalePriceBRL: 500.0,
	}, DefaultConfig())

	if res.Approved {
		t.Fatal("expected rejection above the customs value cap")
	}
	if res.Reason != "customs value above 3000 USD limit" {
		t.Fatalf("unexpected reason: %q", res.Reason)
	}
}

func TestCalculateScenario_ConservativeMarginRule(t *testing.T) {
	// Thin margin: only the conservative variant enforces the minimum.
	params := ScenarioParams{
		Quantity:           100,
		ExchangeRate:       5.0,
		FobUnitUSD:         10.0,
		FreightTotalUSD:    200.0,
		InsuranceTotalUSD:  50.0,
		TargetSalePriceBRL: 150.0, // margin (150-125)/150 = 16.67%
	}

	params.Kind = ScenarioBase
	if res := CalculateScenario(params, DefaultConfig()); !res.Approved {
		t.Fatalf("base scenario should not enforce the margin rule, got reason %q", res.Reason)
	}

	params.Kind = ScenarioConservative
	res := CalculateScenario(params, DefaultConfig())
	if res.Approved {
		t.Fatal("conservative scenario should reject a thin margin")
	}
	if res.Reason != "margin below 35% conservative minimum" {
		t.Fatalf("unexpected reason: %q", res.Reason)
	}
}

func TestCalculateScenario_DegenerateQuantityClamps(t *testing.T) {
	res := CalculateScenario(ScenarioParams{
		Kind:               ScenarioBase,
		Quantity:           0,
		ExchangeRate:       5.0,
		FobUnitUSD:         10.0,
		FreightTotalUSD:    100.0,
		TargetSalePriceBRL: 0,
	}, DefaultConfig())

	// Single-unit lot collapse: unit cost equals the full landed cost.
	if res.UnitCostBRL != res.EstimatedTotalCostBRL {
		t.Fatalf("expected unit cost %v to equal total cost %v", res.UnitCostBRL, res.EstimatedTotalCostBRL)
	}
	if res.EstimatedMarginPct != -100.0 {
		t.Fatalf("zero target should clamp margin to -100, got %v", res.EstimatedMarginPct)
	}
	if res.ROITotalPct != -100.0 {
		t.Fatalf("zero capital should clamp total ROI to -100, got %v", res.ROITotalPct)
	}
	if res.PaybackDays != nil {
		t.Fatalf("expected no payback estimate, got %v", *res.PaybackDays)
	}
	for _, v := range []float64{res.UnitCostBRL, res.ProfitUnitBRL, res.ROIUnitPct, res.EstimatedMarginPct} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("degenerate inputs must stay finite, got %v", v)
		}
	}
}

func TestCalculateScenario_NoPaybackWhenUnprofitable(t *testing.T) {
	res := CalculateScenario(ScenarioParams{
		Kind:               ScenarioBase,
		Quantity:           100,
		ExchangeRate:       5.0,
		FobUnitUSD:         10.0,
		TargetSalePriceBRL: 50.0, // net 39.5 < unit cost 100
		SalesPerDay:        30,
	}, DefaultConfig())

	if res.ProfitUnitBRL >= 0 {
		t.Fatalf("setup error: expected negative unit profit, got %v", res.ProfitUnitBRL)
	}
	if res.PaybackDays != nil {
		t.Fatalf("payback must be absent when unit profit <= 0, got %v", *res.PaybackDays)
	}
}

func TestBuildScenarios_KindsAndStress(t *testing.T) {
	b := Baseline{
		Quantity:           100,
		ExchangeRate:       5.0,
		TargetSalePriceBRL: 300.0,
		FobUnitUSD:         10.0,
		FreightTotalUSD:    200.0,
		InsuranceTotalUSD:  50.0,
	}
	scenarios := BuildScenarios(b, DefaultConfig())
	if len(scenarios) != 3 {
		t.Fatalf("expected 3 scenarios, got %d", len(scenarios))
	}

	base, conservative, optimistic := scenarios[0], scenarios[1], scenarios[2]
	if base.Kind != ScenarioBase || conservative.Kind != ScenarioConservative || optimistic.Kind != ScenarioOptimistic {
		t.Fatalf("unexpected kind order: %v %v %v", base.Kind, conservative.Kind, optimistic.Kind)
	}

	if conservative.Quantity != 60 {
		t.Fatalf("conservative quantity: expected 60, got %d", conservative.Quantity)
	}
	if conservative.ExchangeRate != 5.0*1.05 {
		t.Fatalf("conservative FX: expected 5.25, got %v", conservative.ExchangeRate)
	}
	if optimistic.Quantity != 130 {
		t.Fatalf("optimistic quantity: expected 130, got %d", optimistic.Quantity)
	}

	if conservative.UnitCostBRL <= base.UnitCostBRL {
		t.Fatalf("conservative unit cost %v should exceed base %v", conservative.UnitCostBRL, base.UnitCostBRL)
	}
	if optimistic.EstimatedMarginPct <= base.EstimatedMarginPct {
		t.Fatalf("optimistic margin %v should exceed base %v", optimistic.EstimatedMarginPct, base.EstimatedMarginPct)
	}
}

func TestBuildScenarios_ConservativeQuantityFloor(t *testing.T) {
	scenarios := BuildScenarios(Baseline{Quantity: 60, ExchangeRate: 5.0}, DefaultConfig())
	if got := scenarios[1].Quantity; got != 50 {
		t.Fatalf("conservative quantity floor: expected 50, got %d", got)
	}
}

func TestBaselineFrom_Defaults(t *testing.T) {
	cfg := DefaultConfig()
	b := BaselineFrom(models.Product{}, nil, nil, cfg)

	if b.Quantity != 200 {
		t.Fatalf("default quantity: expected 200, got %d", b.Quantity)
	}
	if b.ExchangeRate != 5.2 {
		t.Fatalf("default FX: expected 5.2, got %v", b.ExchangeRate)
	}
	if b.FreightTotalUSD != 80.0 || b.InsuranceTotalUSD != 10.0 {
		t.Fatalf("default freight/insurance: got %v / %v", b.FreightTotalUSD, b.InsuranceTotalUSD)
	}
	if b.TargetSalePriceBRL != 0 {
		t.Fatalf("target should be 0 with no anchor, got %v", b.TargetSalePriceBRL)
	}
}

func TestBaselineFrom_LastSimulationWins(t *testing.T) {
	fob := 10.0
	freight := 2.0
	price := 250.0
	spd := 12

	p := models.Product{FobPriceUSD: &fob, FreightUSD: &freight}
	market := &models.MarketSnapshot{PriceAverageBRL: &price, SalesPerDay: &spd}
	sim := &models.ImportSimulation{Quantity: 120, ExchangeRate: 4.8, TargetSalePriceBRL: 310.0}

	b := BaselineFrom(p, market, sim, DefaultConfig())
	if b.Quantity != 120 || b.ExchangeRate != 4.8 {
		t.Fatalf("simulation anchor ignored: qty=%d fx=%v", b.Quantity, b.ExchangeRate)
	}
	if b.TargetSalePriceBRL != 310.0 {
		t.Fatalf("target should come from the simulation, got %v", b.TargetSalePriceBRL)
	}
	if b.FreightTotalUSD != 2.0*120 {
		t.Fatalf("freight total should scale with simulation quantity, got %v", b.FreightTotalUSD)
	}
	if b.SalesPerDay != 12 {
		t.Fatalf("sales/day from market: expected 12, got %v", b.SalesPerDay)
	}
}

func TestBaselineFrom_MarketPriceFallback(t *testing.T) {
	price := 199.9
	b := BaselineFrom(models.Product{}, &models.MarketSnapshot{PriceAverageBRL: &price}, nil, DefaultConfig())
	if b.TargetSalePriceBRL != 199.9 {
		t.Fatalf("target should fall back to the market average, got %v", b.TargetSalePriceBRL)
	}
}
