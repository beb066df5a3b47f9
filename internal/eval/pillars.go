package eval

import (
	"github.com/mannaalive/import-api/internal/models"
)

// PillarInput folds the intermediate results the pillar assessment reads.
type PillarInput struct {
	Product models.Product
	Market  *models.MarketSnapshot

	Base         ScenarioResult
	Conservative ScenarioResult

	Blockers      []Blocker
	HasDimensions bool
	FobUnitUSD    float64
}

// AssessPillars derives the four qualitative pillar views. Pillar metrics and
// next actions are descriptive; the decision engine never reads them.
func AssessPillars(in PillarInput) []PillarAssessment {
	return []PillarAssessment{
		assessMarket(in),
		assessUnitEconomics(in),
		assessOperations(in),
		assessRisk(in),
	}
}

func assessMarket(in PillarInput) PillarAssessment {
	pillar := PillarAssessment{
		Key:        "market",
		Title:      "Market",
		Status:     StatusUnknown,
		Summary:    "Not enough market data to judge demand and competition.",
		NextAction: "Fill in sales/day, competitors, FULL ratio and average price.",
	}

	m := in.Market
	if m == nil {
		return pillar
	}

	pillar.Metrics = []Metric{
		{Key: "price_avg", Label: "Average price", Value: m.PriceAverageBRL, Unit: "BRL"},
		{Key: "sales_per_day", Label: "Sales/day", Value: intPtrAsFloat(m.SalesPerDay), Unit: "units/day"},
		{Key: "competitors", Label: "Competitors", Value: intPtrAsFloat(m.CompetitorCount), Unit: "listings"},
		{Key: "full_ratio", Label: "FULL ratio", Value: m.FullRatioPct, Unit: "%"},
		{Key: "visits", Label: "Visits", Value: intPtrAsFloat(m.Visits), Unit: "visits"},
	}

	if m.SalesPerDay != nil && m.CompetitorCount != nil {
		spd := float64(*m.SalesPerDay)
		comp := float64(*m.CompetitorCount)
		switch {
		case spd >= 5 && comp <= 80:
			pillar.Status = StatusGreen
			pillar.Summary = "Good combination of demand and competition."
			pillar.NextAction = "Validate differentiation (kit, variation, branding) and seasonality."
		case spd >= 2:
			pillar.Status = StatusYellow
			pillar.Summary = "Demand exists, but competitive pressure is likely."
			pillar.NextAction = "Check price against top sellers and barriers (FULL, reviews)."
		default:
			pillar.Status = StatusRed
			pillar.Summary = "Weak demand in the current market."
			pillar.NextAction = "Look for a variation/alternative category or discard."
		}
	} else {
		pillar.Status = StatusYellow
		pillar.Summary = "Partial data; complete it to conclude."
		pillar.NextAction = "Fill in sales/day and competitor count."
	}

	return pillar
}

func assessUnitEconomics(in PillarInput) PillarAssessment {
	cons := in.Conservative
	pillar := PillarAssessment{
		Key:   "unit_economics",
		Title: "Margin (unit economics)",
		Metrics: []Metric{
			{Key: "margin_conservative", Label: "Margin (conservative)", Value: f64(cons.EstimatedMarginPct), Unit: "%"},
			{Key: "unit_cost_conservative", Label: "Unit cost (conservative)", Value: f64(cons.UnitCostBRL), Unit: "BRL"},
			{Key: "unit_cost_base", Label: "Unit cost (base)", Value: f64(in.Base.UnitCostBRL), Unit: "BRL"},
			{Key: "customs_value_base", Label: "Customs value (base)", Value: f64(in.Base.CustomsValueUSD), Unit: "USD"},
		},
	}

	if cons.TargetSalePriceBRL > 0 && in.FobUnitUSD > 0 {
		if cons.Approved {
			pillar.Status = StatusGreen
			pillar.Summary = "Margin meets the minimum in the conservative scenario."
			pillar.NextAction = "Validate channel fees and the real logistics cost (for net margin)."
		} else {
			pillar.Status = StatusRed
			pillar.Summary = cons.Reason
			if pillar.Summary == "" {
				pillar.Summary = "Insufficient margin in the conservative scenario."
			}
			pillar.NextAction = "Adjust the target price, cut cost (FOB/freight) or discard."
		}
	} else {
		pillar.Status = StatusYellow
		pillar.Summary = "Needs a target price and FOB to conclude unit economics."
		pillar.NextAction = "Fill in FOB and/or the market average price and rerun."
	}

	return pillar
}

func assessOperations(in PillarInput) PillarAssessment {
	p := in.Product
	pillar := PillarAssessment{
		Key:   "operations",
		Title: "Operations",
		Metrics: []Metric{
			{Key: "weight", Label: "Weight", Value: p.WeightKg, Unit: "kg"},
			{Key: "length", Label: "Length", Value: p.LengthCm, Unit: "cm"},
			{Key: "width", Label: "Width", Value: p.WidthCm, Unit: "cm"},
			{Key: "height", Label: "Height", Value: p.HeightCm, Unit: "cm"},
			{Key: "fragile", Label: "Fragile", Value: f64(boolAsFloat(p.Fragile)), Unit: "bool", Help: "1=yes, 0=no"},
		},
	}

	if in.HasDimensions {
		pillar.Status = StatusGreen
		pillar.Summary = "Operation looks simple with the current data."
		pillar.NextAction = "Confirm MOQ and lead time with the supplier."
	} else {
		pillar.Status = StatusYellow
		pillar.Summary = "Weight/dimensions pending; freight and handling estimates may be off."
		pillar.NextAction = "Fill in the real weight and dimensions of the product/packaging."
	}

	return pillar
}

func assessRisk(in PillarInput) PillarAssessment {
	p := in.Product
	pillar := PillarAssessment{
		Key:        "risk",
		Title:      "Risk & compliance",
		Status:     StatusGreen,
		Summary:    "Risk under control in the current state.",
		NextAction: "Keep evidence (regulatory code, brand, compliance) attached to the product.",
		Metrics: []Metric{
			{Key: "famous_brand", Label: "Famous brand", Value: f64(boolAsFloat(p.IsFamousBrand)), Unit: "bool"},
			{Key: "brand_auth", Label: "Brand authorization", Value: f64(boolAsFloat(p.HasBrandAuthorization)), Unit: "bool"},
			{Key: "has_regulatory_code", Label: "Regulatory code set", Value: f64(boolAsFloat(p.RegulatoryCodeID != nil)), Unit: "bool"},
		},
	}

	if len(in.Blockers) > 0 {
		pillar.Status = StatusRed
		pillar.Summary = "There are objective blockers before importing."
		pillar.NextAction = "Resolve the blockers (authorization/antidumping/compliance) or discard."
	}

	return pillar
}

func f64(v float64) *float64 {
	return &v
}

func intPtrAsFloat(v *int) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}

func boolAsFloat(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
