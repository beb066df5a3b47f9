package eval

import (
	"math"

	"github.com/mannaalive/import-api/internal/models"
)

// EvaluateCompleteness runs the fixed 5-item data-readiness checklist.
// Percent is round(100 × complete/total); missing keeps checklist order.
func EvaluateCompleteness(p models.Product, hasMarketData bool) CompletenessReport {
	items := []CompletenessItem{
		{Key: "market_data", Label: "Market data filled in", IsComplete: hasMarketData},
		{Key: "regulatory_code", Label: "Regulatory code set", IsComplete: p.RegulatoryCodeID != nil},
		{Key: "supplier", Label: "Supplier set", IsComplete: p.SupplierID != nil},
		{Key: "dimensions", Label: "Weight and dimensions filled in", IsComplete: HasDimensions(p)},
		{Key: "fob", Label: "FOB price filled in", IsComplete: p.FobPriceUSD != nil},
	}

	complete := 0
	var missing []string
	for _, item := range items {
		if item.IsComplete {
			complete++
		} else {
			missing = append(missing, item.Label)
		}
	}

	return CompletenessReport{
		Percent: int(math.Round(float64(complete) / float64(len(items)) * 100)),
		Items:   items,
		Missing: missing,
	}
}

// HasDimensions reports whether all four physical measures are present and
// strictly positive.
func HasDimensions(p models.Product) bool {
	for _, v := range []*float64{p.WeightKg, p.LengthCm, p.WidthCm, p.HeightCm} {
		if v == nil || *v <= 0 {
			return false
		}
	}
	return true
}
