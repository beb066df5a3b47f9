package eval

import (
	"testing"

	"github.com/google/uuid"

	"github.com/mannaalive/import-api/internal/models"
)

func TestEvaluateCompleteness_EmptyProduct(t *testing.T) {
	report := EvaluateCompleteness(models.Product{}, false)

	if report.Percent != 0 {
		t.Fatalf("expected 0%%, got %d%%", report.Percent)
	}
	if len(report.Items) != 5 {
		t.Fatalf("expected 5 checklist items, got %d", len(report.Items))
	}
	if len(report.Missing) != 5 {
		t.Fatalf("expected 5 missing labels, got %d", len(report.Missing))
	}
}

func TestEvaluateCompleteness_FullProduct(t *testing.T) {
	one := 1.0
	fob := 12.5
	supplierID := uuid.New()
	regID := uuid.New()

	p := models.Product{
		SupplierID:       &supplierID,
		RegulatoryCodeID: &regID,
		WeightKg:         &one,
		LengthCm:         &one,
		WidthCm:          &one,
		HeightCm:         &one,
		FobPriceUSD:      &fob,
	}
	report := EvaluateCompleteness(p, true)

	if report.Percent != 100 {
		t.Fatalf("expected 100%%, got %d%%", report.Percent)
	}
	if len(report.Missing) != 0 {
		t.Fatalf("expected nothing missing, got %v", report.Missing)
	}
}

func TestEvaluateCompleteness_PartialRounds(t *testing.T) {
	fob := 9.0
	report := EvaluateCompleteness(models.Product{FobPriceUSD: &fob}, true)

	// 2 of 5 complete.
	if report.Percent != 40 {
		t.Fatalf("expected 40%%, got %d%%", report.Percent)
	}
}

func TestHasDimensions_RejectsZeroAndPartial(t *testing.T) {
	one := 1.0
	zero := 0.0

	if HasDimensions(models.Product{WeightKg: &one, LengthCm: &one, WidthCm: &one}) {
		t.Fatal("missing height should fail")
	}
	if HasDimensions(models.Product{WeightKg: &zero, LengthCm: &one, WidthCm: &one, HeightCm: &one}) {
		t.Fatal("zero weight should fail")
	}
	if !HasDimensions(models.Product{WeightKg: &one, LengthCm: &one, WidthCm: &one, HeightCm: &one}) {
		t.Fatal("all positive measures should pass")
	}
}
