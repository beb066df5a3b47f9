package eval

import (
	"testing"

	"github.com/mannaalive/import-api/internal/models"
)

func TestDetectBlockers_BrandWithoutAuthorization(t *testing.T) {
	blockers, notes := DetectBlockers(models.Product{IsFamousBrand: true}, nil)
	if len(blockers) != 1 || blockers[0].Key != "brand_risk" {
		t.Fatalf("expected the brand_risk blocker, got %v", blockers)
	}
	if len(notes) != 0 {
		t.Fatalf("expected no notes, got %v", notes)
	}

	blockers, _ = DetectBlockers(models.Product{IsFamousBrand: true, HasBrandAuthorization: true}, nil)
	if len(blockers) != 0 {
		t.Fatalf("authorized brand must not block, got %v", blockers)
	}
}

func TestDetectBlockers_RegulatoryFlags(t *testing.T) {
	reg := &models.RegulatoryCode{
		Antidumping:      true,
		RequiresLicense:  true,
		SanitaryControl:  true,
		TelecomControl:   true,
		MetrologyControl: true,
	}
	blockers, notes := DetectBlockers(models.Product{}, reg)

	// Only antidumping is a hard stop; the four controls are soft notes.
	if len(blockers) != 1 || blockers[0].Key != "antidumping" {
		t.Fatalf("expected only the antidumping blocker, got %v", blockers)
	}
	if len(notes) != 4 {
		t.Fatalf("expected 4 compliance notes, got %d: %v", len(notes), notes)
	}
}

func TestDetectBlockers_CleanProduct(t *testing.T) {
	blockers, notes := DetectBlockers(models.Product{}, &models.RegulatoryCode{})
	if len(blockers) != 0 || len(notes) != 0 {
		t.Fatalf("expected nothing, got blockers=%v notes=%v", blockers, notes)
	}
}
