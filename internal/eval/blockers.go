package eval

import (
	"github.com/mannaalive/import-api/internal/models"
)

// DetectBlockers returns the hard stops for a product plus soft compliance
// notes. Any returned blocker forces the final decision to reject; the notes
// are informational only.
func DetectBlockers(p models.Product, reg *models.RegulatoryCode) ([]Blocker, []string) {
	var blockers []Blocker
	var notes []string

	if p.IsFamousBrand && !p.HasBrandAuthorization {
		blockers = append(blockers, Blocker{
			Key:    "brand_risk",
			Title:  "Brand risk",
			Reason: "Product flagged as a famous brand without a resale/import authorization.",
		})
	}

	if reg != nil {
		if reg.Antidumping {
			blockers = append(blockers, Blocker{
				Key:    "antidumping",
				Title:  "Antidumping",
				Reason: "Regulatory code indicates possible antidumping duties. Validate before importing.",
			})
		}
		if reg.RequiresLicense {
			notes = append(notes, "Regulatory code may require an import license. Budget compliance time/cost into the real scenario.")
		}
		if reg.SanitaryControl {
			notes = append(notes, "Regulatory code signals possible sanitary control. Assess requirements and feasibility.")
		}
		if reg.TelecomControl {
			notes = append(notes, "Regulatory code signals possible telecom control. Assess homologation.")
		}
		if reg.MetrologyControl {
			notes = append(notes, "Regulatory code signals possible metrology control. Assess certification.")
		}
	}

	return blockers, notes
}
