package eval

import (
	"sort"

	"github.com/google/uuid"

	"github.com/mannaalive/import-api/internal/models"
)

// TriageInput is the batch-prefetched catalog view. The two maps must be
// built once per run (latest simulation per product, market snapshot per
// product) so triage stays O(n) over the catalog.
type TriageInput struct {
	Products          []models.Product
	LatestSimulations map[uuid.UUID]models.ImportSimulation
	MarketData        map[uuid.UUID]models.MarketSnapshot
	IncludeScore      bool
}

type triageFlags struct {
	hasFob     bool
	hasFreight bool
	hasMarket  bool
	hasSim     bool
}

// statusAndAction maps presence flags to (status, next action, priority).
// First match wins; lower priority rank means evaluate sooner.
func statusAndAction(f triageFlags) (TriageStatus, string, int) {
	if !f.hasFob {
		return TriageNeedsCosts, "Fill in FOB (supplier base cost)", 30
	}
	if !f.hasFreight {
		return TriageNeedsCosts, "Fill in freight (estimate for simulation)", 20
	}
	if !f.hasMarket {
		return TriageNeedsMarket, "Fill in market data (demand/competition)", 10
	}
	if !f.hasSim {
		return TriageNeedsSimulation, "Run a simulation (scenarios and margin)", 5
	}
	return TriageReady, "Evaluate and decide (approve / reject)", 0
}

func buildAlerts(p models.Product, f triageFlags) []string {
	var alerts []string

	if !f.hasFob {
		alerts = append(alerts, "No FOB: supplier base cost not filled in.")
	}
	if !f.hasFreight {
		alerts = append(alerts, "No freight: the simulation tends to be imprecise.")
	}
	if !f.hasMarket {
		alerts = append(alerts, "No market data: demand/competition not assessed.")
	}
	if !f.hasSim {
		alerts = append(alerts, "No simulation: margin not validated yet.")
	}

	if p.IsFamousBrand && !p.HasBrandAuthorization {
		alerts = append(alerts, "High risk: famous brand without authorization (IP/seizure).")
	}
	if p.Fragile {
		alerts = append(alerts, "Watch out: fragile product (logistics risk).")
	}

	weight := floatOrZero(p.WeightKg)
	if weight > 5 {
		alerts = append(alerts, "Watch out: heavy product (>5kg) — bad for simplified import.")
	} else if weight > 2 {
		alerts = append(alerts, "Watch out: moderate weight (>2kg) — impacts freight.")
	}

	if p.RegulatoryCodeID == nil {
		alerts = append(alerts, "No regulatory code set: can stall decision/compliance.")
	}

	return alerts
}

// BuildTriage derives the fleet-wide prioritization list. A scoring failure
// for one product degrades that entry's score to nil and the batch continues.
// Ordering: ascending priority rank, then descending score (absent score
// sorts lowest), then most recent first.
func (e *Engine) BuildTriage(in TriageInput) []TriageEntry {
	out := make([]TriageEntry, 0, len(in.Products))

	for _, p := range in.Products {
		flags := triageFlags{
			hasFob:     p.FobPriceUSD != nil,
			hasFreight: p.FreightUSD != nil,
		}
		_, flags.hasMarket = in.MarketData[p.ID]
		_, flags.hasSim = in.LatestSimulations[p.ID]

		status, nextAction, priority := statusAndAction(flags)

		var lastSim *SimulationSummary
		if sim, ok := in.LatestSimulations[p.ID]; ok {
			lastSim = &SimulationSummary{
				ID:                 sim.ID,
				CreatedAt:          sim.CreatedAt,
				Approved:           sim.Approved,
				UnitCostBRL:        sim.UnitCostBRL,
				TargetSalePriceBRL: sim.TargetSalePriceBRL,
				EstimatedMarginPct: sim.EstimatedMarginPct,
			}
		}

		var score *ScoreBreakdown
		if in.IncludeScore {
			score = e.scoreOrNil(p, in)
		}

		out = append(out, TriageEntry{
			ProductID:   p.ID,
			ProductName: p.Name,
			Category:    p.Category,
			CreatedAt:   p.CreatedAt,

			FobPriceUSD:  p.FobPriceUSD,
			FreightUSD:   p.FreightUSD,
			InsuranceUSD: p.InsuranceUSD,

			HasFob:              flags.hasFob,
			HasFreight:          flags.hasFreight,
			HasMarketData:       flags.hasMarket,
			HasLatestSimulation: flags.hasSim,

			Status:       status,
			NextAction:   nextAction,
			PriorityRank: priority,

			LastSimulation: lastSim,
			Score:          score,

			Alerts: buildAlerts(p, flags),
		})
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.PriorityRank != b.PriorityRank {
			return a.PriorityRank < b.PriorityRank
		}
		as, bs := scoreOrLowest(a.Score), scoreOrLowest(b.Score)
		if as != bs {
			return as > bs
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	return out
}

// scoreOrNil isolates per-product scoring failures: both returned errors and
// panics from inconsistent rows degrade that product's score section to nil.
func (e *Engine) scoreOrNil(p models.Product, in TriageInput) (score *ScoreBreakdown) {
	defer func() {
		if recover() != nil {
			score = nil
		}
	}()

	var market *models.MarketSnapshot
	if m, ok := in.MarketData[p.ID]; ok {
		market = &m
	}
	var sim *models.ImportSimulation
	if s, ok := in.LatestSimulations[p.ID]; ok {
		sim = &s
	}

	b, err := e.scores.Compute(ScoreInput{Product: p, Market: market, LatestSimulation: sim})
	if err != nil {
		return nil
	}
	return &b
}

func scoreOrLowest(b *ScoreBreakdown) int {
	if b == nil {
		return -1
	}
	return b.TotalScore
}
