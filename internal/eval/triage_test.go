package eval

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mannaalive/import-api/internal/models"
)

func triageProduct(name string, fob, freight *float64) models.Product {
	return models.Product{
		ID:          uuid.New(),
		Name:        name,
		FobPriceUSD: fob,
		FreightUSD:  freight,
		CreatedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestBuildTriage_StatusLadder(t *testing.T) {
	fob, freight := 10.0, 2.0

	ready := triageProduct("ready", &fob, &freight)
	needsSim := triageProduct("needs-sim", &fob, &freight)
	needsMarket := triageProduct("needs-market", &fob, &freight)
	needsFreight := triageProduct("needs-freight", &fob, nil)
	needsFob := triageProduct("needs-fob", nil, nil)

	markets := map[uuid.UUID]models.MarketSnapshot{
		ready.ID:    {ProductID: ready.ID},
		needsSim.ID: {ProductID: needsSim.ID},
	}
	sims := map[uuid.UUID]models.ImportSimulation{
		ready.ID: {ProductID: ready.ID, EstimatedMarginPct: 40},
	}

	engine := NewEngine(DefaultConfig())
	entries := engine.BuildTriage(TriageInput{
		// Deliberately scrambled input order.
		Products:          []models.Product{needsFob, needsMarket, ready, needsFreight, needsSim},
		LatestSimulations: sims,
		MarketData:        markets,
	})

	wantOrder := []string{"ready", "needs-sim", "needs-market", "needs-freight", "needs-fob"}
	wantStatus := []TriageStatus{TriageReady, TriageNeedsSimulation, TriageNeedsMarket, TriageNeedsCosts, TriageNeedsCosts}
	wantRank := []int{0, 5, 10, 20, 30}

	if len(entries) != len(wantOrder) {
		t.Fatalf("expected %d entries, got %d", len(wantOrder), len(entries))
	}
	for i, e := range entries {
		if e.ProductName != wantOrder[i] {
			t.Fatalf("position %d: expected %q, got %q", i, wantOrder[i], e.ProductName)
		}
		if e.Status != wantStatus[i] {
			t.Fatalf("%s: expected status %v, got %v", e.ProductName, wantStatus[i], e.Status)
		}
		if e.PriorityRank != wantRank[i] {
			t.Fatalf("%s: expected rank %d, got %d", e.ProductName, wantRank[i], e.PriorityRank)
		}
		if e.NextAction == "" {
			t.Fatalf("%s: next action must not be empty", e.ProductName)
		}
	}

	if entries[0].LastSimulation == nil {
		t.Fatal("ready entry should carry its last simulation summary")
	}
	if entries[0].LastSimulation.EstimatedMarginPct != 40 {
		t.Fatalf("unexpected simulation summary margin: %v", entries[0].LastSimulation.EstimatedMarginPct)
	}
}

func TestBuildTriage_MalformedProductDegradesInIsolation(t *testing.T) {
	fob, freight := 10.0, 2.0
	bad := math.NaN()

	clean := triageProduct("clean", &fob, &freight)
	poisoned := triageProduct("poisoned", &bad, &freight)

	engine := NewEngine(DefaultConfig())
	entries := engine.BuildTriage(TriageInput{
		Products:     []models.Product{clean, poisoned},
		IncludeScore: true,
	})

	if len(entries) != 2 {
		t.Fatalf("a malformed product must not shrink the batch, got %d entries", len(entries))
	}

	byName := map[string]TriageEntry{}
	for _, e := range entries {
		byName[e.ProductName] = e
	}
	if byName["clean"].Score == nil {
		t.Fatal("clean product should still be scored")
	}
	if byName["poisoned"].Score != nil {
		t.Fatal("poisoned product should have a nil score section")
	}
}

func TestBuildTriage_ScoreBreaksPriorityTies(t *testing.T) {
	fob, freight := 10.0, 2.0
	spd := 100

	strong := triageProduct("strong", &fob, &freight)
	weak := triageProduct("weak", &fob, &freight)

	markets := map[uuid.UUID]models.MarketSnapshot{
		strong.ID: {ProductID: strong.ID, SalesPerDay: &spd},
		weak.ID:   {ProductID: weak.ID},
	}
	sims := map[uuid.UUID]models.ImportSimulation{
		strong.ID: {ProductID: strong.ID, EstimatedMarginPct: 50},
		weak.ID:   {ProductID: weak.ID, EstimatedMarginPct: 12},
	}

	engine := NewEngine(DefaultConfig())
	entries := engine.BuildTriage(TriageInput{
		Products:          []models.Product{weak, strong},
		LatestSimulations: sims,
		MarketData:        markets,
		IncludeScore:      true,
	})

	if entries[0].ProductName != "strong" {
		t.Fatalf("higher score should sort first within a rank, got %q", entries[0].ProductName)
	}
}

func TestBuildTriage_NewestFirstOnFullTie(t *testing.T) {
	older := triageProduct("older", nil, nil)
	newer := triageProduct("newer", nil, nil)
	newer.CreatedAt = older.CreatedAt.Add(24 * time.Hour)

	engine := NewEngine(DefaultConfig())
	entries := engine.BuildTriage(TriageInput{Products: []models.Product{older, newer}})

	if entries[0].ProductName != "newer" {
		t.Fatalf("most recent product should sort first on a tie, got %q", entries[0].ProductName)
	}
}

func TestBuildTriage_Alerts(t *testing.T) {
	weight := 7.0
	p := triageProduct("flagged", nil, nil)
	p.IsFamousBrand = true
	p.Fragile = true
	p.WeightKg = &weight

	engine := NewEngine(DefaultConfig())
	entries := engine.BuildTriage(TriageInput{Products: []models.Product{p}})

	alerts := entries[0].Alerts
	if len(alerts) < 6 {
		t.Fatalf("expected missing-data plus risk alerts, got %v", alerts)
	}
}
