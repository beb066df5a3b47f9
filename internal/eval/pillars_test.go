package eval

import (
	"testing"

	"github.com/mannaalive/import-api/internal/models"
)

func TestAssessPillars_KeysAndOrder(t *testing.T) {
	pillars := AssessPillars(PillarInput{})
	want := []string{"market", "unit_economics", "operations", "risk"}
	if len(pillars) != len(want) {
		t.Fatalf("expected %d pillars, got %d", len(want), len(pillars))
	}
	for i, p := range pillars {
		if p.Key != want[i] {
			t.Fatalf("pillar %d: expected %q, got %q", i, want[i], p.Key)
		}
		if p.Status == "" || p.Summary == "" {
			t.Fatalf("pillar %q must carry a status and summary", p.Key)
		}
	}
}

func TestAssessMarket_Statuses(t *testing.T) {
	spd5, spd3, spd1 := 5, 3, 1
	comp80, comp81 := 80, 81

	cases := []struct {
		name   string
		market *models.MarketSnapshot
		want   PillarStatus
	}{
		{"no market data", nil, StatusUnknown},
		{"partial data", &models.MarketSnapshot{SalesPerDay: &spd5}, StatusYellow},
		{"healthy", &models.MarketSnapshot{SalesPerDay: &spd5, CompetitorCount: &comp80}, StatusGreen},
		{"crowded", &models.MarketSnapshot{SalesPerDay: &spd3, CompetitorCount: &comp81}, StatusYellow},
		{"dead", &models.MarketSnapshot{SalesPerDay: &spd1, CompetitorCount: &comp80}, StatusRed},
	}
	for _, c := range cases {
		got := assessMarket(PillarInput{Market: c.market})
		if got.Status != c.want {
			t.Fatalf("%s: expected %v, got %v", c.name, c.want, got.Status)
		}
	}
}

func TestAssessUnitEconomics_FollowsConservativeVerdict(t *testing.T) {
	approved := PillarInput{
		FobUnitUSD:   10,
		Conservative: ScenarioResult{TargetSalePriceBRL: 300, Approved: true},
	}
	if got := assessUnitEconomics(approved); got.Status != StatusGreen {
		t.Fatalf("approved conservative: expected green, got %v", got.Status)
	}

	rejected := PillarInput{
		FobUnitUSD:   10,
		Conservative: ScenarioResult{TargetSalePriceBRL: 300, Approved: false, Reason: "margin below 35% conservative minimum"},
	}
	got := assessUnitEconomics(rejected)
	if got.Status != StatusRed {
		t.Fatalf("rejected conservative: expected red, got %v", got.Status)
	}
	if got.Summary != "margin below 35% conservative minimum" {
		t.Fatalf("the scenario reason should surface as the summary, got %q", got.Summary)
	}

	noAnchor := PillarInput{Conservative: ScenarioResult{Approved: true}}
	if got := assessUnitEconomics(noAnchor); got.Status != StatusYellow {
		t.Fatalf("missing price/FOB: expected yellow, got %v", got.Status)
	}
}

func TestAssessOperations_NeedsDimensions(t *testing.T) {
	if got := assessOperations(PillarInput{HasDimensions: true}); got.Status != StatusGreen {
		t.Fatalf("expected green, got %v", got.Status)
	}
	if got := assessOperations(PillarInput{}); got.Status != StatusYellow {
		t.Fatalf("expected yellow, got %v", got.Status)
	}
}

func TestAssessRisk_BlockersTurnRed(t *testing.T) {
	if got := assessRisk(PillarInput{}); got.Status != StatusGreen {
		t.Fatalf("expected green, got %v", got.Status)
	}
	got := assessRisk(PillarInput{Blockers: []Blocker{{Key: "antidumping"}}})
	if got.Status != StatusRed {
		t.Fatalf("expected red with blockers, got %v", got.Status)
	}
}
