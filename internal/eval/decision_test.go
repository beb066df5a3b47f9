package eval

import "testing"

func TestDecide_BlockersDominate(t *testing.T) {
	blockers := []Blocker{{Key: "brand_risk"}}
	// Even with perfect data and an approved conservative scenario.
	decision, _ := Decide(blockers, true, 300, 10, ScenarioResult{Approved: true})
	if decision != DecisionReject {
		t.Fatalf("expected reject, got %v", decision)
	}
}

func TestDecide_MissingDataPrecedesEconomics(t *testing.T) {
	approved := ScenarioResult{Approved: true}

	if d, _ := Decide(nil, false, 300, 10, approved); d != DecisionNeedsData {
		t.Fatalf("no market data: expected needs_data, got %v", d)
	}
	if d, _ := Decide(nil, true, 0, 10, approved); d != DecisionNeedsData {
		t.Fatalf("no target price: expected needs_data, got %v", d)
	}
	if d, _ := Decide(nil, true, 300, 0, approved); d != DecisionNeedsData {
		t.Fatalf("no FOB: expected needs_data, got %v", d)
	}
}

func TestDecide_ConservativeVerdict(t *testing.T) {
	d, reason := Decide(nil, true, 300, 10, ScenarioResult{Approved: true})
	if d != DecisionApprove {
		t.Fatalf("expected approve, got %v (%s)", d, reason)
	}

	d, reason = Decide(nil, true, 300, 10, ScenarioResult{Approved: false, Reason: "margin below 35% conservative minimum"})
	if d != DecisionReject {
		t.Fatalf("expected reject, got %v", d)
	}
	if reason != "margin below 35% conservative minimum" {
		t.Fatalf("the scenario reason should surface, got %q", reason)
	}

	d, reason = Decide(nil, true, 300, 10, ScenarioResult{Approved: false})
	if d != DecisionReject || reason == "" {
		t.Fatalf("reasonless rejection should still explain itself, got %v %q", d, reason)
	}
}
