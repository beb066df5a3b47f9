package eval

// Decide aggregates blockers, data presence and the conservative scenario
// into the final verdict. The precedence is load-bearing: blockers always
// dominate, and missing data always precedes an economics verdict.
func Decide(blockers []Blocker, hasMarketData bool, targetPriceBRL, fobUnitUSD float64, conservative ScenarioResult) (Decision, string) {
	if len(blockers) > 0 {
		return DecisionReject, "There are objective blockers (risk/compliance) before moving on."
	}
	if !hasMarketData || targetPriceBRL <= 0 || fobUnitUSD <= 0 {
		return DecisionNeedsData, "Critical inputs are missing for a safe decision."
	}
	if conservative.Approved {
		return DecisionApprove, "Approved in the conservative scenario with no blockers."
	}
	if conservative.Reason != "" {
		return DecisionReject, conservative.Reason
	}
	return DecisionReject, "Rejected in the conservative scenario."
}
