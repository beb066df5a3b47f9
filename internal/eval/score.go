package eval

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mannaalive/import-api/internal/models"
)

// Normalize clamps v into [0,1] relative to the [lo,hi] range, linear in
// between. Callers pass 0 for missing values, so absence scores worst-case.
func Normalize(v, lo, hi float64) float64 {
	if v <= lo {
		return 0
	}
	if v >= hi {
		return 1
	}
	return (v - lo) / (hi - lo)
}

// ScoreInput is everything the scorer looks at. Market and LatestSimulation
// may be nil; missing data lowers scores but never fails the computation.
type ScoreInput struct {
	Product          models.Product
	Market           *models.MarketSnapshot
	LatestSimulation *models.ImportSimulation
}

// ReasonsBuilder turns a computed breakdown into short decision-oriented
// bullets. It is an extension point so alternative UIs can phrase (or
// localize) the justification without forking the sub-score formulas.
type ReasonsBuilder func(in ScoreInput, b ScoreBreakdown) []string

// ScoreEngine computes the multi-factor viability score. There is exactly one
// implementation of the sub-score formulas; only the reasons text is
// pluggable.
type ScoreEngine struct {
	Reasons ReasonsBuilder
}

func NewScoreEngine() *ScoreEngine {
	return &ScoreEngine{Reasons: DefaultReasons}
}

var errInconsistentData = errors.New("inconsistent numeric data")

// Compute returns the score breakdown, or an error when the record carries
// non-finite numbers (a malformed row must not poison a batch with NaN).
func (e *ScoreEngine) Compute(in ScoreInput) (ScoreBreakdown, error) {
	if err := checkFinite(in); err != nil {
		return ScoreBreakdown{}, err
	}

	var notes []string

	// Demand
	var salesPerDay, salesPerMonth, visits *int
	if in.Market != nil {
		salesPerDay = in.Market.SalesPerDay
		salesPerMonth = in.Market.SalesPerMonth
		visits = in.Market.Visits
	}

	salesDayScore := Normalize(intAsFloat(salesPerDay), 0, 150) * 100
	salesMonthScore := Normalize(intAsFloat(salesPerMonth), 0, 4000) * 100
	visitsScore := Normalize(intAsFloat(visits), 0, 10000) * 100
	demandScore := 0.6*salesDayScore + 0.3*salesMonthScore + 0.1*visitsScore

	if salesPerDay != nil {
		notes = append(notes, fmt.Sprintf("Demand: ~%d sales/day.", *salesPerDay))
	}
	if in.Market == nil {
		notes = append(notes, "No market data recorded; demand treated as neutral/low.")
	}

	// Competition
	var fullRatio, competitorCount *float64
	rankingPosition := 50000.0
	if in.Market != nil {
		fullRatio = in.Market.FullRatioPct
		if in.Market.CompetitorCount != nil {
			c := float64(*in.Market.CompetitorCount)
			competitorCount = &c
		}
		if in.Market.RankingPosition != nil {
			rankingPosition = float64(*in.Market.RankingPosition)
		}
	}

	fullPenalty := Normalize(floatOrZero(fullRatio), 0, 80) * 100
	competitorsPenalty := Normalize(floatOrZero(competitorCount), 0, 30) * 100
	rankingPenalty := Normalize(rankingPosition, 1, 50000) * 100
	competitionScore := math.Max(0, 100-(0.4*fullPenalty+0.4*competitorsPenalty+0.2*rankingPenalty))

	if fullRatio != nil {
		notes = append(notes, fmt.Sprintf("FULL competition: ~%.0f%% of the leading listings.", *fullRatio))
	}
	if competitorCount != nil {
		notes = append(notes, fmt.Sprintf("Relevant competitors: ~%.0f.", *competitorCount))
	}

	// Margin (latest persisted simulation)
	var marginPct *float64
	if in.LatestSimulation != nil {
		m := in.LatestSimulation.EstimatedMarginPct
		marginPct = &m
	}
	marginScore := Normalize(floatOrZero(marginPct), 10, 60) * 100

	if marginPct != nil {
		notes = append(notes, fmt.Sprintf("Estimated margin from the latest simulation: %.1f%%.", *marginPct))
	} else {
		notes = append(notes, "No import simulation recorded; margin treated as low.")
	}

	// Risk
	riskScore := 100.0
	weightKg := floatOrZero(in.Product.WeightKg)
	if weightKg > 5 {
		riskScore -= 30
		notes = append(notes, "Heavy product (>5kg) — bad fit for the simplified import regime.")
	} else if weightKg > 2 {
		riskScore -= 15
		notes = append(notes, "Moderately heavy product (>2kg).")
	}
	if in.Product.Fragile {
		riskScore -= 15
		notes = append(notes, "Fragile product — higher logistics risk.")
	}
	if in.Product.IsFamousBrand && !in.Product.HasBrandAuthorization {
		riskScore -= 40
		notes = append(notes, "Famous brand without authorization — high IP/seizure risk.")
	}
	riskScore = math.Max(0, math.Min(100, riskScore))

	total := 0.40*demandScore + 0.25*competitionScore + 0.25*marginScore + 0.10*riskScore

	b := ScoreBreakdown{
		TotalScore:     int(math.Round(total)),
		Classification: classify(total),

		DemandScore:      int(math.Round(demandScore)),
		CompetitionScore: int(math.Round(competitionScore)),
		MarginScore:      int(math.Round(marginScore)),
		RiskScore:        int(math.Round(riskScore)),

		SalesPerDay:         salesPerDay,
		SalesPerMonth:       salesPerMonth,
		Visits:              visits,
		EstimatedMarginPct:  marginPct,
		HasLatestSimulation: in.LatestSimulation != nil,

		Notes: notes,
	}
	if in.Market != nil {
		b.CompetitorCount = in.Market.CompetitorCount
		b.FullRatioPct = in.Market.FullRatioPct
		b.PriceAverageBRL = in.Market.PriceAverageBRL
	}

	reasons := e.Reasons
	if reasons == nil {
		reasons = DefaultReasons
	}
	b.Reasons = reasons(in, b)

	return b, nil
}

func classify(total float64) string {
	switch {
	case total >= 80:
		return ClassTopTier
	case total >= 60:
		return ClassViable
	case total >= 40:
		return ClassRisky
	default:
		return ClassDiscard
	}
}

// DefaultReasons produces at most five bullets in a fixed order:
// classification, demand, competition, margin, risk flags.
func DefaultReasons(in ScoreInput, b ScoreBreakdown) []string {
	var reasons []string

	switch b.Classification {
	case ClassTopTier:
		reasons = append(reasons, fmt.Sprintf("Top tier (%d/100): strong candidate, prioritize now.", b.TotalScore))
	case ClassViable:
		reasons = append(reasons, fmt.Sprintf("Viable (%d/100): worth a full evaluation before discarding.", b.TotalScore))
	case ClassRisky:
		reasons = append(reasons, fmt.Sprintf("Risky (%d/100): only proceed if the conservative scenario closes well.", b.TotalScore))
	default:
		reasons = append(reasons, fmt.Sprintf("Weak (%d/100): only proceed with a specific thesis or strategy.", b.TotalScore))
	}

	switch {
	case in.Market != nil && in.Market.SalesPerDay != nil:
		reasons = append(reasons, fmt.Sprintf("Demand: ~%d sales/day (turnover signal).", *in.Market.SalesPerDay))
	case in.Market != nil:
		reasons = append(reasons, "Demand: partial data — fill in sales/day to sharpen the decision.")
	default:
		reasons = append(reasons, "Demand: no market data — turnover cannot be confirmed.")
	}

	if in.Market != nil {
		var parts []string
		if in.Market.CompetitorCount != nil {
			parts = append(parts, fmt.Sprintf("%d competitors", *in.Market.CompetitorCount))
		}
		if in.Market.FullRatioPct != nil {
			parts = append(parts, fmt.Sprintf("%.0f%% FULL", *in.Market.FullRatioPct))
		}
		if len(parts) > 0 {
			reasons = append(reasons, "Competition: "+strings.Join(parts, " • ")+".")
		} else {
			reasons = append(reasons, "Competition: partial data — fill in competitors/FULL ratio.")
		}
	} else {
		reasons = append(reasons, "Competition: no market data — risk of walking into a price war.")
	}

	if in.LatestSimulation != nil {
		verdict := "rejected"
		if in.LatestSimulation.Approved {
			verdict = "approved"
		}
		reasons = append(reasons, fmt.Sprintf("Margin (simulation): ~%.1f%% (%s).", in.LatestSimulation.EstimatedMarginPct, verdict))
	} else {
		reasons = append(reasons, "Margin: no simulation — run scenarios to confirm viability.")
	}

	var riskFlags []string
	weightKg := floatOrZero(in.Product.WeightKg)
	if weightKg > 5 {
		riskFlags = append(riskFlags, ">5kg (bad for simplified import)")
	} else if weightKg > 2 {
		riskFlags = append(riskFlags, ">2kg (freight weighs in)")
	}
	if in.Product.Fragile {
		riskFlags = append(riskFlags, "fragile (logistics risk)")
	}
	if in.Product.IsFamousBrand && !in.Product.HasBrandAuthorization {
		riskFlags = append(riskFlags, "famous brand without authorization (IP)")
	}
	if len(riskFlags) > 0 {
		reasons = append(reasons, "Risk: "+strings.Join(riskFlags, " • ")+".")
	}

	if len(reasons) > 5 {
		reasons = reasons[:5]
	}
	return reasons
}

func checkFinite(in ScoreInput) error {
	values := []*float64{
		in.Product.WeightKg,
		in.Product.LengthCm, in.Product.WidthCm, in.Product.HeightCm,
		in.Product.FobPriceUSD, in.Product.FreightUSD, in.Product.InsuranceUSD,
	}
	if in.Market != nil {
		values = append(values, in.Market.PriceAverageBRL, in.Market.FullRatioPct, in.Market.AvgReviews)
	}
	for _, v := range values {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return errInconsistentData
		}
	}
	if s := in.LatestSimulation; s != nil {
		for _, v := range []float64{s.EstimatedMarginPct, s.UnitCostBRL, s.TargetSalePriceBRL, s.ExchangeRate} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return errInconsistentData
			}
		}
	}
	return nil
}

func intAsFloat(v *int) float64 {
	if v == nil {
		return 0
	}
	return float64(*v)
}
