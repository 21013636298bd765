package analysis

import "fmt"

// Priority orders recommendations for the reader.
type Priority string

const (
	PriorityCritical Priority = "CRITICAL"
	PriorityHigh     Priority = "HIGH"
	PriorityNormal   Priority = "NORMAL"
)

// Recommendation is one line of canned, parameterized advice.
type Recommendation struct {
	Priority Priority `json:"priority"`
	Message  string   `json:"message"`
}

// BuildSummary maps risk and metric conditions onto a fixed rule set of
// advice strings. Output is fully deterministic for identical inputs:
// rules fire in a fixed order and the text is templated, never free
// form.
func BuildSummary(m FlowMetrics, p Projection, r RiskAssessment) []Recommendation {
	var recs []Recommendation

	if r.OverallTier == TierCritical {
		recs = append(recs,
			Recommendation{PriorityCritical, "Immediate action required: protocol health is critical"},
			Recommendation{PriorityCritical, "Review staking strategy and communicate with the community"},
		)
	}

	if r.LiquidityRisk == RiskHigh {
		recs = append(recs, Recommendation{
			PriorityHigh,
			fmt.Sprintf("Liquidity risk is high: selling pressure of %s tokens expected within 14 days", p.SellingPressure14d.StringFixed(0)),
		})
	}

	if m.Trend == TrendDecline {
		recs = append(recs, Recommendation{
			PriorityHigh,
			fmt.Sprintf("Analyze causes of negative flow: net %s tokens over the window", m.NetFlow.StringFixed(0)),
		})
	}

	if r.GrowthSustainability == RiskLow {
		recs = append(recs, Recommendation{
			PriorityHigh,
			"Implement incentives to reduce unstaking and retain stakers",
		})
	}

	if r.MarketImpact == RiskHigh {
		recs = append(recs, Recommendation{
			PriorityHigh,
			fmt.Sprintf("Prepare liquidity to absorb a projected 30-day net flow of %s tokens", p.NetFlow30d.StringFixed(0)),
		})
	}

	if p.LowConfidence {
		recs = append(recs, Recommendation{
			PriorityNormal,
			"Projections are low confidence: observed window is shorter than seven days",
		})
	}

	switch {
	case len(recs) == 0 && r.OverallTier == TierExcellent:
		recs = append(recs,
			Recommendation{PriorityNormal, "Maintain current strategies"},
			Recommendation{PriorityNormal, "Routine monitoring is sufficient"},
		)
	case len(recs) == 0:
		recs = append(recs, Recommendation{PriorityNormal, "Continue regular monitoring"})
	}

	return recs
}

// NextReview suggests a re-check cadence from the overall tier.
func NextReview(tier HealthTier) string {
	switch tier {
	case TierCritical:
		return "24 hours"
	case TierModerate:
		return "72 hours"
	default:
		return "7 days"
	}
}
