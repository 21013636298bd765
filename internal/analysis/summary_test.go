package analysis

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestSummaryCriticalTier(t *testing.T) {
	r := RiskAssessment{OverallTier: TierCritical, LiquidityRisk: RiskLow}

	recs := BuildSummary(FlowMetrics{}, Projection{}, r)

	if len(recs) != 2 {
		t.Fatalf("critical tier should add two recommendations, got %d", len(recs))
	}
	for _, rec := range recs {
		if rec.Priority != PriorityCritical {
			t.Fatalf("critical tier recommendations must carry critical priority, got %s", rec.Priority)
		}
	}
}

func TestSummaryLiquidityWarningIsParameterized(t *testing.T) {
	r := RiskAssessment{OverallTier: TierGood, LiquidityRisk: RiskHigh}
	p := Projection{SellingPressure14d: decimal.NewFromInt(123_456)}

	recs := BuildSummary(FlowMetrics{}, p, r)

	found := false
	for _, rec := range recs {
		if strings.Contains(rec.Message, "123456") && rec.Priority == PriorityHigh {
			found = true
		}
	}
	if !found {
		t.Fatalf("liquidity warning should embed the projected pressure, got %+v", recs)
	}
}

func TestSummaryDeclineAndRetention(t *testing.T) {
	m := FlowMetrics{Trend: TrendDecline, NetFlow: decimal.NewFromInt(-5000)}
	r := RiskAssessment{OverallTier: TierModerate, GrowthSustainability: RiskLow}

	recs := BuildSummary(m, Projection{}, r)

	var sawDecline, sawRetention bool
	for _, rec := range recs {
		if strings.Contains(rec.Message, "negative flow") {
			sawDecline = true
		}
		if strings.Contains(rec.Message, "incentives") {
			sawRetention = true
		}
	}
	if !sawDecline || !sawRetention {
		t.Fatalf("decline and low sustainability should both produce advice, got %+v", recs)
	}
}

func TestSummaryLowConfidenceNote(t *testing.T) {
	r := RiskAssessment{OverallTier: TierGood}

	recs := BuildSummary(FlowMetrics{}, Projection{LowConfidence: true}, r)

	if len(recs) != 1 || recs[0].Priority != PriorityNormal {
		t.Fatalf("short windows should produce one normal-priority note, got %+v", recs)
	}
	if !strings.Contains(recs[0].Message, "low confidence") {
		t.Fatalf("unexpected note text: %s", recs[0].Message)
	}
}

func TestSummaryFallbacks(t *testing.T) {
	excellent := BuildSummary(FlowMetrics{}, Projection{}, RiskAssessment{OverallTier: TierExcellent})
	if len(excellent) != 2 {
		t.Fatalf("healthy report should get the maintain/routine pair, got %+v", excellent)
	}

	good := BuildSummary(FlowMetrics{}, Projection{}, RiskAssessment{OverallTier: TierGood})
	if len(good) != 1 || good[0].Message != "Continue regular monitoring" {
		t.Fatalf("quiet non-excellent report should get the monitoring line, got %+v", good)
	}
}

func TestSummaryDeterministicOrder(t *testing.T) {
	m := FlowMetrics{Trend: TrendDecline, NetFlow: decimal.NewFromInt(-100)}
	p := Projection{SellingPressure14d: decimal.NewFromInt(900), LowConfidence: true}
	r := RiskAssessment{
		OverallTier:          TierCritical,
		LiquidityRisk:        RiskHigh,
		GrowthSustainability: RiskLow,
		MarketImpact:         RiskHigh,
	}

	first := BuildSummary(m, p, r)
	second := BuildSummary(m, p, r)

	if len(first) != len(second) {
		t.Fatalf("rule evaluation must be deterministic: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("recommendation %d differs between runs", i)
		}
	}
	if first[0].Priority != PriorityCritical || first[len(first)-1].Priority != PriorityNormal {
		t.Fatalf("rules should fire critical first, notes last: %+v", first)
	}
}

func TestNextReviewCadence(t *testing.T) {
	cases := map[HealthTier]string{
		TierCritical:  "24 hours",
		TierModerate:  "72 hours",
		TierGood:      "7 days",
		TierExcellent: "7 days",
	}
	for tier, want := range cases {
		if got := NextReview(tier); got != want {
			t.Fatalf("%s: expected %q, got %q", tier, want, got)
		}
	}
}
