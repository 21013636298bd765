package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func testEngine() *Engine {
	return NewEngine(
		[]string{"0xa694fc3a", "0xb6b55f25"},
		[]string{"0x2e1a7d4d", "0x3d18b912"},
		DefaultThresholds(),
	)
}

func rawAt(selector string, ts time.Time, amount int64) RawEvent {
	return RawEvent{
		TxHash:    fmt.Sprintf("0x%d", ts.UnixNano()),
		Timestamp: ts,
		Sender:    "0xsender",
		Selector:  selector,
		Amount:    decimal.NewFromInt(amount),
	}
}

func TestAnalyzeRejectsBadPreconditions(t *testing.T) {
	engine := testEngine()

	_, err := engine.Analyze(Input{
		WindowDays:  0,
		TotalSupply: decimal.NewFromInt(1),
		Now:         testAnchor,
	})
	if !errors.Is(err, ErrInvalidWindow) {
		t.Fatalf("zero-day window should fail with ErrInvalidWindow, got %v", err)
	}

	_, err = engine.Analyze(Input{
		WindowDays:  14,
		TotalSupply: decimal.Zero,
		Now:         testAnchor,
	})
	if !errors.Is(err, ErrInvalidSupply) {
		t.Fatalf("zero supply should fail with ErrInvalidSupply, got %v", err)
	}
}

func TestAnalyzeEmptyEvents(t *testing.T) {
	engine := testEngine()

	report, err := engine.Analyze(Input{
		WindowDays:  14,
		TotalSupply: decimal.NewFromInt(1_000_000_000),
		Now:         testAnchor,
	})
	if err != nil {
		t.Fatalf("no events is a valid, reportable state: %v", err)
	}

	if !report.Metrics.StakingPercentage.IsZero() {
		t.Fatalf("empty window should report 0%% staked, got %s", report.Metrics.StakingPercentage)
	}
	if report.Risk.OverallTier != TierCritical {
		t.Fatalf("0%% staked lands in the critical tier, got %s", report.Risk.OverallTier)
	}
	if !report.Projection.Staking30d.IsZero() || !report.Projection.SellingPressure14d.IsZero() {
		t.Fatal("projections over an empty window must be zero")
	}
	if len(report.Buckets) != 14 {
		t.Fatalf("window must stay dense even without events, got %d buckets", len(report.Buckets))
	}
	if len(report.Recommendations) == 0 {
		t.Fatal("critical report must carry recommendations")
	}
}

func TestAnalyzeDeterministic(t *testing.T) {
	engine := testEngine()
	input := Input{
		StakingContract: "0x1111111111111111111111111111111111111111",
		TokenContract:   "0x2222222222222222222222222222222222222222",
		WindowDays:      14,
		TotalSupply:     decimal.NewFromInt(1_000_000_000),
		Now:             testAnchor,
	}
	for i := 0; i < 40; i++ {
		ts := testAnchor.AddDate(0, 0, -(i % 14)).Add(time.Duration(i) * time.Minute)
		selector := "0xa694fc3a"
		if i%3 == 0 {
			selector = "0x2e1a7d4d"
		}
		input.Events = append(input.Events, rawAt(selector, ts, int64(1000+i)))
	}

	first, err := engine.Analyze(input)
	if err != nil {
		t.Fatal(err)
	}
	second, err := engine.Analyze(input)
	if err != nil {
		t.Fatal(err)
	}

	firstJSON, err := json.Marshal(first)
	if err != nil {
		t.Fatal(err)
	}
	secondJSON, err := json.Marshal(second)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(firstJSON, secondJSON) {
		t.Fatal("identical input snapshots must serialize to identical reports")
	}
}

func TestAnalyzeOrderInsensitive(t *testing.T) {
	engine := testEngine()
	base := Input{
		WindowDays:  7,
		TotalSupply: decimal.NewFromInt(1_000_000),
		Now:         testAnchor,
	}
	events := []RawEvent{
		rawAt("0xa694fc3a", testAnchor.Add(-2*time.Hour), 300),
		rawAt("0x2e1a7d4d", testAnchor.Add(-30*time.Hour), 100),
		rawAt("0xa694fc3a", testAnchor.Add(-50*time.Hour), 200),
	}

	forward := base
	forward.Events = events
	reversed := base
	for i := len(events) - 1; i >= 0; i-- {
		reversed.Events = append(reversed.Events, events[i])
	}

	a, err := engine.Analyze(forward)
	if err != nil {
		t.Fatal(err)
	}
	b, err := engine.Analyze(reversed)
	if err != nil {
		t.Fatal(err)
	}

	aJSON, _ := json.Marshal(a)
	bJSON, _ := json.Marshal(b)
	if !bytes.Equal(aJSON, bJSON) {
		t.Fatal("event order must not affect the report")
	}
}

func TestAnalyzeGrowingProtocol(t *testing.T) {
	engine := testEngine()
	staked := decimal.NewFromInt(105_000_000) // 10.5% of supply

	input := Input{
		StakingContract: "0x1111111111111111111111111111111111111111",
		WindowDays:      14,
		TotalSupply:     decimal.NewFromInt(1_000_000_000),
		StakedBalance:   &staked,
		Now:             testAnchor,
	}
	for day := 0; day < 14; day++ {
		ts := testAnchor.AddDate(0, 0, -day).Add(time.Hour)
		input.Events = append(input.Events, rawAt("0xa694fc3a", ts, 10_000))
	}

	report, err := engine.Analyze(input)
	if err != nil {
		t.Fatal(err)
	}

	if report.Metrics.Trend != TrendGrowth {
		t.Fatalf("uninterrupted inflow should read as growth, got %s", report.Metrics.Trend)
	}
	if report.Risk.OverallTier != TierModerate {
		t.Fatalf("10.5%% staked should land in the moderate tier, got %s", report.Risk.OverallTier)
	}
	if report.Projection.LowConfidence {
		t.Fatal("a full 14-day window is not low confidence")
	}
	if report.Metrics.BalanceSource != BalanceSourceProvided {
		t.Fatalf("provided balance should be used as is, got %s", report.Metrics.BalanceSource)
	}
}

func TestAnalyzeAnchorsToLatestEvent(t *testing.T) {
	engine := testEngine()
	latest := testAnchor.AddDate(0, 0, -40)

	report, err := engine.Analyze(Input{
		WindowDays:          7,
		TotalSupply:         decimal.NewFromInt(1_000_000),
		Now:                 testAnchor,
		AnchorToLatestEvent: true,
		Events: []RawEvent{
			rawAt("0xa694fc3a", latest.AddDate(0, 0, -3), 100),
			rawAt("0xa694fc3a", latest, 200),
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if !report.GeneratedAt.Equal(latest) {
		t.Fatalf("window should anchor on the newest event: %s", report.GeneratedAt)
	}
	total := 0
	for _, bucket := range report.Buckets {
		total += bucket.StakeCount
	}
	if total != 2 {
		t.Fatalf("both events fall in the re-anchored window, counted %d", total)
	}
}

func TestAnalyzeCountsIgnoredEvents(t *testing.T) {
	engine := testEngine()

	report, err := engine.Analyze(Input{
		WindowDays:  7,
		TotalSupply: decimal.NewFromInt(1_000_000),
		Now:         testAnchor,
		Events: []RawEvent{
			rawAt("0xa694fc3a", testAnchor.Add(-time.Hour), 100),
			rawAt("0xdeadbeef", testAnchor.Add(-2*time.Hour), 100),
			rawAt("0x095ea7b3", testAnchor.Add(-3*time.Hour), 100),
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if report.IgnoredEvents != 2 {
		t.Fatalf("expected 2 ignored events, got %d", report.IgnoredEvents)
	}
	if report.Metrics.StakeEvents != 1 {
		t.Fatalf("expected 1 stake event, got %d", report.Metrics.StakeEvents)
	}
}

func TestAnalyzeWindowBounds(t *testing.T) {
	engine := testEngine()

	report, err := engine.Analyze(Input{
		WindowDays:  7,
		TotalSupply: decimal.NewFromInt(1_000_000),
		Now:         testAnchor,
	})
	if err != nil {
		t.Fatal(err)
	}

	if span := report.WindowEnd.Sub(report.WindowStart); span != 7*24*time.Hour {
		t.Fatalf("window bounds should span exactly 7 days, got %s", span)
	}
	if !report.WindowStart.Equal(report.Buckets[0].Day) {
		t.Fatal("window start must match the first bucket day")
	}
}
