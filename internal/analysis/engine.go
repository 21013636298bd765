package analysis

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Input is the fully materialized snapshot one analysis run consumes.
// Collaborators populate it; the engine never touches the network.
type Input struct {
	// Events may arrive in any order; the engine sorts by timestamp.
	Events []RawEvent

	StakingContract string
	TokenContract   string

	// WindowDays is the analysis window length, at least 1.
	WindowDays int

	// TotalSupply is the token supply in base units, strictly positive.
	TotalSupply decimal.Decimal

	// StakedBalance is the on-chain staked balance when the collaborator
	// could fetch it; nil triggers the estimate-from-activity fallback.
	StakedBalance *decimal.Decimal

	// Now anchors the window end. The caller supplies it so repeated
	// runs over the same snapshot produce identical reports.
	Now time.Time

	// AnchorToLatestEvent ends the window at the newest event timestamp
	// instead of Now.
	AnchorToLatestEvent bool
}

// Report is the terminal aggregate handed back to collaborators. It is
// structured for direct JSON serialization or console rendering.
type Report struct {
	GeneratedAt     time.Time `json:"generated_at"`
	StakingContract string    `json:"staking_contract"`
	TokenContract   string    `json:"token_contract"`

	WindowDays  int       `json:"window_days"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`

	Metrics         FlowMetrics      `json:"metrics"`
	Projection      Projection       `json:"projection"`
	Risk            RiskAssessment   `json:"risk"`
	Recommendations []Recommendation `json:"recommendations"`
	NextReview      string           `json:"next_review"`

	Buckets       []DayBucket `json:"daily_flows"`
	IgnoredEvents int         `json:"ignored_events"`
}

var (
	// ErrInvalidWindow rejects non-positive analysis windows.
	ErrInvalidWindow = errors.New("analysis: window must cover at least one day")
	// ErrInvalidSupply rejects zero or negative total supply.
	ErrInvalidSupply = errors.New("analysis: total supply must be positive")
)

// Engine runs the classification, aggregation, and scoring pipeline.
// It holds only immutable configuration, so one Engine may serve
// concurrent analyses.
type Engine struct {
	classifier *Classifier
	thresholds Thresholds
}

// NewEngine builds an engine from the configured selector lists and
// threshold tables.
func NewEngine(stakeSignatures, unstakeSignatures []string, thresholds Thresholds) *Engine {
	return &Engine{
		classifier: NewClassifier(stakeSignatures, unstakeSignatures),
		thresholds: thresholds,
	}
}

// Analyze consumes one input snapshot and produces one Report. It is
// all-or-nothing: precondition violations return an error before any
// stage runs, and a valid input always yields a complete report, even
// with zero events.
func (e *Engine) Analyze(in Input) (*Report, error) {
	if in.WindowDays < 1 {
		return nil, fmt.Errorf("%w: got %d days", ErrInvalidWindow, in.WindowDays)
	}
	if !in.TotalSupply.IsPositive() {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidSupply, in.TotalSupply)
	}

	anchor := in.Now.UTC()
	if anchor.IsZero() {
		anchor = time.Now().UTC()
	}

	classified := e.classifier.ClassifyAll(in.Events)
	sortEvents(classified)

	ignored := 0
	for _, event := range classified {
		if event.Kind == KindIgnored {
			ignored++
		}
	}

	if in.AnchorToLatestEvent {
		if latest, ok := latestTimestamp(classified); ok {
			anchor = latest
		}
	}

	buckets := BucketEvents(classified, in.WindowDays, anchor)
	metrics := ComputeMetrics(buckets, classified, in.TotalSupply, in.StakedBalance, e.thresholds)
	projection := Project(metrics, in.WindowDays, e.thresholds)
	risk := Score(metrics, projection, e.thresholds)

	return &Report{
		GeneratedAt:     anchor,
		StakingContract: in.StakingContract,
		TokenContract:   in.TokenContract,
		WindowDays:      in.WindowDays,
		WindowStart:     buckets[0].Day,
		WindowEnd:       buckets[len(buckets)-1].Day.AddDate(0, 0, 1),
		Metrics:         metrics,
		Projection:      projection,
		Risk:            risk,
		Recommendations: BuildSummary(metrics, projection, risk),
		NextReview:      NextReview(risk.OverallTier),
		Buckets:         buckets,
		IgnoredEvents:   ignored,
	}, nil
}

func latestTimestamp(events []ClassifiedEvent) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, event := range events {
		if event.Timestamp.After(latest) {
			latest = event.Timestamp
			found = true
		}
	}
	return latest.UTC(), found
}
