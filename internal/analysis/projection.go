package analysis

import "github.com/shopspring/decimal"

// Projection extrapolates near-term volumes from the window's daily
// averages. The extrapolation is deliberately linear with no decay or
// seasonality; that is a known limitation of the model, not a bug.
type Projection struct {
	Staking30d         decimal.Decimal `json:"staking_30d"`
	Unstaking30d       decimal.Decimal `json:"unstaking_30d"`
	NetFlow30d         decimal.Decimal `json:"net_flow_30d"`
	SellingPressure14d decimal.Decimal `json:"selling_pressure_14d"`
	LowConfidence      bool            `json:"low_confidence"`
}

var (
	dec30 = decimal.NewFromInt(30)
	dec14 = decimal.NewFromInt(14)
)

// Project builds the 30-day volume projections and the 14-day selling
// pressure figure. Windows shorter than the configured minimum still
// project (linear extrapolation is scale invariant) but are flagged.
func Project(m FlowMetrics, windowDays int, th Thresholds) Projection {
	return Projection{
		Staking30d:         m.AvgDailyStaked.Mul(dec30),
		Unstaking30d:       m.AvgDailyUnstaked.Mul(dec30),
		NetFlow30d:         m.AvgDailyNetFlow.Mul(dec30),
		SellingPressure14d: m.AvgDailyUnstaked.Mul(dec14),
		LowConfidence:      windowDays < th.LowConfidenceWindowDays,
	}
}
