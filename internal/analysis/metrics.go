package analysis

import (
	"github.com/shopspring/decimal"
)

// Trend classifies the direction of recent staking flow.
type Trend string

const (
	TrendGrowth  Trend = "GROWTH"
	TrendStable  Trend = "STABLE"
	TrendDecline Trend = "DECLINE"
)

// BalanceSourceProvided and BalanceSourceEstimated record how the
// staked balance was obtained.
const (
	BalanceSourceProvided  = "provided"
	BalanceSourceEstimated = "estimated_from_activity"
)

// FlowMetrics are the scalar values derived from one analysis window.
type FlowMetrics struct {
	TotalSupply       decimal.Decimal `json:"total_supply"`
	StakedBalance     decimal.Decimal `json:"staked_balance"`
	BalanceSource     string          `json:"balance_source"`
	StakingPercentage decimal.Decimal `json:"staking_percentage"`

	TotalStaked   decimal.Decimal `json:"total_staked"`
	TotalUnstaked decimal.Decimal `json:"total_unstaked"`
	NetFlow       decimal.Decimal `json:"net_flow"`

	AvgDailyStaked   decimal.Decimal `json:"avg_daily_staked"`
	AvgDailyUnstaked decimal.Decimal `json:"avg_daily_unstaked"`
	AvgDailyNetFlow  decimal.Decimal `json:"avg_daily_net_flow"`

	// DailyFlowVolatility is the mean absolute deviation of daily net
	// flow from its average.
	DailyFlowVolatility decimal.Decimal `json:"daily_flow_volatility"`

	StakeEvents     int `json:"stake_events"`
	UnstakeEvents   int `json:"unstake_events"`
	UniqueStakers   int `json:"unique_stakers"`
	UniqueUnstakers int `json:"unique_unstakers"`

	Trend Trend `json:"trend"`
}

var dec100 = decimal.NewFromInt(100)

// ComputeMetrics derives FlowMetrics from the bucket series. The
// classified slice covers the full observed history and feeds the
// balance estimate fallback and the unique-address counts; bucket data
// alone drives every windowed figure.
//
// When stakedBalance is nil, the balance is estimated by summing net
// flow over all classified events (not just the window): the contract's
// balance reflects its whole history, the window is a reporting view.
// Negative estimates are floored at zero.
func ComputeMetrics(buckets []DayBucket, classified []ClassifiedEvent, totalSupply decimal.Decimal, stakedBalance *decimal.Decimal, th Thresholds) FlowMetrics {
	m := FlowMetrics{
		TotalSupply:   totalSupply,
		TotalStaked:   decimal.Zero,
		TotalUnstaked: decimal.Zero,
	}

	for _, bucket := range buckets {
		m.TotalStaked = m.TotalStaked.Add(bucket.Staked)
		m.TotalUnstaked = m.TotalUnstaked.Add(bucket.Unstaked)
		m.StakeEvents += bucket.StakeCount
		m.UnstakeEvents += bucket.UnstakeCount
	}
	m.NetFlow = m.TotalStaked.Sub(m.TotalUnstaked)

	days := decimal.NewFromInt(int64(len(buckets)))
	if !days.IsZero() {
		m.AvgDailyStaked = m.TotalStaked.Div(days)
		m.AvgDailyUnstaked = m.TotalUnstaked.Div(days)
		m.AvgDailyNetFlow = m.NetFlow.Div(days)
		m.DailyFlowVolatility = flowVolatility(buckets, m.AvgDailyNetFlow)
	}

	m.UniqueStakers, m.UniqueUnstakers = countUniqueSenders(classified, buckets)

	if stakedBalance != nil {
		m.StakedBalance = *stakedBalance
		m.BalanceSource = BalanceSourceProvided
	} else {
		m.StakedBalance = estimateBalance(classified)
		m.BalanceSource = BalanceSourceEstimated
	}

	m.StakingPercentage = m.StakedBalance.Div(totalSupply).Mul(dec100)
	m.Trend = classifyTrend(buckets, m, th)

	return m
}

// classifyTrend looks at the net flow of the most recent half of the
// window. It must clear a tolerance expressed as a fraction of the
// window's gross volume before counting as growth or decline, so a
// handful of dust transfers cannot flip the label.
func classifyTrend(buckets []DayBucket, m FlowMetrics, th Thresholds) Trend {
	gross := m.TotalStaked.Add(m.TotalUnstaked)
	if gross.IsZero() {
		return TrendStable
	}

	recentNet := decimal.Zero
	for _, bucket := range buckets[len(buckets)/2:] {
		recentNet = recentNet.Add(bucket.NetFlow())
	}

	switch {
	case recentNet.GreaterThan(gross.Mul(th.TrendGrowthTolerance)):
		return TrendGrowth
	case recentNet.LessThan(gross.Mul(th.TrendDeclineTolerance).Neg()):
		return TrendDecline
	default:
		return TrendStable
	}
}

// DisplayPercentage clamps the staking percentage to [0, 100] for
// rendering. The raw value stays unclamped everywhere else.
func (m FlowMetrics) DisplayPercentage() decimal.Decimal {
	switch {
	case m.StakingPercentage.IsNegative():
		return decimal.Zero
	case m.StakingPercentage.GreaterThan(dec100):
		return dec100
	default:
		return m.StakingPercentage
	}
}

func flowVolatility(buckets []DayBucket, avg decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, bucket := range buckets {
		sum = sum.Add(bucket.NetFlow().Sub(avg).Abs())
	}
	return sum.Div(decimal.NewFromInt(int64(len(buckets))))
}

func estimateBalance(classified []ClassifiedEvent) decimal.Decimal {
	balance := decimal.Zero
	for _, event := range classified {
		switch event.Kind {
		case KindStake:
			balance = balance.Add(event.Amount)
		case KindUnstake:
			balance = balance.Sub(event.Amount)
		}
	}
	if balance.IsNegative() {
		return decimal.Zero
	}
	return balance
}

// countUniqueSenders counts distinct stake and unstake senders within
// the bucketed window only.
func countUniqueSenders(classified []ClassifiedEvent, buckets []DayBucket) (stakers, unstakers int) {
	if len(buckets) == 0 {
		return 0, 0
	}
	start := buckets[0].Day
	end := buckets[len(buckets)-1].Day.AddDate(0, 0, 1)

	stakeSet := make(map[string]struct{})
	unstakeSet := make(map[string]struct{})
	for _, event := range classified {
		ts := event.Timestamp.UTC()
		if ts.Before(start) || !ts.Before(end) {
			continue
		}
		switch event.Kind {
		case KindStake:
			stakeSet[event.Sender] = struct{}{}
		case KindUnstake:
			unstakeSet[event.Sender] = struct{}{}
		}
	}
	return len(stakeSet), len(unstakeSet)
}
