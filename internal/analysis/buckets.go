package analysis

import (
	"time"

	"github.com/shopspring/decimal"
)

// DayBucket accumulates flows for one UTC calendar day.
type DayBucket struct {
	Day          time.Time       `json:"day"`
	Staked       decimal.Decimal `json:"staked"`
	Unstaked     decimal.Decimal `json:"unstaked"`
	StakeCount   int             `json:"stake_count"`
	UnstakeCount int             `json:"unstake_count"`
}

// NetFlow returns staked minus unstaked for the day.
func (b DayBucket) NetFlow() decimal.Decimal {
	return b.Staked.Sub(b.Unstaked)
}

// BucketEvents groups classified events into a dense, chronologically
// ascending sequence of daily buckets covering the `days` calendar days
// ending at `anchor`. Days with no qualifying events are present and
// zero-filled. Ignored events and events outside the window are dropped.
func BucketEvents(events []ClassifiedEvent, days int, anchor time.Time) []DayBucket {
	end := anchor.UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, 0, -(days - 1))

	buckets := make([]DayBucket, days)
	index := make(map[time.Time]int, days)
	for i := range buckets {
		day := start.AddDate(0, 0, i)
		buckets[i] = DayBucket{
			Day:      day,
			Staked:   decimal.Zero,
			Unstaked: decimal.Zero,
		}
		index[day] = i
	}

	sorted := make([]ClassifiedEvent, len(events))
	copy(sorted, events)
	sortEvents(sorted)

	for _, event := range sorted {
		if event.Kind == KindIgnored {
			continue
		}
		day := event.Timestamp.UTC().Truncate(24 * time.Hour)
		i, ok := index[day]
		if !ok {
			continue
		}
		switch event.Kind {
		case KindStake:
			buckets[i].Staked = buckets[i].Staked.Add(event.Amount)
			buckets[i].StakeCount++
		case KindUnstake:
			buckets[i].Unstaked = buckets[i].Unstaked.Add(event.Amount)
			buckets[i].UnstakeCount++
		}
	}

	return buckets
}
