package analysis

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// EventKind labels what a transaction did to the staking contract.
type EventKind int

const (
	// KindIgnored marks transactions whose selector matched neither list.
	KindIgnored EventKind = iota
	// KindStake marks transactions matching a stake selector.
	KindStake
	// KindUnstake marks transactions matching an unstake selector.
	KindUnstake
)

// String returns the lowercase kind label used in reports and logs.
func (k EventKind) String() string {
	switch k {
	case KindStake:
		return "stake"
	case KindUnstake:
		return "unstake"
	default:
		return "ignored"
	}
}

// RawEvent is one transaction observed against the staking contract.
// The fetcher owns construction; the engine treats it as read-only.
type RawEvent struct {
	TxHash    string
	Timestamp time.Time
	Sender    string
	Selector  string
	Amount    decimal.Decimal
}

// ClassifiedEvent annotates a RawEvent with its kind. Never mutated
// after classification.
type ClassifiedEvent struct {
	RawEvent
	Kind EventKind
}

// sortEvents orders events chronologically, tx hash as tie-breaker so
// identical inputs always produce identical reports.
func sortEvents(events []ClassifiedEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Timestamp.Equal(events[j].Timestamp) {
			return events[i].TxHash < events[j].TxHash
		}
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
}
