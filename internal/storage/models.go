package storage

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// ReportRecord is one persisted analysis run. Payload holds the full
// JSON report; the scalar columns exist for listing and querying.
type ReportRecord struct {
	ID              int64
	GeneratedAt     time.Time
	StakingContract string
	TokenContract   string
	WindowDays      int
	StakingPct      decimal.Decimal
	NetFlow         decimal.Decimal
	Trend           string
	HealthTier      string
	Payload         json.RawMessage
	CreatedAt       time.Time
}

// DayFlowRecord is one persisted daily bucket, keyed by contract and
// day so repeated runs overwrite rather than duplicate.
type DayFlowRecord struct {
	StakingContract string
	Day             time.Time
	Staked          decimal.Decimal
	Unstaked        decimal.Decimal
	StakeCount      int
	UnstakeCount    int
}
