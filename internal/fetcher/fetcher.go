package fetcher

import (
	"context"

	"github.com/shopspring/decimal"

	"stakewatch/internal/analysis"
)

// EventFetcher retrieves raw transactions against the staking contract
// covering at least the requested number of days.
type EventFetcher interface {
	FetchEvents(ctx context.Context, days int) ([]analysis.RawEvent, error)
}

// BalanceFetcher retrieves the token balance currently held by the
// staking contract, expressed in whole tokens.
type BalanceFetcher interface {
	FetchStakedBalance(ctx context.Context) (decimal.Decimal, error)
}
