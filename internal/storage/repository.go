package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	insertReportSQL = `INSERT INTO reports (
        generated_at,
        staking_contract,
        token_contract,
        window_days,
        staking_pct,
        net_flow,
        trend,
        health_tier,
        payload
    ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9
    )
    ON CONFLICT (staking_contract, generated_at) DO UPDATE
    SET
        token_contract = EXCLUDED.token_contract,
        window_days    = EXCLUDED.window_days,
        staking_pct    = EXCLUDED.staking_pct,
        net_flow       = EXCLUDED.net_flow,
        trend          = EXCLUDED.trend,
        health_tier    = EXCLUDED.health_tier,
        payload        = EXCLUDED.payload
    RETURNING id, created_at;`

	listRecentReportsSQL = `SELECT
        id,
        generated_at,
        staking_contract,
        token_contract,
        window_days,
        staking_pct,
        net_flow,
        trend,
        health_tier,
        payload,
        created_at
    FROM reports
    ORDER BY generated_at DESC
    LIMIT $1;`

	upsertDayFlowSQL = `INSERT INTO day_flows (
        staking_contract,
        day,
        staked,
        unstaked,
        stake_count,
        unstake_count
    ) VALUES (
        $1,$2,$3,$4,$5,$6
    )
    ON CONFLICT (staking_contract, day) DO UPDATE
    SET staked        = EXCLUDED.staked,
        unstaked      = EXCLUDED.unstaked,
        stake_count   = EXCLUDED.stake_count,
        unstake_count = EXCLUDED.unstake_count;`

	listDayFlowsBetweenSQL = `SELECT
        staking_contract,
        day,
        staked,
        unstaked,
        stake_count,
        unstake_count
    FROM day_flows
    WHERE staking_contract = $1
      AND day >= $2
      AND day < $3
    ORDER BY day;`

	countReportsSQL = `SELECT COUNT(*) FROM reports;`
)

// ReportStore defines operations for report persistence.
type ReportStore interface {
	InsertReport(ctx context.Context, record ReportRecord) (ReportRecord, error)
	ListRecentReports(ctx context.Context, limit int) ([]ReportRecord, error)
	CountReports(ctx context.Context) (int64, error)
}

// FlowStore defines operations for daily flow persistence.
type FlowStore interface {
	UpsertDayFlows(ctx context.Context, flows []DayFlowRecord) error
	ListDayFlowsBetween(ctx context.Context, stakingContract string, from, to time.Time) ([]DayFlowRecord, error)
}

// Store aggregates access to reports and daily flows.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// InsertReport persists or updates a finished report.
func (s *Store) InsertReport(ctx context.Context, record ReportRecord) (ReportRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return ReportRecord{}, err
	}

	row := pool.QueryRow(ctx, insertReportSQL,
		record.GeneratedAt,
		record.StakingContract,
		record.TokenContract,
		record.WindowDays,
		record.StakingPct.String(),
		record.NetFlow.String(),
		record.Trend,
		record.HealthTier,
		[]byte(record.Payload),
	)

	if scanErr := row.Scan(&record.ID, &record.CreatedAt); scanErr != nil {
		return ReportRecord{}, fmt.Errorf("insert report: %w", scanErr)
	}
	return record, nil
}

// ListRecentReports lists the most recent reports ordered by descending
// generation time.
func (s *Store) ListRecentReports(ctx context.Context, limit int) ([]ReportRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentReportsSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent reports: %w", queryErr)
	}
	defer rows.Close()

	reports := make([]ReportRecord, 0, limit)
	for rows.Next() {
		record, scanErr := scanReport(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		reports = append(reports, record)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return reports, nil
}

// CountReports counts stored reports.
func (s *Store) CountReports(ctx context.Context) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, countReportsSQL).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count reports: %w", scanErr)
	}
	return count, nil
}

// UpsertDayFlows persists a report's daily buckets, overwriting rows
// for days already recorded.
func (s *Store) UpsertDayFlows(ctx context.Context, flows []DayFlowRecord) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	for _, flow := range flows {
		_, execErr := pool.Exec(ctx, upsertDayFlowSQL,
			flow.StakingContract,
			flow.Day,
			flow.Staked.String(),
			flow.Unstaked.String(),
			flow.StakeCount,
			flow.UnstakeCount,
		)
		if execErr != nil {
			return fmt.Errorf("upsert day flow %s: %w", flow.Day.Format("2006-01-02"), execErr)
		}
	}
	return nil
}

// ListDayFlowsBetween lists daily flows for one contract within a
// half-open day range.
func (s *Store) ListDayFlowsBetween(ctx context.Context, stakingContract string, from, to time.Time) ([]DayFlowRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listDayFlowsBetweenSQL, stakingContract, from, to)
	if queryErr != nil {
		return nil, fmt.Errorf("list day flows between: %w", queryErr)
	}
	defer rows.Close()

	flows := make([]DayFlowRecord, 0)
	for rows.Next() {
		var (
			flow        DayFlowRecord
			stakedStr   string
			unstakedStr string
		)
		if err := rows.Scan(
			&flow.StakingContract,
			&flow.Day,
			&stakedStr,
			&unstakedStr,
			&flow.StakeCount,
			&flow.UnstakeCount,
		); err != nil {
			return nil, err
		}

		var convErr error
		flow.Staked, convErr = decimal.NewFromString(stakedStr)
		if convErr != nil {
			return nil, fmt.Errorf("parse staked amount: %w", convErr)
		}
		flow.Unstaked, convErr = decimal.NewFromString(unstakedStr)
		if convErr != nil {
			return nil, fmt.Errorf("parse unstaked amount: %w", convErr)
		}

		flows = append(flows, flow)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return flows, nil
}

func scanReport(rows pgx.Rows) (ReportRecord, error) {
	var (
		record     ReportRecord
		pctStr     string
		netFlowStr string
	)

	if err := rows.Scan(
		&record.ID,
		&record.GeneratedAt,
		&record.StakingContract,
		&record.TokenContract,
		&record.WindowDays,
		&pctStr,
		&netFlowStr,
		&record.Trend,
		&record.HealthTier,
		&record.Payload,
		&record.CreatedAt,
	); err != nil {
		return ReportRecord{}, err
	}

	var convErr error
	record.StakingPct, convErr = decimal.NewFromString(pctStr)
	if convErr != nil {
		return ReportRecord{}, fmt.Errorf("parse staking pct: %w", convErr)
	}
	record.NetFlow, convErr = decimal.NewFromString(netFlowStr)
	if convErr != nil {
		return ReportRecord{}, fmt.Errorf("parse net flow: %w", convErr)
	}

	return record, nil
}
