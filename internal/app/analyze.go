package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"stakewatch/internal/analysis"
	"stakewatch/internal/report"
	"stakewatch/internal/storage"
)

// Analyze performs one full health check run: fetch events and balance,
// run the engine, render the report, write the JSON export, and persist
// history when a database is configured.
func (a *App) Analyze(ctx context.Context, opts AnalyzeOptions) error {
	result, err := a.runAnalysis(ctx, opts, time.Now().UTC())
	if err != nil {
		return err
	}

	if err := report.Render(os.Stdout, result); err != nil {
		return err
	}

	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = fmt.Sprintf("staking_health_%s.json", result.GeneratedAt.Format("20060102_150405"))
	}
	if err := writeReportJSON(outputPath, result); err != nil {
		return err
	}
	a.Logger.Info().Str("path", outputPath).Msg("report written")

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store != nil {
		defer closeStore()
		if err := a.persistReport(ctx, store, result); err != nil {
			a.Logger.Error().Err(err).Msg("failed to persist report")
		}
	}

	return nil
}

// runAnalysis assembles the engine input from collaborators and runs
// the core. The staking contract address is the only hard requirement;
// a failed balance lookup degrades to the estimate-from-activity path.
func (a *App) runAnalysis(ctx context.Context, opts AnalyzeOptions, now time.Time) (*analysis.Report, error) {
	staking := a.Config.Ethereum.StakingContract
	if opts.StakingContract != "" {
		staking = opts.StakingContract
	}
	if staking == "" {
		return nil, errors.New("staking contract address is required (--staking or ethereum.staking_contract)")
	}
	token := a.Config.Ethereum.TokenContract
	if opts.TokenContract != "" {
		token = opts.TokenContract
	}

	days := a.Config.Analysis.Window(opts.Days)
	supply := a.Config.Analysis.Supply(opts.TotalSupply)

	chain := a.newChain(staking, token)

	events, err := chain.FetchEvents(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}

	var staked *decimal.Decimal
	if !opts.SkipBalance && token != "" {
		balance, err := chain.FetchStakedBalance(ctx)
		if err != nil {
			a.Logger.Warn().Err(err).Msg("balance lookup failed, estimating from activity")
		} else if balance.IsPositive() {
			staked = &balance
		}
	}

	result, err := a.newEngine().Analyze(analysis.Input{
		Events:              events,
		StakingContract:     staking,
		TokenContract:       token,
		WindowDays:          days,
		TotalSupply:         supply,
		StakedBalance:       staked,
		Now:                 now,
		AnchorToLatestEvent: opts.AnchorToLatest,
	})
	if err != nil {
		return nil, err
	}

	a.Logger.Info().
		Str("tier", string(result.Risk.OverallTier)).
		Str("trend", string(result.Metrics.Trend)).
		Str("staking_pct", result.Metrics.StakingPercentage.StringFixed(2)).
		Msg("analysis complete")

	return result, nil
}

func (a *App) persistReport(ctx context.Context, store *storage.Store, result *analysis.Report) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal report payload: %w", err)
	}

	record := storage.ReportRecord{
		GeneratedAt:     result.GeneratedAt,
		StakingContract: result.StakingContract,
		TokenContract:   result.TokenContract,
		WindowDays:      result.WindowDays,
		StakingPct:      result.Metrics.StakingPercentage,
		NetFlow:         result.Metrics.NetFlow,
		Trend:           string(result.Metrics.Trend),
		HealthTier:      string(result.Risk.OverallTier),
		Payload:         payload,
	}
	if _, err := store.InsertReport(ctx, record); err != nil {
		return err
	}

	flows := make([]storage.DayFlowRecord, 0, len(result.Buckets))
	for _, bucket := range result.Buckets {
		flows = append(flows, storage.DayFlowRecord{
			StakingContract: result.StakingContract,
			Day:             bucket.Day,
			Staked:          bucket.Staked,
			Unstaked:        bucket.Unstaked,
			StakeCount:      bucket.StakeCount,
			UnstakeCount:    bucket.UnstakeCount,
		})
	}
	return store.UpsertDayFlows(ctx, flows)
}

func writeReportJSON(path string, result *analysis.Report) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
