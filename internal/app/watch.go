package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"stakewatch/internal/alerting"
	"stakewatch/internal/analysis"
	"stakewatch/internal/scheduler"
)

// Watch re-runs the analysis on an aligned interval, persisting each
// report and alerting on health degradation.
func (a *App) Watch(ctx context.Context, opts AnalyzeOptions) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		a.Logger.Warn().Msg("database.dsn not configured; report history disabled")
	}
	if closeStore != nil {
		defer closeStore()
	}

	notifier := a.newNotifier()
	if a.Config.Alerting.Enabled && notifier == nil {
		a.Logger.Warn().Msg("alerting enabled but no channel configured")
	}

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Watch.Interval,
		AlignToStart: a.Config.Watch.AlignToBucket,
		StartupDelay: a.Config.Watch.StartupDelay,
	}, a.Logger)

	var previousTier analysis.HealthTier

	a.Logger.Info().Dur("interval", a.Config.Watch.Interval).Msg("starting watch loop")
	err = sched.Run(ctx, func(ctx context.Context, at time.Time) error {
		result, err := a.runAnalysis(ctx, opts, at)
		if err != nil {
			return err
		}

		if store != nil {
			if err := a.persistReport(ctx, store, result); err != nil {
				a.Logger.Error().Err(err).Msg("failed to persist report")
			}
		}

		if a.Config.Alerting.Enabled && notifier != nil && shouldAlert(result, previousTier) {
			note := alerting.Notification{
				GeneratedAt:        result.GeneratedAt,
				StakingContract:    result.StakingContract,
				Tier:               result.Risk.OverallTier,
				PreviousTier:       previousTier,
				LiquidityRisk:      result.Risk.LiquidityRisk,
				StakingPercentage:  result.Metrics.DisplayPercentage(),
				NetFlow:            result.Metrics.NetFlow,
				SellingPressure14d: result.Projection.SellingPressure14d,
				Channels:           a.Config.Alerting.Channels,
			}
			if err := notifier.Notify(ctx, note); err != nil {
				a.Logger.Error().Err(err).Msg("failed to dispatch alert")
			}
		}

		previousTier = result.Risk.OverallTier
		return nil
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("watch loop terminated with error")
		return err
	}

	a.Logger.Info().Msg("watch loop stopped")
	return nil
}

// shouldAlert fires on critical health, a tier degradation between
// runs, or high liquidity risk.
func shouldAlert(result *analysis.Report, previous analysis.HealthTier) bool {
	if result.Risk.OverallTier == analysis.TierCritical {
		return true
	}
	if result.Risk.LiquidityRisk == analysis.RiskHigh {
		return true
	}
	if previous != "" && tierRank(result.Risk.OverallTier) < tierRank(previous) {
		return true
	}
	return false
}

func tierRank(tier analysis.HealthTier) int {
	switch tier {
	case analysis.TierExcellent:
		return 3
	case analysis.TierGood:
		return 2
	case analysis.TierModerate:
		return 1
	default:
		return 0
	}
}
