// Package report renders finished analyses for the console.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"stakewatch/internal/analysis"
)

// Render writes the full human-readable report.
func Render(w io.Writer, r *analysis.Report) error {
	fmt.Fprintln(w, "STAKING HEALTH CHECK REPORT")
	fmt.Fprintln(w, "===========================")
	fmt.Fprintf(w, "Generated: %s\n", r.GeneratedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(w, "Window: %s -> %s (%d days)\n\n",
		r.WindowStart.Format("2006-01-02"), r.WindowEnd.Format("2006-01-02"), r.WindowDays)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, "CONFIGURATION AND BALANCE")
	fmt.Fprintf(tw, "  Staking contract:\t%s\n", r.StakingContract)
	fmt.Fprintf(tw, "  Token contract:\t%s\n", r.TokenContract)
	fmt.Fprintf(tw, "  Total supply:\t%s tokens\n", r.Metrics.TotalSupply.StringFixed(0))
	fmt.Fprintf(tw, "  Total staked:\t%s tokens (%s%% of supply, %s)\n",
		r.Metrics.StakedBalance.StringFixed(0),
		r.Metrics.DisplayPercentage().StringFixed(2),
		r.Metrics.BalanceSource)
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "FLOW ANALYSIS")
	fmt.Fprintf(tw, "  Stake events:\t%d (%d unique stakers)\n", r.Metrics.StakeEvents, r.Metrics.UniqueStakers)
	fmt.Fprintf(tw, "  Unstake events:\t%d (%d unique unstakers)\n", r.Metrics.UnstakeEvents, r.Metrics.UniqueUnstakers)
	fmt.Fprintf(tw, "  Staked volume:\t%s tokens\n", r.Metrics.TotalStaked.StringFixed(0))
	fmt.Fprintf(tw, "  Unstaked volume:\t%s tokens\n", r.Metrics.TotalUnstaked.StringFixed(0))
	fmt.Fprintf(tw, "  Net flow:\t%s tokens\n", r.Metrics.NetFlow.StringFixed(0))
	fmt.Fprintf(tw, "  Avg daily net flow:\t%s tokens\n", r.Metrics.AvgDailyNetFlow.StringFixed(0))
	fmt.Fprintf(tw, "  Daily flow volatility:\t%s tokens\n", r.Metrics.DailyFlowVolatility.StringFixed(0))
	fmt.Fprintf(tw, "  Trend:\t%s\n", r.Metrics.Trend)
	fmt.Fprintf(tw, "  Ignored events:\t%d\n", r.IgnoredEvents)
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "PROJECTIONS")
	fmt.Fprintf(tw, "  30d staking:\t%s tokens\n", r.Projection.Staking30d.StringFixed(0))
	fmt.Fprintf(tw, "  30d unstaking:\t%s tokens\n", r.Projection.Unstaking30d.StringFixed(0))
	fmt.Fprintf(tw, "  30d net flow:\t%s tokens\n", r.Projection.NetFlow30d.StringFixed(0))
	fmt.Fprintf(tw, "  14d selling pressure:\t%s tokens\n", r.Projection.SellingPressure14d.StringFixed(0))
	if r.Projection.LowConfidence {
		fmt.Fprintln(tw, "  Confidence:\tLOW (window under 7 days)")
	}
	fmt.Fprintln(tw)

	fmt.Fprintln(tw, "RISK ASSESSMENT")
	fmt.Fprintf(tw, "  Liquidity risk:\t%s\n", r.Risk.LiquidityRisk)
	fmt.Fprintf(tw, "  Growth sustainability:\t%s\n", r.Risk.GrowthSustainability)
	fmt.Fprintf(tw, "  Market impact:\t%s\n", r.Risk.MarketImpact)
	if r.Risk.Downgraded {
		fmt.Fprintf(tw, "  Health tier:\t%s (downgraded from %s on liquidity risk)\n", r.Risk.OverallTier, r.Risk.BaseTier)
	} else {
		fmt.Fprintf(tw, "  Health tier:\t%s\n", r.Risk.OverallTier)
	}
	fmt.Fprintln(tw)

	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w, "RECOMMENDATIONS")
	for i, rec := range r.Recommendations {
		fmt.Fprintf(w, "  %d. [%s] %s\n", i+1, rec.Priority, rec.Message)
	}
	fmt.Fprintf(w, "\nNext review recommended: %s\n", r.NextReview)

	return nil
}
