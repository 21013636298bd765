package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"
)

// Show prints recent stored reports.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot show reports")
	}
	if closeStore != nil {
		defer closeStore()
	}

	reports, err := store.ListRecentReports(ctx, opts.Limit)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Fprintln(os.Stdout, "no reports found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Generated (UTC)\tContract\tDays\tStaked%\tNet Flow\tTrend\tHealth")

	for _, record := range reports {
		fmt.Fprintf(
			writer,
			"%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			record.GeneratedAt.UTC().Format(time.RFC3339),
			shortAddress(record.StakingContract),
			record.WindowDays,
			record.StakingPct.StringFixed(2),
			record.NetFlow.StringFixed(0),
			record.Trend,
			record.HealthTier,
		)
	}

	return writer.Flush()
}

// shortAddress keeps listings readable: 0x1234..abcd.
func shortAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + ".." + addr[len(addr)-4:]
}
