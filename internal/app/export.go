package app

import (
	"context"
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"stakewatch/internal/storage"
)

// Export renders stored daily flows as CSV and/or PNG.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	staking := a.Config.Ethereum.StakingContract
	if opts.StakingContract != "" {
		staking = opts.StakingContract
	}
	if staking == "" {
		return errors.New("staking contract address is required")
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("database not configured; cannot export")
	}
	if closeStore != nil {
		defer closeStore()
	}

	to := time.Now().UTC()
	if opts.To != nil {
		to = opts.To.UTC()
	}

	from := to.AddDate(0, 0, -a.Config.Analysis.Days)
	if opts.From != nil {
		from = opts.From.UTC()
	}

	if !from.Before(to) {
		return errors.New("from must be before to")
	}

	flows, err := store.ListDayFlowsBetween(ctx, staking, from, to)
	if err != nil {
		return err
	}
	if len(flows) == 0 {
		a.Logger.Info().Msg("no daily flows found for export window")
		return nil
	}

	downsampled := downsampleFlows(flows, opts.MaxPoints)
	a.Logger.Info().Int("total", len(flows)).Int("exported", len(downsampled)).Msg("exporting daily flows")

	if opts.CSVPath != "" {
		if err := writeFlowsCSV(opts.CSVPath, downsampled); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := writeFlowsPNG(opts.PNGPath, downsampled); err != nil {
			return err
		}
	}

	return nil
}

func downsampleFlows(flows []storage.DayFlowRecord, max int) []storage.DayFlowRecord {
	if max <= 0 || len(flows) <= max {
		return flows
	}

	result := make([]storage.DayFlowRecord, 0, max)
	step := float64(len(flows)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(flows) {
			idx = len(flows) - 1
		}
		result = append(result, flows[idx])
	}
	return result
}

func writeFlowsCSV(path string, flows []storage.DayFlowRecord) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"day", "staked", "unstaked", "net_flow", "stake_count", "unstake_count"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, flow := range flows {
		record := []string{
			flow.Day.Format("2006-01-02"),
			flow.Staked.String(),
			flow.Unstaked.String(),
			flow.Staked.Sub(flow.Unstaked).String(),
			strconv.Itoa(flow.StakeCount),
			strconv.Itoa(flow.UnstakeCount),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func writeFlowsPNG(path string, flows []storage.DayFlowRecord) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]time.Time, len(flows))
	staked := make([]float64, len(flows))
	unstaked := make([]float64, len(flows))
	net := make([]float64, len(flows))

	for i, flow := range flows {
		x[i] = flow.Day
		staked[i] = flow.Staked.InexactFloat64()
		unstaked[i] = flow.Unstaked.InexactFloat64()
		net[i] = flow.Staked.Sub(flow.Unstaked).InexactFloat64()
	}

	amountFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.0f")
	}
	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Tokens / day",
			ValueFormatter: amountFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Staked",
				XValues: x,
				YValues: staked,
			},
			chart.TimeSeries{
				Name:    "Unstaked",
				XValues: x,
				YValues: unstaked,
			},
			chart.TimeSeries{
				Name:    "Net flow",
				XValues: x,
				YValues: net,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
