package app

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"stakewatch/internal/alerting"
	"stakewatch/internal/analysis"
	"stakewatch/internal/config"
	"stakewatch/internal/fetcher"
	"stakewatch/internal/storage"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newChain(stakingContract, tokenContract string) *fetcher.Chain {
	return fetcher.NewChain(fetcher.ChainOptions{
		RPCURL:          a.Config.Ethereum.RPCURL,
		StakingContract: stakingContract,
		TokenContract:   tokenContract,
		TokenDecimals:   a.Config.Analysis.TokenDecimals,
		BlocksPerDay:    a.Config.Ethereum.BlocksPerDay,
		ScanStep:        a.Config.Ethereum.ScanStep,
		Timeout:         a.Config.Ethereum.RequestTimeout,
	}, a.Logger)
}

func (a *App) newEngine() *analysis.Engine {
	return analysis.NewEngine(
		a.Config.Analysis.StakeSignatures,
		a.Config.Analysis.UnstakeSignatures,
		a.Config.Analysis.Thresholds(),
	)
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
}

func (a *App) openStore(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	store := storage.NewStore(pool)
	closer := func() {
		store.Close()
	}
	return store, closer, nil
}

// AnalyzeOptions hold per-run overrides for one analysis invocation.
type AnalyzeOptions struct {
	StakingContract string
	TokenContract   string
	Days            int
	TotalSupply     float64
	OutputPath      string
	AnchorToLatest  bool
	SkipBalance     bool
}

// ExportOptions hold parameters for exporting stored daily flows.
type ExportOptions struct {
	StakingContract string
	From            *time.Time
	To              *time.Time
	PNGPath         string
	CSVPath         string
	MaxPoints       int
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Limit int
}
