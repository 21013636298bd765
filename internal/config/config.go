package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"stakewatch/internal/analysis"
	"stakewatch/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Logging  logging.Config `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Ethereum EthereumConfig `mapstructure:"ethereum"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Watch    WatchConfig    `mapstructure:"watch"`
	Alerting AlertingConfig `mapstructure:"alerting"`
	Export   ExportConfig   `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity. Persistence is
// optional; an empty DSN disables the report history entirely.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// EthereumConfig covers on-chain data access.
type EthereumConfig struct {
	RPCURL          string        `mapstructure:"rpc_url"`
	StakingContract string        `mapstructure:"staking_contract"`
	TokenContract   string        `mapstructure:"token_contract"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	BlocksPerDay    int64         `mapstructure:"blocks_per_day"`
	ScanStep        int64         `mapstructure:"scan_step"`
}

// TierRow is one configurable row of the health tier table.
type TierRow struct {
	MinPercent float64 `mapstructure:"min_percent"`
	Tier       string  `mapstructure:"tier"`
}

// AnalysisConfig parameterises the scoring engine: selector lists,
// window defaults, and every threshold the scorer reads.
type AnalysisConfig struct {
	Days              int      `mapstructure:"days"`
	TotalSupply       float64  `mapstructure:"total_supply"`
	TokenDecimals     int      `mapstructure:"token_decimals"`
	StakeSignatures   []string `mapstructure:"stake_signatures"`
	UnstakeSignatures []string `mapstructure:"unstake_signatures"`

	TrendGrowthTolerance  float64 `mapstructure:"trend_growth_tolerance"`
	TrendDeclineTolerance float64 `mapstructure:"trend_decline_tolerance"`

	HealthTiers []TierRow `mapstructure:"health_tiers"`

	LiquidityHighFraction      float64 `mapstructure:"liquidity_high_fraction"`
	LiquidityMediumFraction    float64 `mapstructure:"liquidity_medium_fraction"`
	MarketImpactHighFraction   float64 `mapstructure:"market_impact_high_fraction"`
	MarketImpactMediumFraction float64 `mapstructure:"market_impact_medium_fraction"`
	LowParticipationPercent    float64 `mapstructure:"low_participation_percent"`
	LowConfidenceWindowDays    int     `mapstructure:"low_confidence_window_days"`
}

// WatchConfig governs the periodic re-analysis loop.
type WatchConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	AlignToBucket bool          `mapstructure:"align_to_bucket"`
	StartupDelay  time.Duration `mapstructure:"startup_delay"`
}

// AlertingConfig defines alert routing for the watch loop.
type AlertingConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Channels []string       `mapstructure:"channels"`
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig describes Telegram delivery parameters.
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("STAKEWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "stakewatch")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("ethereum.request_timeout", "10s")
	// ~2s block time on Base.
	v.SetDefault("ethereum.blocks_per_day", int64(43200))
	v.SetDefault("ethereum.scan_step", int64(100))

	v.SetDefault("analysis.days", 14)
	v.SetDefault("analysis.total_supply", 1_000_000_000.0)
	v.SetDefault("analysis.token_decimals", 18)
	v.SetDefault("analysis.stake_signatures", []string{
		"0xa694fc3a", // stake()
		"0xb6b55f25", // deposit(uint256)
		"0x1249c58b", // mint()
	})
	v.SetDefault("analysis.unstake_signatures", []string{
		"0xf48355b9", // toggleAutoRenew()
		"0x2e1a7d4d", // withdraw(uint256)
		"0x3d18b912", // unstake()
		"0xa06c1a33", // toggleAutoRenew() alternative
	})
	v.SetDefault("analysis.trend_growth_tolerance", 0.01)
	v.SetDefault("analysis.trend_decline_tolerance", 0.01)
	v.SetDefault("analysis.liquidity_high_fraction", 0.10)
	v.SetDefault("analysis.liquidity_medium_fraction", 0.03)
	v.SetDefault("analysis.market_impact_high_fraction", 0.05)
	v.SetDefault("analysis.market_impact_medium_fraction", 0.02)
	v.SetDefault("analysis.low_participation_percent", 10.0)
	v.SetDefault("analysis.low_confidence_window_days", 7)

	v.SetDefault("watch.interval", "1h")
	v.SetDefault("watch.align_to_bucket", true)
	v.SetDefault("watch.startup_delay", "0s")

	v.SetDefault("alerting.enabled", false)
	v.SetDefault("alerting.channels", []string{"telegram"})
	v.SetDefault("alerting.telegram.enabled", false)
	v.SetDefault("alerting.telegram.api_base", "https://api.telegram.org")

	v.SetDefault("export.max_data_points", 100000)

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Analysis.Days < 1 {
		return fmt.Errorf("analysis.days must cover at least one day")
	}
	if c.Analysis.TotalSupply <= 0 {
		return fmt.Errorf("analysis.total_supply must be greater than zero")
	}
	if len(c.Analysis.StakeSignatures) == 0 {
		return fmt.Errorf("analysis.stake_signatures cannot be empty")
	}
	if len(c.Analysis.UnstakeSignatures) == 0 {
		return fmt.Errorf("analysis.unstake_signatures cannot be empty")
	}
	if c.Ethereum.BlocksPerDay <= 0 {
		return fmt.Errorf("ethereum.blocks_per_day must be greater than zero")
	}
	if c.Watch.Interval <= 0 {
		return fmt.Errorf("watch.interval must be greater than zero")
	}
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}
	for _, row := range c.Analysis.HealthTiers {
		switch analysis.HealthTier(row.Tier) {
		case analysis.TierExcellent, analysis.TierGood, analysis.TierModerate, analysis.TierCritical:
		default:
			return fmt.Errorf("analysis.health_tiers: unknown tier %q", row.Tier)
		}
	}
	if c.Alerting.Telegram.Enabled {
		if c.Alerting.Telegram.BotToken == "" {
			return fmt.Errorf("alerting.telegram.bot_token is required")
		}
		if c.Alerting.Telegram.ChatID == "" {
			return fmt.Errorf("alerting.telegram.chat_id is required")
		}
	}
	return nil
}

// Thresholds converts the configured values into the engine's threshold
// bundle. An empty health_tiers list keeps the default 40/20/10 table.
func (c *AnalysisConfig) Thresholds() analysis.Thresholds {
	th := analysis.DefaultThresholds()
	th.TrendGrowthTolerance = decimal.NewFromFloat(c.TrendGrowthTolerance)
	th.TrendDeclineTolerance = decimal.NewFromFloat(c.TrendDeclineTolerance)
	th.LiquidityHighFraction = decimal.NewFromFloat(c.LiquidityHighFraction)
	th.LiquidityMediumFraction = decimal.NewFromFloat(c.LiquidityMediumFraction)
	th.MarketImpactHighFraction = decimal.NewFromFloat(c.MarketImpactHighFraction)
	th.MarketImpactMediumFraction = decimal.NewFromFloat(c.MarketImpactMediumFraction)
	th.LowParticipationPercent = decimal.NewFromFloat(c.LowParticipationPercent)
	th.LowConfidenceWindowDays = c.LowConfidenceWindowDays

	if len(c.HealthTiers) > 0 {
		rows := make([]analysis.TierThreshold, 0, len(c.HealthTiers))
		for _, row := range c.HealthTiers {
			rows = append(rows, analysis.TierThreshold{
				MinPercent: decimal.NewFromFloat(row.MinPercent),
				Tier:       analysis.HealthTier(row.Tier),
			})
		}
		th.HealthTiers = rows
	}

	return th
}

// Supply returns the configured total supply as a decimal, honouring a
// CLI override when positive.
func (c *AnalysisConfig) Supply(override float64) decimal.Decimal {
	if override > 0 {
		return decimal.NewFromFloat(override)
	}
	return decimal.NewFromFloat(c.TotalSupply)
}

// Window returns the configured analysis window, honouring a CLI
// override when positive.
func (c *AnalysisConfig) Window(override int) int {
	if override > 0 {
		return override
	}
	return c.Days
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.MaxDataPoints
}
