package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"stakewatch/internal/analysis"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("empty config file should load with defaults: %v", err)
	}

	if cfg.App.Name != "stakewatch" {
		t.Fatalf("unexpected app name: %s", cfg.App.Name)
	}
	if cfg.Analysis.Days != 14 {
		t.Fatalf("default window should be 14 days, got %d", cfg.Analysis.Days)
	}
	if cfg.Analysis.TotalSupply != 1_000_000_000 {
		t.Fatalf("unexpected default supply: %f", cfg.Analysis.TotalSupply)
	}
	if len(cfg.Analysis.StakeSignatures) == 0 || len(cfg.Analysis.UnstakeSignatures) == 0 {
		t.Fatal("default selector lists must not be empty")
	}
	if cfg.Ethereum.RequestTimeout != 10*time.Second {
		t.Fatalf("unexpected default request timeout: %s", cfg.Ethereum.RequestTimeout)
	}
	if cfg.Watch.Interval != time.Hour {
		t.Fatalf("unexpected default watch interval: %s", cfg.Watch.Interval)
	}
	if cfg.Alerting.Enabled {
		t.Fatal("alerting should be off by default")
	}
}

func TestLoadFromFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
ethereum:
  rpc_url: https://mainnet.base.org
  staking_contract: "0x1111111111111111111111111111111111111111"
analysis:
  days: 30
  total_supply: 500000000
  stake_signatures:
    - "0xdeadbeef"
watch:
  interval: 15m
`))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Analysis.Days != 30 {
		t.Fatalf("file value should override the default, got %d", cfg.Analysis.Days)
	}
	if cfg.Analysis.StakeSignatures[0] != "0xdeadbeef" {
		t.Fatalf("unexpected stake signatures: %v", cfg.Analysis.StakeSignatures)
	}
	if cfg.Watch.Interval != 15*time.Minute {
		t.Fatalf("duration strings should decode, got %s", cfg.Watch.Interval)
	}
	if cfg.Ethereum.StakingContract != "0x1111111111111111111111111111111111111111" {
		t.Fatalf("unexpected staking contract: %s", cfg.Ethereum.StakingContract)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"zero days", "analysis:\n  days: 0\n", "analysis.days"},
		{"negative supply", "analysis:\n  total_supply: -5\n", "analysis.total_supply"},
		{"empty stake signatures", "analysis:\n  stake_signatures: []\n", "analysis.stake_signatures"},
		{"zero watch interval", "watch:\n  interval: 0s\n", "watch.interval"},
		{"unknown tier", "analysis:\n  health_tiers:\n    - min_percent: 40\n      tier: AMAZING\n", "unknown tier"},
		{"telegram without token", "alerting:\n  telegram:\n    enabled: true\n    chat_id: \"42\"\n", "bot_token"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error should mention %q, got: %v", tc.want, err)
			}
		})
	}
}

func TestThresholdsConversion(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
analysis:
  liquidity_high_fraction: 0.25
  health_tiers:
    - min_percent: 50
      tier: EXCELLENT
    - min_percent: 5
      tier: GOOD
`))
	if err != nil {
		t.Fatal(err)
	}

	th := cfg.Analysis.Thresholds()
	if !th.LiquidityHighFraction.Equal(decimal.NewFromFloat(0.25)) {
		t.Fatalf("unexpected liquidity fraction: %s", th.LiquidityHighFraction)
	}
	if len(th.HealthTiers) != 2 {
		t.Fatalf("custom tier table should replace the default, got %d rows", len(th.HealthTiers))
	}
	if got := th.TierFor(decimal.NewFromInt(10)); got != analysis.TierGood {
		t.Fatalf("10%% against the custom table should be GOOD, got %s", got)
	}
	if got := th.TierFor(decimal.NewFromInt(2)); got != analysis.TierCritical {
		t.Fatalf("below every row should fall back to CRITICAL, got %s", got)
	}
}

func TestThresholdsDefaultTableKept(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatal(err)
	}

	th := cfg.Analysis.Thresholds()
	if got := th.TierFor(decimal.NewFromInt(45)); got != analysis.TierExcellent {
		t.Fatalf("default table should rate 45%% excellent, got %s", got)
	}
}

func TestSupplyAndWindowOverrides(t *testing.T) {
	c := AnalysisConfig{Days: 14, TotalSupply: 1_000_000}

	if got := c.Window(30); got != 30 {
		t.Fatalf("positive override wins, got %d", got)
	}
	if got := c.Window(0); got != 14 {
		t.Fatalf("zero override keeps the config value, got %d", got)
	}
	if got := c.Supply(42); !got.Equal(decimal.NewFromInt(42)) {
		t.Fatalf("positive override wins, got %s", got)
	}
	if got := c.Supply(0); !got.Equal(decimal.NewFromInt(1_000_000)) {
		t.Fatalf("zero override keeps the config value, got %s", got)
	}
}
