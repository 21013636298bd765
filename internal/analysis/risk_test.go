package analysis

import (
	"testing"

	"github.com/shopspring/decimal"
)

func metricsWithPct(pct int64) FlowMetrics {
	supply := decimal.NewFromInt(1_000_000_000)
	return FlowMetrics{
		TotalSupply:       supply,
		StakedBalance:     supply.Mul(decimal.NewFromInt(pct)).Div(dec100),
		StakingPercentage: decimal.NewFromInt(pct),
		Trend:             TrendStable,
	}
}

func TestTierTableBoundaries(t *testing.T) {
	th := DefaultThresholds()

	cases := []struct {
		pct  string
		want HealthTier
	}{
		{"50", TierExcellent},
		{"40.01", TierExcellent},
		{"40", TierGood}, // exactly 40 does not clear "> 40"
		{"20.01", TierGood},
		{"20", TierModerate},
		{"10.01", TierModerate},
		{"10", TierCritical}, // exactly 10 falls through the table
		{"0", TierCritical},
	}

	for _, tc := range cases {
		pct, err := decimal.NewFromString(tc.pct)
		if err != nil {
			t.Fatal(err)
		}
		if got := th.TierFor(pct); got != tc.want {
			t.Fatalf("pct %s: expected %s, got %s", tc.pct, tc.want, got)
		}
	}
}

func TestTierMonotonicInStakingPercentage(t *testing.T) {
	th := DefaultThresholds()

	prev := -1
	for pct := int64(0); pct <= 100; pct++ {
		rank := tierOrder(th.TierFor(decimal.NewFromInt(pct)))
		if rank < prev {
			t.Fatalf("tier must not decrease as staking percentage rises: pct=%d", pct)
		}
		prev = rank
	}
}

func tierOrder(tier HealthTier) int {
	switch tier {
	case TierCritical:
		return 0
	case TierModerate:
		return 1
	case TierGood:
		return 2
	default:
		return 3
	}
}

func TestLiquidityRiskFractions(t *testing.T) {
	th := DefaultThresholds()
	m := metricsWithPct(30)

	low := Projection{SellingPressure14d: m.StakedBalance.Mul(decimal.NewFromFloat(0.01))}
	if got := Score(m, low, th).LiquidityRisk; got != RiskLow {
		t.Fatalf("1%% pressure should be low risk, got %s", got)
	}

	medium := Projection{SellingPressure14d: m.StakedBalance.Mul(decimal.NewFromFloat(0.05))}
	if got := Score(m, medium, th).LiquidityRisk; got != RiskMedium {
		t.Fatalf("5%% pressure should be medium risk, got %s", got)
	}

	high := Projection{SellingPressure14d: m.StakedBalance.Mul(decimal.NewFromFloat(0.15))}
	if got := Score(m, high, th).LiquidityRisk; got != RiskHigh {
		t.Fatalf("15%% pressure should be high risk, got %s", got)
	}
}

func TestLiquidityRiskZeroBalance(t *testing.T) {
	th := DefaultThresholds()
	m := metricsWithPct(0)

	if got := Score(m, Projection{}, th).LiquidityRisk; got != RiskLow {
		t.Fatalf("no balance and no pressure should be low risk, got %s", got)
	}

	pressured := Projection{SellingPressure14d: decimal.NewFromInt(1000)}
	if got := Score(m, pressured, th).LiquidityRisk; got != RiskHigh {
		t.Fatalf("pressure against an empty contract should be high risk, got %s", got)
	}
}

func TestGrowthSustainability(t *testing.T) {
	th := DefaultThresholds()

	growing := metricsWithPct(5)
	growing.Trend = TrendGrowth
	if got := Score(growing, Projection{}, th).GrowthSustainability; got != RiskHigh {
		t.Fatalf("growth trend should rate high sustainability, got %s", got)
	}

	declining := metricsWithPct(5)
	declining.Trend = TrendDecline
	if got := Score(declining, Projection{}, th).GrowthSustainability; got != RiskLow {
		t.Fatalf("decline at low participation should rate low, got %s", got)
	}

	decliningHighPct := metricsWithPct(50)
	decliningHighPct.Trend = TrendDecline
	if got := Score(decliningHighPct, Projection{}, th).GrowthSustainability; got != RiskMedium {
		t.Fatalf("decline at high participation should rate medium, got %s", got)
	}
}

func TestMarketImpactFromProjectedNetFlow(t *testing.T) {
	th := DefaultThresholds()
	m := metricsWithPct(30)

	big := Projection{NetFlow30d: m.TotalSupply.Mul(decimal.NewFromFloat(0.06)).Neg()}
	if got := Score(m, big, th).MarketImpact; got != RiskHigh {
		t.Fatalf("6%% of supply should be high impact, got %s", got)
	}

	small := Projection{NetFlow30d: m.TotalSupply.Mul(decimal.NewFromFloat(0.001))}
	if got := Score(m, small, th).MarketImpact; got != RiskLow {
		t.Fatalf("0.1%% of supply should be low impact, got %s", got)
	}
}

func TestLiquidityDowngradesHealthTier(t *testing.T) {
	th := DefaultThresholds()
	m := metricsWithPct(50)
	pressured := Projection{SellingPressure14d: m.StakedBalance.Mul(decimal.NewFromFloat(0.2))}

	assessment := Score(m, pressured, th)
	if assessment.BaseTier != TierExcellent {
		t.Fatalf("50%% staked should base at excellent, got %s", assessment.BaseTier)
	}
	if assessment.OverallTier != TierGood {
		t.Fatalf("high liquidity risk must downgrade one tier, got %s", assessment.OverallTier)
	}
	if !assessment.Downgraded {
		t.Fatal("downgrade flag should be set")
	}
}

func TestNoDowngradeWithoutHighLiquidityRisk(t *testing.T) {
	th := DefaultThresholds()
	m := metricsWithPct(50)

	assessment := Score(m, Projection{}, th)
	if assessment.OverallTier != TierExcellent || assessment.Downgraded {
		t.Fatalf("no pressure should keep the base tier: %s", assessment.OverallTier)
	}
}
