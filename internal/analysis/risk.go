package analysis

import "github.com/shopspring/decimal"

// RiskAssessment carries the three independent risk ratings plus the
// overall health tier.
type RiskAssessment struct {
	LiquidityRisk        RiskLevel  `json:"liquidity_risk"`
	GrowthSustainability RiskLevel  `json:"growth_sustainability"`
	MarketImpact         RiskLevel  `json:"market_impact"`
	BaseTier             HealthTier `json:"base_tier"`
	OverallTier          HealthTier `json:"overall_tier"`
	Downgraded           bool       `json:"downgraded"`
}

// Score maps metrics and projections onto risk ratings and the overall
// health tier. The tier comes from the configured table; it is
// downgraded one step when liquidity risk is high, so the headline can
// never read EXCELLENT next to a high liquidity flag.
func Score(m FlowMetrics, p Projection, th Thresholds) RiskAssessment {
	assessment := RiskAssessment{
		LiquidityRisk:        scoreLiquidity(m.StakedBalance, p.SellingPressure14d, th),
		GrowthSustainability: scoreSustainability(m, th),
		MarketImpact:         scoreMarketImpact(m.TotalSupply, p.NetFlow30d, th),
	}

	assessment.BaseTier = th.TierFor(m.StakingPercentage)
	assessment.OverallTier = assessment.BaseTier
	if assessment.LiquidityRisk == RiskHigh {
		if downgraded := downgradeTier(assessment.BaseTier); downgraded != assessment.BaseTier {
			assessment.OverallTier = downgraded
			assessment.Downgraded = true
		}
	}

	return assessment
}

func scoreLiquidity(staked, pressure decimal.Decimal, th Thresholds) RiskLevel {
	if staked.IsZero() {
		if pressure.IsPositive() {
			return RiskHigh
		}
		return RiskLow
	}
	ratio := pressure.Div(staked)
	switch {
	case ratio.GreaterThanOrEqual(th.LiquidityHighFraction):
		return RiskHigh
	case ratio.GreaterThanOrEqual(th.LiquidityMediumFraction):
		return RiskMedium
	default:
		return RiskLow
	}
}

// scoreSustainability reads the trend and participation jointly. HIGH
// here means strong sustainability, not elevated risk.
func scoreSustainability(m FlowMetrics, th Thresholds) RiskLevel {
	switch {
	case m.Trend == TrendGrowth:
		return RiskHigh
	case m.Trend == TrendDecline && m.StakingPercentage.LessThanOrEqual(th.LowParticipationPercent):
		return RiskLow
	default:
		return RiskMedium
	}
}

func scoreMarketImpact(supply, net30d decimal.Decimal, th Thresholds) RiskLevel {
	ratio := net30d.Abs().Div(supply)
	switch {
	case ratio.GreaterThanOrEqual(th.MarketImpactHighFraction):
		return RiskHigh
	case ratio.GreaterThanOrEqual(th.MarketImpactMediumFraction):
		return RiskMedium
	default:
		return RiskLow
	}
}

func downgradeTier(tier HealthTier) HealthTier {
	switch tier {
	case TierExcellent:
		return TierGood
	case TierGood:
		return TierModerate
	case TierModerate:
		return TierCritical
	default:
		return TierCritical
	}
}
