package analysis

import "github.com/shopspring/decimal"

// HealthTier is the headline qualitative rating for the protocol.
type HealthTier string

const (
	TierExcellent HealthTier = "EXCELLENT"
	TierGood      HealthTier = "GOOD"
	TierModerate  HealthTier = "MODERATE"
	TierCritical  HealthTier = "CRITICAL"
)

// RiskLevel is the ordered scale shared by all risk ratings.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// TierThreshold is one row of the health tier table: staking percentage
// strictly above MinPercent maps to Tier.
type TierThreshold struct {
	MinPercent decimal.Decimal
	Tier       HealthTier
}

// Thresholds bundles every tunable the scoring stages read. Thresholds
// are data passed in at construction, never literals inside the logic.
type Thresholds struct {
	// TrendGrowthTolerance and TrendDeclineTolerance are fractions of
	// the window's gross volume the recent-half net flow must clear.
	TrendGrowthTolerance  decimal.Decimal
	TrendDeclineTolerance decimal.Decimal

	// HealthTiers is evaluated top-down, first match wins. Entries must
	// be sorted by descending MinPercent; anything below the last row
	// rates CRITICAL.
	HealthTiers []TierThreshold

	// Liquidity fractions compare 14-day selling pressure against the
	// current staked balance.
	LiquidityHighFraction   decimal.Decimal
	LiquidityMediumFraction decimal.Decimal

	// Market impact fractions compare the 30-day projected net flow
	// magnitude against total supply.
	MarketImpactHighFraction   decimal.Decimal
	MarketImpactMediumFraction decimal.Decimal

	// LowParticipationPercent is the staking percentage under which a
	// declining protocol rates low growth sustainability.
	LowParticipationPercent decimal.Decimal

	// LowConfidenceWindowDays flags projections built from shorter
	// windows as lower confidence.
	LowConfidenceWindowDays int
}

// DefaultThresholds mirrors the documented defaults: the 40/20/10 tier
// table, 10%/3% liquidity fractions, 5%/2% market impact fractions.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TrendGrowthTolerance:  decimal.NewFromFloat(0.01),
		TrendDeclineTolerance: decimal.NewFromFloat(0.01),
		HealthTiers: []TierThreshold{
			{MinPercent: decimal.NewFromInt(40), Tier: TierExcellent},
			{MinPercent: decimal.NewFromInt(20), Tier: TierGood},
			{MinPercent: decimal.NewFromInt(10), Tier: TierModerate},
		},
		LiquidityHighFraction:      decimal.NewFromFloat(0.10),
		LiquidityMediumFraction:    decimal.NewFromFloat(0.03),
		MarketImpactHighFraction:   decimal.NewFromFloat(0.05),
		MarketImpactMediumFraction: decimal.NewFromFloat(0.02),
		LowParticipationPercent:    decimal.NewFromInt(10),
		LowConfidenceWindowDays:    7,
	}
}

// TierFor resolves the health tier for a staking percentage by walking
// the ordered table.
func (t Thresholds) TierFor(stakingPercentage decimal.Decimal) HealthTier {
	for _, row := range t.HealthTiers {
		if stakingPercentage.GreaterThan(row.MinPercent) {
			return row.Tier
		}
	}
	return TierCritical
}
