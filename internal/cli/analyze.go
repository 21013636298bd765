package cli

import (
	"github.com/spf13/cobra"

	"stakewatch/internal/app"
)

var (
	analyzeStaking      string
	analyzeToken        string
	analyzeDays         int
	analyzeSupply       float64
	analyzeOutput       string
	analyzeAnchorLatest bool
	analyzeSkipBalance  bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a full staking health check analysis",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.AnalyzeOptions{
			StakingContract: analyzeStaking,
			TokenContract:   analyzeToken,
			Days:            analyzeDays,
			TotalSupply:     analyzeSupply,
			OutputPath:      analyzeOutput,
			AnchorToLatest:  analyzeAnchorLatest,
			SkipBalance:     analyzeSkipBalance,
		}
		return getApp().Analyze(cmd.Context(), opts)
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeStaking, "staking", "", "Staking contract address")
	analyzeCmd.Flags().StringVar(&analyzeToken, "token", "", "Token contract address")
	analyzeCmd.Flags().IntVar(&analyzeDays, "days", 0, "Analysis window in days (defaults to config)")
	analyzeCmd.Flags().Float64Var(&analyzeSupply, "supply", 0, "Token total supply (defaults to config)")
	analyzeCmd.Flags().StringVar(&analyzeOutput, "output", "", "Path for the JSON report (defaults to a timestamped name)")
	analyzeCmd.Flags().BoolVar(&analyzeAnchorLatest, "anchor-latest", false, "End the window at the latest event instead of now")
	analyzeCmd.Flags().BoolVar(&analyzeSkipBalance, "skip-balance", false, "Skip the on-chain balance lookup and estimate from activity")
}
