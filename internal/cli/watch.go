package cli

import (
	"github.com/spf13/cobra"

	"stakewatch/internal/app"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the analysis on an interval, persisting and alerting",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.AnalyzeOptions{
			StakingContract: analyzeStaking,
			TokenContract:   analyzeToken,
			Days:            analyzeDays,
			TotalSupply:     analyzeSupply,
		}
		return getApp().Watch(cmd.Context(), opts)
	},
}

func init() {
	watchCmd.Flags().StringVar(&analyzeStaking, "staking", "", "Staking contract address")
	watchCmd.Flags().StringVar(&analyzeToken, "token", "", "Token contract address")
	watchCmd.Flags().IntVar(&analyzeDays, "days", 0, "Analysis window in days (defaults to config)")
	watchCmd.Flags().Float64Var(&analyzeSupply, "supply", 0, "Token total supply (defaults to config)")
}
