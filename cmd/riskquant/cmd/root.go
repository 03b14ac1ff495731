package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "riskquant",
	Short: "Monte Carlo risk quantification for enterprise risk registers",
	Long: `Riskquant simulates annual losses for a register of operational risks
and quantifies them with tail metrics.

It provides tools for:
  - Frequency/severity Monte Carlo simulation per risk
  - Portfolio aggregation with reproducible sub-seeding
  - VaR, TVaR and percentile summaries
  - Tail contribution (tornado) ranking
  - Loss exceedance curves and return periods`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
