package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "phyto",
	Short: "Relate phytoplankton taxa distributions to environmental gradients",
	Long: `phyto runs a constrained ordination (CCA) and a regression-based
variable-importance analysis over paired environmental and taxa abundance
tables, one per sampling-frequency scenario, and renders a comparison figure
for each.`,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./scenarios.yaml)")
}
