package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paulabirocchi/Paper-Phytoplankton-TSB/internal/config"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List the configured scenarios",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		for _, s := range cfg.Scenarios {
			fmt.Printf("%s\n", s.Name)
			fmt.Printf("  environment: %s\n", s.EnvFile)
			fmt.Printf("  abundance:   %s\n", s.AbundanceFile)
			fmt.Printf("  focal taxon: %s\n", s.FocalTaxon)
			fmt.Printf("  axis variance: CCA1 %.1f%%, CCA2 %.1f%%\n", s.Axis1VarPct, s.Axis2VarPct)
			if len(s.DropEnvColumns) > 0 {
				fmt.Printf("  excluded variables: %v\n", s.DropEnvColumns)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scenariosCmd)
}
