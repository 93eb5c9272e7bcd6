package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paulabirocchi/Paper-Phytoplankton-TSB/internal/config"
	"github.com/paulabirocchi/Paper-Phytoplankton-TSB/internal/runner"
)

var (
	runOutDir   string
	runScenario string
	runSeed     int64
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the configured scenarios and render one figure per scenario",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if runOutDir != "" {
			cfg.OutDir = runOutDir
		}
		if cmd.Flags().Changed("seed") {
			cfg.Seed = runSeed
		}
		if runScenario != "" {
			kept := cfg.Scenarios[:0]
			for _, s := range cfg.Scenarios {
				if s.Name == runScenario {
					kept = append(kept, s)
				}
			}
			if len(kept) == 0 {
				return fmt.Errorf("unknown scenario %q", runScenario)
			}
			cfg.Scenarios = kept
		}

		reports := runner.New(cfg).Run()
		failed := 0
		for _, rep := range reports {
			if rep.Failed() {
				failed++
				fmt.Printf("✗ %s: %s failed: %v\n", rep.Scenario, rep.Stage, rep.Err)
			} else {
				fmt.Printf("✓ %s → %s\n", rep.Scenario, rep.OutFile)
			}
		}
		if failed == len(reports) {
			return fmt.Errorf("all %d scenarios failed", failed)
		}
		if failed > 0 {
			fmt.Printf("⚠ %d of %d scenarios failed\n", failed, len(reports))
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runOutDir, "out-dir", "", "directory for rendered figures (overrides config)")
	runCmd.Flags().StringVar(&runScenario, "scenario", "", "run only the named scenario")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "train/test split seed (overrides config)")
	rootCmd.AddCommand(runCmd)
}
