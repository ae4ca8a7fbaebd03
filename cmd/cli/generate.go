package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"idsampler/internal/testkit"
)

func newGenerateCmd() *cobra.Command {
	cfg := testkit.DefaultScenarioConfig()
	var (
		dir    string
		format string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write synthetic pool, retained and excluded files for trying the tool",
		Long: `Generate a deterministic demo scenario. Use --overlap to put IDs in both the
retained and excluded files, and --dirty to add non-numeric cells to the pool.

Example: idsampler generate --dir demo --pool-size 500 --retained 20 --excluded 10 --format xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scenario, err := testkit.GenerateScenario(cfg)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create %s: %w", dir, err)
			}
			files, err := scenario.WriteFiles(dir, format)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Pool:     %s (%d IDs)\n", files.Pool, len(scenario.Pool))
			fmt.Fprintf(out, "Retained: %s (%d IDs)\n", files.Retained, len(scenario.Retained))
			fmt.Fprintf(out, "Excluded: %s (%d IDs)\n", files.Excluded, len(scenario.Excluded))
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "Directory to write files into")
	cmd.Flags().StringVar(&format, "format", "csv", "File format: csv|xlsx")
	cmd.Flags().IntVar(&cfg.PoolSize, "pool-size", cfg.PoolSize, "Number of IDs in the pool")
	cmd.Flags().Int64Var(&cfg.StartID, "start-id", cfg.StartID, "First ID in the pool")
	cmd.Flags().IntVar(&cfg.RetainedCount, "retained", cfg.RetainedCount, "Number of retained IDs")
	cmd.Flags().IntVar(&cfg.ExcludedCount, "excluded", cfg.ExcludedCount, "Number of excluded IDs")
	cmd.Flags().IntVar(&cfg.Overlap, "overlap", cfg.Overlap, "IDs placed in both retained and excluded")
	cmd.Flags().IntVar(&cfg.DirtyCells, "dirty", cfg.DirtyCells, "Non-numeric cells appended to the pool")
	cmd.Flags().Int64Var(&cfg.Seed, "seed", cfg.Seed, "Seed for the generator")
	return cmd
}
