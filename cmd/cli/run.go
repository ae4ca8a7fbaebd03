package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"idsampler/adapters/excel"
	"idsampler/domain/run"
	"idsampler/domain/sampling"
	"idsampler/internal/config"
	"idsampler/internal/container"
	"idsampler/internal/logging"
	"idsampler/internal/profiling"
)

type runFlags struct {
	configPath string
	pool       string
	retained   string
	excluded   string
	size       int
	seed       int64
	minID      int64
	maxID      int64
	out        string
	format     string
}

func newRunCmd() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Validate inputs, sample new IDs and write the final dataset",
		Long: `Load the full ID pool plus optional current selections and excluded IDs,
validate them, then draw new IDs uniformly at random from the eligible pool.

Settings can come from a YAML run spec (--config); flags override it.

Example: idsampler run --pool pool.csv --retained current.xlsx --excluded excluded.csv --size 25 --seed 42 --out final.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := resolveRunSpec(cmd, flags)
			if err != nil {
				return err
			}
			level, _ := cmd.Flags().GetString("log-level")
			return runSampling(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), spec, level)
		},
	}

	cmd.Flags().StringVar(&flags.configPath, "config", "", "YAML run spec")
	cmd.Flags().StringVar(&flags.pool, "pool", "", "Full ID pool file (csv, xlsx)")
	cmd.Flags().StringVar(&flags.retained, "retained", "", "Current selections file (optional)")
	cmd.Flags().StringVar(&flags.excluded, "excluded", "", "Excluded IDs file (optional)")
	cmd.Flags().IntVar(&flags.size, "size", run.DefaultSampleSize, "Number of new IDs to sample")
	cmd.Flags().Int64Var(&flags.seed, "seed", 0, "Random seed for reproducible sampling (optional, >= 1)")
	cmd.Flags().Int64Var(&flags.minID, "min", 0, "Minimum ID value (optional, inclusive)")
	cmd.Flags().Int64Var(&flags.maxID, "max", 0, "Maximum ID value (optional, inclusive)")
	cmd.Flags().StringVar(&flags.out, "out", "", "Write the final dataset to this file instead of stdout")
	cmd.Flags().StringVar(&flags.format, "format", "", "Output format: csv|xlsx (default from --out extension)")

	return cmd
}

// resolveRunSpec starts from the YAML spec when given and applies only the
// flags the user actually set
func resolveRunSpec(cmd *cobra.Command, flags runFlags) (*config.RunSpec, error) {
	spec := config.DefaultRunSpec()
	if flags.configPath != "" {
		loaded, err := config.LoadRunSpec(flags.configPath)
		if err != nil {
			return nil, err
		}
		spec = loaded
	}

	changed := cmd.Flags().Changed
	if changed("pool") {
		spec.Pool = flags.pool
	}
	if changed("retained") {
		spec.Retained = flags.retained
	}
	if changed("excluded") {
		spec.Excluded = flags.excluded
	}
	if changed("size") {
		spec.SampleSize = flags.size
	}
	if changed("seed") {
		spec.Seed = sampling.Bound(flags.seed)
	}
	if changed("min") {
		spec.MinID = sampling.Bound(flags.minID)
	}
	if changed("max") {
		spec.MaxID = sampling.Bound(flags.maxID)
	}
	if changed("out") {
		spec.Output = flags.out
	}
	if changed("format") {
		spec.Format = flags.format
	}
	return spec, nil
}

func runSampling(ctx context.Context, stdout, stderr io.Writer, spec *config.RunSpec, logLevel string) error {
	logger, err := logging.New(logLevel, "console")
	if err != nil {
		return err
	}
	defer logger.Sync()

	format, err := outputFormat(spec)
	if err != nil {
		return err
	}

	appConfig, err := config.Load()
	if err != nil {
		return err
	}
	appContainer, err := container.New(appConfig, logger)
	if err != nil {
		return err
	}
	if err := appContainer.Init(ctx); err != nil {
		return err
	}
	defer appContainer.Shutdown(context.Background())
	runs := appContainer.Runs

	inputs, err := loadInputs(ctx, spec, logger)
	if err != nil {
		return err
	}
	if inputs.pool != nil {
		if err := runs.LoadPool(inputs.pool.IDs); err != nil {
			return fmt.Errorf("%s: %w", spec.Pool, err)
		}
	}
	if inputs.retained != nil {
		if err := runs.LoadRetained(inputs.retained.IDs); err != nil {
			return fmt.Errorf("%s: %w", spec.Retained, err)
		}
	}
	if inputs.excluded != nil {
		if err := runs.LoadExcluded(inputs.excluded.IDs); err != nil {
			return fmt.Errorf("%s: %w", spec.Excluded, err)
		}
	}

	rc, err := runs.Execute(ctx, spec.Params())
	if err != nil {
		return err
	}

	if rc.State == run.StateRejected {
		fmt.Fprintln(stderr, "Validation Errors:")
		for _, msg := range rc.Errors {
			fmt.Fprintf(stderr, "- %s\n", msg)
		}
		return fmt.Errorf("sampling rejected with %d validation error(s)", len(rc.Errors))
	}

	printSummary(stderr, rc, inputs)

	if spec.Output == "" {
		return format.Write(stdout, rc.Dataset)
	}
	return writeOutput(spec.Output, format, rc.Dataset, stderr)
}

type loadedInputs struct {
	pool, retained, excluded *excel.Extraction
}

// loadInputs parses the three files concurrently; each file is independent
// of the others
func loadInputs(ctx context.Context, spec *config.RunSpec, logger *zap.Logger) (loadedInputs, error) {
	var in loadedInputs
	g, _ := errgroup.WithContext(ctx)

	read := func(path string, dst **excel.Extraction) {
		if path == "" {
			return
		}
		g.Go(func() error {
			ext, err := excel.NewDataReader(path, excel.WithLogger(logger)).ReadIdentifiers()
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			*dst = ext
			return nil
		})
	}
	read(spec.Pool, &in.pool)
	read(spec.Retained, &in.retained)
	read(spec.Excluded, &in.excluded)

	if err := g.Wait(); err != nil {
		return loadedInputs{}, err
	}
	return in, nil
}

func outputFormat(spec *config.RunSpec) (excel.ExportFormat, error) {
	if spec.Format != "" {
		return excel.ParseExportFormat(spec.Format)
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(spec.Output)), ".")
	if ext == "" {
		return excel.ExportCSV, nil
	}
	return excel.ParseExportFormat(ext)
}

func writeOutput(path string, format excel.ExportFormat, dataset sampling.FinalDataset, stderr io.Writer) error {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, format.FileName(time.Now()))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := format.Write(f, dataset); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}

	fmt.Fprintf(stderr, "Wrote %d rows to %s\n", len(dataset), path)
	return nil
}

func printSummary(w io.Writer, rc *run.Context, inputs loadedInputs) {
	summary := profiling.Summarize(rc)

	fmt.Fprintf(w, "Sampling completed successfully!\n\n")
	fmt.Fprintf(w, "Total IDs in Pool:   %d\n", summary.PoolCount)
	fmt.Fprintf(w, "Eligible IDs:        %d\n", summary.EligibleCount)
	fmt.Fprintf(w, "Previously Selected: %d\n", summary.RetainedCount)
	fmt.Fprintf(w, "Newly Selected:      %d\n", summary.NewCount)
	if summary.Final != nil {
		fmt.Fprintf(w, "Final ID range:      %.0f to %.0f (median %.1f)\n",
			summary.Final.Min, summary.Final.Max, summary.Final.Median)
	}
	if summary.SpreadPValue != nil {
		fmt.Fprintf(w, "Spread p-value:      %.3f\n", *summary.SpreadPValue)
	}
	for _, ext := range []*excel.Extraction{inputs.pool, inputs.retained, inputs.excluded} {
		if ext != nil && ext.Dropped > 0 {
			fmt.Fprintf(w, "Note: %d non-numeric cell(s) dropped from %s\n", ext.Dropped, ext.Source)
		}
	}
	fmt.Fprintf(w, "Run %s, fingerprint %s\n\n", rc.RunID, rc.Fingerprint.Fingerprint.Short())
}
