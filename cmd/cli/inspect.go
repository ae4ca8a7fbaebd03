package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"idsampler/adapters/excel"
	"idsampler/internal/logging"
	"idsampler/internal/profiling"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [file]",
		Short: "Show what identifiers would be extracted from a file",
		Long: `Read the first column of a CSV or Excel file exactly as a run would and
report the header, dropped cells and the spread of the extracted IDs.

Example: idsampler inspect pool.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			return runInspect(cmd.OutOrStdout(), args[0], level)
		},
	}
}

func runInspect(w io.Writer, path, logLevel string) error {
	logger, err := logging.New(logLevel, "console")
	if err != nil {
		return err
	}
	defer logger.Sync()

	ext, err := excel.NewDataReader(path, excel.WithLogger(logger)).ReadIdentifiers()
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "File:      %s (%s)\n", ext.Source, ext.FileType)
	fmt.Fprintf(w, "Rows:      %d\n", ext.Rows)
	if ext.HeaderSkipped {
		fmt.Fprintf(w, "Header:    %q (skipped)\n", ext.Header)
	} else {
		fmt.Fprintf(w, "Header:    none\n")
	}
	fmt.Fprintf(w, "IDs:       %d\n", len(ext.IDs))
	fmt.Fprintf(w, "Dropped:   %d\n", ext.Dropped)
	if len(ext.DroppedSample) > 0 {
		fmt.Fprintf(w, "Examples:  %s\n", strings.Join(ext.DroppedSample, ", "))
	}
	fmt.Fprintf(w, "Analysis:  %s\n", ext.Analysis)

	if d, err := profiling.AnalyzeDistribution(ext.IDs); err == nil {
		fmt.Fprintf(w, "Range:     %.0f to %.0f\n", d.Min, d.Max)
		fmt.Fprintf(w, "Median:    %.1f (IQR %.1f to %.1f)\n", d.Median, d.Q25, d.Q75)
	}
	if dupes := countDuplicates(ext.IDs); dupes > 0 {
		fmt.Fprintf(w, "Warning:   %d duplicate value(s)\n", dupes)
	}
	return nil
}

func countDuplicates(ids []int64) int {
	seen := make(map[int64]struct{}, len(ids))
	dupes := 0
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			dupes++
			continue
		}
		seen[id] = struct{}{}
	}
	return dupes
}
