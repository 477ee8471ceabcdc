package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"crunch/internal/fetch"
	"crunch/internal/pipeline"
	"crunch/internal/table"
)

var (
	mergeFormat string
	mergeOutput string
)

// mergeCmd joins nutrition ratings with user review ratings
var mergeCmd = &cobra.Command{
	Use:   "merge <ratings> <reviews>",
	Short: "Merge nutrition ratings with user review ratings",
	Long: `Joins two datasets on the name column: a primary dataset carrying a
nutritional rating and a reviews dataset carrying a user rating. The
result has name, nutrition_rating, and user_rating columns, plus every
other primary column. Names present in only one dataset are dropped.

Both arguments may be CSV file paths or http(s) URLs.

Example:
  crunch merge cereals.csv reviews.csv
  crunch merge cereals.csv reviews.csv --format json -o merged.json`,
	Args: cobra.ExactArgs(2),
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringVar(&mergeFormat, "format", "csv", "Output format: csv or json")
	mergeCmd.Flags().StringVarP(&mergeOutput, "output", "o", "", "Write output to file instead of stdout")
}

func runMerge(cmd *cobra.Command, args []string) error {
	timeout, err := cfg.SourceTimeout()
	if err != nil {
		return err
	}

	pipe := &pipeline.Pipeline{
		Source: fetch.ForLocation(args[0], timeout),
		Logger: logger,
	}
	reviews := fetch.ForLocation(args[1], timeout)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	merged, err := pipe.RunMerge(ctx, reviews)
	if err != nil {
		return err
	}

	var out io.Writer = cmd.OutOrStdout()
	if mergeOutput != "" {
		f, err := os.Create(mergeOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	switch mergeFormat {
	case "csv":
		return table.WriteCSV(out, merged)
	case "json":
		return table.WriteJSON(out, merged)
	default:
		return fmt.Errorf("unknown output format %q (valid: csv, json)", mergeFormat)
	}
}
