package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"crunch/internal/fetch"
	"crunch/internal/pipeline"
)

// rankCmd ranks an explicit dataset without touching config or cache
var rankCmd = &cobra.Command{
	Use:   "rank <dataset>",
	Short: "Rank a cereal dataset and print the winning name",
	Long: `Ranks the given dataset (CSV file path or http(s) URL) by protein,
breaking ties by lowest calories, and prints the winning cereal's name.

Example:
  crunch rank cereals.csv
  crunch rank https://docs.dagster.io/assets/cereal.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runRank,
}

func runRank(cmd *cobra.Command, args []string) error {
	timeout, err := cfg.SourceTimeout()
	if err != nil {
		return err
	}

	pipe := &pipeline.Pipeline{
		Source: fetch.ForLocation(args[0], timeout),
		Logger: logger,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := pipe.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Name)
	return nil
}
