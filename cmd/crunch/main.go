// Command crunch runs the cereal recommendation pipeline: fetch a cereal
// dataset, reconcile its schema, and report the most protein-rich cereal
// (ties broken by fewest calories). It can also merge nutrition ratings
// with user review ratings and manage the local snapshot cache.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"crunch/internal/config"
	"crunch/internal/logging"
)

const version = "0.3.0"

var (
	// Global flags
	cfgPath    string
	verbose    bool
	sourceFlag string

	// Shared state built in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "crunch",
	Short: "crunch - cereal recommendation pipeline",
	Long: `crunch is a small data pipeline for cereal datasets.

It downloads (or reads) a CSV of cereals, normalizes inconsistent column
naming, and recommends the best pre-workout cereal: highest protein,
ties broken by lowest calories. It can also merge nutrition ratings with
user review ratings into one dataset.

Pipeline stages: fetch -> normalize -> rank -> display.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		if sourceFlag != "" {
			cfg.Source.URL = sourceFlag
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err = logging.New(cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// versionCmd prints the crunch version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the crunch version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "crunch %s\n", version)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".crunch.yaml", "Path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&sourceFlag, "source", "", "Dataset URL or file path (overrides config)")

	// Add commands to root
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
