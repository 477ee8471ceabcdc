package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"crunch/internal/fetch"
	"crunch/internal/pipeline"
	"crunch/internal/store"
)

var (
	runOffline bool
	runWatch   bool
	runNoCache bool
)

// runCmd executes the full pipeline once (or on every change with --watch)
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the cereal recommendation pipeline",
	Long: `Fetches the configured cereal dataset, normalizes its schema, ranks
the cereals by protein (ties broken by lowest calories), and logs the
winner. The winning name is also printed to stdout for shell use.

With --offline the last cached snapshot of the source is used instead of
fetching. With --watch (local files only) the pipeline re-runs whenever
the dataset file changes.`,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().BoolVar(&runOffline, "offline", false, "Use the last cached snapshot instead of fetching")
	runCmd.Flags().BoolVar(&runWatch, "watch", false, "Re-run when the dataset file changes (local files only)")
	runCmd.Flags().BoolVar(&runNoCache, "no-cache", false, "Do not cache the fetched dataset")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	location := cfg.Source.URL
	isRemote := strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")

	if runOffline && runWatch {
		return fmt.Errorf("--offline and --watch are mutually exclusive")
	}
	if runWatch && isRemote {
		return fmt.Errorf("--watch requires a local dataset file, got %s", location)
	}

	var cache *store.Cache
	if cfg.Cache.Enabled && (runOffline || !runNoCache) {
		var err error
		cache, err = store.Open(cfg.Cache.Path)
		if err != nil {
			return err
		}
		defer func() { _ = cache.Close() }()
	}

	var source fetch.Source
	if runOffline {
		if cache == nil {
			return fmt.Errorf("--offline requires the cache to be enabled")
		}
		source = &pipeline.SnapshotSource{Cache: cache, Loc: location}
	} else {
		timeout, err := cfg.SourceTimeout()
		if err != nil {
			return err
		}
		source = fetch.ForLocation(location, timeout)
	}

	pipe := &pipeline.Pipeline{Source: source, Logger: logger}
	if !runOffline && !runNoCache {
		pipe.Cache = cache
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if runWatch {
		return watchPipeline(ctx, pipe, location, cmd)
	}

	res, err := pipe.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Name)
	return nil
}

// watchPipeline runs once immediately, then re-runs on file changes until
// interrupted.
func watchPipeline(ctx context.Context, pipe *pipeline.Pipeline, path string, cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if res, err := pipe.Run(ctx); err != nil {
		logger.Error("Initial pipeline run failed", zap.Error(err))
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), res.Name)
	}

	watcher, err := pipeline.NewWatcher(pipe, path)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	watcher.OnResult = func(res pipeline.Result) {
		fmt.Fprintln(cmd.OutOrStdout(), res.Name)
	}
	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Stop()

	logger.Info("Watching dataset for changes", zap.String("path", path))
	<-ctx.Done()
	return nil
}
