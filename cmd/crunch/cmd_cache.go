package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"crunch/internal/store"
)

// cacheCmd manages cached dataset snapshots
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage cached dataset snapshots",
	Long: `List and clear locally cached dataset snapshots.

Subcommands:
  list   - List all cached snapshots
  clear  - Delete all cached snapshots`,
	RunE: runCacheList,
}

// cacheListCmd lists cached snapshots
var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all cached snapshots",
	RunE:  runCacheList,
}

// cacheClearCmd deletes cached snapshots
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached snapshots",
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func openCache() (*store.Cache, error) {
	if !cfg.Cache.Enabled {
		return nil, fmt.Errorf("cache is disabled in config")
	}
	return store.Open(cfg.Cache.Path)
}

func runCacheList(cmd *cobra.Command, args []string) error {
	cache, err := openCache()
	if err != nil {
		return err
	}
	defer func() { _ = cache.Close() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	snaps, err := cache.List(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(snaps) == 0 {
		fmt.Fprintln(out, "No cached snapshots.")
		return nil
	}
	for _, s := range snaps {
		fmt.Fprintf(out, "%s  %4d rows  %s  run=%s\n",
			s.FetchedAt.Format("2006-01-02 15:04:05"), s.RowCount, s.Location, s.RunID)
	}
	fmt.Fprintf(out, "Total: %d snapshots\n", len(snaps))
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	cache, err := openCache()
	if err != nil {
		return err
	}
	defer func() { _ = cache.Close() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	n, err := cache.Clear(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d snapshots\n", n)
	return nil
}
