// Package pipeline wires the fetch, normalize, rank, and merge stages into
// the runnable cereal pipeline.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"crunch/internal/cereal"
	"crunch/internal/fetch"
	"crunch/internal/store"
	"crunch/internal/table"
)

// Result is the outcome of one ranking run.
type Result struct {
	RunID    string
	Name     string
	Rows     int
	Location string
}

// Pipeline executes the cereal recommendation flow. Source is required;
// Cache is optional and, when set, receives a snapshot of every successful
// fetch.
type Pipeline struct {
	Source fetch.Source
	Cache  *store.Cache
	Logger *zap.Logger
}

func (p *Pipeline) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

// Run fetches the dataset, normalizes its schema, and ranks it, logging the
// winning cereal the way the display stage always has.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	runID := uuid.NewString()
	log := p.logger().With(zap.String("run_id", runID), zap.String("source", p.Source.Location()))

	log.Debug("Fetching dataset")
	raw, err := p.Source.Fetch(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("fetch dataset: %w", err)
	}
	log.Debug("Fetched dataset", zap.Int("rows", raw.Len()))

	if p.Cache != nil {
		if err := p.snapshot(ctx, runID, raw); err != nil {
			// A cache failure must not take down the run.
			log.Warn("Failed to cache snapshot", zap.Error(err))
		}
	}

	normalized, err := cereal.Normalize(raw)
	if err != nil {
		return Result{}, fmt.Errorf("normalize dataset: %w", err)
	}

	name, err := cereal.Rank(normalized)
	if err != nil {
		return Result{}, err
	}

	log.Info("Most protein-rich cereal", zap.String("name", name))
	return Result{
		RunID:    runID,
		Name:     name,
		Rows:     normalized.Len(),
		Location: p.Source.Location(),
	}, nil
}

// RunMerge fetches the nutrition ratings dataset and a user reviews dataset
// concurrently, normalizes both, and joins them on name.
func (p *Pipeline) RunMerge(ctx context.Context, reviews fetch.Source) (*table.Table, error) {
	runID := uuid.NewString()
	log := p.logger().With(zap.String("run_id", runID))

	var primaryRaw, reviewsRaw *table.Table
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		t, err := p.Source.Fetch(egCtx)
		if err != nil {
			return fmt.Errorf("fetch ratings dataset: %w", err)
		}
		primaryRaw = t
		return nil
	})
	eg.Go(func() error {
		t, err := reviews.Fetch(egCtx)
		if err != nil {
			return fmt.Errorf("fetch reviews dataset: %w", err)
		}
		reviewsRaw = t
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	primary, err := cereal.Normalize(primaryRaw)
	if err != nil {
		return nil, fmt.Errorf("normalize ratings dataset: %w", err)
	}
	normReviews, err := cereal.Normalize(reviewsRaw)
	if err != nil {
		return nil, fmt.Errorf("normalize reviews dataset: %w", err)
	}

	merged, err := cereal.Merge(primary, normReviews)
	if err != nil {
		return nil, err
	}
	log.Info("Merged ratings",
		zap.Int("rows", merged.Len()),
		zap.Int("unmatched", primary.Len()-merged.Len()))
	return merged, nil
}

func (p *Pipeline) snapshot(ctx context.Context, runID string, t *table.Table) error {
	var buf bytes.Buffer
	if err := table.WriteCSV(&buf, t); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return p.Cache.Put(ctx, store.Snapshot{
		RunID:     runID,
		Location:  p.Source.Location(),
		FetchedAt: time.Now(),
		RowCount:  t.Len(),
		CSV:       buf.Bytes(),
	})
}

// SnapshotSource is a fetch.Source that replays the most recent cached
// snapshot for a location instead of touching the network. It backs the
// --offline flag.
type SnapshotSource struct {
	Cache *store.Cache
	Loc   string
}

func (s *SnapshotSource) Location() string { return s.Loc + " (cached)" }

func (s *SnapshotSource) Fetch(ctx context.Context) (*table.Table, error) {
	snap, err := s.Cache.Latest(ctx, s.Loc)
	if err != nil {
		return nil, err
	}
	t, err := table.ReadCSV(bytes.NewReader(snap.CSV))
	if err != nil {
		return nil, fmt.Errorf("parse cached snapshot for %s: %w", s.Loc, err)
	}
	return t, nil
}
