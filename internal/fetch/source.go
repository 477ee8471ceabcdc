// Package fetch provides the dataset-fetching collaborator for the
// pipeline. Fetching is behind the Source interface so tests substitute an
// in-memory implementation instead of patching shared state.
package fetch

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"crunch/internal/table"
)

// Source produces a parsed tabular dataset. On any failure (network,
// filesystem, CSV parse) it returns an error before domain logic runs.
type Source interface {
	// Fetch retrieves and parses the dataset.
	Fetch(ctx context.Context) (*table.Table, error)
	// Location describes where the dataset comes from, for logs and cache keys.
	Location() string
}

// HTTPSource downloads a CSV dataset over HTTP(S).
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// NewHTTPSource returns an HTTPSource with a dedicated client using the
// given timeout. A zero timeout means no timeout beyond ctx.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSource) Location() string { return s.URL }

func (s *HTTPSource) Fetch(ctx context.Context) (*table.Table, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", s.URL, err)
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", s.URL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("download %s: unexpected status %s", s.URL, resp.Status)
	}
	t, err := table.ReadCSV(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.URL, err)
	}
	return t, nil
}

// FileSource reads a CSV dataset from the local filesystem.
type FileSource struct {
	Path string
}

func (s *FileSource) Location() string { return s.Path }

func (s *FileSource) Fetch(ctx context.Context) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.Path, err)
	}
	defer func() { _ = f.Close() }()

	t, err := table.ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.Path, err)
	}
	return t, nil
}

// ForLocation picks a Source by location: http(s) URLs download, anything
// else is treated as a filesystem path.
func ForLocation(location string, timeout time.Duration) Source {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewHTTPSource(location, timeout)
	}
	return &FileSource{Path: location}
}
