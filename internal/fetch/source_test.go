package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const mockCereals = `name,protein,calories
Bran,4,70
Honey-comb,1,110
`

func TestHTTPSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(mockCereals))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, 5*time.Second)
	tbl, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())
	require.Equal(t, "Bran", tbl.Rows[0]["name"])
	require.Equal(t, srv.URL, src.Location())
}

func TestHTTPSource_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, 5*time.Second)
	_, err := src.Fetch(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "unexpected status")
}

func TestHTTPSource_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(mockCereals))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := NewHTTPSource(srv.URL, 5*time.Second)
	_, err := src.Fetch(ctx)
	require.Error(t, err)
}

func TestFileSource_Fetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cereals.csv")
	require.NoError(t, os.WriteFile(path, []byte(mockCereals), 0644))

	src := &FileSource{Path: path}
	tbl, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())
	require.Equal(t, path, src.Location())
}

func TestFileSource_MissingFile(t *testing.T) {
	src := &FileSource{Path: filepath.Join(t.TempDir(), "nope.csv")}
	_, err := src.Fetch(context.Background())
	require.Error(t, err)
}

func TestForLocation(t *testing.T) {
	cases := []struct {
		location string
		wantHTTP bool
	}{
		{"https://docs.dagster.io/assets/cereal.csv", true},
		{"http://localhost:8080/cereal.csv", true},
		{"cereals.csv", false},
		{"/data/cereals.csv", false},
	}
	for _, tc := range cases {
		src := ForLocation(tc.location, time.Second)
		_, isHTTP := src.(*HTTPSource)
		if isHTTP != tc.wantHTTP {
			t.Errorf("ForLocation(%q): expected http=%v, got %T", tc.location, tc.wantHTTP, src)
		}
		if src.Location() != tc.location {
			t.Errorf("ForLocation(%q): location %q", tc.location, src.Location())
		}
	}
}
