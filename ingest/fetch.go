package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	// defaultFetchTimeout bounds a single report download.
	defaultFetchTimeout = 60 * time.Second

	// maxFetchBytes caps how much of a report is read. Disclosure PDFs run to
	// a few hundred pages; anything past this is not a report.
	maxFetchBytes = 128 << 20
)

// Fetcher retrieves the raw bytes of a report from a source reference.
type Fetcher interface {
	Fetch(ctx context.Context, source string) ([]byte, error)
}

// HTTPFetcher downloads reports over HTTP(S).
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates a fetcher with a bounded-timeout HTTP client.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{Timeout: defaultFetchTimeout},
	}
}

// Fetch downloads the report at the given URL.
func (f *HTTPFetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", source, err)
	}
	req.Header.Set("User-Agent", "esgpipe/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", source, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", source, err)
	}
	return data, nil
}

// FileFetcher reads reports from the local filesystem.
type FileFetcher struct{}

// NewFileFetcher creates a filesystem fetcher.
func NewFileFetcher() *FileFetcher {
	return &FileFetcher{}
}

// Fetch reads the report file at the given path.
func (f *FileFetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", source, err)
	}
	return data, nil
}

// autoFetcher routes by source scheme: URLs go over HTTP, everything else is
// treated as a filesystem path.
type autoFetcher struct {
	http *HTTPFetcher
	file *FileFetcher
}

// NewFetcher creates the default fetcher, which dispatches on the source's scheme.
func NewFetcher() Fetcher {
	return &autoFetcher{
		http: NewHTTPFetcher(),
		file: NewFileFetcher(),
	}
}

func (f *autoFetcher) Fetch(ctx context.Context, source string) ([]byte, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return f.http.Fetch(ctx, source)
	}
	return f.file.Fetch(ctx, source)
}
