// Package remote downloads the published catalog snapshot.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/macontouch/notebook/internal/domain"
	domainerrors "github.com/macontouch/notebook/internal/errors"
	"github.com/macontouch/notebook/internal/ratelimit"
)

const (
	// maxSnapshotSize bounds the body read. Snapshots embed every image inline.
	maxSnapshotSize = 64 << 20

	// DefaultTimeout applies when Config.Timeout is zero.
	DefaultTimeout = 15 * time.Second
)

// Config controls the fetcher.
type Config struct {
	URL     string
	Timeout time.Duration
}

// Fetcher performs one GET per call with a cache-busting timestamp.
// It never retries.
type Fetcher struct {
	url        *url.URL
	timeout    time.Duration
	httpClient *http.Client
	limiter    *ratelimit.KeyedRateLimiter
	logger     *slog.Logger
	now        func() time.Time
}

// NewFetcher validates cfg.URL. limiter may be nil to disable rate limiting.
func NewFetcher(cfg Config, limiter *ratelimit.KeyedRateLimiter, logger *slog.Logger) (*Fetcher, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse remote url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("remote url must be http or https, got %q", cfg.URL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		url:        u,
		timeout:    timeout,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// URL returns the configured snapshot location without the cache buster.
func (f *Fetcher) URL() string {
	return f.url.String()
}

// requestURL appends timestamp=<epoch ms>, keeping any existing query.
func (f *Fetcher) requestURL() string {
	u := *f.url
	q := u.Query()
	q.Set("timestamp", strconv.FormatInt(f.now().UnixMilli(), 10))
	u.RawQuery = q.Encode()
	return u.String()
}

// Fetch downloads and validates the snapshot. Every failure is a NETWORK error.
func (f *Fetcher) Fetch(ctx context.Context) (*domain.Snapshot, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, f.url.Host); err != nil {
			return nil, domainerrors.Network(err, "rate limited")
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, f.requestURL(), nil)
	if err != nil {
		return nil, domainerrors.Network(err, "create request")
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Accept", "application/json")

	start := f.now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, domainerrors.Network(err, "fetch snapshot")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domainerrors.Networkf("fetch snapshot: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSnapshotSize+1))
	if err != nil {
		return nil, domainerrors.Network(err, "read snapshot")
	}
	if len(body) > maxSnapshotSize {
		return nil, domainerrors.Networkf("snapshot exceeds %d bytes", maxSnapshotSize)
	}

	snap, err := decodeSnapshot(body)
	if err != nil {
		return nil, err
	}

	f.logger.Info("fetched remote snapshot",
		"version", snap.Version,
		"entries", len(snap.Data),
		"bytes", len(body),
		"duration", f.now().Sub(start),
	)
	return snap, nil
}

// decodeSnapshot requires both "version" and "data" keys.
func decodeSnapshot(body []byte) (*domain.Snapshot, error) {
	var shape struct {
		Version *int            `json:"version"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &shape); err != nil {
		return nil, domainerrors.Network(err, "decode snapshot")
	}
	if shape.Version == nil {
		return nil, domainerrors.Networkf("snapshot missing version")
	}
	if len(shape.Data) == 0 || bytes.Equal(shape.Data, []byte("null")) {
		return nil, domainerrors.Networkf("snapshot missing data")
	}

	snap := &domain.Snapshot{Version: *shape.Version}
	if err := json.Unmarshal(shape.Data, &snap.Data); err != nil {
		return nil, domainerrors.Network(err, "decode snapshot data")
	}
	if err := snap.Check(); err != nil {
		return nil, domainerrors.Network(err, "invalid snapshot")
	}
	return snap, nil
}
