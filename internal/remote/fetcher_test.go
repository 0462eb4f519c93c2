package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/macontouch/notebook/internal/errors"
	"github.com/macontouch/notebook/internal/ratelimit"
)

func newTestFetcher(t *testing.T, url string, timeout time.Duration) *Fetcher {
	t.Helper()
	f, err := NewFetcher(Config{URL: url, Timeout: timeout}, nil, nil)
	require.NoError(t, err)
	return f
}

func TestFetch_Success(t *testing.T) {
	var gotQuery, gotCache string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotCache = r.Header.Get("Cache-Control")
		_, _ = w.Write([]byte(`{"version":4,"data":[{"name":"Sunset","description":"d","category":"B","image":"i","t_image":"t","liked":1}]}`))
	}))
	defer srv.Close()

	f := newTestFetcher(t, srv.URL+"/data.json?branch=main", time.Second)
	f.now = func() time.Time { return time.UnixMilli(1700000000123) }

	snap, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, snap.Version)
	require.Len(t, snap.Data, 1)
	assert.Equal(t, "t", snap.Data[0].Thumbnail)

	assert.Contains(t, gotQuery, "timestamp=1700000000123")
	assert.Contains(t, gotQuery, "branch=main")
	assert.Equal(t, "no-cache", gotCache)
}

func TestFetch_LogsDurationFromClock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"version":1,"data":[]}`))
	}))
	defer srv.Close()

	var buf bytes.Buffer
	f := newTestFetcher(t, srv.URL, time.Second)
	f.logger = slog.New(slog.NewJSONHandler(&buf, nil))
	clock := time.UnixMilli(1700000000000)
	f.now = func() time.Time {
		clock = clock.Add(250 * time.Millisecond)
		return clock
	}

	_, err := f.Fetch(context.Background())
	require.NoError(t, err)

	var line struct {
		Duration time.Duration `json:"duration"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line), buf.String())
	assert.Equal(t, 250*time.Millisecond, line.Duration)
}

func TestFetch_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{}`},
		{"not found", http.StatusNotFound, ``},
		{"invalid json", http.StatusOK, `<html>`},
		{"missing version", http.StatusOK, `{"data":[]}`},
		{"missing data", http.StatusOK, `{"version":1}`},
		{"null data", http.StatusOK, `{"version":1,"data":null}`},
		{"data not a list", http.StatusOK, `{"version":1,"data":{}}`},
		{"entry without name", http.StatusOK, `{"version":1,"data":[{"description":"x"}]}`},
		{"negative version", http.StatusOK, `{"version":-1,"data":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestFetcher(t, srv.URL, time.Second).Fetch(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrNetwork)
		})
	}
}

func TestFetch_EmptyDataIsValid(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"version":0,"data":[]}`))
	}))
	defer srv.Close()

	snap, err := newTestFetcher(t, srv.URL, time.Second).Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Data)
}

func TestFetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := newTestFetcher(t, srv.URL, 50*time.Millisecond).Fetch(context.Background())
	assert.ErrorIs(t, err, domainerrors.ErrNetwork)
}

func TestFetch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestFetcher(t, url, time.Second).Fetch(context.Background())
	assert.ErrorIs(t, err, domainerrors.ErrNetwork)
}

func TestFetch_UsesRateLimiter(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"version":1,"data":[]}`))
	}))
	defer srv.Close()

	limiter := ratelimit.New(0.001, 1)
	defer limiter.Stop()

	f, err := NewFetcher(Config{URL: srv.URL, Timeout: time.Second}, limiter, nil)
	require.NoError(t, err)

	_, err = f.Fetch(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = f.Fetch(ctx)
	assert.ErrorIs(t, err, domainerrors.ErrNetwork)
	assert.Equal(t, int32(1), hits.Load())
}

func TestNewFetcher_RejectsBadURL(t *testing.T) {
	_, err := NewFetcher(Config{URL: "ftp://example.com/data.json"}, nil, nil)
	assert.Error(t, err)

	f, err := NewFetcher(Config{URL: "https://example.com/data.json"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultTimeout, f.timeout)
	assert.False(t, strings.Contains(f.URL(), "timestamp"))
}
