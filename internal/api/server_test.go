package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/macontouch/notebook/internal/domain"
	"github.com/macontouch/notebook/internal/media/images"
	"github.com/macontouch/notebook/internal/remote"
	"github.com/macontouch/notebook/internal/search"
	"github.com/macontouch/notebook/internal/service"
	"github.com/macontouch/notebook/internal/sse"
	"github.com/macontouch/notebook/internal/store"
	"github.com/macontouch/notebook/internal/validation"
)

type testServer struct {
	*Server
	client humatest.TestAPI
	st     *store.Store
	remote *httptest.Server
	snap   *domain.Snapshot
	fail   atomic.Bool
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	ctx := context.Background()

	files, err := store.NewFileBackend(t.TempDir())
	require.NoError(t, err)
	st := store.New(files, nil, logger)

	idx, err := search.NewIndex(search.Options{Logger: logger})
	require.NoError(t, err)

	exports, err := images.NewStorage(t.TempDir(), "exports")
	require.NoError(t, err)

	ts := &testServer{st: st, snap: &domain.Snapshot{Version: 1, Data: []domain.Entry{}}}
	ts.remote = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if ts.fail.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(ts.snap)
	}))

	fetcher, err := remote.NewFetcher(remote.Config{URL: ts.remote.URL, Timeout: 2 * time.Second}, nil, logger)
	require.NoError(t, err)

	manager := sse.NewManager(logger)
	sseCtx, cancel := context.WithCancel(ctx)
	go manager.Start(sseCtx)

	v := validation.New()
	searchSvc := service.NewSearchService(idx, st, logger)
	services := &Services{
		Catalog:  service.NewCatalogService(st, v, manager, searchSvc, exports, language.English, logger),
		Category: service.NewCategoryService(st, v, manager, searchSvc, logger),
		Sync:     service.NewSyncService(st, fetcher, searchSvc, manager, logger),
		Profile:  service.NewProfileService(st, v, logger),
		Search:   searchSvc,
	}

	ts.Server = NewServer(st, services, manager, Config{CORSOrigins: []string{"http://app.test"}}, logger)
	ts.client = humatest.Wrap(t, ts.Server.API())

	t.Cleanup(func() {
		ts.Server.Close()
		cancel()
		_ = manager.Shutdown(context.Background())
		ts.remote.Close()
		_ = idx.Close()
		_ = st.Close()
	})
	return ts
}

func pngDataURI(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := range 64 {
		for x := range 64 {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return images.EncodeDataURI("image/png", buf.Bytes())
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &v), resp.Body.String())
	return v
}

func (ts *testServer) addEntry(t *testing.T, name, category string) domain.Entry {
	t.Helper()
	resp := ts.client.Post("/api/v1/entries", map[string]any{
		"name":        name,
		"description": "about " + name,
		"category":    category,
		"image":       pngDataURI(t),
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decode[domain.Entry](t, resp)
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.client.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	body := decode[HealthResponse](t, resp)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Components["storage"].Status)
	assert.Equal(t, "healthy", body.Components["search"].Status)
	assert.Equal(t, "no connected clients", body.Components["sse"].Message)
}

func TestEntries_CRUD(t *testing.T) {
	ts := setupTestServer(t)

	created := ts.addEntry(t, "Golden Sunset", "B")
	assert.Equal(t, "Golden Sunset", created.Name)
	assert.NotEmpty(t, created.Thumbnail)

	resp := ts.client.Get("/api/v1/entries/Golden%20Sunset")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, created, decode[domain.Entry](t, resp))

	resp = ts.client.Put("/api/v1/entries/Golden%20Sunset", map[string]any{
		"name":        "Silver Dawn",
		"description": "cold",
		"category":    "E",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	updated := decode[domain.Entry](t, resp)
	assert.Equal(t, "Silver Dawn", updated.Name)
	assert.Equal(t, created.Image, updated.Image)

	resp = ts.client.Get("/api/v1/entries/Golden%20Sunset")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "NOT_FOUND", decode[APIError](t, resp).Code)

	resp = ts.client.Delete("/api/v1/entries/Silver%20Dawn")
	assert.Equal(t, http.StatusNoContent, resp.Code)
	resp = ts.client.Delete("/api/v1/entries/Silver%20Dawn")
	assert.Equal(t, http.StatusNoContent, resp.Code, "delete is idempotent")
}

func TestEntries_EscapedNames(t *testing.T) {
	ts := setupTestServer(t)
	ts.addEntry(t, "aA", "B")
	ts.addEntry(t, "a%41", "B")
	ts.addEntry(t, "AC/DC", "B")

	resp := ts.client.Get("/api/v1/entries/a%2541")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "a%41", decode[domain.Entry](t, resp).Name)

	resp = ts.client.Get("/api/v1/entries/AC%2FDC")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "AC/DC", decode[domain.Entry](t, resp).Name)

	resp = ts.client.Delete("/api/v1/entries/a%2541")
	assert.Equal(t, http.StatusNoContent, resp.Code)

	entries, err := ts.st.Catalog.LoadAll(context.Background())
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	assert.ElementsMatch(t, []string{"aA", "AC/DC"}, names)
}

func TestEntries_AddErrors(t *testing.T) {
	ts := setupTestServer(t)
	ts.addEntry(t, "Sunset", "B")

	resp := ts.client.Post("/api/v1/entries", map[string]any{
		"name": "Sunset", "description": "again", "category": "H", "image": pngDataURI(t),
	})
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "DUPLICATE_NAME", decode[APIError](t, resp).Code)

	resp = ts.client.Post("/api/v1/entries", map[string]any{
		"name": "   ", "description": "d", "category": "H", "image": pngDataURI(t),
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	apiErr := decode[APIError](t, resp)
	assert.Equal(t, "VALIDATION", apiErr.Code)
	assert.NotNil(t, apiErr.Details)

	resp = ts.client.Post("/api/v1/entries", map[string]any{"name": "no image"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "VALIDATION", decode[APIError](t, resp).Code)
}

func TestEntries_ListFilterSort(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	require.NoError(t, ts.st.Catalog.SaveAll(ctx, []domain.Entry{
		{Name: "beta", Category: "B", Liked: 1},
		{Name: "Alpha", Category: "E", Liked: 9},
		{Name: "gamma", Category: "B", Liked: 4},
	}))

	resp := ts.client.Get("/api/v1/entries?category=B&sort=most-liked")
	require.Equal(t, http.StatusOK, resp.Code)
	list := decode[service.ListResult](t, resp)
	assert.Equal(t, 3, list.Total)
	require.Len(t, list.Entries, 2)
	assert.Equal(t, "gamma", list.Entries[0].Name)

	resp = ts.client.Get("/api/v1/entries?q=ALP")
	require.Equal(t, http.StatusOK, resp.Code)
	list = decode[service.ListResult](t, resp)
	require.Len(t, list.Entries, 1)
	assert.Equal(t, "Alpha", list.Entries[0].Name)

	resp = ts.client.Get("/api/v1/entries?sort=random")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestEntries_RateClamps(t *testing.T) {
	ts := setupTestServer(t)
	ts.addEntry(t, "Sunset", "B")

	resp := ts.client.Post("/api/v1/entries/Sunset/rate", map[string]any{"delta": 2})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 2, decode[RateResponse](t, resp).Entry.Liked)

	resp = ts.client.Post("/api/v1/entries/Sunset/rate", map[string]any{"delta": -10})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 0, decode[RateResponse](t, resp).Entry.Liked)

	resp = ts.client.Post("/api/v1/entries/Nothing/rate", map[string]any{"delta": 1})
	require.Equal(t, http.StatusOK, resp.Code)
	rated := decode[RateResponse](t, resp)
	assert.False(t, rated.Rated)
	assert.Nil(t, rated.Entry)
}

func TestEntries_ImageAndExport(t *testing.T) {
	ts := setupTestServer(t)
	ts.addEntry(t, "Sunset", "B")

	resp := ts.client.Get("/api/v1/entries/Sunset/image")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "image/png", resp.Header().Get("Content-Type"))
	img, err := images.Decode(resp.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())

	resp = ts.client.Get("/api/v1/entries/Sunset/image?size=thumb")
	require.Equal(t, http.StatusOK, resp.Code)
	img, err = images.Decode(resp.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, images.ThumbnailSize, img.Bounds().Dx())

	resp = ts.client.Get("/api/v1/entries/Missing/image")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.client.Post("/api/v1/entries/Sunset/export")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.True(t, strings.HasSuffix(decode[ExportResponse](t, resp).Path, ".png"))
}

func TestCategories(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	require.NoError(t, ts.st.Catalog.SaveAll(ctx, []domain.Entry{{Name: "a", Category: "B"}}))

	resp := ts.client.Post("/api/v1/categories", map[string]any{"category": "Bengali", "denotedby": "B", "pintohome": true})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = ts.client.Post("/api/v1/categories", map[string]any{"category": "Hindi", "denotedby": "H"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	assert.False(t, decode[domain.Category](t, resp).PinToHome)

	resp = ts.client.Post("/api/v1/categories", map[string]any{"category": "Other", "denotedby": "B", "pintohome": false})
	assert.Equal(t, http.StatusConflict, resp.Code)

	resp = ts.client.Get("/api/v1/categories/pinned")
	require.Equal(t, http.StatusOK, resp.Code)
	pinned := decode[CategoriesResponse](t, resp)
	require.Len(t, pinned.Categories, 1)
	assert.Equal(t, "Bengali", pinned.Categories[0].Name)

	resp = ts.client.Put("/api/v1/categories/Bengali", map[string]any{"category": "Bangla", "denotedby": "BN", "pintohome": true})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	entries, err := ts.st.Catalog.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, "BN", entries[0].Category)

	resp = ts.client.Delete("/api/v1/categories/Hindi")
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.client.Get("/api/v1/categories")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decode[CategoriesResponse](t, resp).Categories, 1)
}

func TestSync(t *testing.T) {
	ts := setupTestServer(t)
	ts.snap = &domain.Snapshot{Version: 5, Data: []domain.Entry{
		{Name: "Remote One", Description: "r", Category: "E"},
		{Name: "Local", Description: "remote copy", Category: "E", Liked: 99},
	}}
	require.NoError(t, ts.st.Catalog.SaveAll(context.Background(), []domain.Entry{{Name: "Local", Liked: 1}}))

	resp := ts.client.Get("/api/v1/sync/versions")
	require.Equal(t, http.StatusOK, resp.Code)
	versions := decode[VersionsResponse](t, resp)
	assert.Equal(t, 0, versions.LocalVersion)
	assert.Equal(t, 5, versions.RemoteVersion)
	assert.True(t, versions.UpdateAvailable)

	resp = ts.client.Post("/api/v1/sync")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	result := decode[SyncResponse](t, resp)
	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 2, result.Total)
	assert.Empty(t, result.Entries)

	resp = ts.client.Post("/api/v1/sync?include_entries=true")
	require.Equal(t, http.StatusOK, resp.Code)
	result = decode[SyncResponse](t, resp)
	assert.Zero(t, result.Added)
	require.Len(t, result.Entries, 2)
	assert.Equal(t, 1, result.Entries[0].Liked)

	resp = ts.client.Get("/api/v1/sync/snapshot")
	require.Equal(t, http.StatusOK, resp.Code)
	snap := decode[domain.Snapshot](t, resp)
	assert.Equal(t, 5, snap.Version)
	assert.Len(t, snap.Data, 2)

	resp = ts.client.Get("/api/v1/search?q=remote")
	require.Equal(t, http.StatusOK, resp.Code)
	found := decode[SearchResponse](t, resp)
	require.NotEmpty(t, found.Hits)
	assert.Equal(t, "Remote One", found.Hits[0].Entry.Name)
}

func TestSync_RemoteFailureIsBadGateway(t *testing.T) {
	ts := setupTestServer(t)
	ts.fail.Store(true)

	resp := ts.client.Post("/api/v1/sync")
	assert.Equal(t, http.StatusBadGateway, resp.Code)
	assert.Equal(t, "NETWORK", decode[APIError](t, resp).Code)

	resp = ts.client.Get("/api/v1/sync/versions")
	assert.Equal(t, http.StatusBadGateway, resp.Code)
}

func TestProfileAndStartup(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.client.Get("/api/v1/startup")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, domain.RouteAuth, decode[StartupResponse](t, resp).Route)

	resp = ts.client.Get("/api/v1/profile")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.client.Post("/api/v1/profile", map[string]any{"name": "Mou", "phone": "9876543210"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = ts.client.Get("/api/v1/profile")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "Mou", decode[domain.UserProfile](t, resp).Name)

	resp = ts.client.Get("/api/v1/startup")
	assert.Equal(t, domain.RouteCategories, decode[StartupResponse](t, resp).Route)
}

func TestCORSPreflight(t *testing.T) {
	ts := setupTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/entries", nil)
	req.Header.Set("Origin", "http://app.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	ts.ServeHTTP(w, req)

	assert.Equal(t, "http://app.test", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimitMiddleware(t *testing.T) {
	ts := setupTestServer(t)

	var limited bool
	for range ClientBurst + 10 {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "203.0.113.9:5000"
		w := httptest.NewRecorder()
		ts.ServeHTTP(w, req)
		if w.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	assert.True(t, limited)
}
