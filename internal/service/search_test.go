package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macontouch/notebook/internal/domain"
	"github.com/macontouch/notebook/internal/search"
	"github.com/macontouch/notebook/internal/sse"
	"github.com/macontouch/notebook/internal/validation"
)

func TestSearchService_FollowsCatalogMutations(t *testing.T) {
	ctx := context.Background()
	st := setupTestStore(t)
	logger := slog.New(slog.DiscardHandler)

	idx, err := search.NewIndex(search.Options{Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	searchSvc := NewSearchService(idx, st, logger)
	catalog := NewCatalogService(st, validation.New(), nil, searchSvc, nil, englishTag, logger)

	require.NoError(t, st.Catalog.SaveAll(ctx, []domain.Entry{
		{Name: "River Boat", Description: "wooden boat at dawn", Category: "H"},
	}))
	n, err := searchSvc.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = catalog.Add(ctx, addRequest(t, "Golden Sunset", "B"))
	require.NoError(t, err)

	results, err := searchSvc.Search(ctx, "sunset", "", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Golden Sunset", results[0].Entry.Name)
	assert.Positive(t, results[0].Score)

	_, err = catalog.Update(ctx, "Golden Sunset", UpdateEntryRequest{Name: "Silver Dawn", Description: "cold", Category: "B"})
	require.NoError(t, err)

	results, err = searchSvc.Search(ctx, "sunset", "", 10)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = searchSvc.Search(ctx, "dawn", "H", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "River Boat", results[0].Entry.Name)

	require.NoError(t, catalog.Delete(ctx, "River Boat"))
	results, err = searchSvc.Search(ctx, "boat", domain.CategoryAll, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchService_FollowsCategoryCodeChange(t *testing.T) {
	ctx := context.Background()
	st := setupTestStore(t)
	logger := slog.New(slog.DiscardHandler)

	idx, err := search.NewIndex(search.Options{Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	searchSvc := NewSearchService(idx, st, logger)
	rec := &recordingEmitter{}
	categories := NewCategoryService(st, validation.New(), rec, searchSvc, logger)

	_, err = categories.SeedDefaults(ctx)
	require.NoError(t, err)
	require.NoError(t, st.Catalog.SaveAll(ctx, []domain.Entry{
		{Name: "Sunset", Description: "orange sky", Category: "B"},
		{Name: "Harbor", Description: "orange boats", Category: "H"},
	}))
	_, err = searchSvc.Reindex(ctx)
	require.NoError(t, err)

	_, err = categories.Update(ctx, "Bengali", CategoryRequest{Name: "Bengali", Code: "X", PinToHome: true})
	require.NoError(t, err)

	results, err := searchSvc.Search(ctx, "orange", "X", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Sunset", results[0].Entry.Name)
	assert.Equal(t, "X", results[0].Entry.Category)

	results, err = searchSvc.Search(ctx, "orange", "B", 10)
	require.NoError(t, err)
	assert.Empty(t, results)

	assert.Equal(t, []sse.EventType{sse.EventEntryUpdated, sse.EventCategoryUpdated}, rec.types())
}
