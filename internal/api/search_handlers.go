package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/macontouch/notebook/internal/service"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchEntries",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search entries",
		Description: "Ranked full-text search over entry names and descriptions",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// === DTOs ===

// SearchInput contains parameters for searching the catalog.
type SearchInput struct {
	Query    string `query:"q" required:"true" minLength:"1" maxLength:"200" doc:"Search text"`
	Category string `query:"category" maxLength:"20" doc:"Restrict to a category code, or 'all'"`
	Limit    int    `query:"limit" minimum:"0" maximum:"100" doc:"Max results (default 20)"`
}

// SearchResponse contains ranked results.
type SearchResponse struct {
	Query  string                 `json:"query" doc:"Original search text"`
	TookMs int64                  `json:"took_ms" doc:"Search duration in milliseconds"`
	Hits   []service.SearchResult `json:"hits" doc:"Results, best first"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body SearchResponse
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	if s.services.Search == nil {
		return nil, huma.Error503ServiceUnavailable("search is not available")
	}

	start := time.Now()
	hits, err := s.services.Search.Search(ctx, input.Query, input.Category, input.Limit)
	if err != nil {
		return nil, err
	}

	return &SearchOutput{Body: SearchResponse{
		Query:  input.Query,
		TookMs: time.Since(start).Milliseconds(),
		Hits:   hits,
	}}, nil
}
