package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/macontouch/notebook/internal/domain"
	"github.com/macontouch/notebook/internal/service"
)

func (s *Server) registerEntryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listEntries",
		Method:      http.MethodGet,
		Path:        "/api/v1/entries",
		Summary:     "List entries",
		Description: "Returns the catalog filtered by name substring and category, then sorted",
		Tags:        []string{"Entries"},
	}, s.handleListEntries)

	huma.Register(s.api, huma.Operation{
		OperationID:   "addEntry",
		Method:        http.MethodPost,
		Path:          "/api/v1/entries",
		Summary:       "Add entry",
		Description:   "Adds an entry. A 50x50 thumbnail is generated when t_image is omitted",
		Tags:          []string{"Entries"},
		DefaultStatus: http.StatusCreated,
	}, s.handleAddEntry)

	huma.Register(s.api, huma.Operation{
		OperationID: "getEntry",
		Method:      http.MethodGet,
		Path:        "/api/v1/entries/{name}",
		Summary:     "Get entry",
		Description: "Returns an entry by name",
		Tags:        []string{"Entries"},
	}, s.handleGetEntry)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateEntry",
		Method:      http.MethodPut,
		Path:        "/api/v1/entries/{name}",
		Summary:     "Update entry",
		Description: "Replaces the entry called name. liked and images are kept unless supplied",
		Tags:        []string{"Entries"},
	}, s.handleUpdateEntry)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteEntry",
		Method:        http.MethodDelete,
		Path:          "/api/v1/entries/{name}",
		Summary:       "Delete entry",
		Description:   "Removes the entry. Deleting a missing entry succeeds",
		Tags:          []string{"Entries"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteEntry)

	huma.Register(s.api, huma.Operation{
		OperationID: "rateEntry",
		Method:      http.MethodPost,
		Path:        "/api/v1/entries/{name}/rate",
		Summary:     "Rate entry",
		Description: "Adds delta to the liked counter, which never drops below zero",
		Tags:        []string{"Entries"},
	}, s.handleRateEntry)

	huma.Register(s.api, huma.Operation{
		OperationID: "exportEntryImage",
		Method:      http.MethodPost,
		Path:        "/api/v1/entries/{name}/export",
		Summary:     "Export image",
		Description: "Writes the entry's image to the export directory and returns the file path",
		Tags:        []string{"Entries"},
	}, s.handleExportEntryImage)
}

// === DTOs ===

// ListEntriesInput contains parameters for listing entries.
type ListEntriesInput struct {
	Query    string `query:"q" maxLength:"200" doc:"Case-insensitive name substring"`
	Category string `query:"category" maxLength:"20" doc:"Category code, or 'all'"`
	Sort     string `query:"sort" enum:"name-asc,name-desc,most-liked" doc:"Ordering (default name-asc)"`
}

// ListEntriesOutput wraps the list response for Huma.
type ListEntriesOutput struct {
	Body service.ListResult
}

// EntryNameInput identifies an entry by name.
type EntryNameInput struct {
	Name string `path:"name" doc:"Entry name"`
}

// EntryOutput wraps an entry response for Huma.
type EntryOutput struct {
	Body domain.Entry
}

// AddEntryInput wraps the add entry request for Huma.
type AddEntryInput struct {
	Body service.AddEntryRequest
}

// UpdateEntryInput wraps the update entry request for Huma.
type UpdateEntryInput struct {
	Name string `path:"name" doc:"Current entry name"`
	Body service.UpdateEntryRequest
}

// RateEntryInput wraps the rate request for Huma.
type RateEntryInput struct {
	Name string `path:"name" doc:"Entry name"`
	Body struct {
		Delta int `json:"delta" doc:"Amount added to liked; negative values unlike"`
	}
}

// RateResponse reports the rated entry. Entry is absent when no entry matched.
type RateResponse struct {
	Rated bool          `json:"rated" doc:"Whether an entry was found"`
	Entry *domain.Entry `json:"entry,omitempty" doc:"Entry after rating"`
}

// RateEntryOutput wraps the rate response for Huma.
type RateEntryOutput struct {
	Body RateResponse
}

// ExportResponse contains the exported file path.
type ExportResponse struct {
	Path string `json:"path" doc:"Absolute path of the written image"`
}

// ExportOutput wraps the export response for Huma.
type ExportOutput struct {
	Body ExportResponse
}

// === Handlers ===

func (s *Server) handleListEntries(ctx context.Context, input *ListEntriesInput) (*ListEntriesOutput, error) {
	sortKey, err := domain.ParseSortKey(input.Sort)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	result, err := s.services.Catalog.List(ctx, domain.EntryQuery{
		Search:   input.Query,
		Category: input.Category,
		Sort:     sortKey,
	})
	if err != nil {
		return nil, err
	}
	return &ListEntriesOutput{Body: *result}, nil
}

func (s *Server) handleAddEntry(ctx context.Context, input *AddEntryInput) (*EntryOutput, error) {
	entry, err := s.services.Catalog.Add(ctx, input.Body)
	if err != nil {
		return nil, err
	}
	return &EntryOutput{Body: *entry}, nil
}

func (s *Server) handleGetEntry(ctx context.Context, input *EntryNameInput) (*EntryOutput, error) {
	entry, err := s.services.Catalog.Get(ctx, pathName(ctx, input.Name))
	if err != nil {
		return nil, err
	}
	return &EntryOutput{Body: *entry}, nil
}

func (s *Server) handleUpdateEntry(ctx context.Context, input *UpdateEntryInput) (*EntryOutput, error) {
	entry, err := s.services.Catalog.Update(ctx, pathName(ctx, input.Name), input.Body)
	if err != nil {
		return nil, err
	}
	return &EntryOutput{Body: *entry}, nil
}

func (s *Server) handleDeleteEntry(ctx context.Context, input *EntryNameInput) (*struct{}, error) {
	if err := s.services.Catalog.Delete(ctx, pathName(ctx, input.Name)); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleRateEntry(ctx context.Context, input *RateEntryInput) (*RateEntryOutput, error) {
	entry, err := s.services.Catalog.Rate(ctx, pathName(ctx, input.Name), input.Body.Delta)
	if err != nil {
		return nil, err
	}
	return &RateEntryOutput{Body: RateResponse{Rated: entry != nil, Entry: entry}}, nil
}

func (s *Server) handleExportEntryImage(ctx context.Context, input *EntryNameInput) (*ExportOutput, error) {
	path, err := s.services.Catalog.ExportImage(ctx, pathName(ctx, input.Name))
	if err != nil {
		return nil, err
	}
	return &ExportOutput{Body: ExportResponse{Path: path}}, nil
}
