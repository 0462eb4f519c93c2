package api

import (
	"github.com/macontouch/notebook/internal/service"
)

// Services groups all business logic services used by the API server.
type Services struct {
	Catalog  *service.CatalogService
	Category *service.CategoryService
	Sync     *service.SyncService
	Profile  *service.ProfileService
	Search   *service.SearchService // Optional; search routes report 503 without it
}
