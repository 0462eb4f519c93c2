package providers

import (
	"fmt"

	"github.com/samber/do/v2"
	"golang.org/x/text/language"

	"github.com/macontouch/notebook/internal/config"
	"github.com/macontouch/notebook/internal/logger"
	"github.com/macontouch/notebook/internal/media/images"
	"github.com/macontouch/notebook/internal/service"
	"github.com/macontouch/notebook/internal/validation"
)

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideExportStorage provides the directory exported images are written to.
func ProvideExportStorage(i do.Injector) (*images.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)

	exports, err := images.NewStorage(cfg.Storage.DataPath, "exports")
	if err != nil {
		return nil, fmt.Errorf("export storage: %w", err)
	}
	return exports, nil
}

// ProvideCatalogService provides the entry CRUD service.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	exports := do.MustInvoke[*images.Storage](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	// Validated by config.Validate.
	locale := language.MustParse(cfg.Catalog.Locale)

	return service.NewCatalogService(
		storeHandle.Store,
		v,
		sseHandle.Manager,
		searchService,
		exports,
		locale,
		log.Component("catalog"),
	), nil
}

// ProvideCategoryService provides the category service.
func ProvideCategoryService(i do.Injector) (*service.CategoryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCategoryService(storeHandle.Store, v, sseHandle.Manager, searchService, log.Component("category")), nil
}

// ProvideSyncService provides the remote merge service.
func ProvideSyncService(i do.Injector) (*service.SyncService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	fetcherHandle := do.MustInvoke[*FetcherHandle](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSyncService(
		storeHandle.Store,
		fetcherHandle.Fetcher,
		searchService,
		sseHandle.Manager,
		log.Component("sync"),
	), nil
}

// ProvideProfileService provides the profile service.
func ProvideProfileService(i do.Injector) (*service.ProfileService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewProfileService(storeHandle.Store, v, log.Component("profile")), nil
}
