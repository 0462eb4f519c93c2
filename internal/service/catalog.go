package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/text/language"

	"github.com/macontouch/notebook/internal/domain"
	domainerrors "github.com/macontouch/notebook/internal/errors"
	"github.com/macontouch/notebook/internal/id"
	"github.com/macontouch/notebook/internal/media/images"
	"github.com/macontouch/notebook/internal/sse"
	"github.com/macontouch/notebook/internal/store"
	"github.com/macontouch/notebook/internal/util"
	"github.com/macontouch/notebook/internal/validation"
)

// maxExportPrefix bounds the slug part of exported file names.
const maxExportPrefix = 40

// errUnchanged aborts a document update that would write identical content.
var errUnchanged = errors.New("unchanged")

// AddEntryRequest creates an entry. A missing thumbnail is generated from Image.
type AddEntryRequest struct {
	Name        string `json:"name" validate:"notblank,max=200"`
	Description string `json:"description" validate:"notblank,max=5000"`
	Category    string `json:"category" validate:"catcode,max=20"`
	Image       string `json:"image" validate:"imagedata"`
	Thumbnail   string `json:"t_image,omitempty" validate:"omitempty,imagedata"`
}

// UpdateEntryRequest replaces an entry's text fields. Liked, Image and
// Thumbnail are kept unless set.
type UpdateEntryRequest struct {
	Name        string  `json:"name" validate:"notblank,max=200"`
	Description string  `json:"description" validate:"notblank,max=5000"`
	Category    string  `json:"category" validate:"catcode,max=20"`
	Image       *string `json:"image,omitempty" validate:"omitempty,imagedata"`
	Thumbnail   *string `json:"t_image,omitempty" validate:"omitempty,imagedata"`
	Liked       *int    `json:"liked,omitempty"`
}

// ListResult is a filtered, sorted page of the catalog.
type ListResult struct {
	Entries []domain.Entry `json:"entries"`
	Total   int            `json:"total"` // Size of the unfiltered catalog
}

// CatalogService implements entry CRUD on top of the catalog document.
type CatalogService struct {
	store     *store.Store
	validator *validation.Validator
	emitter   store.EventEmitter
	index     Indexer
	exports   *images.Storage
	locale    language.Tag
	logger    *slog.Logger
}

// NewCatalogService creates a catalog service. index and exports may be nil.
func NewCatalogService(
	st *store.Store,
	v *validation.Validator,
	emitter store.EventEmitter,
	index Indexer,
	exports *images.Storage,
	locale language.Tag,
	logger *slog.Logger,
) *CatalogService {
	if emitter == nil {
		emitter = store.NewNoopEmitter()
	}
	if index == nil {
		index = noopIndexer{}
	}
	return &CatalogService{
		store:     st,
		validator: v,
		emitter:   emitter,
		index:     index,
		exports:   exports,
		locale:    locale,
		logger:    logger,
	}
}

// preparedImage holds the normalized image fields of an entry.
type preparedImage struct {
	image, thumbnail, blurhash string
}

// prepareImage normalizes the image and thumbnail, generating the thumbnail
// when absent. Decoding happens here, outside the catalog lock.
func (s *CatalogService) prepareImage(image, thumbnail string) (preparedImage, error) {
	var p preparedImage

	norm, err := images.NormalizeDataURI(image)
	if err != nil {
		return p, domainerrors.ValidationWithDetails("validation failed", map[string]string{"image": "must be a base64 image or data URI"})
	}
	p.image = norm

	if thumbnail != "" {
		if p.thumbnail, err = images.NormalizeDataURI(thumbnail); err != nil {
			return p, domainerrors.ValidationWithDetails("validation failed", map[string]string{"t_image": "must be a base64 image or data URI"})
		}
	} else {
		if p.thumbnail, err = images.ThumbnailDataURI(norm, images.ThumbnailSize); err != nil {
			return p, domainerrors.ValidationWithDetails("validation failed", map[string]string{"image": "could not be decoded to build a thumbnail"})
		}
	}

	if hash, err := images.BlurHashFromDataURI(norm); err == nil {
		p.blurhash = hash
	} else {
		s.logger.Debug("blurhash skipped", "error", err)
	}
	return p, nil
}

// Add appends a new entry with liked = 0.
func (s *CatalogService) Add(ctx context.Context, req AddEntryRequest) (*domain.Entry, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	img, err := s.prepareImage(req.Image, req.Thumbnail)
	if err != nil {
		return nil, err
	}

	entry := domain.Entry{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Image:       img.image,
		Thumbnail:   img.thumbnail,
		BlurHash:    img.blurhash,
	}

	_, err = s.store.Catalog.Update(ctx, func(entries *[]domain.Entry) error {
		if domain.IndexOfEntry(*entries, entry.Name) >= 0 {
			return domainerrors.DuplicateNamef("entry %q already exists", entry.Name)
		}
		*entries = append(*entries, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.reindex(&entry, "")
	s.emitter.Emit(sse.NewEntryCreatedEvent(&entry))
	s.logger.Info("entry added", "name", entry.Name, "category", entry.Category)
	return &entry, nil
}

// Update replaces the entry called originalName.
func (s *CatalogService) Update(ctx context.Context, originalName string, req UpdateEntryRequest) (*domain.Entry, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var img *preparedImage
	if req.Image != nil {
		thumb := ""
		if req.Thumbnail != nil {
			thumb = *req.Thumbnail
		}
		p, err := s.prepareImage(*req.Image, thumb)
		if err != nil {
			return nil, err
		}
		img = &p
	}
	var thumbOnly string
	if img == nil && req.Thumbnail != nil {
		t, err := images.NormalizeDataURI(*req.Thumbnail)
		if err != nil {
			return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{"t_image": "must be a base64 image or data URI"})
		}
		thumbOnly = t
	}

	var updated domain.Entry
	_, err := s.store.Catalog.Update(ctx, func(entries *[]domain.Entry) error {
		i := domain.IndexOfEntry(*entries, originalName)
		if i < 0 {
			return domainerrors.NotFoundf("entry %q not found", originalName)
		}
		if req.Name != originalName && domain.IndexOfEntry(*entries, req.Name) >= 0 {
			return domainerrors.DuplicateNamef("entry %q already exists", req.Name)
		}

		e := (*entries)[i]
		e.Name = req.Name
		e.Description = req.Description
		e.Category = req.Category
		if req.Liked != nil {
			e.Liked = max(*req.Liked, 0)
		}
		switch {
		case img != nil:
			e.Image, e.Thumbnail, e.BlurHash = img.image, img.thumbnail, img.blurhash
		case thumbOnly != "":
			e.Thumbnail = thumbOnly
		}

		(*entries)[i] = e
		updated = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.reindex(&updated, originalName)
	s.emitter.Emit(sse.NewEntryUpdatedEvent(&updated, originalName))
	s.logger.Info("entry updated", "name", updated.Name, "previous_name", originalName)
	return &updated, nil
}

// Delete removes every entry called name. Deleting a missing name is a no-op.
func (s *CatalogService) Delete(ctx context.Context, name string) error {
	_, err := s.store.Catalog.Update(ctx, func(entries *[]domain.Entry) error {
		kept := (*entries)[:0:0]
		for _, e := range *entries {
			if e.Name != name {
				kept = append(kept, e)
			}
		}
		if len(kept) == len(*entries) {
			return errUnchanged
		}
		*entries = kept
		return nil
	})
	if errors.Is(err, errUnchanged) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := s.index.Remove(name); err != nil {
		s.logger.Warn("search index remove failed", "name", name, "error", err)
	}
	s.emitter.Emit(sse.NewEntryDeletedEvent(name))
	s.logger.Info("entry deleted", "name", name)
	return nil
}

// Rate adds delta to the entry's liked counter, never going below zero.
// A missing entry is a no-op and yields a nil entry.
func (s *CatalogService) Rate(ctx context.Context, name string, delta int) (*domain.Entry, error) {
	var rated *domain.Entry
	_, err := s.store.Catalog.Update(ctx, func(entries *[]domain.Entry) error {
		i := domain.IndexOfEntry(*entries, name)
		if i < 0 {
			return errUnchanged
		}
		e := &(*entries)[i]
		e.AddLikes(delta)
		copied := *e
		rated = &copied
		return nil
	})
	if errors.Is(err, errUnchanged) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	s.reindex(rated, "")
	s.emitter.Emit(sse.NewEntryRatedEvent(rated))
	return rated, nil
}

// Get returns the entry called name.
func (s *CatalogService) Get(ctx context.Context, name string) (*domain.Entry, error) {
	entries, err := s.store.Catalog.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	i := domain.IndexOfEntry(entries, name)
	if i < 0 {
		return nil, domainerrors.NotFoundf("entry %q not found", name)
	}
	return &entries[i], nil
}

// List filters then sorts the catalog.
func (s *CatalogService) List(ctx context.Context, q domain.EntryQuery) (*ListResult, error) {
	entries, err := s.store.Catalog.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	filtered := FilterEntries(entries, q.Search, q.Category)
	return &ListResult{
		Entries: SortEntries(filtered, q.Sort, s.locale),
		Total:   len(entries),
	}, nil
}

// Image returns the decoded image bytes of an entry and their MIME type.
func (s *CatalogService) Image(ctx context.Context, name string, thumbnail bool) (string, []byte, error) {
	e, err := s.Get(ctx, name)
	if err != nil {
		return "", nil, err
	}
	src := e.Image
	if thumbnail {
		src = e.Thumbnail
	}
	mime, data, err := images.ParseDataURI(src)
	if err != nil {
		return "", nil, domainerrors.Storage(err, "entry image is not decodable")
	}
	return mime, data, nil
}

// ExportImage writes the entry's image into the export directory and returns
// the file path, like saving it to the device gallery.
func (s *CatalogService) ExportImage(ctx context.Context, name string) (string, error) {
	if s.exports == nil {
		return "", domainerrors.Internal("image export is not configured")
	}
	mime, data, err := s.Image(ctx, name, false)
	if err != nil {
		return "", err
	}

	file, err := id.Filename(exportPrefix(name), images.ExtensionFor(mime))
	if err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeInternal, "generate export name")
	}
	if err := s.exports.Save(file, data); err != nil {
		return "", domainerrors.Storage(err, "export image")
	}

	path := s.exports.Path(file)
	s.logger.Info("image exported", "name", name, "path", path)
	return path, nil
}

// exportPrefix reduces an entry name to a filesystem-safe slug.
func exportPrefix(name string) string {
	return util.FileSlug(name, maxExportPrefix)
}

func (s *CatalogService) reindex(e *domain.Entry, previousName string) {
	if previousName != "" && previousName != e.Name {
		if err := s.index.Remove(previousName); err != nil {
			s.logger.Warn("search index remove failed", "name", previousName, "error", err)
		}
	}
	if err := s.index.Put(e); err != nil {
		s.logger.Warn("search index update failed", "name", e.Name, "error", err)
	}
}
