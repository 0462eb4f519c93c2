package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/macontouch/notebook/internal/domain"
	domainerrors "github.com/macontouch/notebook/internal/errors"
	"github.com/macontouch/notebook/internal/store"
	"github.com/macontouch/notebook/internal/validation"
)

// RegisterRequest registers the local user.
type RegisterRequest struct {
	Name  string `json:"name" validate:"notblank,max=100"`
	Phone string `json:"phone" validate:"required,numeric,min=6,max=15"`
}

// ProfileService stores the local user profile and decides the first screen.
type ProfileService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewProfileService creates a new profile service.
func NewProfileService(st *store.Store, v *validation.Validator, logger *slog.Logger) *ProfileService {
	return &ProfileService{store: st, validator: v, logger: logger, now: time.Now}
}

// Register stores a fresh profile, replacing any existing one.
func (s *ProfileService) Register(ctx context.Context, req RegisterRequest) (*domain.UserProfile, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	p := domain.NewUserProfile(req.Name, req.Phone, s.now())
	if err := s.store.Profile.Save(ctx, p); err != nil {
		return nil, err
	}
	s.logger.Info("profile registered", "name", p.Name)
	return &p, nil
}

// Get returns the stored profile.
func (s *ProfileService) Get(ctx context.Context) (*domain.UserProfile, error) {
	p, err := s.store.Profile.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// StartupRoute picks the first screen: auth without a named profile,
// categories without any category, home otherwise.
func (s *ProfileService) StartupRoute(ctx context.Context) (domain.StartupRoute, error) {
	p, err := s.store.Profile.Load(ctx)
	switch {
	case domainerrors.Is(err, domainerrors.ErrNotFound):
		return domain.RouteAuth, nil
	case err != nil:
		return "", err
	case strings.TrimSpace(p.Name) == "":
		return domain.RouteAuth, nil
	}

	cats, err := s.store.Categories.LoadAll(ctx)
	if err != nil {
		return "", err
	}
	if len(cats) == 0 {
		return domain.RouteCategories, nil
	}
	return domain.RouteHome, nil
}
