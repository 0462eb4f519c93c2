package store

import (
	"context"

	"github.com/macontouch/notebook/internal/domain"
	domainerrors "github.com/macontouch/notebook/internal/errors"
)

// ProfileStore persists the registered user.
type ProfileStore struct {
	doc *Document[domain.UserProfile]
}

// Load returns the profile, or a NOT_FOUND error when none is registered.
func (p *ProfileStore) Load(ctx context.Context) (domain.UserProfile, error) {
	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()

	profile, found, err := p.doc.load(ctx)
	if err != nil {
		return profile, err
	}
	if !found {
		return profile, domainerrors.NotFound("no user profile registered")
	}
	return profile, nil
}

// Save replaces the profile.
func (p *ProfileStore) Save(ctx context.Context, profile domain.UserProfile) error {
	return p.doc.Save(ctx, profile)
}

func emptyProfile() domain.UserProfile {
	return domain.UserProfile{}
}
