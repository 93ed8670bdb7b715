package service

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Rogue-Bear-Innovations/secondbrain-back/internal/config"
	"github.com/Rogue-Bear-Innovations/secondbrain-back/internal/db"
	"github.com/Rogue-Bear-Innovations/secondbrain-back/internal/models"
)

type Profiles struct {
	store       db.Store
	validator   *models.Validator
	frontendURL string
	logger      *zap.SugaredLogger
}

func NewProfiles(store db.Store, v *models.Validator, cfg *config.Config, l *zap.SugaredLogger) *Profiles {
	return &Profiles{
		store:       store,
		validator:   v,
		frontendURL: cfg.FrontendURL,
		logger:      l,
	}
}

// GetOwn returns the caller's profile and every document they own, newest
// first. A user who never signed in since profiles were introduced gets one
// created on the spot.
func (s *Profiles) GetOwn(ctx context.Context, userID string) (*models.Profile, []models.Document, error) {
	var (
		profile *models.Profile
		docs    []models.Document
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		profile, err = s.store.FindProfile(gctx, userID)
		if errors.Is(err, db.ErrNotFound) {
			profile, err = s.sync(gctx, userID, models.ProfilePatch{})
		}
		return err
	})
	g.Go(func() error {
		var err error
		docs, err = s.store.ListDocuments(gctx, userID, models.DocumentFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return profile, docs, nil
}

// UpdateOwn applies a partial profile. The stored username always comes from
// the user record, whatever the patch says.
func (s *Profiles) UpdateOwn(ctx context.Context, userID string, patch models.ProfilePatch) (*models.Profile, error) {
	if err := s.validator.Struct(&patch); err != nil {
		return nil, err
	}
	patch.Username = nil
	return s.sync(ctx, userID, patch)
}

// SetVisibility flips the public flag and returns the public profile link,
// or nil when the profile is now private.
func (s *Profiles) SetVisibility(ctx context.Context, userID string, v models.Visibility) (*models.Profile, *string, error) {
	if err := s.validator.Struct(&v); err != nil {
		return nil, nil, err
	}

	profile, err := s.sync(ctx, userID, models.ProfilePatch{PublicProfile: v.PublicProfile})
	if err != nil {
		return nil, nil, err
	}
	if !profile.PublicProfile {
		return profile, nil, nil
	}
	link := s.Link(profile.Username)
	return profile, &link, nil
}

// GetPublic returns a public profile and its sharable documents, newest
// first. Private and missing profiles are both ErrResourceUnavailable.
func (s *Profiles) GetPublic(ctx context.Context, username string) (*models.PublicProfile, []models.PublicDocument, error) {
	profile, err := s.store.FindPublicProfile(ctx, username)
	if err != nil {
		return nil, nil, unavailable(err)
	}

	docs, err := s.store.ListDocuments(ctx, profile.OwnerID, models.DocumentFilter{SharableOnly: true})
	if err != nil {
		return nil, nil, err
	}

	public := make([]models.PublicDocument, len(docs))
	for i := range docs {
		public[i] = docs[i].Public()
	}
	pp := profile.Public()
	return &pp, public, nil
}

func (s *Profiles) Link(username string) string {
	return s.frontendURL + "/profile/" + username
}

// sync upserts the profile under the user's current username.
func (s *Profiles) sync(ctx context.Context, userID string, patch models.ProfilePatch) (*models.Profile, error) {
	user, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		return nil, unavailable(err)
	}
	return s.store.UpsertProfile(ctx, user.ID, user.Username, patch)
}
