package service

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/secondbrain-back/internal/config"
	"github.com/Rogue-Bear-Innovations/secondbrain-back/internal/db"
	"github.com/Rogue-Bear-Innovations/secondbrain-back/internal/models"
)

type Sharing struct {
	store   db.Store
	baseURL string
	logger  *zap.SugaredLogger
}

func NewSharing(store db.Store, cfg *config.Config, l *zap.SugaredLogger) *Sharing {
	return &Sharing{
		store:   store,
		baseURL: cfg.APIBaseURL,
		logger:  l,
	}
}

// Share makes the document publicly resolvable and returns its link. Sharing
// an already shared document returns the link it already has.
func (s *Sharing) Share(ctx context.Context, ownerID, id string) (string, error) {
	doc, err := s.store.ShareDocument(ctx, ownerID, id, uuid.New().String())
	if err != nil {
		return "", unavailable(err)
	}
	return s.Link(*doc.SharableID), nil
}

func (s *Sharing) Unshare(ctx context.Context, ownerID, id string) error {
	return unavailable(s.store.UnshareDocument(ctx, ownerID, id))
}

// Resolve looks a document up by its sharable id. Ownership is not checked.
func (s *Sharing) Resolve(ctx context.Context, sharableID string) (*models.PublicDocument, error) {
	doc, err := s.store.FindSharedDocument(ctx, sharableID)
	if err != nil {
		return nil, unavailable(err)
	}
	pub := doc.Public()
	return &pub, nil
}

func (s *Sharing) Link(sharableID string) string {
	return s.baseURL + "/brain/" + sharableID
}
