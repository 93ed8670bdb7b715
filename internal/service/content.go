package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/secondbrain-back/internal/db"
	"github.com/Rogue-Bear-Innovations/secondbrain-back/internal/models"
)

// Content is the owner-scoped document CRUD. Tags are normalized before
// validation, so " Go " is stored as "go".
type Content struct {
	store     db.Store
	validator *models.Validator
	logger    *zap.SugaredLogger
}

func NewContent(store db.Store, v *models.Validator, l *zap.SugaredLogger) *Content {
	return &Content{
		store:     store,
		validator: v,
		logger:    l,
	}
}

func (s *Content) Create(ctx context.Context, ownerID string, in models.DocumentInput) (*models.Document, error) {
	in.Tags = models.NormalizeTags(in.Tags)
	if err := s.validator.Struct(&in); err != nil {
		return nil, err
	}

	doc := models.Document{
		OwnerID:     ownerID,
		Type:        in.Type,
		Link:        in.Link,
		Title:       in.Title,
		Description: in.Description,
		Tags:        in.Tags,
	}
	if err := s.store.CreateDocument(ctx, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// List returns the owner's documents, newest first. A non-empty tag keeps
// only documents carrying it.
func (s *Content) List(ctx context.Context, ownerID, tag string) ([]models.Document, error) {
	filter := models.DocumentFilter{Tag: strings.ToLower(strings.TrimSpace(tag))}
	return s.store.ListDocuments(ctx, ownerID, filter)
}

func (s *Content) Get(ctx context.Context, ownerID, id string) (*models.Document, error) {
	doc, err := s.store.FindDocument(ctx, ownerID, id)
	if err != nil {
		return nil, unavailable(err)
	}
	return doc, nil
}

func (s *Content) Update(ctx context.Context, ownerID, id string, patch models.DocumentPatch) (*models.Document, error) {
	if patch.Tags != nil {
		patch.Tags = models.NormalizeTags(patch.Tags)
	}
	if err := s.validator.Struct(&patch); err != nil {
		return nil, err
	}

	doc, err := s.store.UpdateDocument(ctx, ownerID, id, patch)
	if err != nil {
		return nil, unavailable(err)
	}
	return doc, nil
}

func (s *Content) Delete(ctx context.Context, ownerID, id string) (*models.Document, error) {
	doc, err := s.store.DeleteDocument(ctx, ownerID, id)
	if err != nil {
		return nil, unavailable(err)
	}
	return doc, nil
}
