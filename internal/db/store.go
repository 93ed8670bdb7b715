package db

import (
	"context"

	"github.com/pkg/errors"

	"github.com/Rogue-Bear-Innovations/secondbrain-back/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

// Store persists users, documents and profiles. Every document method that
// takes an owner id filters on it, so a document owned by someone else is
// reported as ErrNotFound. Each method is a single atomic operation from the
// caller's point of view.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)

	CreateDocument(ctx context.Context, doc *models.Document) error
	// ListDocuments returns the owner's documents, newest first.
	ListDocuments(ctx context.Context, ownerID string, filter models.DocumentFilter) ([]models.Document, error)
	FindDocument(ctx context.Context, ownerID, id string) (*models.Document, error)
	UpdateDocument(ctx context.Context, ownerID, id string, patch models.DocumentPatch) (*models.Document, error)
	DeleteDocument(ctx context.Context, ownerID, id string) (*models.Document, error)

	// ShareDocument marks the document sharable with sharableID unless it is
	// already sharable, in which case it is returned untouched.
	ShareDocument(ctx context.Context, ownerID, id, sharableID string) (*models.Document, error)
	// UnshareDocument clears the sharable flag and removes the sharable id.
	UnshareDocument(ctx context.Context, ownerID, id string) error
	FindSharedDocument(ctx context.Context, sharableID string) (*models.Document, error)

	// UpsertProfile writes username and the non-nil patch fields, creating a
	// private profile if the owner has none. patch.Username is ignored.
	UpsertProfile(ctx context.Context, ownerID, username string, patch models.ProfilePatch) (*models.Profile, error)
	FindProfile(ctx context.Context, ownerID string) (*models.Profile, error)
	FindPublicProfile(ctx context.Context, username string) (*models.Profile, error)

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
