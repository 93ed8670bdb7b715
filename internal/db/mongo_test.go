package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/secondbrain-back/internal/models"
)

// newMongoStore connects to MONGO_TEST_URI and uses a throwaway database.
func newMongoStore(t *testing.T) *MongoStore {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI is not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	database := "secondbrain_test_" + uuid.New().String()[:8]
	s, err := NewMongoStore(ctx, uri, database, zap.NewNop().Sugar())
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.client.Database(database).Drop(ctx)
		_ = s.Close(ctx)
	})
	return s
}

func TestMongoStoreDocuments(t *testing.T) {
	s := newMongoStore(t)
	ctx := context.Background()

	alice := createUser(t, s, "alice1")
	bob := createUser(t, s, "bobby1")
	assert.ErrorIs(t, s.CreateUser(ctx, &models.User{Username: "alice1"}), ErrDuplicate)

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	older := createDocument(t, s, alice.ID, "older", base, "go")
	newer := createDocument(t, s, alice.ID, "newer", base.Add(time.Minute))

	list, err := s.ListDocuments(ctx, alice.ID, models.DocumentFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)

	list, err = s.ListDocuments(ctx, alice.ID, models.DocumentFilter{Tag: "go"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, older.ID, list[0].ID)

	_, err = s.FindDocument(ctx, bob.ID, older.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.FindDocument(ctx, alice.ID, "not-an-object-id")
	assert.ErrorIs(t, err, ErrNotFound)

	title := "renamed"
	updated, err := s.UpdateDocument(ctx, alice.ID, older.ID, models.DocumentPatch{Title: &title, Tags: []string{"db"}})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, []string{"db"}, updated.Tags)

	deleted, err := s.DeleteDocument(ctx, alice.ID, newer.ID)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, deleted.ID)
	_, err = s.DeleteDocument(ctx, alice.ID, newer.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMongoStoreShareLifecycle(t *testing.T) {
	s := newMongoStore(t)
	ctx := context.Background()

	owner := createUser(t, s, "alice1")
	doc := createDocument(t, s, owner.ID, "shared", time.Now().UTC())
	other := createDocument(t, s, owner.ID, "other", time.Now().UTC())

	first, err := s.ShareDocument(ctx, owner.ID, doc.ID, "share-1")
	require.NoError(t, err)
	assert.Equal(t, "share-1", *first.SharableID)

	again, err := s.ShareDocument(ctx, owner.ID, doc.ID, "share-2")
	require.NoError(t, err)
	assert.Equal(t, "share-1", *again.SharableID)

	resolved, err := s.FindSharedDocument(ctx, "share-1")
	require.NoError(t, err)
	assert.Equal(t, doc.ID, resolved.ID)

	require.NoError(t, s.UnshareDocument(ctx, owner.ID, doc.ID))
	require.NoError(t, s.UnshareDocument(ctx, owner.ID, other.ID))
	_, err = s.FindSharedDocument(ctx, "share-1")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := s.FindDocument(ctx, owner.ID, doc.ID)
	require.NoError(t, err)
	assert.False(t, got.Sharable)
	assert.Nil(t, got.SharableID)
}

func TestMongoStoreProfiles(t *testing.T) {
	s := newMongoStore(t)
	ctx := context.Background()

	owner := createUser(t, s, "alice1")

	created, err := s.UpsertProfile(ctx, owner.ID, "alice1", models.ProfilePatch{})
	require.NoError(t, err)
	assert.False(t, created.PublicProfile)
	assert.Equal(t, owner.ID, created.OwnerID)

	on := true
	_, err = s.UpsertProfile(ctx, owner.ID, "alice1", models.ProfilePatch{PublicProfile: &on})
	require.NoError(t, err)

	synced, err := s.UpsertProfile(ctx, owner.ID, "alice1", models.ProfilePatch{})
	require.NoError(t, err)
	assert.True(t, synced.PublicProfile)
	assert.Equal(t, created.ID, synced.ID)

	public, err := s.FindPublicProfile(ctx, "alice1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, public.ID)
}
