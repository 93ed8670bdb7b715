package db

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Rogue-Bear-Innovations/secondbrain-back/internal/models"
)

func setupMockDB(t *testing.T) (*GormStore, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{})
	require.NoError(t, err)

	return &GormStore{db: gormDB, logger: zap.NewNop().Sugar()}, mock
}

func TestGormStoreFindUserErrors(t *testing.T) {
	tests := []struct {
		name         string
		mockBehavior func(mock sqlmock.Sqlmock)
		notFound     bool
	}{
		{
			name: "no rows",
			mockBehavior: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = \$1`).
					WithArgs("alice1", sqlmock.AnyArg()).
					WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password"}))
			},
			notFound: true,
		},
		{
			name: "driver failure",
			mockBehavior: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = \$1`).
					WithArgs("alice1", sqlmock.AnyArg()).
					WillReturnError(errors.New("connection reset"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := setupMockDB(t)
			tt.mockBehavior(mock)

			_, err := s.FindUserByUsername(context.Background(), "alice1")
			require.Error(t, err)
			if tt.notFound {
				assert.ErrorIs(t, err, ErrNotFound)
			} else {
				assert.NotErrorIs(t, err, ErrNotFound)
				assert.Contains(t, err.Error(), "find user")
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormStoreUnshareMissing(t *testing.T) {
	s, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "documents" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := s.UnshareDocument(context.Background(), "owner-1", "doc-1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreListDocumentsQuery(t *testing.T) {
	s, mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT d\.id FROM documents d WHERE .*d\.user_id = \$1.*d\.sharable = \$2.*ORDER BY d\.created_at DESC`).
		WithArgs("owner-1", true, "go").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	docs, err := s.ListDocuments(context.Background(), "owner-1", models.DocumentFilter{Tag: "go", SharableOnly: true})
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.NotNil(t, docs)
	assert.NoError(t, mock.ExpectationsWereMet())
}
