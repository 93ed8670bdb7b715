package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/secondbrain-back/internal/config"
)

func TestNewStoreLifecycle(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	cfg := &config.Config{StoreDriver: config.DriverSQLite, SQLitePath: ":memory:", LogLevel: "info"}

	store, err := NewStore(lc, cfg, zap.NewNop().Sugar())
	require.NoError(t, err)
	_, ok := store.(*GormStore)
	assert.True(t, ok)

	lc.RequireStart()
	assert.NoError(t, store.Ping(context.Background()))
	lc.RequireStop()

	assert.Error(t, store.Ping(context.Background()))
}
