package db

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/secondbrain-back/internal/config"
)

const (
	connectTimeout  = 5 * time.Second
	connectDeadline = 30 * time.Second
)

var (
	Module = fx.Provide(
		NewStore,
	)
)

// NewStore opens the backend selected by STORE_DRIVER and closes it when the
// application stops. Connecting is retried with exponential backoff for a
// while so the service can start before its database.
func NewStore(lc fx.Lifecycle, cfg *config.Config, logger *zap.SugaredLogger) (Store, error) {
	var store Store

	connect := func() error {
		s, err := openStore(cfg, logger)
		if err != nil {
			return err
		}
		store = s
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = connectDeadline
	notify := func(err error, next time.Duration) {
		logger.Warnw("store unavailable, retrying", "driver", cfg.StoreDriver, "in", next, "error", err)
	}
	if err := backoff.RetryNotify(connect, policy, notify); err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("Closing store.")
			return store.Close(ctx)
		},
	})

	logger.Infow("Store ready", "driver", cfg.StoreDriver)
	return store, nil
}

func openStore(cfg *config.Config, logger *zap.SugaredLogger) (Store, error) {
	if cfg.StoreDriver == config.DriverMongo {
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		store, err := NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDB, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	client, err := NewGormClient(cfg, logger)
	if err != nil {
		return nil, err
	}
	store, err := NewGormStore(client, logger)
	if err != nil {
		if sqlDB, dbErr := client.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
		return nil, err
	}
	return store, nil
}
