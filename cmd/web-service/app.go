package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"memberportal/web-service/internal/assets"
	"memberportal/web-service/internal/auth"
	"memberportal/web-service/internal/config"
	"memberportal/web-service/internal/hasher"
	"memberportal/web-service/internal/logging"
	"memberportal/web-service/internal/store"
	"memberportal/web-service/internal/store/memory"
	"memberportal/web-service/internal/store/postgres"

	"github.com/jackc/pgx/v5/pgxpool"
)

var errNoDatabase = errors.New("DB_DSN is not set")

type stores struct {
	users    store.UserStore
	sessions store.SessionStore
	close    func()
}

// openStores connects to Postgres and applies migrations. Without a DSN it
// falls back to in-process stores when allowMemory is set.
var openStores = func(ctx context.Context, cfg config.Config, logger logging.Logger, allowMemory bool) (stores, error) {
	if cfg.DatabaseURL == "" {
		if !allowMemory {
			return stores{}, errNoDatabase
		}
		logger.Warn(ctx, "DB_DSN not set, using in-memory stores")
		return stores{
			users:    memory.NewUserStore(),
			sessions: memory.NewSessionStore(),
			close:    func() {},
		}, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return stores{}, fmt.Errorf("db connect: %w", err)
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return stores{}, err
	}
	return stores{
		users:    postgres.NewUserStore(pool),
		sessions: postgres.NewSessionStore(pool),
		close:    pool.Close,
	}, nil
}

func newLogger(cfg config.Config) logging.Logger {
	return logging.New(os.Stderr, logging.Options{
		Service: serviceName,
		Level:   logging.ParseLevel(cfg.LogLevel),
		Text:    cfg.LogFormat == "text",
	})
}

func newAuthService(cfg config.Config, users store.UserStore, logger logging.Logger) (*auth.Service, error) {
	return auth.NewService(users, hasher.New(cfg.BcryptCost), logger)
}

func newCatalog(ctx context.Context, cfg config.Config) (assets.Catalog, error) {
	if cfg.AssetsBucket == "" {
		return assets.NewStaticCatalog(), nil
	}
	catalog, err := assets.NewS3Catalog(ctx, assets.S3Config{
		Bucket:    cfg.AssetsBucket,
		Prefix:    cfg.AssetsPrefix,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	})
	if err != nil {
		return nil, err
	}
	return catalog, nil
}
