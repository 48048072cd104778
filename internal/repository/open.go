package repository

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Vasu1592004/campus-ai-chatbot/internal/config"
	"github.com/Vasu1592004/campus-ai-chatbot/internal/database"
)

// OpenBlobStore connects the backend named by cfg.StoreDriver.
func OpenBlobStore(cfg *config.Config, logger *zap.Logger) (BlobStore, error) {
	switch cfg.StoreDriver {
	case "pebble":
		db, err := database.OpenPebble(cfg.StorePath)
		if err != nil {
			return nil, err
		}
		logger.Info("using pebble store", zap.String("path", cfg.StorePath))
		return NewPebbleRepo(db), nil

	case "redis":
		client, err := database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		logger.Info("using redis store")
		return NewRedisRepo(client), nil

	case "postgres":
		pool, err := database.NewPostgresPool(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := database.RunMigrations(pool, database.Migrations, logger); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("using postgres store")
		return NewPostgresRepo(pool), nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
