package database

import (
	"context"
	"fmt"
	"time"

	"pizza_back_end/internal/config"
	"pizza_back_end/internal/logger"
)

// Open initialise le backend choisi par STORE_BACKEND.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (Store, error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		client, err := ConnectRedis(ctx, cfg.RedisHost, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		log.Info("✅ Connecté à Redis", "addr", cfg.RedisHost, "db", cfg.RedisDB)
		return NewRedisStore(client), nil
	case config.BackendFile:
		s, err := NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		log.Info("✅ Store fichiers prêt", "dir", cfg.DataDir)
		return s, nil
	default:
		return nil, fmt.Errorf("backend inconnu: %q", cfg.StoreBackend)
	}
}
