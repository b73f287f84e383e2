package main

import (
	"context"

	"capsolver/pkg/cache"
	"capsolver/pkg/store"

	"github.com/sirupsen/logrus"
)

// initDB opens the attempt store. A missing DB_DSN disables persistence.
func initDB(cfg serverConfig, log *logrus.Logger) store.Attempts {
	if cfg.DSN == "" {
		log.Info("DB_DSN not set; recognition attempts are not persisted")
		return nil
	}
	s, err := store.Open(cfg.DSN, cfg.AutoMigrate)
	if err != nil {
		log.WithError(err).Fatal("failed to connect postgres database")
	}
	return s
}

// initCache connects the Redis result cache. A missing REDIS_ADDRESS disables it,
// and a failed connection only logs.
func initCache(ctx context.Context, cfg serverConfig, log *logrus.Logger) cache.Results {
	if cfg.RedisAddr == "" {
		return nil
	}
	log.WithField("addr", cfg.RedisAddr).Info("connecting to redis")
	c, err := cache.NewRedis(ctx, cache.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		TTL:      cfg.CacheTTL,
	})
	if err != nil {
		log.WithError(err).Warn("redis unavailable; result cache disabled")
		return nil
	}
	return c
}
