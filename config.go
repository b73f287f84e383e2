package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"capsolver/pkg/envfile"

	"github.com/sirupsen/logrus"
)

const devJWTSecret = "dev-insecure-secret-change"

type serverConfig struct {
	Addr          string
	DSN           string
	AutoMigrate   bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
	JWTSecret     []byte
	Production    bool
	SolveRate     float64 // requests per second per client IP; 0 disables
	SolveBurst    int
}

// loadDotEnv loads ./.env when present without overriding variables already set.
func loadDotEnv(log *logrus.Logger) {
	if err := envfile.Load(); err != nil {
		log.WithError(err).Warn("failed to read .env")
	}
}

func loadServerConfig(log *logrus.Logger) serverConfig {
	cfg := serverConfig{
		Addr:          envOr("HTTP_ADDR", ":8081"),
		DSN:           os.Getenv("DB_DSN"),
		AutoMigrate:   true,
		RedisAddr:     os.Getenv("REDIS_ADDRESS"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		CacheTTL:      time.Hour,
		Production:    os.Getenv("APP_ENV") == "production",
		SolveRate:     20,
		SolveBurst:    40,
	}
	// DB_AUTO_MIGRATE defaults to true; false/0/no disables it.
	if v := os.Getenv("DB_AUTO_MIGRATE"); v != "" {
		lv := strings.ToLower(v)
		if lv == "false" || lv == "0" || lv == "no" {
			cfg.AutoMigrate = false
		}
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.WithField("REDIS_DB", v).Warn("ignoring non-numeric REDIS_DB")
		} else {
			cfg.RedisDB = n
		}
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.WithField("CACHE_TTL", v).Warn("ignoring invalid CACHE_TTL")
		} else {
			cfg.CacheTTL = d
		}
	}
	if v := os.Getenv("SOLVE_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			log.WithField("SOLVE_RATE", v).Warn("ignoring invalid SOLVE_RATE")
		} else {
			cfg.SolveRate = f
		}
	}
	if v := os.Getenv("SOLVE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			log.WithField("SOLVE_BURST", v).Warn("ignoring invalid SOLVE_BURST")
		} else {
			cfg.SolveBurst = n
		}
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Warn("JWT_SECRET not set; using the development secret")
		secret = devJWTSecret
	}
	cfg.JWTSecret = []byte(secret)
	return cfg
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
