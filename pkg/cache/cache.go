package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// miss is stored for inputs that were not recognized so repeats skip the pipeline too.
const miss = "-"

// Results caches recognition outcomes. Keys come from Key and must include
// everything besides the input that changes the outcome.
type Results interface {
	// Get returns (code, ok, found). found is false on a cache miss.
	Get(ctx context.Context, key string) (code string, ok bool, found bool, err error)
	Put(ctx context.Context, key string, code string, ok bool) error
}

type redisResults struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// Options configures the Redis result cache.
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewRedis connects to Redis and pings it.
func NewRedis(ctx context.Context, opts Options) (Results, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", opts.Addr, err)
	}
	return &redisResults{client: client, ttl: opts.TTL, prefix: "captcha:"}, nil
}

// Key returns prefix followed by the sha256 of input.
func Key(prefix, input string) string {
	sum := sha256.Sum256([]byte(input))
	return prefix + hex.EncodeToString(sum[:])
}

func (r *redisResults) Get(ctx context.Context, key string) (string, bool, bool, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, false, nil
	}
	if err != nil {
		return "", false, false, err
	}
	if val == miss {
		return "", false, true, nil
	}
	return val, true, true, nil
}

func (r *redisResults) Put(ctx context.Context, key string, code string, ok bool) error {
	val := code
	if !ok {
		val = miss
	}
	return r.client.Set(ctx, r.prefix+key, val, r.ttl).Err()
}
