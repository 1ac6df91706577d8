package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultTimeout  = 5 * time.Second
	defaultPoolSize = 10
)

// Config holds the Redis settings for the session revocation list.
type Config struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
	// KeyPrefix namespaces revocation keys so several deployments can
	// share one Redis database.
	KeyPrefix string
	Timeout   time.Duration
}

// Open connects to Redis and returns a RevocationStore over the client.
// The connection is checked with a ping bounded by cfg.Timeout.
func Open(ctx context.Context, cfg Config) (*RevocationStore, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = defaultPoolSize
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     poolSize,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	return NewRevocationStore(client, cfg.KeyPrefix), nil
}

func normalizePrefix(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		return ""
	}
	return prefix + ":"
}
