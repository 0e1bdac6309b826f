package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"fisbench/internal/config"
	"fisbench/internal/domain"
	"fisbench/internal/port"
)

const keyPrefix = "fisbench:ocr:"

type ocrCache struct {
	rdb goredis.Cmdable
}

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, cfg *config.RedisConfig) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// NewOCRCache creates a Redis-backed OCRCache.
func NewOCRCache(rdb goredis.Cmdable) port.OCRCache {
	return &ocrCache{rdb: rdb}
}

// Key returns the cache key for an image hash and provider.
func Key(imageHash string, provider domain.ProviderID) string {
	return keyPrefix + string(provider) + ":" + imageHash
}

func (c *ocrCache) Get(ctx context.Context, imageHash string, provider domain.ProviderID) (*port.OCROutput, bool, error) {
	raw, err := c.rdb.Get(ctx, Key(imageHash, provider)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("ocrCache.Get: %w", err)
	}
	var out port.OCROutput
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false, fmt.Errorf("ocrCache.Get decode: %w", err)
	}
	return &out, true, nil
}

func (c *ocrCache) Set(ctx context.Context, imageHash string, provider domain.ProviderID, out *port.OCROutput, ttl time.Duration) error {
	raw, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("ocrCache.Set encode: %w", err)
	}
	if err := c.rdb.Set(ctx, Key(imageHash, provider), raw, ttl).Err(); err != nil {
		return fmt.Errorf("ocrCache.Set: %w", err)
	}
	return nil
}

// Pinger adapts a Redis client to the readiness probe.
type Pinger struct {
	rdb goredis.Cmdable
}

// NewPinger wraps rdb for health checks.
func NewPinger(rdb goredis.Cmdable) *Pinger {
	return &Pinger{rdb: rdb}
}

func (p *Pinger) PingContext(ctx context.Context) error {
	return p.rdb.Ping(ctx).Err()
}
