package bootstrap

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"github.com/redis/go-redis/v9"

	"github.com/folio-labs/portfolio-api/config"
	"github.com/folio-labs/portfolio-api/internal/ratelimit"
	"github.com/folio-labs/portfolio-api/internal/storage/objects"
)

// NewObjectStore returns the image store selected by STORAGE_DRIVER.
func NewObjectStore(ctx context.Context, cfg *config.Config, app *firebase.App) (objects.Store, error) {
	switch cfg.Storage.Driver {
	case "s3":
		s, err := objects.NewS3Store(ctx, objects.S3Options{
			Bucket:     cfg.Storage.S3Bucket,
			Region:     cfg.Storage.S3Region,
			Endpoint:   cfg.Storage.S3Endpoint,
			PublicBase: cfg.Storage.PublicBaseURL,
		})
		if err != nil {
			return nil, err
		}
		return s, nil
	case "firebase":
		s, err := objects.NewGCSStore(ctx, app, cfg.Firebase.StorageBucket, cfg.Storage.PublicBaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

// NewRateLimitStore returns the operation limiter state selected by
// RATE_LIMIT_STORE and a func releasing it.
func NewRateLimitStore(ctx context.Context, cfg *config.RateLimitConfig) (ratelimit.Store, func(), error) {
	if cfg.Store != "redis" {
		return ratelimit.NewMemoryStore(), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
	}
	return ratelimit.NewRedisStore(client, "ratelimit:"), func() { _ = client.Close() }, nil
}
