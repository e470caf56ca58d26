package database

import (
	"context"
	"fmt"
	"time"

	"github.com/drive-clone/api/src/config"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// RedisClient wraps the go-redis client used for token blacklisting and OAuth state
type RedisClient struct {
	*redis.Client
	logger *logrus.Logger
}

// NewRedisConnection connects to Redis and fails fast when it is unreachable
func NewRedisConnection(cfg *config.Config, logger *logrus.Logger) (*RedisClient, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}

	logger.WithField("addr", opts.Addr).Info("Connecting to Redis...")

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("CRITICAL: failed to ping redis (fail-fast): %w", err)
	}

	logger.Info("Redis connection established")

	return &RedisClient{
		Client: client,
		logger: logger,
	}, nil
}

// HealthCheck verifies Redis still answers
func (r *RedisClient) HealthCheck(ctx context.Context) error {
	if err := r.Ping(ctx).Err(); err != nil {
		if r.logger != nil {
			r.logger.WithError(err).Error("Redis health check failed")
		}
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}
