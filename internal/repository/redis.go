package repository

import (
	"context"
	"fmt"
	"time"

	"balneario/internal/config"

	"github.com/redis/go-redis/v9"
)

// RedisReportCache keeps serialized reports in Redis with a TTL.
type RedisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient создает новый клиент Redis на основе конфигурации
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	client := redis.NewClient(options)

	return client
}

func NewRedisReportCache(client *redis.Client, ttl time.Duration) *RedisReportCache {
	return &RedisReportCache{
		client: client,
		ttl:    ttl,
	}
}

func (r *RedisReportCache) Get(ctx context.Context, key string) ([]byte, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report from redis: %w", err)
	}
	return val, nil
}

func (r *RedisReportCache) Set(ctx context.Context, key string, data []byte) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set report in redis: %w", err)
	}
	return nil
}

// InvalidateEstablishment drops every cached report of one establishment.
// Keys are namespaced per establishment, so a SCAN over the prefix is enough.
func (r *RedisReportCache) InvalidateEstablishment(ctx context.Context, establishmentID int64) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	pattern := fmt.Sprintf("report:est:%d:*", establishmentID)
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete report key: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan report keys: %w", err)
	}
	return nil
}

// ReportKey builds the cache key for one report query.
func ReportKey(establishmentID int64, kind, from, to, serviceType string) string {
	return fmt.Sprintf("report:est:%d:%s:%s:%s:%s", establishmentID, kind, from, to, serviceType)
}

// Ping проверяет соединение с Redis
func Ping(ctx context.Context, client *redis.Client) error {
	_, err := client.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}

// Close закрывает соединение с Redis
func Close(client *redis.Client) error {
	if client != nil {
		return client.Close()
	}
	return nil
}
