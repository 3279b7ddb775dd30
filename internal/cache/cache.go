// Package cache stores resolved places so repeat city lookups skip
// the autocomplete service.
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stufently/avia-search-bot/internal/models"
)

type Cache interface {
	Get(ctx context.Context, term string) (models.Place, bool)
	Set(ctx context.Context, term string, place models.Place) error
	Close() error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Host:     "localhost",
		Port:     "6379",
		Password: "",
		DB:       0,
		TTL:      24 * time.Hour,
	}
}

func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisCache{
		client: client,
		ttl:    cfg.TTL,
	}, nil
}

func (c *RedisCache) Get(ctx context.Context, term string) (models.Place, bool) {
	data, err := c.client.Get(ctx, placeKey(term)).Bytes()
	if err != nil {
		return models.Place{}, false
	}

	var place models.Place
	if err := json.Unmarshal(data, &place); err != nil {
		return models.Place{}, false
	}

	return place, true
}

func (c *RedisCache) Set(ctx context.Context, term string, place models.Place) error {
	data, err := json.Marshal(place)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, placeKey(term), data, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Get(ctx context.Context, term string) (models.Place, bool) {
	return models.Place{}, false
}

func (c *NoOpCache) Set(ctx context.Context, term string, place models.Place) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}

func placeKey(term string) string {
	return "place:" + strings.ToLower(term)
}
