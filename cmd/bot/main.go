package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	"github.com/stufently/avia-search-bot/internal/bot"
	"github.com/stufently/avia-search-bot/internal/cache"
	"github.com/stufently/avia-search-bot/internal/config"
	"github.com/stufently/avia-search-bot/internal/places"
	"github.com/stufently/avia-search-bot/internal/ratelimit"
	"github.com/stufently/avia-search-bot/internal/search"
	"github.com/stufently/avia-search-bot/internal/travelpayouts"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.TelegramToken == "" {
		log.Fatal("TELEGRAM_TOKEN is required to run the bot")
	}

	rateLimiter := ratelimit.NewEndpointLimiterWithDefaults()
	rateLimiter.SetEndpointLimit(travelpayouts.EndpointPrices, 5, 10)
	rateLimiter.SetEndpointLimit(travelpayouts.EndpointGrouped, 5, 10)
	rateLimiter.SetEndpointLimit(travelpayouts.EndpointAutocomplete, 10, 20)

	client := travelpayouts.NewClient(travelpayouts.Config{
		Token:           cfg.APIToken,
		PricesURL:       cfg.PricesURL,
		GroupedURL:      cfg.GroupedURL,
		AutocompleteURL: cfg.AutocompleteURL,
		Currency:        cfg.Currency,
		Locale:          cfg.Locale,
		Timeout:         cfg.RequestTimeout,
		Limiter:         rateLimiter,
	})

	var placeCache cache.Cache
	if cfg.CacheEnabled {
		redisCache, err := cache.NewRedisCache(cache.RedisConfig{
			Host: cfg.RedisHost,
			Port: cfg.RedisPort,
			TTL:  cfg.RedisTTL,
		})
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		placeCache = redisCache
		log.Printf("Redis place cache enabled (host: %s:%s, TTL: %v)", cfg.RedisHost, cfg.RedisPort, cfg.RedisTTL)
	} else {
		placeCache = cache.NewNoOpCache()
		log.Println("Place cache disabled")
	}

	resolver := places.NewResolver(client, placeCache)
	orchestrator := search.NewOrchestrator(client, search.Config{MaxConcurrent: cfg.MaxConcurrent})
	service := search.NewService(resolver, orchestrator)

	b, err := bot.New(cfg.TelegramToken, service)
	if err != nil {
		log.Fatalf("Failed to start Telegram bot: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Println("Bot started")
	if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Bot stopped: %v", err)
	}
	log.Println("Bot stopped")
}
