package main

import (
	"log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/stufently/avia-search-bot/internal/cache"
	"github.com/stufently/avia-search-bot/internal/config"
	"github.com/stufently/avia-search-bot/internal/handler"
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

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())

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

	searchHandler := handler.NewSearchHandler(service)

	api := e.Group("/api/v1")
	api.POST("/search", searchHandler.Search)
	e.GET("/health", handler.HealthHandler)

	log.Printf("Starting fare search server on port %s", cfg.Port)

	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
