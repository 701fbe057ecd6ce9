package main

import (
	"context"
	"log"
	"time"

	"manifest-dispatcher/internal/core/cache"
	"manifest-dispatcher/internal/core/config"
	"manifest-dispatcher/internal/core/logger"
	"manifest-dispatcher/internal/core/server"
	dispatchadapters "manifest-dispatcher/internal/features/dispatch/adapters"
	dispatchhandler "manifest-dispatcher/internal/features/dispatch/handler"
	dispatchservice "manifest-dispatcher/internal/features/dispatch/service"
	geoadapters "manifest-dispatcher/internal/features/geo/adapters"
	geoports "manifest-dispatcher/internal/features/geo/ports"
	geoservice "manifest-dispatcher/internal/features/geo/service"
	manifestservice "manifest-dispatcher/internal/features/manifest/service"

	"go.uber.org/zap"
)

// @title Manifest Dispatcher API
// @version 1.0
// @description Extracts delivery records from booking manifests, enriches them with cluster and region annotations, and dispatches them as orders to a Wialon-compatible logistics service.
// @contact.name API Support
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	ctx := context.Background()

	// Load the boundary dataset up front; region resolution is useless
	// without it.
	boundaryRepo := geoadapters.NewGeoJSONRepository(cfg.Boundary.Path, cfg.Boundary.NameProperty)
	geoSvc, err := geoservice.NewService(ctx, boundaryRepo)
	if err != nil {
		l.Fatal("Boundary dataset load failed", zap.Error(err))
	}

	var resolver geoports.RegionResolver = geoSvc
	if cfg.Redis.URL != "" {
		redisCache, err := cache.NewRedisAdapter(cfg.Redis.URL)
		if err != nil {
			l.Fatal("Redis initialization failed", zap.Error(err))
		}
		defer redisCache.Close()

		if err := redisCache.Ping(ctx); err != nil {
			l.Fatal("Redis ping failed", zap.Error(err))
		}
		l.Info("Region cache enabled", zap.Int("ttl_minutes", cfg.Redis.RegionTTLMinutes))

		ttl := time.Duration(cfg.Redis.RegionTTLMinutes) * time.Minute
		resolver = geoadapters.NewCachedResolver(geoSvc, redisCache, ttl)
	}

	loc, err := time.LoadLocation(cfg.Dispatch.Timezone)
	if err != nil {
		l.Fatal("Invalid delivery timezone", zap.String("timezone", cfg.Dispatch.Timezone), zap.Error(err))
	}

	gateway := dispatchadapters.NewWialonGateway(cfg.Wialon)
	limiter := dispatchadapters.NewTokenBucketLimiter(cfg.Dispatch.RateLimitRPS)

	dispatchSvc := dispatchservice.NewService(
		manifestservice.NewExtractor(),
		resolver,
		gateway,
		limiter,
		loc,
	)
	dispatchHdl := dispatchhandler.NewDispatchHandler(dispatchSvc)

	srv := server.New(cfg)
	dispatchHdl.RegisterRoutes(srv.App)

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}
