package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zura-health/orflow/backend/internal/adapters/cache"
	"github.com/zura-health/orflow/backend/internal/adapters/database"
	"github.com/zura-health/orflow/backend/internal/api/handlers"
	"github.com/zura-health/orflow/backend/internal/api/routes"
	"github.com/zura-health/orflow/backend/internal/application/services"
	"github.com/zura-health/orflow/backend/internal/domain/providers"
	"github.com/zura-health/orflow/backend/internal/domain/repositories"
	"github.com/zura-health/orflow/backend/internal/infrastructure/clients/postgres"
	"github.com/zura-health/orflow/backend/internal/infrastructure/clients/redis"
	"github.com/zura-health/orflow/backend/internal/infrastructure/observability"
	"github.com/zura-health/orflow/backend/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Server.Env)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	// Initialize metrics
	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Initialize database client
	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize PostgreSQL client")
	}
	defer pgClient.Close()
	log.Info().Msg("PostgreSQL client initialized")

	// Initialize Redis client. The engine works without caching, so a Redis
	// failure is a warning, not a fatal error.
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize Redis client, continuing without cache")
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Info().Msg("Redis client initialized")
	}

	var cacheProvider providers.CacheProvider
	if redisClient != nil {
		cacheProvider = cache.NewRedisAdapter(redisClient)
	}

	// Initialize adapters
	caseAdapter := database.NewCaseAdapter(pgClient)
	caseFlagAdapter := database.NewCaseFlagAdapter(pgClient)

	baseRuleAdapter := database.NewFlagRuleAdapter(pgClient)
	var ruleAdapter repositories.FlagRuleRepository
	if cacheProvider != nil {
		ruleAdapter = database.NewCachedFlagRuleAdapter(baseRuleAdapter, cacheProvider, cfg.Engine.RuleCacheTTLSeconds, metrics)
		log.Info().Int("ttl_seconds", cfg.Engine.RuleCacheTTLSeconds).Msg("flag rule adapter wrapped with caching layer")
	} else {
		ruleAdapter = baseRuleAdapter
		log.Info().Msg("flag rule adapter running without cache")
	}

	// Initialize services
	evaluationService := services.NewFlagEvaluationService(caseAdapter, ruleAdapter, caseFlagAdapter, metrics)

	// Initialize handlers and router
	flagHandler := handlers.NewFlagHandler(evaluationService)
	router := routes.NewRouter(flagHandler, metrics)
	handler := router.SetupRoutes()

	// Create HTTP server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	log.Info().Msg("server stopped")
}
