package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"

	"github.com/beaesthetic/analytics/internal/adapters/cache"
	"github.com/beaesthetic/analytics/internal/adapters/database"
	"github.com/beaesthetic/analytics/internal/adapters/events"
	"github.com/beaesthetic/analytics/internal/api/handlers"
	"github.com/beaesthetic/analytics/internal/api/routes"
	"github.com/beaesthetic/analytics/internal/application/services"
	"github.com/beaesthetic/analytics/internal/domain/providers"
	"github.com/beaesthetic/analytics/internal/domain/repositories"
	"github.com/beaesthetic/analytics/internal/infrastructure/clients/mongo"
	"github.com/beaesthetic/analytics/internal/infrastructure/clients/postgres"
	"github.com/beaesthetic/analytics/internal/infrastructure/clients/redis"
	"github.com/beaesthetic/analytics/internal/infrastructure/observability"
	"github.com/beaesthetic/analytics/internal/query/metrics"
	queryservices "github.com/beaesthetic/analytics/internal/query/services"
	"github.com/beaesthetic/analytics/pkg/config"
)

// store bundles the repositories of the selected driver
type store struct {
	appointments repositories.AppointmentRepository
	customers    repositories.CustomerRepository
	pinger       handlers.Pinger
	close        func()
}

func openStore(ctx context.Context, cfg *config.Config, m *observability.Metrics) (*store, error) {
	var s store

	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		client, err := postgres.NewClient(ctx, &cfg.Database)
		if err != nil {
			return nil, err
		}
		s.appointments = database.NewPostgresAppointmentAdapter(client)
		s.customers = database.NewPostgresCustomerAdapter(client)
		s.pinger = client
		s.close = func() {
			if err := client.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing PostgreSQL client")
			}
		}
	default:
		client, err := mongo.NewClient(ctx, &cfg.Mongo)
		if err != nil {
			return nil, err
		}
		s.appointments = database.NewMongoAppointmentAdapter(client)
		s.customers = database.NewMongoCustomerAdapter(client)
		s.pinger = client
		s.close = func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Close(closeCtx); err != nil {
				log.Error().Err(err).Msg("Error closing MongoDB client")
			}
		}
	}

	s.appointments = database.NewInstrumentedAppointmentRepository(s.appointments, m, cfg.Store.Driver)
	s.customers = database.NewInstrumentedCustomerRepository(s.customers, m, cfg.Store.Driver)
	return &s, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Log.Environment, cfg.Log.Level)

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	telemetry, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	st, err := openStore(ctx, cfg, telemetry)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("Failed to connect to the appointment store")
	}
	defer st.close()

	resultCache, err := cache.New(cache.Config{
		MaxEntries: cfg.Cache.MaxEntries,
		TTLClosed:  cfg.Cache.TTLClosed,
		TTLOpen:    cfg.Cache.TTLOpen,
	}, cache.WithMeter(otel.Meter("analytics.cache")))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create result cache")
	}

	registry := metrics.MustDefaultRegistry()
	analyticsService := queryservices.NewAnalyticsService(st.appointments, metrics.NewEngine(registry))
	cachedAnalytics := queryservices.NewCachedAnalyticsService(analyticsService, resultCache)
	insightsService := queryservices.NewInsightsService(st.appointments, st.customers, cfg.Insights.InactiveMonths)

	checks := map[string]handlers.Pinger{"store": st.pinger}

	// Redis only carries agenda change events; the service runs without it.
	var eventBus providers.EventBus
	var invalidation *services.CacheInvalidationService
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, cache invalidation disabled")
		} else {
			defer redisClient.Close()
			checks["redis"] = redisClient
			eventBus = events.NewRedisEventBus(redisClient)
			invalidation = services.NewCacheInvalidationService(resultCache, eventBus, cfg.Redis.Channel)
			if err := invalidation.Start(); err != nil {
				log.Warn().Err(err).Msg("Failed to start cache invalidation")
				invalidation = nil
			}
		}
	}

	warmer := services.NewCacheWarmingService(cachedAnalytics, cfg.Cache.WarmMonths)
	go warmer.StartPeriodicWarming(ctx, cfg.Cache.WarmInterval)

	router := routes.NewRouter(
		handlers.NewAnalyticsHandler(cachedAnalytics, registry),
		handlers.NewInsightsHandler(insightsService),
		handlers.NewHealthHandler(checks),
		handlers.NewDebugHandler(cachedAnalytics),
		cfg.Server.AllowedOrigins,
		telemetry,
	)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Str("store", cfg.Store.Driver).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	if eventBus != nil {
		if err := eventBus.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing event bus")
		}
	}
	if invalidation != nil {
		invalidation.Stop()
	}

	log.Info().Msg("Server stopped")
}
