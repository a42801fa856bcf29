package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/beaesthetic/analytics/internal/adapters/events"
	"github.com/beaesthetic/analytics/internal/domain/entities"
	"github.com/beaesthetic/analytics/internal/infrastructure/clients/mongo"
	"github.com/beaesthetic/analytics/internal/infrastructure/clients/redis"
	"github.com/beaesthetic/analytics/internal/infrastructure/observability"
	"github.com/beaesthetic/analytics/pkg/config"
)

func main() {
	customers := flag.Int("customers", 40, "number of customers to create")
	months := flag.Int("months", 18, "months of appointment history")
	seed := flag.Uint64("seed", 42, "random seed")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	observability.InitLogger("analytics-seed", cfg.Log.Environment, cfg.Log.Level)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client, err := mongo.NewClient(ctx, &cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer client.Close(context.Background())

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, dropping collections before seeding")
		for _, name := range []string{"agenda", "customers"} {
			if err := client.Collection(name).Drop(ctx); err != nil {
				log.Fatal().Err(err).Str("collection", name).Msg("Failed to drop collection")
			}
		}
	}

	ds := generate(*seed, *customers, *months, time.Now())

	if len(ds.customers) > 0 {
		if _, err := client.Collection("customers").InsertMany(ctx, toAny(ds.customers)); err != nil {
			log.Fatal().Err(err).Msg("Failed to insert customers")
		}
	}
	if len(ds.agenda) > 0 {
		if _, err := client.Collection("agenda").InsertMany(ctx, toAny(ds.agenda)); err != nil {
			log.Fatal().Err(err).Msg("Failed to insert agenda entries")
		}
	}
	log.Info().Int("customers", len(ds.customers)).Int("agenda", len(ds.agenda)).Msg("Seeded appointment store")

	if !cfg.Redis.Enabled || len(ds.agenda) == 0 {
		return
	}

	// One event at the earliest creation time drops every cached result the
	// new entries could affect.
	redisClient, err := redis.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, running services keep their cache")
		return
	}
	defer redisClient.Close()

	bus := events.NewRedisEventBus(redisClient)
	defer bus.Close()
	event := entities.NewAgendaEvent("seed", entities.AgendaEventTypeCreated, ds.earliest)
	if err := bus.Publish(ctx, cfg.Redis.Channel, event); err != nil {
		log.Warn().Err(err).Msg("Failed to publish agenda change")
	}
}

func toAny[T any](docs []T) []interface{} {
	out := make([]interface{}, len(docs))
	for i, d := range docs {
		out[i] = d
	}
	return out
}
