package main

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"huski_bookings/internal/adapters/observability"
	redisad "huski_bookings/internal/adapters/redis"
	"huski_bookings/internal/adapters/travelapi"
	"huski_bookings/internal/app"
	"huski_bookings/internal/shared"
	mysqlrepo "huski_bookings/internal/storage/mysql"
)

// One-shot seed: pull the curated booking list from the travel API and
// mirror it into MySQL, then exit. The long-running sync lives in cmd/api.
func main() {
	ctx := context.Background()
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	log.Info().
		Str("base", cfg.TravelBase).
		Int("bookings", len(shared.BookingNumbers)).
		Msg("seed starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	client, err := travelapi.New(cfg.TravelBase, cfg.TravelKey, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize travel client")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	syncer := app.NewSyncService(client, repo, cache)

	syncer.RunSeed(ctx, shared.BookingNumbers)
	log.Info().Msg("seed completed")
}
