package main

import (
	"context"
	"database/sql"
	"net/http"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "huski_bookings/internal/adapters/http_server"
	"huski_bookings/internal/adapters/mail"
	"huski_bookings/internal/adapters/observability"
	redisad "huski_bookings/internal/adapters/redis"
	"huski_bookings/internal/adapters/travelapi"
	"huski_bookings/internal/app"
	"huski_bookings/internal/shared"
	mysqlrepo "huski_bookings/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(reg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	travel, err := travelapi.New(cfg.TravelBase, cfg.TravelKey, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("travel client init failed")
	}
	mailer := mail.New(cfg)
	tokens := app.NewTokenService(cfg.JWTSecret)

	q := app.NewQueryService(repo, cache, cfg.CacheTTL)
	users := app.NewUserService(repo, mailer, tokens, cfg.AppBaseURL)
	syncer := app.NewSyncService(travel, repo, cache)

	if cfg.SeedOnBoot {
		syncer.RunSeed(ctx, shared.BookingNumbers)
	}

	sched := app.NewScheduler(syncer, cfg.SyncEvery)
	if err := sched.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("scheduler start failed")
	}

	// http
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{Q: q, Users: users, Tokens: tokens})

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	go func() {
		<-ctx.Done()
		sched.Stop()
		_ = httpSrv.Shutdown(context.Background())
	}()

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
