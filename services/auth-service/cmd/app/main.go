package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	httpx "ecommerce-backend/services/auth-service/internal/http"
	"ecommerce-backend/services/auth-service/internal/http/handlers"
	"ecommerce-backend/services/auth-service/internal/repo"
	"ecommerce-backend/services/auth-service/internal/service"
	"ecommerce-backend/shared/pkg/auth"
	"ecommerce-backend/shared/pkg/config"
	"ecommerce-backend/shared/pkg/logger"
	"ecommerce-backend/shared/pkg/rabbit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New("auth-service", cfg.Common.LogLevel)

	ctxDB, cancelDB := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelDB()

	db, err := pgxpool.New(ctxDB, cfg.Postgres.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("pg connect failed")
	}
	defer db.Close()

	blacklist := repo.NewBlacklist(cfg.Redis.Addr)
	defer func() { _ = blacklist.Close() }()

	rc, err := rabbit.Connect(cfg.Rabbit.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("rabbit connect failed")
	}
	defer func() { _ = rc.Close() }()

	if err := rabbit.DeclareBase(rc.Ch); err != nil {
		log.Fatal().Err(err).Msg("declare base failed")
	}

	jwtSvc := auth.NewService(cfg.JWT.Secret, cfg.JWT.TTL)

	svc := &service.Auth{
		Log:         log,
		Users:       &repo.UsersPG{DB: db},
		JWT:         jwtSvc,
		Revocations: blacklist,
		Events:      rabbit.NewPublisher(rc.Ch, rabbit.ExchangeEvents),
	}

	h := &handlers.AuthHandler{Log: log, Svc: svc, CookieTTL: cfg.JWT.TTL}

	router := httpx.NewRouter(&httpx.Handlers{
		Health:        handlers.Health,
		Register:      h.Register,
		Login:         h.Login,
		Logout:        h.Logout,
		Me:            h.Me,
		ListAddresses: h.ListAddresses,
		AddAddress:    h.AddAddress,
		DeleteAddress: h.DeleteAddress,
		Auth:          auth.Middleware(jwtSvc, blacklist),
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http failed")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("shutdown...")
	shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shCancel()
	_ = srv.Shutdown(shCtx)
}
