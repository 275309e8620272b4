package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"ecommerce-backend/services/order-service/internal/client"
	httpx "ecommerce-backend/services/order-service/internal/http"
	"ecommerce-backend/services/order-service/internal/http/handlers"
	"ecommerce-backend/services/order-service/internal/repo"
	"ecommerce-backend/services/order-service/internal/service"
	"ecommerce-backend/services/order-service/internal/worker"
	"ecommerce-backend/shared/pkg/auth"
	"ecommerce-backend/shared/pkg/config"
	"ecommerce-backend/shared/pkg/logger"
	"ecommerce-backend/shared/pkg/models"
	"ecommerce-backend/shared/pkg/rabbit"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log := logger.New("order-service", cfg.Common.LogLevel)

	ctxDB, cancelDB := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelDB()

	db, err := pgxpool.New(ctxDB, cfg.Postgres.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("pg connect failed")
	}
	defer db.Close()

	rc, err := rabbit.Connect(cfg.Rabbit.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("rabbit connect failed")
	}
	defer func() { _ = rc.Close() }()

	if err := rabbit.DeclareBase(rc.Ch); err != nil {
		log.Fatal().Err(err).Msg("declare base failed")
	}
	spec := rabbit.QueueSpec{
		Name:     "orders.payment.q",
		BindKeys: []string{models.EventPaymentCompleted},
		DLQKey:   "orders.dlq",
		Prefetch: 20,
	}
	if err := spec.Declare(rc.Ch); err != nil {
		log.Fatal().Err(err).Msg("declare orders topology failed")
	}
	_ = rabbit.DeclareRetryQueue(rc.Ch, "orders.retry.payment.completed.5s",
		"orders."+models.EventPaymentCompleted, models.EventPaymentCompleted, 5000)

	store := &repo.OrdersPG{DB: db}

	svc := &service.Orders{
		Log:     log,
		Store:   store,
		Cart:    client.NewCart(cfg.Cart.URL, cfg.Cart.Timeout),
		Catalog: client.NewCatalog(cfg.Catalog.URL, cfg.Catalog.Timeout, cfg.Catalog.FanOut),
		Events:  rabbit.NewPublisher(rc.Ch, rabbit.ExchangeEvents),
	}

	h := &handlers.OrdersHandler{Log: log, Svc: svc}
	jwtSvc := auth.NewService(cfg.JWT.Secret, cfg.JWT.TTL)

	router := httpx.NewRouter(&httpx.Handlers{
		Health:        handlers.Health,
		CreateOrder:   h.Create,
		ListMyOrders:  h.ListMine,
		GetOrder:      h.Get,
		CancelOrder:   h.Cancel,
		UpdateAddress: h.UpdateAddress,
		Auth:          auth.Middleware(jwtSvc, nil),
	})

	deliveries, err := rabbit.NewConsumer(rc.Ch).Consume("orders.payment.q", 20)
	if err != nil {
		log.Fatal().Err(err).Msg("consume failed")
	}

	w := &worker.Consumer{
		Log:         log,
		Store:       store,
		RetryPub:    rabbit.NewPublisher(rc.Ch, rabbit.ExchangeRetry),
		DLQPub:      rabbit.NewPublisher(rc.Ch, rabbit.ExchangeDLX),
		Service:     "orders",
		MaxAttempts: 5,
		DLQKey:      "orders.dlq",
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx, deliveries)

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
	cancel()
	shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shCancel()
	_ = srv.Shutdown(shCtx)
}
