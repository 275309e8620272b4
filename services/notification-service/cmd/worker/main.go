package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ecommerce-backend/services/notification-service/internal/email"
	"ecommerce-backend/services/notification-service/internal/worker"
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
	log := logger.New("notification-service", cfg.Common.LogLevel)

	rc, err := rabbit.Connect(cfg.Rabbit.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("rabbit connect failed")
	}
	defer func() { _ = rc.Close() }()

	if err := rabbit.DeclareBase(rc.Ch); err != nil {
		log.Fatal().Err(err).Msg("declare base failed")
	}

	spec := rabbit.QueueSpec{
		Name:     "notification.q",
		BindKeys: []string{models.EventUserCreated, models.EventPaymentCompleted, models.EventPaymentFailed},
		DLQKey:   "notification.dlq",
		Prefetch: 20,
	}
	if err := spec.Declare(rc.Ch); err != nil {
		log.Fatal().Err(err).Msg("declare notification topology failed")
	}
	for _, key := range spec.BindKeys {
		_ = rabbit.DeclareRetryQueue(rc.Ch, "notification.retry."+key+".5s",
			"notification."+key, key, 5000)
	}

	deliveries, err := rabbit.NewConsumer(rc.Ch).Consume("notification.q", 20)
	if err != nil {
		log.Fatal().Err(err).Msg("consume failed")
	}

	w := &worker.Consumer{
		Log:         log,
		Sender:      &email.SMTPSender{Addr: cfg.SMTP.Addr, From: cfg.SMTP.From},
		RetryPub:    rabbit.NewPublisher(rc.Ch, rabbit.ExchangeRetry),
		DLQPub:      rabbit.NewPublisher(rc.Ch, rabbit.ExchangeDLX),
		Service:     "notification",
		MaxAttempts: 5,
		DLQKey:      "notification.dlq",
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx, deliveries)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info().Msg("shutdown...")
	cancel()
}
