package worker

import (
	"context"
	"encoding/json"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"ecommerce-backend/services/order-service/internal/domain"
	"ecommerce-backend/services/order-service/internal/repo"
	"ecommerce-backend/shared/pkg/metrics"
	"ecommerce-backend/shared/pkg/models"
	"ecommerce-backend/shared/pkg/rabbit"
)

// Consumer drives the PENDING -> CONFIRMED transition when the payment
// collaborator reports a completed payment. Processing is idempotent
// per event id; duplicates are acked and dropped.
type Consumer struct {
	Log   zerolog.Logger
	Store repo.Store

	RetryPub *rabbit.Publisher
	DLQPub   *rabbit.Publisher

	Service     string
	MaxAttempts int
	DLQKey      string
}

func (c *Consumer) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	c.Log.Info().Msg("payment consumer started")
	for {
		select {
		case <-ctx.Done():
			c.Log.Info().Msg("payment consumer stopped")
			return
		case d, ok := <-deliveries:
			if !ok {
				c.Log.Info().Msg("deliveries closed")
				return
			}
			c.handle(ctx, d)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var evt models.Event[models.PaymentCompletedPayload]
	if err := json.Unmarshal(d.Body, &evt); err != nil {
		c.Log.Error().Err(err).Str("rk", d.RoutingKey).Msg("bad json -> dlq")
		_ = rabbit.RetryOrDLQ(ctx, d, c.Service, 0, c.RetryPub, c.DLQPub, c.DLQKey)
		return
	}
	if evt.ID == "" || evt.Payload.OrderID == "" {
		c.Log.Error().Str("rk", d.RoutingKey).Msg("missing event_id/order_id -> dlq")
		_ = rabbit.RetryOrDLQ(ctx, d, c.Service, 0, c.RetryPub, c.DLQPub, c.DLQKey)
		return
	}

	fresh, err := c.Store.TryMarkProcessed(ctx, evt.ID)
	if err != nil {
		c.Log.Error().Err(err).Str("order_id", evt.Payload.OrderID).Msg("mark processed failed -> retry/dlq")
		_ = rabbit.RetryOrDLQ(ctx, d, c.Service, int32(c.MaxAttempts), c.RetryPub, c.DLQPub, c.DLQKey)
		return
	}
	if !fresh {
		_ = d.Ack(false)
		metrics.Event(c.Service, d.RoutingKey, "skipped")
		c.Log.Debug().Str("event_id", evt.ID).Msg("duplicate event ignored")
		return
	}

	err = c.Store.Confirm(ctx, evt.Payload.OrderID)
	switch {
	case err == nil:
		_ = d.Ack(false)
		metrics.Event(c.Service, d.RoutingKey, "ok")
		c.Log.Info().Str("order_id", evt.Payload.OrderID).Msg("order confirmed")
	case errors.Is(err, domain.ErrConflictStatus), errors.Is(err, domain.ErrNotFound):
		// Already cancelled, already confirmed or unknown: nothing to
		// retry, a late payment event cannot reopen the state machine.
		_ = d.Ack(false)
		metrics.Event(c.Service, d.RoutingKey, "dropped")
		c.Log.Warn().Err(err).Str("order_id", evt.Payload.OrderID).Msg("payment event dropped")
	default:
		c.Log.Error().Err(err).Str("order_id", evt.Payload.OrderID).Msg("confirm failed -> retry/dlq")
		metrics.Event(c.Service, d.RoutingKey, "retry")
		_ = rabbit.RetryOrDLQ(ctx, d, c.Service, int32(c.MaxAttempts), c.RetryPub, c.DLQPub, c.DLQKey)
	}
}
