package worker

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"ecommerce-backend/services/notification-service/internal/email"
	"ecommerce-backend/shared/pkg/metrics"
	"ecommerce-backend/shared/pkg/models"
	"ecommerce-backend/shared/pkg/rabbit"
)

// Consumer turns bus events into emails: a welcome on registration and
// payment outcome notices.
type Consumer struct {
	Log    zerolog.Logger
	Sender email.Sender

	RetryPub *rabbit.Publisher
	DLQPub   *rabbit.Publisher

	Service     string
	MaxAttempts int
	DLQKey      string
}

func (c *Consumer) Run(ctx context.Context, deliveries <-chan amqp.Delivery) {
	c.Log.Info().Msg("notification consumer started")
	for {
		select {
		case <-ctx.Done():
			c.Log.Info().Msg("notification consumer stopped")
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
	to, subject, text, html, err := c.compose(d)
	if err != nil {
		c.Log.Error().Err(err).Str("rk", d.RoutingKey).Msg("bad event -> dlq")
		_ = rabbit.RetryOrDLQ(ctx, d, c.Service, 0, c.RetryPub, c.DLQPub, c.DLQKey)
		return
	}
	if to == "" {
		// event type we do not notify on
		_ = d.Ack(false)
		metrics.Event(c.Service, d.RoutingKey, "skipped")
		return
	}

	if err := c.Sender.Send(ctx, to, subject, text, html); err != nil {
		c.Log.Error().Err(err).Str("rk", d.RoutingKey).Str("to", to).Msg("send failed -> retry/dlq")
		metrics.Event(c.Service, d.RoutingKey, "retry")
		_ = rabbit.RetryOrDLQ(ctx, d, c.Service, int32(c.MaxAttempts), c.RetryPub, c.DLQPub, c.DLQKey)
		return
	}

	_ = d.Ack(false)
	metrics.Event(c.Service, d.RoutingKey, "ok")
	c.Log.Info().Str("rk", d.RoutingKey).Str("to", to).Str("subject", subject).Msg("email sent")
}

func (c *Consumer) compose(d amqp.Delivery) (to, subject, text, html string, err error) {
	switch d.RoutingKey {
	case models.EventUserCreated:
		var evt models.Event[models.UserCreatedPayload]
		if err = json.Unmarshal(d.Body, &evt); err != nil {
			return "", "", "", "", err
		}
		subject, text, html = email.Welcome(evt.Payload.FirstName, evt.Payload.LastName)
		return evt.Payload.Email, subject, text, html, nil

	case models.EventPaymentCompleted:
		var evt models.Event[models.PaymentCompletedPayload]
		if err = json.Unmarshal(d.Body, &evt); err != nil {
			return "", "", "", "", err
		}
		subject, text, html = email.PaymentCompleted(evt.Payload.Username, evt.Payload.OrderID, evt.Payload.Amount, evt.Payload.Currency)
		return evt.Payload.Email, subject, text, html, nil

	case models.EventPaymentFailed:
		var evt models.Event[models.PaymentFailedPayload]
		if err = json.Unmarshal(d.Body, &evt); err != nil {
			return "", "", "", "", err
		}
		subject, text, html = email.PaymentFailed(evt.Payload.Username, evt.Payload.OrderID)
		return evt.Payload.Email, subject, text, html, nil

	default:
		return "", "", "", "", nil
	}
}
