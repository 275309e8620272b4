// Package rabbit wraps the amqp091 client with the topology every service
// shares: one topic exchange for events, one for delayed retries and a DLX,
// with a queue-per-consumer plus its DLQ.
package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeEvents = "ecommerce.events"
	ExchangeRetry  = "ecommerce.retry"
	ExchangeDLX    = "ecommerce.dlx"

	publishTimeout = 5 * time.Second
	attemptsHeader = "x-attempts"
)

type Conn struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func Connect(url string) (*Conn, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	return &Conn{Conn: conn, Ch: ch}, nil
}

func (c *Conn) Close() error {
	if c.Ch != nil {
		_ = c.Ch.Close()
	}
	if c.Conn != nil {
		return c.Conn.Close()
	}
	return nil
}

// DeclareBase declares the three shared topic exchanges. Idempotent, every
// binary calls it on startup.
func DeclareBase(ch *amqp.Channel) error {
	for _, name := range []string{ExchangeEvents, ExchangeRetry, ExchangeDLX} {
		if err := ch.ExchangeDeclare(name, "topic", true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare exchange %s: %w", name, err)
		}
	}
	return nil
}

// QueueSpec describes one consumer queue: its event bindings and the DLX
// routing key its poison messages are parked under.
type QueueSpec struct {
	Name     string
	BindKeys []string
	DLQKey   string
	Prefetch int
}

// Declare creates <Name>.dlq bound to the DLX, then Name itself dead-lettering
// into it, bound to every BindKey on the events exchange.
func (s QueueSpec) Declare(ch *amqp.Channel) error {
	if s.Prefetch > 0 {
		_ = ch.Qos(s.Prefetch, 0, false)
	}

	dlq := s.Name + ".dlq"
	if _, err := ch.QueueDeclare(dlq, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s: %w", dlq, err)
	}
	if err := ch.QueueBind(dlq, s.DLQKey, ExchangeDLX, false, nil); err != nil {
		return fmt.Errorf("bind %s: %w", dlq, err)
	}

	if _, err := ch.QueueDeclare(s.Name, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    ExchangeDLX,
		"x-dead-letter-routing-key": s.DLQKey,
	}); err != nil {
		return fmt.Errorf("declare %s: %w", s.Name, err)
	}
	for _, key := range s.BindKeys {
		if err := ch.QueueBind(s.Name, key, ExchangeEvents, false, nil); err != nil {
			return fmt.Errorf("bind %s to %s: %w", s.Name, key, err)
		}
	}
	return nil
}

// DeclareRetryQueue creates a parking queue bound to the retry exchange.
// Messages sit there for ttlMs, then dead-letter back onto the events
// exchange under their original routing key.
func DeclareRetryQueue(ch *amqp.Channel, name, retryRoutingKey, originalRoutingKey string, ttlMs int) error {
	if _, err := ch.QueueDeclare(name, true, false, false, false, amqp.Table{
		"x-message-ttl":             int32(ttlMs),
		"x-dead-letter-exchange":    ExchangeEvents,
		"x-dead-letter-routing-key": originalRoutingKey,
	}); err != nil {
		return fmt.Errorf("declare %s: %w", name, err)
	}
	return ch.QueueBind(name, retryRoutingKey, ExchangeRetry, false, nil)
}

type Publisher struct {
	ch       *amqp.Channel
	exchange string
}

func NewPublisher(ch *amqp.Channel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange}
}

func (p *Publisher) Publish(ctx context.Context, routingKey string, body []byte, headers amqp.Table) error {
	return p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
		Headers:     headers,
		Timestamp:   time.Now(),
	})
}

func (p *Publisher) PublishJSON(ctx context.Context, routingKey string, v any, headers amqp.Table) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.Publish(ctx, routingKey, body, headers)
}

type Consumer struct{ ch *amqp.Channel }

func NewConsumer(ch *amqp.Channel) *Consumer { return &Consumer{ch: ch} }

// Consume starts manual-ack delivery from the queue.
func (c *Consumer) Consume(queue string, prefetch int) (<-chan amqp.Delivery, error) {
	if prefetch > 0 {
		_ = c.ch.Qos(prefetch, 0, false)
	}
	return c.ch.Consume(queue, "", false, false, false, false, nil)
}

func WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, publishTimeout)
}

func attempts(h amqp.Table) int32 {
	switch v := h[attemptsHeader].(type) {
	case int32:
		return v
	case int64:
		return int32(v)
	case int:
		return int32(v)
	default:
		return 0
	}
}

// RetryOrDLQ acks the delivery and republishes it: to the retry exchange under
// "<service>.<routing key>" while attempts remain, to the DLX under dlqKey once
// maxAttempts is exceeded. maxAttempts of 0 dead-letters immediately.
func RetryOrDLQ(ctx context.Context, d amqp.Delivery, service string, maxAttempts int32, retryPub, dlqPub *Publisher, dlqKey string) error {
	n := attempts(d.Headers) + 1

	headers := amqp.Table{}
	for k, v := range d.Headers {
		headers[k] = v
	}
	headers[attemptsHeader] = n

	pubCtx, cancel := WithTimeout(ctx)
	defer cancel()

	_ = d.Ack(false)
	if n <= maxAttempts {
		return retryPub.Publish(pubCtx, service+"."+d.RoutingKey, d.Body, headers)
	}
	return dlqPub.Publish(pubCtx, dlqKey, d.Body, headers)
}
