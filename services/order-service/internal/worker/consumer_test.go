package worker

import (
	"context"
	"encoding/json"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecommerce-backend/services/order-service/internal/domain"
	"ecommerce-backend/services/order-service/internal/repo"
	"ecommerce-backend/shared/pkg/models"
)

type fakeAcker struct {
	acked  int
	nacked int
}

func (f *fakeAcker) Ack(uint64, bool) error          { f.acked++; return nil }
func (f *fakeAcker) Nack(uint64, bool, bool) error   { f.nacked++; return nil }
func (f *fakeAcker) Reject(uint64, bool) error       { f.nacked++; return nil }

func paymentDelivery(t *testing.T, acker amqp.Acknowledger, eventID, orderID string) amqp.Delivery {
	t.Helper()
	evt := models.Event[models.PaymentCompletedPayload]{
		ID:      eventID,
		Type:    models.EventPaymentCompleted,
		Version: 1,
		Payload: models.PaymentCompletedPayload{OrderID: orderID, UserID: "user-1"},
	}
	body, err := json.Marshal(evt)
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: acker, Body: body, RoutingKey: evt.Type}
}

func TestConsumer_PaymentCompletedConfirmsOrder(t *testing.T) {
	store := repo.NewMemory()
	id := store.Seed(domain.Order{UserID: "user-1", Status: domain.StatusPending})
	acker := &fakeAcker{}
	c := &Consumer{Log: zerolog.Nop(), Store: store}

	c.handle(context.Background(), paymentDelivery(t, acker, "evt-1", id))

	got, err := store.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, got.Status)
	assert.Equal(t, 1, acker.acked)
}

func TestConsumer_DuplicateEventIgnored(t *testing.T) {
	store := repo.NewMemory()
	id := store.Seed(domain.Order{UserID: "user-1", Status: domain.StatusPending})
	acker := &fakeAcker{}
	c := &Consumer{Log: zerolog.Nop(), Store: store}

	c.handle(context.Background(), paymentDelivery(t, acker, "evt-1", id))
	c.handle(context.Background(), paymentDelivery(t, acker, "evt-1", id))

	got, _ := store.FindByID(context.Background(), id)
	assert.Equal(t, domain.StatusConfirmed, got.Status)
	assert.Equal(t, 2, acker.acked)
}

func TestConsumer_LatePaymentCannotReopenCancelledOrder(t *testing.T) {
	store := repo.NewMemory()
	id := store.Seed(domain.Order{UserID: "user-1", Status: domain.StatusCancelled})
	acker := &fakeAcker{}
	c := &Consumer{Log: zerolog.Nop(), Store: store}

	c.handle(context.Background(), paymentDelivery(t, acker, "evt-1", id))

	got, _ := store.FindByID(context.Background(), id)
	assert.Equal(t, domain.StatusCancelled, got.Status)
	assert.Equal(t, 1, acker.acked, "acked without retry")
}

func TestConsumer_UnknownOrderDropped(t *testing.T) {
	acker := &fakeAcker{}
	c := &Consumer{Log: zerolog.Nop(), Store: repo.NewMemory()}

	c.handle(context.Background(), paymentDelivery(t, acker, "evt-1", "missing-order"))
	assert.Equal(t, 1, acker.acked)
}
