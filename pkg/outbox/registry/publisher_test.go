package registry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/expresskart/expresskart-backend/pkg/config"
	"github.com/expresskart/expresskart-backend/pkg/db/models"
	"github.com/expresskart/expresskart-backend/pkg/enums"
	"github.com/expresskart/expresskart-backend/pkg/outbox"
	"github.com/expresskart/expresskart-backend/pkg/outbox/payloads"
)

func TestEventRegistryResolveSuccess(t *testing.T) {
	reg := newTestEventRegistry(t)
	orderID := uuid.New()

	event := models.OutboxEvent{
		EventType:     enums.EventOrderCreated,
		AggregateType: enums.AggregateOrder,
		AggregateID:   orderID,
		Payload: mustEnvelope(t, payloads.OrderCreatedEvent{
			OrderID:       orderID,
			OrderNumber:   "EK2504150001",
			Total:         decimal.NewFromInt(350),
			PaymentMethod: enums.PaymentMethodCOD,
		}),
	}

	resolved, err := reg.Resolve(event)
	require.NoError(t, err)
	require.Equal(t, "orders-topic", resolved.Descriptor.Topic)
	payload, ok := resolved.Payload.(*payloads.OrderCreatedEvent)
	require.True(t, ok, "unexpected payload type %T", resolved.Payload)
	require.Equal(t, "EK2504150001", payload.OrderNumber)
	require.True(t, payload.Total.Equal(decimal.NewFromInt(350)))
	require.NotEmpty(t, resolved.Envelope.EventID)
}

func TestEventRegistryResolveRejectsBadRows(t *testing.T) {
	reg := newTestEventRegistry(t)
	valid := mustEnvelope(t, payloads.OrderCancelledEvent{OrderID: uuid.New()})

	cases := map[string]models.OutboxEvent{
		"unknown type": {EventType: "mystery", AggregateType: enums.AggregateOrder, AggregateID: uuid.New(), Payload: valid},
		"aggregate":    {EventType: enums.EventOrderCancelled, AggregateType: "vendor", AggregateID: uuid.New(), Payload: valid},
		"missing id":   {EventType: enums.EventOrderCancelled, AggregateType: enums.AggregateOrder, Payload: valid},
		"bad envelope": {EventType: enums.EventOrderCancelled, AggregateType: enums.AggregateOrder, AggregateID: uuid.New(), Payload: json.RawMessage(`{`)},
		"null data": {EventType: enums.EventOrderCancelled, AggregateType: enums.AggregateOrder, AggregateID: uuid.New(),
			Payload: json.RawMessage(`{"version":1,"eventId":"x","data":null}`)},
	}
	for name, event := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := reg.Resolve(event)
			var nonRetry NonRetryableError
			require.True(t, errors.As(err, &nonRetry), "expected non-retryable, got %v", err)
		})
	}
}

func TestNewEventRegistryRequiresTopic(t *testing.T) {
	_, err := NewEventRegistry(config.PubSubConfig{})
	require.Error(t, err)
}

func newTestEventRegistry(t *testing.T) *EventRegistry {
	t.Helper()
	reg, err := NewEventRegistry(config.PubSubConfig{OrdersTopic: "orders-topic"})
	require.NoError(t, err)
	return reg
}

func mustEnvelope(t *testing.T, data any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	env, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now().UTC(),
		Data:       raw,
	})
	require.NoError(t, err)
	return env
}
