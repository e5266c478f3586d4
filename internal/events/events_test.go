package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishJSONDeliversToSubscribers(t *testing.T) {
	bus := NewEventBus()

	var received []*Event
	bus.Subscribe(EventBookingCancelled, func(e *Event) error {
		received = append(received, e)
		return nil
	})

	err := bus.PublishJSON(EventBookingCancelled, BookingEventPayload{
		BookingID: 42,
		Reference: "TB-2025-0042",
		Status:    "cancelled",
		Reason:    "weather advisory",
	})
	require.NoError(t, err)

	require.Len(t, received, 1)
	assert.Equal(t, EventBookingCancelled, received[0].Type)
	assert.False(t, received[0].CreatedAt.IsZero())

	var payload BookingEventPayload
	require.NoError(t, json.Unmarshal(received[0].Payload, &payload))
	assert.Equal(t, int64(42), payload.BookingID)
	assert.Equal(t, "weather advisory", payload.Reason)
}

func TestPublishSkipsOtherTypes(t *testing.T) {
	bus := NewEventBus()

	calls := 0
	bus.Subscribe(EventInvoiceRendered, func(e *Event) error {
		calls++
		return nil
	})

	require.NoError(t, bus.PublishJSON(EventBookingRecovered, BookingEventPayload{BookingID: 1}))
	assert.Zero(t, calls)
}

func TestPublishJSONOnNilBus(t *testing.T) {
	var bus *EventBus
	assert.NoError(t, bus.PublishJSON(EventBookingCancelled, nil))
}
