package event_bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

const testEventType EventType = "test.event"

func TestEventBus_PublishReachesSubscribers(t *testing.T) {
	bus := NewEventBus()
	received := 0
	bus.Subscribe(testEventType, func(e Event) error {
		received++
		return nil
	})

	assert.NoError(t, bus.Publish(NewEvent(context.Background(), testEventType, "payload")))
	assert.Equal(t, 1, received)
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus()
	received := 0
	unsubscribe := bus.Subscribe(testEventType, func(e Event) error {
		received++
		return nil
	})

	assert.NoError(t, bus.Publish(NewEvent(context.Background(), testEventType, nil)))
	unsubscribe()
	assert.NoError(t, bus.Publish(NewEvent(context.Background(), testEventType, nil)))

	assert.Equal(t, 1, received)
}

func TestEventBus_HandlerErrorIsReported(t *testing.T) {
	bus := NewEventBus()
	bus.Subscribe(testEventType, func(e Event) error {
		return errors.New("handler failed")
	})

	err := bus.Publish(NewEvent(context.Background(), testEventType, nil))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "handler failed")
}

func TestEventBus_HandlerPanicIsRecovered(t *testing.T) {
	bus := NewEventBus()
	bus.Subscribe(testEventType, func(e Event) error {
		panic("boom")
	})

	err := bus.Publish(NewEvent(context.Background(), testEventType, nil))
	assert.Error(t, err)
}

func TestEventBus_CancelledContextSkipsHandlers(t *testing.T) {
	bus := NewEventBus()
	received := 0
	bus.Subscribe(testEventType, func(e Event) error {
		received++
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := bus.Publish(NewEvent(ctx, testEventType, nil))
	assert.Error(t, err)
	assert.Equal(t, 0, received)
}

func TestSubscribeTyped(t *testing.T) {
	type payload struct {
		Value int
	}

	t.Run("matching payload type is delivered", func(t *testing.T) {
		bus := NewEventBus()
		var got payload
		SubscribeTyped(bus, testEventType, func(e EventT[payload]) error {
			got = e.Data
			return nil
		})

		assert.NoError(t, bus.Publish(NewEvent(context.Background(), testEventType, payload{Value: 42})))
		assert.Equal(t, 42, got.Value)
	})

	t.Run("mismatched payload type is skipped without error", func(t *testing.T) {
		bus := NewEventBus()
		called := false
		SubscribeTyped(bus, testEventType, func(e EventT[payload]) error {
			called = true
			return nil
		})

		assert.NoError(t, bus.Publish(NewEvent(context.Background(), testEventType, "not a payload")))
		assert.False(t, called)
	})
}
