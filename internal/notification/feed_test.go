package notification

import (
	"context"
	"fmt"
	"testing"

	"github.com/planweave/planweave/internal/event_bus"
	"github.com/stretchr/testify/assert"
)

func TestFeed_CollectsMutationNotices(t *testing.T) {
	bus := event_bus.NewEventBus()
	feed := NewFeed(bus)
	ctx := context.Background()

	assert.NoError(t, bus.Publish(event_bus.NewEvent(ctx, event_bus.ScheduleEventsCreatedType,
		event_bus.ScheduleEventsCreated{UserId: 1, Count: 3})))
	assert.NoError(t, bus.Publish(event_bus.NewEvent(ctx, event_bus.ScheduleEventUpdatedType,
		event_bus.ScheduleEventUpdated{UserId: 1, UID: "abc", Title: "Standup"})))
	assert.NoError(t, bus.Publish(event_bus.NewEvent(ctx, event_bus.ScheduleEventDeletedType,
		event_bus.ScheduleEventDeleted{UserId: 1, UID: "abc"})))

	got := feed.ForUser(1)
	assert.Len(t, got, 3)
	assert.Equal(t, "Added 3 event(s)", got[0].Message)
	assert.Equal(t, `Updated "Standup"`, got[1].Message)
	assert.Equal(t, "Event deleted", got[2].Message)
}

func TestFeed_IsolatesUsers(t *testing.T) {
	bus := event_bus.NewEventBus()
	feed := NewFeed(bus)
	ctx := context.Background()

	assert.NoError(t, bus.Publish(event_bus.NewEvent(ctx, event_bus.ScheduleEventsCreatedType,
		event_bus.ScheduleEventsCreated{UserId: 1, Count: 1})))

	assert.Len(t, feed.ForUser(1), 1)
	assert.Empty(t, feed.ForUser(2))
}

func TestFeed_CapsPerUserHistory(t *testing.T) {
	bus := event_bus.NewEventBus()
	feed := NewFeed(bus)
	ctx := context.Background()

	for i := 0; i < perUserLimit+10; i++ {
		assert.NoError(t, bus.Publish(event_bus.NewEvent(ctx, event_bus.ScheduleEventsCreatedType,
			event_bus.ScheduleEventsCreated{UserId: 1, Count: i + 1})))
	}

	got := feed.ForUser(1)
	assert.Len(t, got, perUserLimit)
	// Oldest entries are dropped first.
	assert.Equal(t, fmt.Sprintf("Added %d event(s)", perUserLimit+10), got[len(got)-1].Message)
}
