package notification

import (
	"fmt"
	"sync"
	"time"

	"github.com/planweave/planweave/internal/event_bus"
)

const perUserLimit = 50

// Notification is a short, user-visible notice about a mutation performed on
// the user's calendar (typically by the agent).
type Notification struct {
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Feed keeps the most recent notifications per user in memory. It subscribes
// to the schedule mutation events on the bus; losing the feed on restart is
// acceptable, these are transient UI notices.
type Feed struct {
	mu     sync.RWMutex
	byUser map[int][]Notification
}

func NewFeed(bus *event_bus.EventBus) *Feed {
	f := &Feed{byUser: make(map[int][]Notification)}

	event_bus.SubscribeTyped[event_bus.ScheduleEventsCreated](bus, event_bus.ScheduleEventsCreatedType,
		func(e event_bus.EventT[event_bus.ScheduleEventsCreated]) error {
			f.add(e.Data.UserId, fmt.Sprintf("Added %d event(s)", e.Data.Count))
			return nil
		})
	event_bus.SubscribeTyped[event_bus.ScheduleEventUpdated](bus, event_bus.ScheduleEventUpdatedType,
		func(e event_bus.EventT[event_bus.ScheduleEventUpdated]) error {
			f.add(e.Data.UserId, fmt.Sprintf("Updated %q", e.Data.Title))
			return nil
		})
	event_bus.SubscribeTyped[event_bus.ScheduleEventDeleted](bus, event_bus.ScheduleEventDeletedType,
		func(e event_bus.EventT[event_bus.ScheduleEventDeleted]) error {
			f.add(e.Data.UserId, "Event deleted")
			return nil
		})

	return f
}

func (f *Feed) add(userId int, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries := append(f.byUser[userId], Notification{Message: message, CreatedAt: time.Now()})
	if len(entries) > perUserLimit {
		entries = entries[len(entries)-perUserLimit:]
	}
	f.byUser[userId] = entries
}

// ForUser returns the user's notifications, newest last.
func (f *Feed) ForUser(userId int) []Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()

	entries := f.byUser[userId]
	out := make([]Notification, len(entries))
	copy(out, entries)
	return out
}
