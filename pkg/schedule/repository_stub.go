package schedule

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RepositoryStub is an in-memory Repository for tests. Batch inserts either
// fully apply or, when a forced error is set, leave the store untouched.
type RepositoryStub struct {
	mu       sync.RWMutex
	items    map[uuid.UUID]Event
	owners   map[uuid.UUID]int
	storeErr error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		items:  make(map[uuid.UUID]Event),
		owners: make(map[uuid.UUID]int),
	}
}

// SetStoreError makes every subsequent call fail with err (storage outage
// simulation). Pass nil to recover.
func (r *RepositoryStub) SetStoreError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.storeErr = err
}

func (r *RepositoryStub) StoreEvents(ctx context.Context, userId int, drafts []EventDraft) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.storeErr != nil {
		return nil, r.storeErr
	}

	events := make([]Event, 0, len(drafts))
	for _, draft := range drafts {
		event := Event{
			UID:       uuid.New(),
			Title:     draft.Title,
			StartTime: draft.StartTime,
			EndTime:   draft.EndTime,
			Memo:      draft.Memo,
			Source:    draft.Source,
		}
		r.items[event.UID] = event
		r.owners[event.UID] = userId
		events = append(events, event)
	}
	return events, nil
}

func (r *RepositoryStub) GetEventsStartingBetween(ctx context.Context, userId int, from, to time.Time) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.storeErr != nil {
		return nil, r.storeErr
	}

	result := make([]Event, 0)
	for uid, event := range r.items {
		if r.owners[uid] != userId {
			continue
		}
		if event.StartTime.Before(from) || event.StartTime.After(to) {
			continue
		}
		result = append(result, event)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartTime.Before(result[j].StartTime)
	})
	return result, nil
}

func (r *RepositoryStub) GetEvent(ctx context.Context, userId int, uid uuid.UUID) (Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.storeErr != nil {
		return Event{}, r.storeErr
	}

	event, ok := r.items[uid]
	if !ok || r.owners[uid] != userId {
		return Event{}, ErrEventNotFound
	}
	return event, nil
}

func (r *RepositoryStub) UpdateEvent(ctx context.Context, userId int, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.storeErr != nil {
		return r.storeErr
	}

	if _, ok := r.items[event.UID]; !ok || r.owners[event.UID] != userId {
		return ErrEventNotFound
	}
	r.items[event.UID] = event
	return nil
}

func (r *RepositoryStub) DeleteEvent(ctx context.Context, userId int, uid uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.storeErr != nil {
		return r.storeErr
	}

	if _, ok := r.items[uid]; !ok || r.owners[uid] != userId {
		return ErrEventNotFound
	}
	delete(r.items, uid)
	delete(r.owners, uid)
	return nil
}

// AllEvents returns every stored event regardless of owner (test assertions).
func (r *RepositoryStub) AllEvents() []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Event, 0, len(r.items))
	for _, event := range r.items {
		result = append(result, event)
	}
	return result
}
