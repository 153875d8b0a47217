package preferences

import (
	"context"
	"sync"
)

// RepositoryStub is an in-memory Repository for tests.
type RepositoryStub struct {
	mu     sync.RWMutex
	byUser map[int]Preferences
	getErr error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{byUser: make(map[int]Preferences)}
}

// SetGetError makes Get fail with err (storage outage simulation).
func (r *RepositoryStub) SetGetError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getErr = err
}

func (r *RepositoryStub) Get(ctx context.Context, userId int) (Preferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.getErr != nil {
		return Preferences{}, r.getErr
	}
	prefs, ok := r.byUser[userId]
	if !ok {
		return Preferences{}, ErrNoPreferences
	}
	return prefs, nil
}

func (r *RepositoryStub) Store(ctx context.Context, userId int, prefs Preferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[userId] = prefs
	return nil
}
