package preferences

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/planweave/planweave/pkg/user"
)

type Service interface {
	GetCurrent(ctx context.Context) (Preferences, error)
	UpdateCurrent(ctx context.Context, prefs Preferences) (Preferences, error)
}

type ServiceImpl struct {
	repo Repository
}

func NewService(repo Repository) *ServiceImpl {
	return &ServiceImpl{repo: repo}
}

// GetCurrent returns the caller's preferences. A user without a stored
// document gets empty defaults (UTC, no goals, no blocks) rather than an
// error.
func (s *ServiceImpl) GetCurrent(ctx context.Context) (Preferences, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Preferences{}, fmt.Errorf("failed to get current user: %w", err)
	}

	prefs, err := s.repo.Get(ctx, userId)
	if errors.Is(err, ErrNoPreferences) {
		return Preferences{Timezone: "UTC"}, nil
	} else if err != nil {
		return Preferences{}, err
	}
	if prefs.Timezone == "" {
		prefs.Timezone = "UTC"
	}
	return prefs, nil
}

// UpdateCurrent validates and stores the full preferences document. Goals and
// blocks without ids get one assigned so later edits can address them.
func (s *ServiceImpl) UpdateCurrent(ctx context.Context, prefs Preferences) (Preferences, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Preferences{}, fmt.Errorf("failed to get current user: %w", err)
	}

	if err := validate(&prefs); err != nil {
		return Preferences{}, err
	}

	if err := s.repo.Store(ctx, userId, prefs); err != nil {
		return Preferences{}, err
	}
	return prefs, nil
}

func validate(prefs *Preferences) error {
	if prefs.Timezone == "" {
		prefs.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(prefs.Timezone); err != nil {
		return fmt.Errorf("unknown timezone %q: %w", prefs.Timezone, err)
	}

	for i := range prefs.Goals {
		if prefs.Goals[i].Text == "" {
			return fmt.Errorf("goal %d: text must not be empty", i+1)
		}
		if prefs.Goals[i].Id == "" {
			prefs.Goals[i].Id = uuid.New().String()
		}
	}

	for i := range prefs.TimeBlocks {
		block := &prefs.TimeBlocks[i]
		if block.Label == "" {
			return fmt.Errorf("time block %d: label must not be empty", i+1)
		}
		if len(block.Weekdays) == 0 {
			return fmt.Errorf("time block %d: at least one weekday required", i+1)
		}
		if _, err := ClockMinutes(block.StartsAt); err != nil {
			return fmt.Errorf("time block %d: %w", i+1, err)
		}
		if _, err := ClockMinutes(block.EndsAt); err != nil {
			return fmt.Errorf("time block %d: %w", i+1, err)
		}
		if block.Id == "" {
			block.Id = uuid.New().String()
		}
	}
	return nil
}
