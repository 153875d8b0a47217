package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/planweave/planweave/internal/event_bus"
	"github.com/planweave/planweave/pkg/user"
	log "github.com/sirupsen/logrus"
)

// ConflictPolicy inspects a validated batch before it is persisted. An
// implementation may reject the whole batch (hard enforcement of busy
// blocks) or always return nil (advisory mode).
type ConflictPolicy interface {
	CheckEvents(ctx context.Context, drafts []EventDraft) error
}

type Service interface {
	QuerySchedule(ctx context.Context, from, to time.Time) ([]Event, error)
	CreateEvents(ctx context.Context, drafts []EventDraft) (int, error)
	UpdateEvent(ctx context.Context, uid uuid.UUID, patch EventPatch) (Event, error)
	DeleteEvent(ctx context.Context, uid uuid.UUID) error
}

type ServiceImpl struct {
	repo   Repository
	policy ConflictPolicy
	bus    *event_bus.EventBus
}

// NewService builds the schedule service. policy and bus may be nil: no
// policy means busy blocks stay advisory, no bus means no UI notifications.
func NewService(repo Repository, policy ConflictPolicy, bus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, policy: policy, bus: bus}
}

// QuerySchedule returns the caller's events starting within [from, to],
// ascending by start instant. Read-only.
func (s *ServiceImpl) QuerySchedule(ctx context.Context, from, to time.Time) ([]Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if from.After(to) {
		return nil, fmt.Errorf("%w: start %s is after end %s", ErrInvalidRange, from.Format(time.RFC3339), to.Format(time.RFC3339))
	}
	return s.repo.GetEventsStartingBetween(ctx, userId, from, to)
}

// CreateEvents validates and persists a batch as a single atomic insert.
// Any invalid element fails the whole call and nothing is stored, so the
// caller can safely retry the identical batch.
func (s *ServiceImpl) CreateEvents(ctx context.Context, drafts []EventDraft) (int, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get current user: %w", err)
	}
	if len(drafts) == 0 {
		return 0, fmt.Errorf("%w: empty batch", ErrInvalidEvent)
	}

	for i := range drafts {
		if drafts[i].Source == "" {
			drafts[i].Source = SourceAI
		}
		if err := validateSpan(drafts[i].Title, drafts[i].StartTime, drafts[i].EndTime); err != nil {
			return 0, fmt.Errorf("event %d: %w", i+1, err)
		}
	}

	if s.policy != nil {
		if err := s.policy.CheckEvents(ctx, drafts); err != nil {
			return 0, err
		}
	}

	created, err := s.repo.StoreEvents(ctx, userId, drafts)
	if err != nil {
		return 0, fmt.Errorf("failed to store events: %w", err)
	}

	s.publish(ctx, event_bus.ScheduleEventsCreatedType, event_bus.ScheduleEventsCreated{
		UserId: userId,
		Count:  len(created),
	})
	return len(created), nil
}

// UpdateEvent applies a sparse patch: only non-nil fields change. The
// resulting event must still satisfy the span invariant.
func (s *ServiceImpl) UpdateEvent(ctx context.Context, uid uuid.UUID, patch EventPatch) (Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Event{}, fmt.Errorf("failed to get current user: %w", err)
	}

	event, err := s.repo.GetEvent(ctx, userId, uid)
	if err != nil {
		return Event{}, err
	}

	if patch.Title != nil {
		event.Title = *patch.Title
	}
	if patch.StartTime != nil {
		event.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		event.EndTime = *patch.EndTime
	}
	if patch.Memo != nil {
		event.Memo = *patch.Memo
	}

	if err := validateSpan(event.Title, event.StartTime, event.EndTime); err != nil {
		return Event{}, err
	}

	if err := s.repo.UpdateEvent(ctx, userId, event); err != nil {
		return Event{}, err
	}

	s.publish(ctx, event_bus.ScheduleEventUpdatedType, event_bus.ScheduleEventUpdated{
		UserId: userId,
		UID:    uid.String(),
		Title:  event.Title,
	})
	return event, nil
}

// DeleteEvent removes the event. A second delete of the same id reports
// ErrEventNotFound rather than silently succeeding, so the agent can detect
// double invocation.
func (s *ServiceImpl) DeleteEvent(ctx context.Context, uid uuid.UUID) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	if err := s.repo.DeleteEvent(ctx, userId, uid); err != nil {
		return err
	}

	s.publish(ctx, event_bus.ScheduleEventDeletedType, event_bus.ScheduleEventDeleted{
		UserId: userId,
		UID:    uid.String(),
	})
	return nil
}

func validateSpan(title string, start, end time.Time) error {
	if title == "" {
		return fmt.Errorf("%w: title must not be empty", ErrInvalidEvent)
	}
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start and end are required", ErrInvalidEvent)
	}
	if !end.After(start) {
		return fmt.Errorf("%w: end must be after start", ErrInvalidEvent)
	}
	return nil
}

func (s *ServiceImpl) publish(ctx context.Context, eventType event_bus.EventType, data any) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(event_bus.NewEvent(ctx, eventType, data)); err != nil {
		// Notification delivery never fails the mutation.
		log.Warnf("failed to publish %s: %v", eventType, err)
	}
}
