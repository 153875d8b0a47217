package schedule

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/planweave/planweave/internal/event_bus"
	"github.com/planweave/planweave/pkg/user"
	"github.com/stretchr/testify/assert"
)

// Test setup helper
func setupServiceTest(t *testing.T) (*ServiceImpl, *RepositoryStub, context.Context) {
	repo := NewRepositoryStub()
	service := NewService(repo, nil, nil)
	ctx := user.WithUser(context.Background(), user.User{Id: 1, Uid: "uid-1", Username: "alice"})
	return service, repo, ctx
}

func draft(title string, start time.Time, duration time.Duration) EventDraft {
	return EventDraft{Title: title, StartTime: start, EndTime: start.Add(duration)}
}

func TestServiceImpl_QuerySchedule(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	t.Run("returns events sorted by start instant", func(t *testing.T) {
		s, _, ctx := setupServiceTest(t)
		_, err := s.CreateEvents(ctx, []EventDraft{
			draft("Lunch", start.Add(3*time.Hour), time.Hour),
			draft("Standup", start, 30*time.Minute),
			draft("Review", start.Add(time.Hour), time.Hour),
		})
		assert.NoError(t, err)

		got, err := s.QuerySchedule(ctx, start, start.Add(8*time.Hour))
		assert.NoError(t, err)
		assert.Len(t, got, 3)
		assert.Equal(t, "Standup", got[0].Title)
		assert.Equal(t, "Review", got[1].Title)
		assert.Equal(t, "Lunch", got[2].Title)
	})

	t.Run("range bounds are inclusive on start instant", func(t *testing.T) {
		s, _, ctx := setupServiceTest(t)
		_, err := s.CreateEvents(ctx, []EventDraft{draft("Edge", start, time.Hour)})
		assert.NoError(t, err)

		got, err := s.QuerySchedule(ctx, start, start)
		assert.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("empty range yields empty slice, not error", func(t *testing.T) {
		s, _, ctx := setupServiceTest(t)
		got, err := s.QuerySchedule(ctx, start, start.Add(time.Hour))
		assert.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("start after end is rejected", func(t *testing.T) {
		s, _, ctx := setupServiceTest(t)
		_, err := s.QuerySchedule(ctx, start.Add(time.Hour), start)
		assert.ErrorIs(t, err, ErrInvalidRange)
	})

	t.Run("no principal is rejected", func(t *testing.T) {
		s, _, _ := setupServiceTest(t)
		_, err := s.QuerySchedule(context.Background(), start, start.Add(time.Hour))
		assert.ErrorIs(t, err, user.ErrNoUser)
	})
}

func TestServiceImpl_CreateEvents(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	t.Run("stores the whole batch", func(t *testing.T) {
		s, repo, ctx := setupServiceTest(t)
		count, err := s.CreateEvents(ctx, []EventDraft{
			draft("One", start, time.Hour),
			draft("Two", start.Add(time.Hour), time.Hour),
		})
		assert.NoError(t, err)
		assert.Equal(t, 2, count)
		assert.Len(t, repo.AllEvents(), 2)
	})

	t.Run("one invalid event fails the batch and stores nothing", func(t *testing.T) {
		s, repo, ctx := setupServiceTest(t)
		_, err := s.CreateEvents(ctx, []EventDraft{
			draft("Valid", start, time.Hour),
			{Title: "Backwards", StartTime: start.Add(time.Hour), EndTime: start},
			draft("Also valid", start.Add(2*time.Hour), time.Hour),
		})
		assert.ErrorIs(t, err, ErrInvalidEvent)
		assert.Empty(t, repo.AllEvents())
	})

	t.Run("empty batch is invalid", func(t *testing.T) {
		s, _, ctx := setupServiceTest(t)
		_, err := s.CreateEvents(ctx, []EventDraft{})
		assert.ErrorIs(t, err, ErrInvalidEvent)
	})

	t.Run("missing title is invalid", func(t *testing.T) {
		s, _, ctx := setupServiceTest(t)
		_, err := s.CreateEvents(ctx, []EventDraft{{StartTime: start, EndTime: start.Add(time.Hour)}})
		assert.ErrorIs(t, err, ErrInvalidEvent)
	})

	t.Run("zero-length event is invalid", func(t *testing.T) {
		s, _, ctx := setupServiceTest(t)
		_, err := s.CreateEvents(ctx, []EventDraft{draft("Instant", start, 0)})
		assert.ErrorIs(t, err, ErrInvalidEvent)
	})

	t.Run("source defaults to ai", func(t *testing.T) {
		s, repo, ctx := setupServiceTest(t)
		_, err := s.CreateEvents(ctx, []EventDraft{draft("Planned", start, time.Hour)})
		assert.NoError(t, err)
		assert.Equal(t, SourceAI, repo.AllEvents()[0].Source)
	})

	t.Run("policy rejection stores nothing", func(t *testing.T) {
		repo := NewRepositoryStub()
		policyErr := fmt.Errorf("%w: overlaps busy block", ErrInvalidEvent)
		s := NewService(repo, rejectAllPolicy{err: policyErr}, nil)
		ctx := user.WithUser(context.Background(), user.User{Id: 1, Uid: "uid-1", Username: "alice"})

		_, err := s.CreateEvents(ctx, []EventDraft{draft("Blocked", start, time.Hour)})
		assert.ErrorIs(t, err, ErrInvalidEvent)
		assert.Empty(t, repo.AllEvents())
	})

	t.Run("storage outage surfaces as store unavailable", func(t *testing.T) {
		s, repo, ctx := setupServiceTest(t)
		repo.SetStoreError(fmt.Errorf("%w: connection refused", ErrStoreUnavailable))
		_, err := s.CreateEvents(ctx, []EventDraft{draft("Unlucky", start, time.Hour)})
		assert.ErrorIs(t, err, ErrStoreUnavailable)
	})

	t.Run("publishes a created notification", func(t *testing.T) {
		repo := NewRepositoryStub()
		bus := event_bus.NewEventBus()
		var received event_bus.ScheduleEventsCreated
		event_bus.SubscribeTyped(bus, event_bus.ScheduleEventsCreatedType, func(e event_bus.EventT[event_bus.ScheduleEventsCreated]) error {
			received = e.Data
			return nil
		})
		s := NewService(repo, nil, bus)
		ctx := user.WithUser(context.Background(), user.User{Id: 7, Uid: "uid-7", Username: "bob"})

		_, err := s.CreateEvents(ctx, []EventDraft{
			draft("One", start, time.Hour),
			draft("Two", start.Add(time.Hour), time.Hour),
		})
		assert.NoError(t, err)
		assert.Equal(t, 7, received.UserId)
		assert.Equal(t, 2, received.Count)
	})
}

func TestServiceImpl_UpdateEvent(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	seed := func(t *testing.T, s *ServiceImpl, repo *RepositoryStub, ctx context.Context) Event {
		_, err := s.CreateEvents(ctx, []EventDraft{{
			Title:     "Original",
			StartTime: start,
			EndTime:   start.Add(time.Hour),
			Memo:      "bring laptop",
		}})
		assert.NoError(t, err)
		return repo.AllEvents()[0]
	}

	t.Run("patching the title leaves times and memo untouched", func(t *testing.T) {
		s, repo, ctx := setupServiceTest(t)
		existing := seed(t, s, repo, ctx)

		newTitle := "Renamed"
		updated, err := s.UpdateEvent(ctx, existing.UID, EventPatch{Title: &newTitle})
		assert.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Title)
		assert.Equal(t, existing.StartTime, updated.StartTime)
		assert.Equal(t, existing.EndTime, updated.EndTime)
		assert.Equal(t, "bring laptop", updated.Memo)
	})

	t.Run("memo can be cleared explicitly", func(t *testing.T) {
		s, repo, ctx := setupServiceTest(t)
		existing := seed(t, s, repo, ctx)

		empty := ""
		updated, err := s.UpdateEvent(ctx, existing.UID, EventPatch{Memo: &empty})
		assert.NoError(t, err)
		assert.Equal(t, "", updated.Memo)
		assert.Equal(t, existing.Title, updated.Title)
	})

	t.Run("patch producing an inverted span is rejected and nothing changes", func(t *testing.T) {
		s, repo, ctx := setupServiceTest(t)
		existing := seed(t, s, repo, ctx)

		badEnd := existing.StartTime.Add(-time.Minute)
		_, err := s.UpdateEvent(ctx, existing.UID, EventPatch{EndTime: &badEnd})
		assert.ErrorIs(t, err, ErrInvalidEvent)

		unchanged, err := s.repo.GetEvent(ctx, 1, existing.UID)
		assert.NoError(t, err)
		assert.Equal(t, existing.EndTime, unchanged.EndTime)
	})

	t.Run("empty patch is a no-op that returns the event", func(t *testing.T) {
		s, repo, ctx := setupServiceTest(t)
		existing := seed(t, s, repo, ctx)

		updated, err := s.UpdateEvent(ctx, existing.UID, EventPatch{})
		assert.NoError(t, err)
		assert.Equal(t, existing, updated)
	})

	t.Run("unknown id reports not found", func(t *testing.T) {
		s, _, ctx := setupServiceTest(t)
		title := "Whatever"
		_, err := s.UpdateEvent(ctx, uuid.New(), EventPatch{Title: &title})
		assert.ErrorIs(t, err, ErrEventNotFound)
	})

	t.Run("another user's event is invisible", func(t *testing.T) {
		s, repo, ctx := setupServiceTest(t)
		existing := seed(t, s, repo, ctx)

		otherCtx := user.WithUser(context.Background(), user.User{Id: 2, Uid: "uid-2", Username: "mallory"})
		title := "Hijacked"
		_, err := s.UpdateEvent(otherCtx, existing.UID, EventPatch{Title: &title})
		assert.ErrorIs(t, err, ErrEventNotFound)
	})
}

func TestServiceImpl_DeleteEvent(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	t.Run("deletes and then reports not found on the second attempt", func(t *testing.T) {
		s, repo, ctx := setupServiceTest(t)
		_, err := s.CreateEvents(ctx, []EventDraft{draft("Doomed", start, time.Hour)})
		assert.NoError(t, err)
		uid := repo.AllEvents()[0].UID

		assert.NoError(t, s.DeleteEvent(ctx, uid))
		assert.ErrorIs(t, s.DeleteEvent(ctx, uid), ErrEventNotFound)
	})

	t.Run("another user's event is invisible", func(t *testing.T) {
		s, repo, ctx := setupServiceTest(t)
		_, err := s.CreateEvents(ctx, []EventDraft{draft("Private", start, time.Hour)})
		assert.NoError(t, err)
		uid := repo.AllEvents()[0].UID

		otherCtx := user.WithUser(context.Background(), user.User{Id: 2, Uid: "uid-2", Username: "mallory"})
		assert.ErrorIs(t, s.DeleteEvent(otherCtx, uid), ErrEventNotFound)
		assert.Len(t, repo.AllEvents(), 1)
	})
}

type rejectAllPolicy struct {
	err error
}

func (p rejectAllPolicy) CheckEvents(ctx context.Context, drafts []EventDraft) error {
	return p.err
}
