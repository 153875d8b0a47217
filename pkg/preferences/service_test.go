package preferences

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/planweave/planweave/pkg/user"
	"github.com/stretchr/testify/assert"
)

// Test setup helper
func setupServiceTest(t *testing.T) (*ServiceImpl, *RepositoryStub, context.Context) {
	repo := NewRepositoryStub()
	service := NewService(repo)
	ctx := user.WithUser(context.Background(), user.User{Id: 1, Uid: "uid-1", Username: "alice"})
	return service, repo, ctx
}

func TestServiceImpl_GetCurrent(t *testing.T) {
	t.Run("user without a document gets UTC defaults", func(t *testing.T) {
		s, _, ctx := setupServiceTest(t)

		prefs, err := s.GetCurrent(ctx)
		assert.NoError(t, err)
		assert.Equal(t, "UTC", prefs.Timezone)
		assert.Empty(t, prefs.Goals)
		assert.Empty(t, prefs.TimeBlocks)
	})

	t.Run("stored document is returned as-is", func(t *testing.T) {
		s, repo, ctx := setupServiceTest(t)
		stored := Preferences{
			Timezone: "Europe/Warsaw",
			Goals:    []Goal{{Id: "g1", Text: "Sleep before midnight", Enabled: true}},
		}
		assert.NoError(t, repo.Store(ctx, 1, stored))

		prefs, err := s.GetCurrent(ctx)
		assert.NoError(t, err)
		assert.Equal(t, stored, prefs)
	})

	t.Run("no principal is rejected", func(t *testing.T) {
		s, _, _ := setupServiceTest(t)
		_, err := s.GetCurrent(context.Background())
		assert.ErrorIs(t, err, user.ErrNoUser)
	})

	t.Run("storage outage propagates", func(t *testing.T) {
		s, repo, ctx := setupServiceTest(t)
		outage := errors.New("connection refused")
		repo.SetGetError(outage)

		_, err := s.GetCurrent(ctx)
		assert.ErrorIs(t, err, outage)
	})
}

func TestServiceImpl_UpdateCurrent(t *testing.T) {
	t.Run("valid document is stored and ids assigned", func(t *testing.T) {
		s, _, ctx := setupServiceTest(t)

		updated, err := s.UpdateCurrent(ctx, Preferences{
			Timezone: "America/New_York",
			Goals:    []Goal{{Text: "Wake up by 7am", Enabled: true}},
			TimeBlocks: []TimeBlock{{
				Label:    "Deep work",
				Weekdays: []time.Weekday{time.Monday, time.Wednesday},
				StartsAt: "09:00",
				EndsAt:   "12:00",
				Enabled:  true,
			}},
		})
		assert.NoError(t, err)
		assert.NotEmpty(t, updated.Goals[0].Id)
		assert.NotEmpty(t, updated.TimeBlocks[0].Id)

		stored, err := s.GetCurrent(ctx)
		assert.NoError(t, err)
		assert.Equal(t, updated, stored)
	})

	t.Run("unknown timezone is rejected", func(t *testing.T) {
		s, _, ctx := setupServiceTest(t)
		_, err := s.UpdateCurrent(ctx, Preferences{Timezone: "Mars/Olympus_Mons"})
		assert.Error(t, err)
	})

	t.Run("empty goal text is rejected", func(t *testing.T) {
		s, _, ctx := setupServiceTest(t)
		_, err := s.UpdateCurrent(ctx, Preferences{Goals: []Goal{{Text: ""}}})
		assert.Error(t, err)
	})

	t.Run("block without weekdays is rejected", func(t *testing.T) {
		s, _, ctx := setupServiceTest(t)
		_, err := s.UpdateCurrent(ctx, Preferences{TimeBlocks: []TimeBlock{{
			Label:    "Orphan",
			StartsAt: "09:00",
			EndsAt:   "10:00",
		}}})
		assert.Error(t, err)
	})

	t.Run("malformed wall-clock time is rejected", func(t *testing.T) {
		s, _, ctx := setupServiceTest(t)
		_, err := s.UpdateCurrent(ctx, Preferences{TimeBlocks: []TimeBlock{{
			Label:    "Bad clock",
			Weekdays: []time.Weekday{time.Friday},
			StartsAt: "25:99",
			EndsAt:   "10:00",
		}}})
		assert.Error(t, err)
	})

	t.Run("empty timezone defaults to UTC", func(t *testing.T) {
		s, _, ctx := setupServiceTest(t)
		updated, err := s.UpdateCurrent(ctx, Preferences{})
		assert.NoError(t, err)
		assert.Equal(t, "UTC", updated.Timezone)
	})
}

func TestTimeBlock_AppliesOn(t *testing.T) {
	block := TimeBlock{Weekdays: []time.Weekday{time.Monday, time.Friday}}
	assert.True(t, block.AppliesOn(time.Monday))
	assert.False(t, block.AppliesOn(time.Tuesday))
}

func TestClockMinutes(t *testing.T) {
	minutes, err := ClockMinutes("09:30")
	assert.NoError(t, err)
	assert.Equal(t, 570, minutes)

	_, err = ClockMinutes("9:30am")
	assert.Error(t, err)
}
