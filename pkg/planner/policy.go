package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/planweave/planweave/pkg/preferences"
	"github.com/planweave/planweave/pkg/schedule"
	log "github.com/sirupsen/logrus"
)

// PolicyEnforcer rejects event batches that overlap an enabled time block.
// With enforce off it only logs, leaving blocks advisory: the agent is told
// about them through the context bundle but the store accepts the write.
type PolicyEnforcer struct {
	prefs   preferences.Service
	enforce bool
}

func NewPolicyEnforcer(prefsService preferences.Service, enforce bool) *PolicyEnforcer {
	return &PolicyEnforcer{prefs: prefsService, enforce: enforce}
}

// CheckEvents implements schedule.ConflictPolicy.
func (p *PolicyEnforcer) CheckEvents(ctx context.Context, drafts []schedule.EventDraft) error {
	prefs, err := p.prefs.GetCurrent(ctx)
	if err != nil {
		// Policy must not turn a preferences outage into a write failure.
		log.Warnf("busy-block check skipped, preferences unavailable: %v", err)
		return nil
	}
	if len(prefs.TimeBlocks) == 0 {
		return nil
	}

	loc, err := time.LoadLocation(prefs.Timezone)
	if err != nil {
		loc = time.UTC
	}

	for i, draft := range drafts {
		block, ok := p.overlappingBlock(prefs.TimeBlocks, loc, draft.StartTime, draft.EndTime)
		if !ok {
			continue
		}
		if !p.enforce {
			log.Infof("event %q overlaps busy block %q (advisory)", draft.Title, block.Label)
			continue
		}
		return fmt.Errorf("%w: event %d %q overlaps busy block %q", schedule.ErrInvalidEvent, i+1, draft.Title, block.Label)
	}
	return nil
}

// overlappingBlock resolves each enabled block to concrete windows on the
// local days the event touches and reports the first overlap. Half-open
// comparison: an event ending exactly when a block starts does not overlap.
// The scan starts one day early so an overnight block begun the previous
// evening still covers the event's morning.
func (p *PolicyEnforcer) overlappingBlock(blocks []preferences.TimeBlock, loc *time.Location, start, end time.Time) (preferences.TimeBlock, bool) {
	localStart := start.In(loc)
	localEnd := end.In(loc)

	for day := truncateToDay(localStart).AddDate(0, 0, -1); !day.After(localEnd); day = day.AddDate(0, 0, 1) {
		for _, block := range blocks {
			if !block.Enabled || !block.AppliesOn(day.Weekday()) {
				continue
			}
			blockStart, blockEnd, err := blockWindow(block, day)
			if err != nil {
				log.Warnf("skipping malformed busy block %q: %v", block.Label, err)
				continue
			}
			if start.Before(blockEnd) && end.After(blockStart) {
				return block, true
			}
		}
	}
	return preferences.TimeBlock{}, false
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func blockWindow(block preferences.TimeBlock, day time.Time) (time.Time, time.Time, error) {
	startMin, err := preferences.ClockMinutes(block.StartsAt)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	endMin, err := preferences.ClockMinutes(block.EndsAt)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	blockStart := day.Add(time.Duration(startMin) * time.Minute)
	blockEnd := day.Add(time.Duration(endMin) * time.Minute)
	if endMin <= startMin {
		// Overnight block, e.g. 22:00-06:00.
		blockEnd = blockEnd.AddDate(0, 0, 1)
	}
	return blockStart, blockEnd, nil
}
