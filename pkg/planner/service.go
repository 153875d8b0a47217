package planner

import (
	"context"
	"strings"
	"time"

	"github.com/planweave/planweave/internal/utils"
	"github.com/planweave/planweave/pkg/preferences"
	"github.com/planweave/planweave/pkg/schedule"
	log "github.com/sirupsen/logrus"
)

// Service assembles the per-turn context bundle. Assembly is best-effort: a
// failing collaborator degrades its own section to an empty value and the
// bundle stays well-formed, because a missing bundle would silence the agent
// entirely while a partial one only makes it less informed.
type Service struct {
	schedule schedule.Service
	prefs    preferences.Service
	clock    utils.Clock
}

func NewService(scheduleService schedule.Service, prefsService preferences.Service, clock utils.Clock) *Service {
	return &Service{schedule: scheduleService, prefs: prefsService, clock: clock}
}

// BuildContext produces the bundle for the local calendar day containing the
// reference instant. A zero refInstant means "now".
func (s *Service) BuildContext(ctx context.Context, refInstant time.Time) (Bundle, error) {
	prefs, err := s.prefs.GetCurrent(ctx)
	if err != nil {
		log.Warnf("context assembly: preferences unavailable, using defaults: %v", err)
		prefs = preferences.Preferences{Timezone: "UTC"}
	}

	loc, err := time.LoadLocation(prefs.Timezone)
	if err != nil {
		log.Warnf("context assembly: unknown timezone %q, falling back to UTC", prefs.Timezone)
		prefs.Timezone = "UTC"
		loc = time.UTC
	}

	if refInstant.IsZero() {
		refInstant = s.clock.Now()
	}
	local := refInstant.In(loc)
	dayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.AddDate(0, 0, 1).Add(-time.Millisecond)

	bundle := Bundle{
		Timezone:      prefs.Timezone,
		ReferenceDate: dayStart.Format("2006-01-02"),
		DayRange:      DayRange{Start: dayStart, End: dayEnd},
		Events:        []EventView{},
		Goals:         []string{},
		TimeBlocks:    []BlockView{},
		Rules:         Rules,
	}

	events, err := s.schedule.QuerySchedule(ctx, dayStart, dayEnd)
	if err != nil {
		log.Warnf("context assembly: schedule unavailable, omitting events: %v", err)
	} else {
		for _, ev := range events {
			bundle.Events = append(bundle.Events, EventView{
				UID:        ev.UID.String(),
				Title:      ev.Title,
				Start:      ev.StartTime,
				End:        ev.EndTime,
				StartLocal: ev.StartTime.In(loc).Format(localTimeFormat),
				EndLocal:   ev.EndTime.In(loc).Format(localTimeFormat),
				Memo:       ev.Memo,
				Source:     string(ev.Source),
			})
		}
	}

	for _, goal := range prefs.Goals {
		if goal.Enabled {
			bundle.Goals = append(bundle.Goals, goal.Text)
		}
	}
	for _, block := range prefs.TimeBlocks {
		if !block.Enabled {
			continue
		}
		days := make([]string, 0, len(block.Weekdays))
		for _, d := range block.Weekdays {
			days = append(days, strings.ToLower(d.String()))
		}
		bundle.TimeBlocks = append(bundle.TimeBlocks, BlockView{
			Label:    block.Label,
			Weekdays: days,
			StartsAt: block.StartsAt,
			EndsAt:   block.EndsAt,
		})
	}

	return bundle, nil
}
