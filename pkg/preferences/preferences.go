package preferences

import (
	"errors"
	"fmt"
	"time"
)

// Preferences is the per-user planning policy: one record per user, written
// by the preferences UI, read-only from the agent's perspective.
type Preferences struct {
	Timezone   string      `json:"timezone"`
	Goals      []Goal      `json:"goals"`
	TimeBlocks []TimeBlock `json:"timeBlocks"`
}

// Goal is a free-text planning objective. Disabled goals are retained but
// excluded from the agent's context.
type Goal struct {
	Id      string `json:"id"`
	Text    string `json:"text"`
	Enabled bool   `json:"enabled"`
}

// TimeBlock is a recurring busy interval expressed in local wall-clock time
// ("HH:MM"), re-resolved against the calendar's timezone for every evaluated
// day. It is not a concrete event.
type TimeBlock struct {
	Id       string         `json:"id"`
	Label    string         `json:"label"`
	Weekdays []time.Weekday `json:"weekdays"`
	StartsAt string         `json:"startsAt"`
	EndsAt   string         `json:"endsAt"`
	Enabled  bool           `json:"enabled"`
}

var ErrNoPreferences = errors.New("preferences not found")

// AppliesOn reports whether the block recurs on the given weekday.
func (b TimeBlock) AppliesOn(day time.Weekday) bool {
	for _, d := range b.Weekdays {
		if d == day {
			return true
		}
	}
	return false
}

// ClockMinutes parses a local "HH:MM" wall-clock value into minutes after
// midnight.
func ClockMinutes(clock string) (int, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return 0, fmt.Errorf("invalid wall-clock time %q: %w", clock, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}
