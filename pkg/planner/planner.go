package planner

import "time"

// Bundle is the per-turn, read-only snapshot handed to the agent. It is a
// pure function of (user, reference date, store state) at build time and
// carries no write capability. It is never persisted.
type Bundle struct {
	Timezone      string      `json:"timezone"`
	ReferenceDate string      `json:"referenceDate"`
	DayRange      DayRange    `json:"dayRange"`
	Events        []EventView `json:"events"`
	Goals         []string    `json:"goals"`
	TimeBlocks    []BlockView `json:"timeBlocks"`
	Rules         []string    `json:"rules"`
}

// DayRange is the local calendar day under consideration, as instants.
// Invariant: Start < End.
type DayRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// EventView is an event summary: canonical instants plus localized renderings
// for display back to the user.
type EventView struct {
	UID        string    `json:"uid"`
	Title      string    `json:"title"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	StartLocal string    `json:"startLocal"`
	EndLocal   string    `json:"endLocal"`
	Memo       string    `json:"memo,omitempty"`
	Source     string    `json:"source"`
}

// BlockView is an enabled time block reduced to what the agent needs.
type BlockView struct {
	Label    string   `json:"label"`
	Weekdays []string `json:"weekdays"`
	StartsAt string   `json:"startsAt"`
	EndsAt   string   `json:"endsAt"`
}

// Rules attached to every bundle. The contract layer does not gate on
// conversational state; these keep the agent honest where the server cannot.
var Rules = []string{
	"Before calling create_events for a multi-event plan, present the plan and wait for the user's explicit acceptance.",
	"Do not propose or create events that overlap an enabled time block on a day it applies.",
	"Respect the user's goals (e.g. sleep or wake windows) when choosing event times.",
	"If you need events outside the current day, call query_schedule with an explicit range.",
}

const localTimeFormat = "Mon 2006-01-02 15:04 MST"
