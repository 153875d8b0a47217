package schedule

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Source marks how an event came to exist. Informational only; it is never
// consulted for access decisions.
type Source string

const (
	SourceManual   Source = "manual"
	SourceAI       Source = "ai"
	SourceImported Source = "imported"
)

// Event is a scheduled occurrence on a user's calendar. StartTime and EndTime
// are absolute instants; localized renderings are derived at read time.
type Event struct {
	UID       uuid.UUID
	Title     string
	StartTime time.Time
	EndTime   time.Time
	Memo      string
	Source    Source
}

// EventDraft is a proposed event before the store has assigned an identity.
type EventDraft struct {
	Title     string
	StartTime time.Time
	EndTime   time.Time
	Memo      string
	Source    Source
}

// EventPatch carries only the fields to change. A nil field means "leave
// untouched"; a pointer to the empty string in Memo means "clear the memo".
type EventPatch struct {
	Title     *string
	StartTime *time.Time
	EndTime   *time.Time
	Memo      *string
}

// Error kinds surfaced to callers of the tool contract. Wrapped errors carry
// the human-readable detail; callers match with errors.Is.
var (
	ErrInvalidRange     = errors.New("invalid range")
	ErrMalformedInput   = errors.New("malformed input")
	ErrInvalidEvent     = errors.New("invalid event")
	ErrEventNotFound    = errors.New("event not found")
	ErrStoreUnavailable = errors.New("store unavailable")
)
