package schedule

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/planweave/planweave/internal/rest"
	"github.com/planweave/planweave/pkg/user"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type EventDTO struct {
	UID       string    `json:"uid"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start"`
	EndTime   time.Time `json:"end"`
	Memo      string    `json:"memo,omitempty"`
	Source    string    `json:"source"`
}

type CreateEventDTO struct {
	Title     string    `json:"title"`
	StartTime time.Time `json:"start"`
	EndTime   time.Time `json:"end"`
	Memo      string    `json:"memo"`
	Source    string    `json:"source"`
}

// PatchEventDTO mirrors EventPatch: absent fields stay untouched.
type PatchEventDTO struct {
	Title     *string    `json:"title"`
	StartTime *time.Time `json:"start"`
	EndTime   *time.Time `json:"end"`
	Memo      *string    `json:"memo"`
}

// GetEvents godoc
// @Summary List events starting within a time range
// @Tags Schedule
// @Produce json
// @Param from query string true "Range start (RFC3339)"
// @Param to query string true "Range end (RFC3339)"
// @Success 200 {array} EventDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid range"
// @Router /api/schedule/event [get]
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid from (date) format",
			Details: "'from' must be in RFC3339 format",
		})
		return
	}
	to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{
			Error:   "Invalid to (date) format",
			Details: "'to' must be in RFC3339 format",
		})
		return
	}

	events, err := h.service.QuerySchedule(r.Context(), from, to)
	if err != nil {
		writeError(w, err)
		return
	}

	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, eventToDTO(e))
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// CreateEvent godoc
// @Summary Create a single event from the calendar UI
// @Tags Schedule
// @Accept json
// @Produce json
// @Param event body CreateEventDTO true "Event"
// @Success 201 {object} EventDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid event"
// @Router /api/schedule/event [post]
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto CreateEventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	source := Source(dto.Source)
	if source == "" {
		source = SourceManual
	}

	count, err := h.service.CreateEvents(r.Context(), []EventDraft{{
		Title:     dto.Title,
		StartTime: dto.StartTime,
		EndTime:   dto.EndTime,
		Memo:      dto.Memo,
		Source:    source,
	}})
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]int{"created": count})
}

// UpdateEvent godoc
// @Summary Apply a sparse patch to an event
// @Tags Schedule
// @Accept json
// @Produce json
// @Param eventUid path string true "Event UID"
// @Param patch body PatchEventDTO true "Patch"
// @Success 200 {object} EventDTO
// @Failure 404 {object} rest.ErrorResponse "Event not found"
// @Router /api/schedule/event/{eventUid} [put]
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	uid, err := uuid.Parse(mux.Vars(r)["eventUid"])
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid event uid", Details: err.Error()})
		return
	}

	var dto PatchEventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	updated, err := h.service.UpdateEvent(r.Context(), uid, EventPatch{
		Title:     dto.Title,
		StartTime: dto.StartTime,
		EndTime:   dto.EndTime,
		Memo:      dto.Memo,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(eventToDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// DeleteEvent godoc
// @Summary Delete an event
// @Tags Schedule
// @Param eventUid path string true "Event UID"
// @Success 204
// @Failure 404 {object} rest.ErrorResponse "Event not found"
// @Router /api/schedule/event/{eventUid} [delete]
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	uid, err := uuid.Parse(mux.Vars(r)["eventUid"])
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid event uid", Details: err.Error()})
		return
	}

	if err := h.service.DeleteEvent(r.Context(), uid); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func eventToDTO(e Event) EventDTO {
	return EventDTO{
		UID:       e.UID.String(),
		Title:     e.Title,
		StartTime: e.StartTime,
		EndTime:   e.EndTime,
		Memo:      e.Memo,
		Source:    string(e.Source),
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, user.ErrNoUser):
		status = http.StatusUnauthorized
	case errors.Is(err, ErrInvalidRange), errors.Is(err, ErrMalformedInput), errors.Is(err, ErrInvalidEvent):
		status = http.StatusBadRequest
	case errors.Is(err, ErrEventNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrStoreUnavailable):
		status = http.StatusServiceUnavailable
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
}
