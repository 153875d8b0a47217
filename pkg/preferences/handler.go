package preferences

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/planweave/planweave/internal/rest"
	"github.com/planweave/planweave/pkg/user"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type PreferencesDTO struct {
	Timezone   string         `json:"timezone"`
	Goals      []GoalDTO      `json:"goals"`
	TimeBlocks []TimeBlockDTO `json:"timeBlocks"`
}

type GoalDTO struct {
	Id      string `json:"id,omitempty"`
	Text    string `json:"text"`
	Enabled bool   `json:"enabled"`
}

type TimeBlockDTO struct {
	Id       string   `json:"id,omitempty"`
	Label    string   `json:"label"`
	Weekdays []string `json:"weekdays"`
	StartsAt string   `json:"startsAt"`
	EndsAt   string   `json:"endsAt"`
	Enabled  bool     `json:"enabled"`
}

// GetPreferences godoc
// @Summary Get the authenticated user's planning preferences
// @Tags Preferences
// @Produce json
// @Success 200 {object} PreferencesDTO
// @Failure 401 {object} rest.ErrorResponse "Not authenticated"
// @Router /api/preferences [get]
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	prefs, err := h.service.GetCurrent(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(toDTO(prefs)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// UpdatePreferences godoc
// @Summary Replace the authenticated user's planning preferences
// @Tags Preferences
// @Accept json
// @Produce json
// @Param preferences body PreferencesDTO true "Preferences"
// @Success 200 {object} PreferencesDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid preferences"
// @Router /api/preferences [put]
func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var dto PreferencesDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	prefs, err := fromDTO(dto)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
		return
	}

	updated, err := h.service.UpdateCurrent(r.Context(), prefs)
	if err != nil {
		if errors.Is(err, user.ErrNoUser) {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(toDTO(updated)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func toDTO(prefs Preferences) PreferencesDTO {
	dto := PreferencesDTO{
		Timezone:   prefs.Timezone,
		Goals:      make([]GoalDTO, 0, len(prefs.Goals)),
		TimeBlocks: make([]TimeBlockDTO, 0, len(prefs.TimeBlocks)),
	}
	for _, g := range prefs.Goals {
		dto.Goals = append(dto.Goals, GoalDTO{Id: g.Id, Text: g.Text, Enabled: g.Enabled})
	}
	for _, b := range prefs.TimeBlocks {
		days := make([]string, 0, len(b.Weekdays))
		for _, d := range b.Weekdays {
			days = append(days, strings.ToLower(d.String()))
		}
		dto.TimeBlocks = append(dto.TimeBlocks, TimeBlockDTO{
			Id:       b.Id,
			Label:    b.Label,
			Weekdays: days,
			StartsAt: b.StartsAt,
			EndsAt:   b.EndsAt,
			Enabled:  b.Enabled,
		})
	}
	return dto
}

func fromDTO(dto PreferencesDTO) (Preferences, error) {
	prefs := Preferences{
		Timezone:   dto.Timezone,
		Goals:      make([]Goal, 0, len(dto.Goals)),
		TimeBlocks: make([]TimeBlock, 0, len(dto.TimeBlocks)),
	}
	for _, g := range dto.Goals {
		prefs.Goals = append(prefs.Goals, Goal{Id: g.Id, Text: g.Text, Enabled: g.Enabled})
	}
	for _, b := range dto.TimeBlocks {
		days := make([]time.Weekday, 0, len(b.Weekdays))
		for _, name := range b.Weekdays {
			day, ok := weekdayNames[strings.ToLower(name)]
			if !ok {
				return Preferences{}, errors.New("unknown weekday: " + name)
			}
			days = append(days, day)
		}
		prefs.TimeBlocks = append(prefs.TimeBlocks, TimeBlock{
			Id:       b.Id,
			Label:    b.Label,
			Weekdays: days,
			StartsAt: b.StartsAt,
			EndsAt:   b.EndsAt,
			Enabled:  b.Enabled,
		})
	}
	return prefs, nil
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, user.ErrNoUser) {
		status = http.StatusUnauthorized
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
}
