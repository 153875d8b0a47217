package planner

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/planweave/planweave/internal/rest"
	"github.com/planweave/planweave/pkg/user"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetContext godoc
// @Summary Build the planning context bundle for a reference instant
// @Tags Planner
// @Produce json
// @Param at query string false "Reference instant in RFC3339; defaults to now"
// @Success 200 {object} Bundle
// @Failure 400 {object} rest.ErrorResponse "Invalid 'at' parameter"
// @Failure 401 {object} rest.ErrorResponse "Not authenticated"
// @Router /api/planner/context [get]
func (h *Handler) GetContext(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var refInstant time.Time
	if at := r.URL.Query().Get("at"); at != "" {
		parsed, err := time.Parse(time.RFC3339, at)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "Invalid 'at' parameter", Details: err.Error()})
			return
		}
		refInstant = parsed
	}

	if _, err := user.CurrentId(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	bundle, err := h.service.BuildContext(r.Context(), refInstant)
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(bundle); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, user.ErrNoUser) {
		status = http.StatusUnauthorized
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: err.Error()})
}
