package notification

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/planweave/planweave/internal/rest"
	"github.com/planweave/planweave/pkg/user"
)

type Handler struct {
	feed *Feed
}

func NewHandler(feed *Feed) *Handler {
	return &Handler{feed: feed}
}

// GetNotifications godoc
// @Summary List recent notifications for the authenticated user
// @Tags Notification
// @Produce json
// @Success 200 {array} Notification
// @Failure 401 {object} rest.ErrorResponse "Not authenticated"
// @Router /api/notification [get]
func (h *Handler) GetNotifications(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	userId, err := user.CurrentId(r.Context())
	if err != nil {
		if errors.Is(err, user.ErrNoUser) {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(rest.ErrorResponse{Error: "not authenticated"})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(h.feed.ForUser(userId)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
