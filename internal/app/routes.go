package app

import (
	"github.com/gorilla/mux"
	"github.com/planweave/planweave/internal/config"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Schedule
	r.HandleFunc("/api/schedule/event", deps.ScheduleHandler.GetEvents).Queries("from", "{from}", "to", "{to}").Methods("GET")
	r.HandleFunc("/api/schedule/event", deps.ScheduleHandler.CreateEvent).Methods("POST")
	r.HandleFunc("/api/schedule/event/{eventUid}", deps.ScheduleHandler.UpdateEvent).Methods("PUT")
	r.HandleFunc("/api/schedule/event/{eventUid}", deps.ScheduleHandler.DeleteEvent).Methods("DELETE")

	// Preferences
	r.HandleFunc("/api/preferences", deps.PreferencesHandler.GetPreferences).Methods("GET")
	r.HandleFunc("/api/preferences", deps.PreferencesHandler.UpdatePreferences).Methods("PUT")

	// Planner context
	r.HandleFunc("/api/planner/context", deps.PlannerHandler.GetContext).Methods("GET")

	// Notifications
	r.HandleFunc("/api/notification", deps.NotificationHandler.GetNotifications).Methods("GET")

	// User management
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user", deps.UserHandler.CreateUser).Methods("POST")
}
