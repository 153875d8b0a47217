package app

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/planweave/planweave/internal/config"
	"github.com/planweave/planweave/internal/event_bus"
	"github.com/planweave/planweave/internal/notification"
	"github.com/planweave/planweave/internal/utils"
	"github.com/planweave/planweave/pkg/planner"
	"github.com/planweave/planweave/pkg/preferences"
	"github.com/planweave/planweave/pkg/schedule"
	"github.com/planweave/planweave/pkg/user"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Bus *event_bus.EventBus

	UserService user.Service
	UserHandler *user.Handler

	PreferencesRepo    preferences.Repository
	PreferencesService preferences.Service
	PreferencesHandler *preferences.Handler

	ScheduleRepo    schedule.Repository
	SchedulePolicy  *planner.PolicyEnforcer
	ScheduleService schedule.Service
	ScheduleHandler *schedule.Handler

	PlannerService *planner.Service
	PlannerHandler *planner.Handler

	NotificationFeed    *notification.Feed
	NotificationHandler *notification.Handler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Bus = event_bus.NewEventBus()
	deps.Clock = &utils.SystemClock{}

	deps.UserService = user.NewUserService(user.NewUserRepo(db))
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.PreferencesRepo = preferences.NewRepository(db)
	deps.PreferencesService = preferences.NewService(deps.PreferencesRepo)
	deps.PreferencesHandler = preferences.NewHandler(deps.PreferencesService)

	deps.ScheduleRepo = schedule.NewRepository(db)
	deps.SchedulePolicy = planner.NewPolicyEnforcer(deps.PreferencesService, cfg.Planner.EnforceTimeBlocks)
	deps.ScheduleService = schedule.NewService(deps.ScheduleRepo, deps.SchedulePolicy, deps.Bus)
	deps.ScheduleHandler = schedule.NewHandler(deps.ScheduleService)

	deps.PlannerService = planner.NewService(deps.ScheduleService, deps.PreferencesService, deps.Clock)
	deps.PlannerHandler = planner.NewHandler(deps.PlannerService)

	deps.NotificationFeed = notification.NewFeed(deps.Bus)
	deps.NotificationHandler = notification.NewHandler(deps.NotificationFeed)

	return deps
}
