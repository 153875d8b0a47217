package app

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/planweave/planweave/internal/config"
	"github.com/planweave/planweave/internal/database"
	"github.com/planweave/planweave/internal/resources"
	"github.com/planweave/planweave/internal/tools/schedule_tools"
	log "github.com/sirupsen/logrus"
)

const version = "0.3.0"

// Application wires configuration, database, router, MCP server and the HTTP
// server lifecycle.
type Application struct {
	cfg    config.Application
	router *mux.Router
	srv    *http.Server
}

// NewApplication constructs the full application, ready to Run().
func NewApplication() (*Application, error) {
	cfg, err := config.Load("./config/application.yaml")
	if err != nil {
		return nil, err
	}

	// DB + migrations
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	// db will be closed when server shuts down; defer not possible here, leave to process exit.
	if err := database.Migrate(cfg.Database); err != nil {
		return nil, err
	}

	r := mux.NewRouter()

	// Build dependencies (services, handlers...)
	deps := BuildDependencies(db, cfg)

	// Middleware chain
	SetupMiddleware(r, deps, cfg)

	// Routes
	RegisterRoutes(r, deps, cfg)

	// MCP endpoint: the agent-facing tool surface, mounted next to the REST API
	// so both share the principal middleware.
	mcpSrv := mcpserver.NewMCPServer("planweave", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
	)
	schedule_tools.RegisterScheduleTools(mcpSrv, deps.ScheduleService, deps.PreferencesService)
	resources.RegisterPlannerResources(mcpSrv, deps.PlannerService)

	streamable := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithEndpointPath("/mcp"),
	)
	r.PathPrefix("/mcp").Handler(streamable)

	srv := &http.Server{
		Handler:      r,
		Addr:         cfg.Listen,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, router: r, srv: srv}, nil
}

// Run starts the HTTP server and blocks.
func (a *Application) Run() error {
	log.Infof("Starting server on %s", a.srv.Addr)
	return a.srv.ListenAndServe()
}
