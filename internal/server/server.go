package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"ai-travel-planner/internal/auth"
	"ai-travel-planner/internal/config"
	"ai-travel-planner/internal/metrics"
	"ai-travel-planner/internal/note"
	"ai-travel-planner/internal/plan"
	"ai-travel-planner/internal/planner"
	"ai-travel-planner/internal/profile"
)

const shutdownTimeout = 10 * time.Second

// Deps bundles everything the HTTP layer needs.
type Deps struct {
	Users     *auth.Repository
	Sessions  *auth.SessionManager
	Notes     *note.Repository
	Profiles  *profile.Repository
	Plans     *plan.Repository
	Logs      *plan.LogRepository
	Generator *planner.Generator
	Metrics   *metrics.Store
	DataPath  string
}

// Server is the HTTP API surface.
type Server struct {
	echo *echo.Echo
	cfg  *config.Config

	users     *auth.Repository
	sessions  *auth.SessionManager
	notes     *note.Repository
	profiles  *profile.Repository
	plans     *plan.Repository
	generator *planner.Generator
	metrics   *metrics.Store
	dataPath  string
}

// New builds the echo server with routes and middleware registered.
func New(cfg *config.Config, deps Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:      e,
		cfg:       cfg,
		users:     deps.Users,
		sessions:  deps.Sessions,
		notes:     deps.Notes,
		profiles:  deps.Profiles,
		plans:     deps.Plans,
		generator: deps.Generator,
		metrics:   deps.Metrics,
		dataPath:  deps.DataPath,
	}

	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.echo.Group("/api")

	api.GET("/health", s.handleHealth)
	api.POST("/auth/register", s.handleRegister)
	api.POST("/auth/session", s.handleLogin)
	api.POST("/auth/logout", s.handleLogout)

	authed := api.Group("", auth.Middleware(s.sessions, s.users))
	authed.GET("/notes", s.handleListNotes)
	authed.POST("/notes", s.handleCreateNote)
	authed.GET("/notes/:id", s.handleGetNote)
	authed.PUT("/notes/:id", s.handleUpdateNote)
	authed.DELETE("/notes/:id", s.handleDeleteNote)
	authed.POST("/notes/:id/generate-plan", s.handleGeneratePlan)
	authed.GET("/notes/:id/plans", s.handleListPlans)
	authed.GET("/plans/:id", s.handleGetPlan)
	authed.DELETE("/plans/:id", s.handleDeletePlan)
	authed.POST("/plans/:id/feedback", s.handlePlanFeedback)
	authed.GET("/profile", s.handleGetProfile)
	authed.PUT("/profile", s.handleUpsertProfile)
}

// Start serves HTTP until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", s.cfg.ListenAddr)
		errCh <- s.echo.Start(s.cfg.ListenAddr)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	}
}
