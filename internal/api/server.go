// Package api provides the HTTP frontend for the Wave Compare Engine: a
// single POST endpoint that runs one comparison end to end (load both
// trees, run the engine, build the high-confidence report) plus a health
// check, slimmed from the teacher's internal/api/server.go down to the
// surface §6 "External interfaces" actually describes.
package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/makhin/gedsync/internal/config"
	"github.com/makhin/gedsync/internal/fuzzy"
	"github.com/makhin/gedsync/internal/gedcomload"
	"github.com/makhin/gedsync/internal/photo"
)

// Server wraps the Echo server with the engine's dependencies.
type Server struct {
	echo    *echo.Echo
	config  *config.Config
	loader  *gedcomload.Loader
	matcher *fuzzy.Matcher
	photo   *photo.Comparator
	spec    *openAPISpec
}

// NewServer creates a new API server. storeOpener builds the
// store.ConfirmedMappingsStore for a single compare request from the
// options' ConfirmedMappingsPath; callers select the backend (Postgres,
// SQLite, or the default file store) per config.Config.UsePostgreSQL /
// UseSQLite before wiring it here, the same per-run selection cmd/wavecompare
// performs.
func NewServer(cfg *config.Config, storeOpener StoreOpener) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	if cfg.LogFormat == "json" {
		e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
			Format: `{"time":"${time_rfc3339}","id":"${id}","method":"${method}","uri":"${uri}","status":${status},"latency":"${latency_human}"}` + "\n",
		}))
	} else {
		e.Use(middleware.Logger())
	}

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.HTTPErrorHandler = customErrorHandler

	server := &Server{
		echo:    e,
		config:  cfg,
		loader:  gedcomload.New(),
		matcher: fuzzy.NewMatcher(),
		photo:   photo.NewComparator(),
		spec:    mustLoadSpec(),
	}
	server.registerRoutes(storeOpener)
	return server
}

// registerRoutes sets up the compare endpoint, health check, and docs.
func (s *Server) registerRoutes(storeOpener StoreOpener) {
	group := s.echo.Group("/api/v1")

	group.GET("/health", s.healthCheck)
	s.registerDocsRoutes(group)

	group.POST("/compare", s.handleCompare(storeOpener), s.validateAgainstSpec)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.echo.Close()
}

// Echo returns the underlying Echo instance (for testing).
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
