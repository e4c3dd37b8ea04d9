// Package api wires the HTTP surface: routing, middleware and service setup.
package api

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/phimhub/phimhub/internal/api/middleware"
	"github.com/phimhub/phimhub/internal/artwork"
	"github.com/phimhub/phimhub/internal/auth"
	"github.com/phimhub/phimhub/internal/catalog"
	"github.com/phimhub/phimhub/internal/config"
	"github.com/phimhub/phimhub/internal/favorites"
)

// Server handles HTTP requests for the PhimHub API.
type Server struct {
	echo      *echo.Echo
	db        *sql.DB
	logger    zerolog.Logger
	cfg       *config.Config
	startTime time.Time

	catalogService   *catalog.Service
	artworkFetcher   *artwork.Fetcher
	authService      *auth.Service
	favoritesService *favorites.Service
}

// NewServer creates a new API server instance.
func NewServer(db *sql.DB, cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	authService, err := auth.NewService(db, cfg.Auth.JWTSecret, logger)
	if err != nil {
		return nil, err
	}

	s := &Server{
		echo:      e,
		db:        db,
		logger:    logger,
		cfg:       cfg,
		startTime: time.Now(),

		catalogService:   catalog.NewService(cfg.Catalog, logger),
		artworkFetcher:   artwork.NewFetcher(cfg.Artwork, logger),
		authService:      authService,
		favoritesService: favorites.NewService(db, logger),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(echomw.Recover())
	s.echo.Use(echomw.RequestID())
	s.echo.Use(middleware.SecurityHeaders())
	s.echo.Use(echomw.BodyLimit("1M"))

	s.echo.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	s.echo.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogMethod:   true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Info().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))

	s.echo.Use(echomw.GzipWithConfig(echomw.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			// Images are already compressed
			return c.Path() == "/api/v1/artwork"
		},
	}))
}

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)

	api := s.echo.Group("/api/v1")

	api.GET("/system/status", s.getStatus)

	catalogHandlers := catalog.NewHandlers(s.catalogService)
	catalogHandlers.RegisterRoutes(api)

	artworkHandlers := artwork.NewHandlers(s.artworkFetcher)
	artworkHandlers.RegisterRoutes(api)

	authMiddleware := auth.NewMiddleware(s.authService)

	authHandlers := auth.NewHandlers(s.authService)
	authHandlers.RegisterRoutes(api.Group("/auth"), authMiddleware)

	favoritesHandlers := favorites.NewHandlers(s.favoritesService)
	favoritesHandlers.RegisterRoutes(api.Group("/favorites"), authMiddleware)
}

// CatalogService returns the catalog service (for the warm-up scheduler).
func (s *Server) CatalogService() *catalog.Service {
	return s.catalogService
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Start begins listening for HTTP requests.
func (s *Server) Start(address string) error {
	s.logger.Info().Str("address", address).Msg("starting HTTP server")
	return s.echo.Start(address)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"version":     config.Version,
		"startTime":   s.startTime.Format(time.RFC3339),
		"sources":     s.catalogService.Status(),
		"cachedItems": s.catalogService.Cache().Len(),
	})
}
