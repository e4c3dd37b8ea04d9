package favorites

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/phimhub/phimhub/internal/auth"
)

// Handlers provides HTTP handlers for favorites.
type Handlers struct {
	service *Service
}

// NewHandlers creates new favorites handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers the favorites routes. All routes require auth.
func (h *Handlers) RegisterRoutes(g *echo.Group, mw *auth.Middleware) {
	g.Use(mw.Require())
	g.GET("", h.List)
	g.POST("", h.Save)
	g.DELETE("/:slug", h.Delete)
	g.GET("/:slug", h.Check)
}

// List returns the user's favorites.
// GET /api/v1/favorites
func (h *Handlers) List(c echo.Context) error {
	favorites, err := h.service.List(c.Request().Context(), auth.GetUserID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list favorites")
	}
	return c.JSON(http.StatusOK, favorites)
}

// Save adds or refreshes a favorite.
// POST /api/v1/favorites
func (h *Handlers) Save(c echo.Context) error {
	var fav Favorite
	if err := c.Bind(&fav); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := h.service.Save(c.Request().Context(), auth.GetUserID(c), fav); err != nil {
		if errors.Is(err, ErrSlugRequired) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to save favorite")
	}

	return c.NoContent(http.StatusNoContent)
}

// Delete removes a favorite.
// DELETE /api/v1/favorites/:slug
func (h *Handlers) Delete(c echo.Context) error {
	err := h.service.Delete(c.Request().Context(), auth.GetUserID(c), c.Param("slug"))
	if err != nil {
		switch {
		case errors.Is(err, ErrSlugRequired):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "favorite not found")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete favorite")
		}
	}

	return c.NoContent(http.StatusNoContent)
}

// Check reports whether a slug is saved.
// GET /api/v1/favorites/:slug
func (h *Handlers) Check(c echo.Context) error {
	saved, err := h.service.IsFavorite(c.Request().Context(), auth.GetUserID(c), c.Param("slug"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to check favorite")
	}
	return c.JSON(http.StatusOK, map[string]bool{"favorite": saved})
}
