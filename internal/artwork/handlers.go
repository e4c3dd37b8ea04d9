package artwork

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handlers provides HTTP handlers for the artwork proxy.
type Handlers struct {
	fetcher *Fetcher
}

// NewHandlers creates new artwork handlers.
func NewHandlers(fetcher *Fetcher) *Handlers {
	return &Handlers{fetcher: fetcher}
}

// RegisterRoutes registers the artwork routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("/artwork", h.GetArtwork)
}

// GetArtwork streams an upstream image through the proxy.
// GET /api/v1/artwork?url=...
func (h *Handlers) GetArtwork(c echo.Context) error {
	rawURL := c.QueryParam("url")
	if rawURL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "url parameter is required")
	}

	img, err := h.fetcher.Fetch(c.Request().Context(), rawURL)
	if err != nil {
		if errors.Is(err, ErrInvalidURL) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid artwork URL")
		}
		return echo.NewHTTPError(http.StatusBadGateway, "failed to fetch artwork")
	}
	defer img.Body.Close()

	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Stream(http.StatusOK, img.ContentType, img.Body)
}
