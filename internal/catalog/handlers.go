package catalog

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/phimhub/phimhub/internal/catalog/tmdb"
	"github.com/phimhub/phimhub/internal/catalog/types"
)

// Handlers provides HTTP handlers for catalog operations.
type Handlers struct {
	service *Service
}

// NewHandlers creates new catalog handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers the catalog routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("/catalog/:kind", h.ListByKind)
	g.GET("/catalog/category/:slug", h.ListByCategory)
	g.GET("/catalog/country/:slug", h.ListByCountry)
	g.GET("/catalog/search", h.Search)
	g.GET("/catalog/popular", h.Popular)
	g.GET("/catalog/movie/:slug", h.GetMovie)
	g.GET("/catalog/movie/:slug/match", h.MatchStream)

	// Cache management
	g.DELETE("/catalog/cache", h.ClearCache)
}

func pageParam(c echo.Context) int {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

// ListByKind returns a browse list for one of the known kinds.
// GET /api/v1/catalog/:kind?page=
func (h *Handlers) ListByKind(c echo.Context) error {
	kind := types.ListKind(c.Param("kind"))
	switch kind {
	case types.ListLatest, types.ListSeries, types.ListSingle:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "invalid list kind, must be 'latest', 'series' or 'single'")
	}

	movies := h.service.List(c.Request().Context(), kind, pageParam(c))
	return c.JSON(http.StatusOK, moviesResponse(movies))
}

// ListByCategory returns movies matching a genre slug.
// GET /api/v1/catalog/category/:slug?page=
func (h *Handlers) ListByCategory(c echo.Context) error {
	slug := c.Param("slug")
	if slug == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "category slug is required")
	}

	movies := h.service.ListByCategory(c.Request().Context(), slug, pageParam(c))
	return c.JSON(http.StatusOK, moviesResponse(movies))
}

// ListByCountry returns movies matching a country slug.
// GET /api/v1/catalog/country/:slug?page=
func (h *Handlers) ListByCountry(c echo.Context) error {
	slug := c.Param("slug")
	if slug == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "country slug is required")
	}

	movies := h.service.ListByCountry(c.Request().Context(), slug, pageParam(c))
	return c.JSON(http.StatusOK, moviesResponse(movies))
}

// Search searches every configured source by keyword.
// GET /api/v1/catalog/search?keyword=...&page=
func (h *Handlers) Search(c echo.Context) error {
	keyword := strings.TrimSpace(c.QueryParam("keyword"))
	if keyword == "" {
		return c.JSON(http.StatusOK, moviesResponse(nil))
	}

	movies := h.service.Search(c.Request().Context(), keyword, pageParam(c))
	return c.JSON(http.StatusOK, moviesResponse(movies))
}

// Popular returns trending titles from TMDB.
// GET /api/v1/catalog/popular?page=
func (h *Handlers) Popular(c echo.Context) error {
	movies, err := h.service.Popular(c.Request().Context(), pageParam(c))
	if err != nil {
		if errors.Is(err, tmdb.ErrAPIKeyMissing) {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "TMDB API key is not configured")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, moviesResponse(movies))
}

// GetMovie returns the merged detail for a slug.
// GET /api/v1/catalog/movie/:slug
func (h *Handlers) GetMovie(c echo.Context) error {
	slug := c.Param("slug")
	if slug == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "movie slug is required")
	}

	// A title no source knows is an empty state, not an error: clients
	// render "no source" from a null movie.
	detail := h.service.GetDetail(c.Request().Context(), slug)
	if detail.Episodes == nil {
		detail.Episodes = []types.Episode{}
	}
	return c.JSON(http.StatusOK, detail)
}

// MatchStream recovers a streamable source for a title that has none of
// its own episodes, typically a TMDB entry.
// GET /api/v1/catalog/movie/:slug/match
func (h *Handlers) MatchStream(c echo.Context) error {
	slug := c.Param("slug")
	if slug == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "movie slug is required")
	}

	movie := h.service.FindStream(c.Request().Context(), slug)
	if movie == nil {
		return echo.NewHTTPError(http.StatusNotFound, "no streamable match found")
	}

	return c.JSON(http.StatusOK, movie)
}

// ClearCache clears the catalog cache.
// DELETE /api/v1/catalog/cache
func (h *Handlers) ClearCache(c echo.Context) error {
	h.service.Cache().Clear()
	return c.NoContent(http.StatusNoContent)
}

// moviesResponse keeps empty results as [] rather than null.
func moviesResponse(movies []types.Movie) []types.Movie {
	if movies == nil {
		return []types.Movie{}
	}
	return movies
}
