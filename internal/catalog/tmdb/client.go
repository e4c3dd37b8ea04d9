// Package tmdb adapts the TMDB metadata API. TMDB titles carry no streams;
// they surface in the popular rail and resolve to catalog sources through
// the name/year cross-match in the aggregation layer.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/phimhub/phimhub/internal/catalog/types"
	"github.com/phimhub/phimhub/internal/config"
)

// SlugPrefix marks synthetic slugs for TMDB titles.
const SlugPrefix = "tmdb-"

var (
	ErrAPIKeyMissing = errors.New("TMDB API key is not configured")
	ErrMovieNotFound = errors.New("movie not found")
	ErrAPIError      = errors.New("TMDB API error")
	ErrRateLimited   = errors.New("TMDB API rate limited")
	ErrInvalidSlug   = errors.New("not a TMDB slug")
)

// Client is a TMDB API client.
type Client struct {
	httpClient *http.Client
	config     config.TMDBConfig
	logger     zerolog.Logger
}

// NewClient creates a new TMDB client.
func NewClient(cfg config.TMDBConfig, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
		config: cfg,
		logger: logger.With().Str("component", "tmdb").Logger(),
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "tmdb"
}

// IsConfigured returns true if the API key is set.
func (c *Client) IsConfigured() bool {
	return c.config.APIKey != ""
}

// IsTMDBSlug reports whether a catalog slug refers to a TMDB title.
func IsTMDBSlug(slug string) bool {
	return strings.HasPrefix(slug, SlugPrefix)
}

// Popular fetches one page of popular movies.
func (c *Client) Popular(ctx context.Context, page int) ([]types.Movie, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}

	params := url.Values{}
	params.Set("api_key", c.config.APIKey)
	params.Set("page", strconv.Itoa(page))

	var response PopularResponse
	if err := c.doRequest(ctx, "/movie/popular", params, &response); err != nil {
		return nil, err
	}

	movies := make([]types.Movie, 0, len(response.Results))
	for _, result := range response.Results {
		movies = append(movies, c.toMovie(result))
	}

	c.logger.Debug().
		Int("page", page).
		Int("results", len(movies)).
		Msg("Popular fetch completed")

	return movies, nil
}

// GetDetail fetches movie details for a tmdb-{id} slug. The episode list is
// always empty; TMDB has no streams.
func (c *Client) GetDetail(ctx context.Context, slug string) (*types.Detail, error) {
	if !c.IsConfigured() {
		return nil, ErrAPIKeyMissing
	}
	if !IsTMDBSlug(slug) {
		return nil, ErrInvalidSlug
	}

	id, err := strconv.Atoi(strings.TrimPrefix(slug, SlugPrefix))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}

	params := url.Values{}
	params.Set("api_key", c.config.APIKey)

	var details MovieDetails
	if err := c.doRequest(ctx, fmt.Sprintf("/movie/%d", id), params, &details); err != nil {
		return nil, err
	}

	movie := c.detailsToMovie(details)

	c.logger.Debug().
		Int("id", id).
		Str("title", movie.Name).
		Msg("Got movie details")

	return &types.Detail{Movie: &movie, Episodes: []types.Episode{}}, nil
}

func (c *Client) toMovie(result MovieResult) types.Movie {
	raw, _ := json.Marshal(result)

	name := result.Title
	if name == "" {
		name = result.Name
	}
	if name == "" {
		name = types.UntitledName
	}

	categories := make([]string, 0, len(result.GenreIDs))
	for _, id := range result.GenreIDs {
		categories = append(categories, strconv.Itoa(id))
	}

	return types.Movie{
		Slug:      fmt.Sprintf("%s%d", SlugPrefix, result.ID),
		Name:      name,
		PosterURL: c.buildImage(result.PosterPath, c.config.PosterBase),
		ThumbURL:  c.buildImage(firstPath(result.BackdropPath, result.PosterPath), c.config.BackdropBase),
		Year:      yearOf(firstDate(result.ReleaseDate, result.FirstAirDate)),
		Quality:   strings.ToUpper(result.OriginalLang),
		Lang:      strings.ToUpper(result.OriginalLang),
		Category:  categories,
		Content:   result.Overview,
		Rating:    result.VoteAverage,
		Source:    c.Name(),
		Origin:    raw,
	}
}

func (c *Client) detailsToMovie(details MovieDetails) types.Movie {
	raw, _ := json.Marshal(details)

	name := details.Title
	if name == "" {
		name = types.UntitledName
	}

	categories := make([]string, 0, len(details.Genres))
	for _, g := range details.Genres {
		categories = append(categories, g.Name)
	}

	runtime := ""
	if details.Runtime > 0 {
		runtime = fmt.Sprintf("%d phút", details.Runtime)
	}

	return types.Movie{
		Slug:           fmt.Sprintf("%s%d", SlugPrefix, details.ID),
		Name:           name,
		OriginName:     details.OriginalTitle,
		PosterURL:      c.buildImage(details.PosterPath, c.config.PosterBase),
		ThumbURL:       c.buildImage(firstPath(details.BackdropPath, details.PosterPath), c.config.BackdropBase),
		Year:           yearOf(details.ReleaseDate),
		EpisodeCurrent: details.Status,
		Quality:        strings.ToUpper(details.OriginalLang),
		Lang:           strings.ToUpper(details.OriginalLang),
		Time:           runtime,
		Status:         details.Status,
		Category:       categories,
		Content:        details.Overview,
		Rating:         details.VoteAverage,
		Source:         c.Name(),
		Origin:         raw,
	}
}

func (c *Client) buildImage(path *string, base string) string {
	if path == nil || *path == "" {
		return types.PlaceholderPoster
	}
	return base + *path
}

func firstPath(paths ...*string) *string {
	for _, p := range paths {
		if p != nil && *p != "" {
			return p
		}
	}
	return nil
}

func firstDate(dates ...string) string {
	for _, d := range dates {
		if d != "" {
			return d
		}
	}
	return ""
}

func yearOf(date string) string {
	if len(date) >= 4 {
		return date[:4]
	}
	return ""
}

// doRequest performs an HTTP GET request and decodes the JSON response.
func (c *Client) doRequest(ctx context.Context, path string, params url.Values, result interface{}) error {
	reqURL := strings.TrimSuffix(c.config.BaseURL, "/") + path
	if len(params) > 0 {
		reqURL = fmt.Sprintf("%s?%s", reqURL, params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("path", path).Msg("HTTP request failed")
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
			c.logger.Warn().
				Int("status", resp.StatusCode).
				Str("message", errResp.StatusMessage).
				Msg("TMDB API error")
		}

		switch resp.StatusCode {
		case http.StatusNotFound:
			return ErrMovieNotFound
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: invalid API key", ErrAPIError)
		case http.StatusTooManyRequests:
			return ErrRateLimited
		default:
			return fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
