// Package ophim adapts the Ophim catalog API into the canonical movie and
// episode shapes.
package ophim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/phimhub/phimhub/internal/catalog/types"
	"github.com/phimhub/phimhub/internal/config"
)

var (
	ErrBaseURLMissing = errors.New("ophim base URL is not configured")
	ErrAPIError       = errors.New("ophim API error")
)

// Client is an Ophim catalog API client.
type Client struct {
	httpClient *http.Client
	config     config.SourceConfig
	logger     zerolog.Logger
}

// NewClient creates a new Ophim client.
func NewClient(cfg config.SourceConfig, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
		config: cfg,
		logger: logger.With().Str("component", "ophim").Logger(),
	}
}

// Name returns the source name.
func (c *Client) Name() string {
	return "ophim"
}

// IsConfigured returns true if the base URL is set.
func (c *Client) IsConfigured() bool {
	return c.config.BaseURL != ""
}

// List fetches one page of a fixed browse list.
func (c *Client) List(ctx context.Context, kind types.ListKind, page int) ([]types.Movie, error) {
	path := "/danh-sach/phim-moi"
	switch kind {
	case types.ListSeries:
		path = "/danh-sach/phim-bo"
	case types.ListSingle:
		path = "/danh-sach/phim-le"
	}
	return c.fetchList(ctx, path, page)
}

// ListByCategory fetches one page of titles in a genre.
func (c *Client) ListByCategory(ctx context.Context, slug string, page int) ([]types.Movie, error) {
	return c.fetchList(ctx, "/the-loai/"+url.PathEscape(slug), page)
}

// ListByCountry fetches one page of titles from a region.
func (c *Client) ListByCountry(ctx context.Context, slug string, page int) ([]types.Movie, error) {
	return c.fetchList(ctx, "/quoc-gia/"+url.PathEscape(slug), page)
}

// Search fetches one page of keyword search results.
func (c *Client) Search(ctx context.Context, keyword string, page int) ([]types.Movie, error) {
	params := url.Values{}
	params.Set("keyword", keyword)
	if page > 1 {
		params.Set("page", fmt.Sprintf("%d", page))
	}

	var envelope listEnvelope
	if err := c.doRequest(ctx, "/tim-kiem", params, &envelope); err != nil {
		return nil, err
	}
	return c.normalizeItems(envelope.items()), nil
}

// GetDetail fetches a title's metadata and episode list by slug.
func (c *Client) GetDetail(ctx context.Context, slug string) (*types.Detail, error) {
	var envelope detailEnvelope
	if err := c.doRequest(ctx, "/phim/"+url.PathEscape(slug), nil, &envelope); err != nil {
		return nil, err
	}

	record := envelope.Movie
	groups := envelope.Episodes
	if len(record) == 0 && envelope.Data != nil {
		record = envelope.Data.Item
		if len(groups) == 0 {
			groups = envelope.Data.Episodes
		}
	}
	if len(record) == 0 {
		return nil, fmt.Errorf("%w: detail payload has no movie record", ErrAPIError)
	}

	movie := c.normalizeMovie(record)
	episodes := normalizeEpisodes(groups)

	c.logger.Debug().
		Str("slug", slug).
		Int("episodes", len(episodes)).
		Msg("Got movie detail")

	return &types.Detail{Movie: &movie, Episodes: episodes}, nil
}

func (c *Client) fetchList(ctx context.Context, path string, page int) ([]types.Movie, error) {
	params := url.Values{}
	if page > 1 {
		params.Set("page", fmt.Sprintf("%d", page))
	}

	var envelope listEnvelope
	if err := c.doRequest(ctx, path, params, &envelope); err != nil {
		return nil, err
	}

	movies := c.normalizeItems(envelope.items())

	c.logger.Debug().
		Str("path", path).
		Int("page", page).
		Int("results", len(movies)).
		Msg("List fetch completed")

	return movies, nil
}

func (c *Client) normalizeItems(items []json.RawMessage) []types.Movie {
	movies := make([]types.Movie, 0, len(items))
	for _, item := range items {
		movies = append(movies, c.normalizeMovie(item))
	}
	return movies
}

// normalizeMovie maps one raw record into the canonical shape. Decode
// failures of individual fields degrade to empty values rather than
// dropping the record.
func (c *Client) normalizeMovie(record json.RawMessage) types.Movie {
	var raw rawMovie
	_ = json.Unmarshal(record, &raw)

	slug := raw.Slug
	if slug == "" {
		slug = raw.MongoID
	}
	if slug == "" {
		slug = string(raw.ID)
	}
	if slug == "" {
		slug = "unknown"
	}

	name := firstNonEmpty(raw.Name, raw.Title, raw.OriginName, types.UntitledName)

	poster := c.resolveImage(firstNonEmpty(raw.ThumbURL, raw.PosterURL, raw.Poster, raw.Banner))

	category := raw.Category
	if len(category) == 0 {
		category = raw.Genres
	}

	return types.Movie{
		Slug:           slug,
		Name:           name,
		OriginName:     raw.OriginName,
		PosterURL:      poster,
		ThumbURL:       poster,
		Year:           string(firstNonEmptyFlex(raw.Year, raw.Released, raw.PublishYear)),
		EpisodeCurrent: firstNonEmpty(raw.EpisodeCurrent, raw.EpisodeCamel, raw.Status),
		EpisodeTotal:   string(raw.EpisodeTotal),
		Quality:        raw.Quality,
		Lang:           raw.Lang,
		Time:           raw.Time,
		Status:         raw.Status,
		Type:           raw.Type,
		Category:       category,
		Country:        raw.Country,
		Content:        firstNonEmpty(raw.Content, raw.Description),
		Source:         c.Name(),
		Origin:         record,
	}
}

// normalizeEpisodes flattens server groups into one episode list, keeping
// each group's server label on its episodes.
func normalizeEpisodes(groups []serverGroup) []types.Episode {
	episodes := make([]types.Episode, 0)
	for _, group := range groups {
		for _, ep := range group.ServerData {
			idx := len(episodes) + 1
			episodes = append(episodes, types.Episode{
				Name:       firstNonEmpty(ep.Name, ep.Filename, fmt.Sprintf("Tập %d", idx)),
				Slug:       firstNonEmpty(ep.Slug, ep.Name, fmt.Sprintf("ep-%d", idx)),
				LinkM3U8:   firstNonEmpty(ep.LinkM3U8, ep.M3U8, ep.LinkPlay, ep.Link),
				Embed:      firstNonEmpty(ep.Embed, ep.LinkEmbed, ep.EmbedURL, ep.Link),
				ServerName: group.ServerName,
			})
		}
	}
	return episodes
}

// resolveImage rewrites source-relative image paths against the CDN base.
// Empty input resolves to the placeholder so rendering never sees a blank.
func (c *Client) resolveImage(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return types.PlaceholderPoster
	}
	if strings.HasPrefix(trimmed, "http") {
		return trimmed
	}
	cdn := strings.TrimSuffix(c.config.ImageCDN, "/")
	if cdn == "" {
		return trimmed
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return cdn + trimmed
}

// doRequest performs an HTTP GET request and decodes the JSON response.
func (c *Client) doRequest(ctx context.Context, path string, params url.Values, result interface{}) error {
	if !c.IsConfigured() {
		return ErrBaseURLMissing
	}

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
		c.logger.Warn().Int("status", resp.StatusCode).Str("path", path).Msg("Ophim API error")
		return fmt.Errorf("%w: status %d", ErrAPIError, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstNonEmptyFlex(values ...flexString) flexString {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
