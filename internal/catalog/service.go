// Package catalog merges movie lists and episode streams from multiple
// external catalog APIs into one unified view.
package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"github.com/phimhub/phimhub/internal/catalog/kkphim"
	"github.com/phimhub/phimhub/internal/catalog/ophim"
	"github.com/phimhub/phimhub/internal/catalog/tmdb"
	"github.com/phimhub/phimhub/internal/catalog/types"
	"github.com/phimhub/phimhub/internal/config"
)

// Source is one external catalog adapter. Implementations return errors;
// the service absorbs them into empty results so aggregation proceeds with
// partial data.
type Source interface {
	Name() string
	IsConfigured() bool
	List(ctx context.Context, kind types.ListKind, page int) ([]types.Movie, error)
	ListByCategory(ctx context.Context, slug string, page int) ([]types.Movie, error)
	ListByCountry(ctx context.Context, slug string, page int) ([]types.Movie, error)
	Search(ctx context.Context, keyword string, page int) ([]types.Movie, error)
	GetDetail(ctx context.Context, slug string) (*types.Detail, error)
}

// PopularProvider serves the metadata-only popular rail and detail lookups
// for synthetic tmdb- slugs.
type PopularProvider interface {
	Name() string
	IsConfigured() bool
	Popular(ctx context.Context, page int) ([]types.Movie, error)
	GetDetail(ctx context.Context, slug string) (*types.Detail, error)
}

// SourceStatus describes one adapter for the system status endpoint.
type SourceStatus struct {
	Name       string `json:"name"`
	Configured bool   `json:"configured"`
}

// Service orchestrates catalog lookups across the configured sources.
type Service struct {
	sources  []Source // priority order, highest first
	priority []string
	popular  PopularProvider
	cache    *Cache
	logger   zerolog.Logger
}

// NewService creates a catalog service with real API clients, ordered by
// the configured source priority.
func NewService(cfg config.CatalogConfig, logger zerolog.Logger) *Service {
	byName := map[string]Source{
		"ophim":  ophim.NewClient(cfg.Ophim, logger),
		"kkphim": kkphim.NewClient(cfg.KKPhim, logger),
	}

	priority := cfg.Priority
	if len(priority) == 0 {
		priority = []string{"kkphim", "ophim"}
	}

	sources := make([]Source, 0, len(byName))
	names := make([]string, 0, len(byName))
	for _, name := range priority {
		if src, ok := byName[name]; ok {
			sources = append(sources, src)
			names = append(names, name)
		}
	}

	ttl := time.Duration(cfg.CacheTTLMinutes) * time.Minute
	cache := NewCache(CacheConfig{TTL: ttl, MaxItems: cfg.CacheMaxItems})

	return &Service{
		sources:  sources,
		priority: names,
		popular:  tmdb.NewClient(cfg.TMDB, logger),
		cache:    cache,
		logger:   logger.With().Str("component", "catalog").Logger(),
	}
}

// NewServiceWithSources creates a catalog service with custom sources (for
// testing). Sources are consulted in slice order, highest priority first.
func NewServiceWithSources(sources []Source, popular PopularProvider, logger zerolog.Logger) *Service {
	names := make([]string, len(sources))
	for i, src := range sources {
		names[i] = src.Name()
	}
	return &Service{
		sources:  sources,
		priority: names,
		popular:  popular,
		cache:    NewCache(DefaultCacheConfig()),
		logger:   logger.With().Str("component", "catalog").Logger(),
	}
}

// Cache exposes the result cache for the warm-up scheduler.
func (s *Service) Cache() *Cache {
	return s.cache
}

// Status reports each source's configuration state.
func (s *Service) Status() []SourceStatus {
	statuses := make([]SourceStatus, 0, len(s.sources)+1)
	for _, src := range s.sources {
		statuses = append(statuses, SourceStatus{Name: src.Name(), Configured: src.IsConfigured()})
	}
	if s.popular != nil {
		statuses = append(statuses, SourceStatus{Name: s.popular.Name(), Configured: s.popular.IsConfigured()})
	}
	return statuses
}

// List returns one page of a fixed browse list, merged across sources and
// deduplicated by slug. All-source failure yields an empty list, never an
// error.
func (s *Service) List(ctx context.Context, kind types.ListKind, page int) []types.Movie {
	key := fmt.Sprintf("list:%s:%d", kind, page)
	if cached, ok := s.cache.GetMovies(key); ok {
		return cached
	}

	movies := s.fanOut(ctx, "list", func(ctx context.Context, src Source) ([]types.Movie, error) {
		return src.List(ctx, kind, page)
	})

	s.cache.Set(key, movies)
	return movies
}

// ListByCategory returns one page of a genre, merged across sources.
func (s *Service) ListByCategory(ctx context.Context, slug string, page int) []types.Movie {
	key := fmt.Sprintf("category:%s:%d", slug, page)
	if cached, ok := s.cache.GetMovies(key); ok {
		return cached
	}

	movies := s.fanOut(ctx, "category", func(ctx context.Context, src Source) ([]types.Movie, error) {
		return src.ListByCategory(ctx, slug, page)
	})

	s.cache.Set(key, movies)
	return movies
}

// ListByCountry returns one page of a region, merged across sources.
func (s *Service) ListByCountry(ctx context.Context, slug string, page int) []types.Movie {
	key := fmt.Sprintf("country:%s:%d", slug, page)
	if cached, ok := s.cache.GetMovies(key); ok {
		return cached
	}

	movies := s.fanOut(ctx, "country", func(ctx context.Context, src Source) ([]types.Movie, error) {
		return src.ListByCountry(ctx, slug, page)
	})

	s.cache.Set(key, movies)
	return movies
}

// Search returns one page of keyword results merged across sources. The
// keyword is additionally slugified and probed as a genre and region so
// queries like "hành động" surface category pages too.
func (s *Service) Search(ctx context.Context, keyword string, page int) []types.Movie {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return []types.Movie{}
	}

	key := fmt.Sprintf("search:%s:%d", keyword, page)
	if cached, ok := s.cache.GetMovies(key); ok {
		return cached
	}

	slug := Slugify(keyword)

	matches := s.fanOut(ctx, "search", func(ctx context.Context, src Source) ([]types.Movie, error) {
		return src.Search(ctx, keyword, page)
	})
	byCategory := s.fanOut(ctx, "search-category", func(ctx context.Context, src Source) ([]types.Movie, error) {
		return src.ListByCategory(ctx, slug, 1)
	})
	byCountry := s.fanOut(ctx, "search-country", func(ctx context.Context, src Source) ([]types.Movie, error) {
		return src.ListByCountry(ctx, slug, 1)
	})

	combined := make([]types.Movie, 0, len(matches)+len(byCategory)+len(byCountry))
	combined = append(combined, matches...)
	combined = append(combined, byCategory...)
	combined = append(combined, byCountry...)
	movies := DedupeMovies(combined)

	s.cache.Set(key, movies)
	return movies
}

// Popular returns one page of the TMDB popular rail. Unlike catalog
// operations this fails hard on missing configuration: no request without
// an API key is valid.
func (s *Service) Popular(ctx context.Context, page int) ([]types.Movie, error) {
	if s.popular == nil {
		return nil, tmdb.ErrAPIKeyMissing
	}
	return s.popular.Popular(ctx, page)
}

// GetDetail fetches and merges a title's detail and episode list from all
// sources. Synthetic tmdb- slugs route to the metadata provider. All-source
// failure yields {Movie: nil, Episodes: []} with no error.
func (s *Service) GetDetail(ctx context.Context, slug string) types.Detail {
	if tmdb.IsTMDBSlug(slug) {
		return s.tmdbDetail(ctx, slug)
	}

	bySource := s.fanOutDetails(ctx, slug)
	detail := MergeDetails(s.priority, bySource)

	if detail.Movie == nil {
		s.logger.Warn().Str("slug", slug).Msg("No source had data for title")
	}
	return detail
}

func (s *Service) tmdbDetail(ctx context.Context, slug string) types.Detail {
	if s.popular == nil {
		return types.Detail{Episodes: []types.Episode{}}
	}
	detail, err := s.popular.GetDetail(ctx, slug)
	if err != nil {
		s.logger.Warn().Err(err).Str("slug", slug).Msg("TMDB detail failed, using empty result")
		return types.Detail{Episodes: []types.Episode{}}
	}
	return *detail
}

// FindStream attempts the recovery path for titles without streams: search
// the catalog sources for a name+year match and return the matching title,
// or nil when none is found.
func (s *Service) FindStream(ctx context.Context, slug string) *types.Movie {
	detail := s.GetDetail(ctx, slug)
	if detail.Movie == nil {
		return nil
	}
	if len(detail.Episodes) > 0 {
		return detail.Movie
	}

	candidates := s.Search(ctx, detail.Movie.Name, 1)
	if match := FindStreamableMatch(detail.Movie, candidates); match != nil {
		return match
	}
	if detail.Movie.OriginName != "" && detail.Movie.OriginName != detail.Movie.Name {
		candidates = s.Search(ctx, detail.Movie.OriginName, 1)
		if match := FindStreamableMatch(detail.Movie, candidates); match != nil {
			return match
		}
	}
	return nil
}

// fanOut issues one operation against every source concurrently, absorbs
// per-source failures to empty lists, concatenates in priority order, and
// deduplicates by slug.
func (s *Service) fanOut(ctx context.Context, op string, fn func(context.Context, Source) ([]types.Movie, error)) []types.Movie {
	results := make([][]types.Movie, len(s.sources))

	p := pool.New().WithContext(ctx)
	for i, src := range s.sources {
		p.Go(func(ctx context.Context) error {
			movies, err := fn(ctx, src)
			if err != nil {
				s.logger.Warn().
					Err(err).
					Str("source", src.Name()).
					Str("op", op).
					Msg("Source call failed, using empty result")
				return nil
			}
			results[i] = movies
			return nil
		})
	}
	_ = p.Wait()

	combined := make([]types.Movie, 0)
	for _, movies := range results {
		combined = append(combined, movies...)
	}
	return DedupeMovies(combined)
}

// fanOutDetails issues GetDetail against every source concurrently. Failed
// sources are simply absent from the result map.
func (s *Service) fanOutDetails(ctx context.Context, slug string) map[string]*types.Detail {
	results := make([]*types.Detail, len(s.sources))

	p := pool.New().WithContext(ctx)
	for i, src := range s.sources {
		p.Go(func(ctx context.Context) error {
			detail, err := src.GetDetail(ctx, slug)
			if err != nil {
				s.logger.Warn().
					Err(err).
					Str("source", src.Name()).
					Str("slug", slug).
					Msg("Detail fetch failed, treating as missing")
				return nil
			}
			results[i] = detail
			return nil
		})
	}
	_ = p.Wait()

	bySource := make(map[string]*types.Detail, len(s.sources))
	for i, detail := range results {
		if detail != nil {
			bySource[s.sources[i].Name()] = detail
		}
	}
	return bySource
}

// Slugify converts free text into the URL-safe form the catalog APIs use
// for genre and region keys.
func Slugify(text string) string {
	plain := strings.ToLower(stripDiacritics(text))
	var b strings.Builder
	b.Grow(len(plain))
	lastDash := true
	for _, r := range plain {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteRune('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
