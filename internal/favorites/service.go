// Package favorites stores per-user saved movies.
package favorites

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrSlugRequired = errors.New("movie slug is required")
	ErrNotFound     = errors.New("favorite not found")
)

// Favorite is a saved movie snapshot. Enough fields are kept to render a
// poster card without refetching the catalog.
type Favorite struct {
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	PosterURL string    `json:"posterUrl"`
	Year      string    `json:"year"`
	Quality   string    `json:"quality"`
	Lang      string    `json:"lang"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Service handles favorite persistence.
type Service struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewService creates a new favorites service.
func NewService(db *sql.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.With().Str("component", "favorites").Logger(),
	}
}

// List returns the user's favorites, most recently saved first.
func (s *Service) List(ctx context.Context, userID string) ([]Favorite, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT slug, name, poster_url, year, quality, lang, type, created_at, updated_at
		FROM favorite_movies
		WHERE user_id = ?
		ORDER BY updated_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	favorites := []Favorite{}
	for rows.Next() {
		var f Favorite
		if err := rows.Scan(&f.Slug, &f.Name, &f.PosterURL, &f.Year, &f.Quality, &f.Lang, &f.Type, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		favorites = append(favorites, f)
	}
	return favorites, rows.Err()
}

// Save upserts a favorite. Saving an existing slug refreshes its snapshot
// and bumps it to the top of the list.
func (s *Service) Save(ctx context.Context, userID string, fav Favorite) error {
	if fav.Slug == "" {
		return ErrSlugRequired
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO favorite_movies (user_id, slug, name, poster_url, year, quality, lang, type, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id, slug) DO UPDATE SET
			name = excluded.name,
			poster_url = excluded.poster_url,
			year = excluded.year,
			quality = excluded.quality,
			lang = excluded.lang,
			type = excluded.type,
			updated_at = CURRENT_TIMESTAMP
	`, userID, fav.Slug, fav.Name, fav.PosterURL, fav.Year, fav.Quality, fav.Lang, fav.Type)
	if err != nil {
		s.logger.Error().Err(err).Str("slug", fav.Slug).Msg("Failed to save favorite")
		return fmt.Errorf("failed to save favorite: %w", err)
	}

	return nil
}

// Delete removes a favorite by slug.
func (s *Service) Delete(ctx context.Context, userID, slug string) error {
	if slug == "" {
		return ErrSlugRequired
	}

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM favorite_movies WHERE user_id = ? AND slug = ?
	`, userID, slug)
	if err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// IsFavorite reports whether the user has saved the slug.
func (s *Service) IsFavorite(ctx context.Context, userID, slug string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM favorite_movies WHERE user_id = ? AND slug = ?
	`, userID, slug).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check favorite: %w", err)
	}
	return count > 0, nil
}
