// Package artwork proxies poster and backdrop images from upstream CDNs,
// bounding concurrent upstream fetches with a counting semaphore.
package artwork

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/phimhub/phimhub/internal/config"
)

var (
	ErrInvalidURL  = errors.New("invalid artwork URL")
	ErrFetchFailed = errors.New("artwork fetch failed")
)

// Image is a fetched upstream image ready to stream to a client.
type Image struct {
	ContentType string
	Body        io.ReadCloser
}

// gatedBody keeps the semaphore slot occupied until the body is closed,
// so the cap bounds whole downloads rather than just the header phase.
type gatedBody struct {
	io.ReadCloser
	release func()
}

func (b *gatedBody) Close() error {
	err := b.ReadCloser.Close()
	if b.release != nil {
		b.release()
		b.release = nil
	}
	return err
}

// Fetcher downloads images from upstream CDNs. At most MaxConcurrent
// fetches run at once; further callers wait on the semaphore until a
// slot frees or their context expires.
type Fetcher struct {
	httpClient *http.Client
	sem        chan struct{}
	logger     zerolog.Logger
}

// NewFetcher creates a fetcher honoring the configured concurrency cap.
func NewFetcher(cfg config.ArtworkConfig, logger zerolog.Logger) *Fetcher {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 8
	}
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		sem:        make(chan struct{}, maxConcurrent),
		logger:     logger.With().Str("component", "artwork").Logger(),
	}
}

// Fetch downloads the image at rawURL. The caller owns the returned body
// and must close it; the concurrency slot is held until the body is closed.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Image, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return nil, ErrInvalidURL
	}

	select {
	case f.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	release := func() { <-f.sem }

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		release()
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		release()
		f.logger.Warn().Err(err).Str("url", rawURL).Msg("Artwork fetch failed")
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		release()
		f.logger.Warn().Int("status", resp.StatusCode).Str("url", rawURL).Msg("Artwork fetch failed")
		return nil, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || !strings.HasPrefix(contentType, "image/") {
		contentType = "image/jpeg"
	}

	return &Image{
		ContentType: contentType,
		Body:        &gatedBody{ReadCloser: resp.Body, release: release},
	}, nil
}

// InFlight returns the number of fetches currently holding a slot.
func (f *Fetcher) InFlight() int {
	return len(f.sem)
}
