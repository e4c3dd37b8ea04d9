package kkphim

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/phimhub/phimhub/internal/catalog/types"
	"github.com/phimhub/phimhub/internal/config"
)

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/danh-sach/phim-moi-cap-nhat":
			if r.URL.Query().Get("page") == "" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.Write([]byte(`{
				"data": {"items": [
					{"slug": "phim-a", "name": "Phim A", "poster_url": "upload/phim-a.jpg", "thumb_url": "upload/phim-a-thumb.jpg", "year": 2024},
					{"slug": "phim-a", "name": "Phim A duplicate"},
					{"slug": "phim-b", "name": "Phim B"}
				]}
			}`))
		case "/phim/phim-a":
			w.Write([]byte(`{
				"item": {
					"slug": "phim-a",
					"name": "Phim A",
					"episode_current": "Hoàn Tất (2/2)",
					"episodes": [
						{"server_name": "Thuyết Minh", "server_data": [
							{"name": "Tập 1", "slug": "tap-1", "link_m3u8": "https://cdn/tm/1.m3u8"},
							{"name": "Tập 2", "slug": "tap-2", "link_embed": "https://cdn/embed/2"}
						]}
					]
				}
			}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func testClient(serverURL string) *Client {
	return NewClient(config.SourceConfig{
		BaseURL:  serverURL,
		ImageCDN: "https://phimimg.com",
		Timeout:  5,
	}, zerolog.Nop())
}

func TestClient_List(t *testing.T) {
	server := setupTestServer(t)
	defer server.Close()

	client := testClient(server.URL)
	movies, err := client.List(context.Background(), types.ListLatest, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Within-source duplicate slug is dropped, first occurrence kept.
	if len(movies) != 2 {
		t.Fatalf("expected 2 movies after dedupe, got %d", len(movies))
	}
	if movies[0].Name != "Phim A" {
		t.Errorf("first occurrence must win, got %q", movies[0].Name)
	}

	first := movies[0]
	if first.PosterURL != "https://phimimg.com/upload/phim-a.jpg" {
		t.Errorf("expected CDN-joined poster, got %q", first.PosterURL)
	}
	if first.ThumbURL != "https://phimimg.com/upload/phim-a-thumb.jpg" {
		t.Errorf("poster and thumb must stay distinct, got %q", first.ThumbURL)
	}
	if first.Year != "2024" {
		t.Errorf("numeric year should normalize to string, got %q", first.Year)
	}
	if first.Source != "kkphim" {
		t.Errorf("expected source tag, got %q", first.Source)
	}

	// No images at all resolves to the placeholder.
	if movies[1].PosterURL != types.PlaceholderPoster {
		t.Errorf("expected placeholder poster, got %q", movies[1].PosterURL)
	}
}

func TestClient_GetDetail(t *testing.T) {
	server := setupTestServer(t)
	defer server.Close()

	client := testClient(server.URL)
	detail, err := client.GetDetail(context.Background(), "phim-a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if detail.Movie == nil || detail.Movie.Slug != "phim-a" {
		t.Fatalf("unexpected movie: %+v", detail.Movie)
	}
	if detail.Movie.EpisodeCurrent != "Hoàn Tất (2/2)" {
		t.Errorf("unexpected episode_current: %q", detail.Movie.EpisodeCurrent)
	}
	if len(detail.Movie.Origin) == 0 {
		t.Error("expected the raw source record to be retained")
	}

	if len(detail.Episodes) != 2 {
		t.Fatalf("expected 2 episodes, got %d", len(detail.Episodes))
	}
	if detail.Episodes[0].ServerName != "Thuyết Minh" {
		t.Errorf("unexpected server label: %q", detail.Episodes[0].ServerName)
	}
	if detail.Episodes[1].Embed != "https://cdn/embed/2" {
		t.Errorf("expected link_embed to map, got %+v", detail.Episodes[1])
	}
}

func TestClient_Unconfigured(t *testing.T) {
	client := NewClient(config.SourceConfig{}, zerolog.Nop())

	if client.IsConfigured() {
		t.Error("expected unconfigured client")
	}
	if _, err := client.List(context.Background(), types.ListLatest, 1); err != ErrBaseURLMissing {
		t.Errorf("expected ErrBaseURLMissing, got %v", err)
	}
}

func TestClient_APIError(t *testing.T) {
	server := setupTestServer(t)
	defer server.Close()

	client := testClient(server.URL)
	if _, err := client.GetDetail(context.Background(), "missing"); err == nil {
		t.Error("expected error for 404 response")
	}
}
