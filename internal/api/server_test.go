package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phimhub/phimhub/internal/config"
	"github.com/phimhub/phimhub/internal/testutil"
)

func setupTestServer(t *testing.T) *Server {
	t.Helper()

	tdb := testutil.NewTestDB(t)

	cfg := config.Default()
	cfg.Auth.JWTSecret = "test-secret"

	server, err := NewServer(tdb.Conn, cfg, tdb.Logger)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	return server
}

func TestHealthCheck(t *testing.T) {
	server := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	server.echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want %d", rec.Code, http.StatusOK)
	}

	var response map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["status"] != "ok" {
		t.Errorf("unexpected health response: %v", response)
	}
}

func TestSystemStatus(t *testing.T) {
	server := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/system/status", nil)
	rec := httptest.NewRecorder()

	server.echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var response struct {
		Version string `json:"version"`
		Sources []struct {
			Name       string `json:"name"`
			Configured bool   `json:"configured"`
		} `json:"sources"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	// Default config has both catalog sources configured, TMDB keyless.
	names := make(map[string]bool)
	for _, src := range response.Sources {
		names[src.Name] = src.Configured
	}
	if !names["kkphim"] || !names["ophim"] {
		t.Errorf("expected catalog sources configured, got %v", names)
	}
	if configured, ok := names["tmdb"]; !ok || configured {
		t.Errorf("expected tmdb present but unconfigured, got %v", names)
	}
}

func TestAuthFlow(t *testing.T) {
	server := setupTestServer(t)

	// Register
	body := `{"email": "viewer@example.com", "password": "hunter22", "displayName": "Viewer"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}

	var registered struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &registered); err != nil || registered.Token == "" {
		t.Fatalf("expected a token, got %s", rec.Body.String())
	}

	// Login
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email": "viewer@example.com", "password": "hunter22"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}

	// Me requires the token
	req = httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	rec = httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("me without token status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+registered.Token)
	rec = httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("me status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestFavoritesFlow(t *testing.T) {
	server := setupTestServer(t)

	// Register to get a token
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(`{"email": "a@b.c", "password": "pass"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d", rec.Code)
	}

	var registered struct {
		Token string `json:"token"`
	}
	json.Unmarshal(rec.Body.Bytes(), &registered)

	// Unauthenticated access is rejected
	req = httptest.NewRequest(http.MethodGet, "/api/v1/favorites", nil)
	rec = httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("favorites without token status = %d", rec.Code)
	}

	// Save
	req = httptest.NewRequest(http.MethodPost, "/api/v1/favorites", strings.NewReader(`{"slug": "phim-a", "name": "Phim A"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+registered.Token)
	rec = httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("save favorite status = %d, body %s", rec.Code, rec.Body.String())
	}

	// List
	req = httptest.NewRequest(http.MethodGet, "/api/v1/favorites", nil)
	req.Header.Set("Authorization", "Bearer "+registered.Token)
	rec = httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list favorites status = %d", rec.Code)
	}

	var favorites []struct {
		Slug string `json:"slug"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &favorites); err != nil {
		t.Fatalf("failed to decode favorites: %v", err)
	}
	if len(favorites) != 1 || favorites[0].Slug != "phim-a" {
		t.Errorf("unexpected favorites: %v", favorites)
	}

	// Delete
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/favorites/phim-a", nil)
	req.Header.Set("Authorization", "Bearer "+registered.Token)
	rec = httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete favorite status = %d", rec.Code)
	}
}

func TestCatalogValidation(t *testing.T) {
	server := setupTestServer(t)

	// Unknown list kind is a 400
	req := httptest.NewRequest(http.MethodGet, "/api/v1/catalog/unknown", nil)
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown kind status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	// Blank search keyword returns an empty list, not an error
	req = httptest.NewRequest(http.MethodGet, "/api/v1/catalog/search?keyword=", nil)
	rec = httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("blank search status = %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("expected empty JSON array, got %s", body)
	}

	// Popular without a TMDB key is a 503
	req = httptest.NewRequest(http.MethodGet, "/api/v1/catalog/popular", nil)
	rec = httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("popular without key status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestArtworkValidation(t *testing.T) {
	server := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/artwork", nil)
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing url status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/artwork?url=not-a-url", nil)
	rec = httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid url status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
