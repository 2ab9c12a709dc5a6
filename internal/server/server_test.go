package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/streamvault/internal/config"
	"github.com/stwalsh4118/streamvault/internal/db"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server:   config.ServerConfig{Port: 8080, Host: "127.0.0.1", ReadTimeout: time.Second, WriteTimeout: time.Second},
		Database: config.DatabaseConfig{ConnectionTimeout: time.Second},
		Logging:  config.LoggingConfig{Level: "info"},
		Source:   config.SourceConfig{UserAgent: "test"},
		Favourites: config.FavouritesConfig{
			Backend:  config.FavouritesBackendSQLite,
			Key:      "streamvault_favourites",
			BoltPath: filepath.Join(t.TempDir(), "favourites.bolt"),
		},
		Catalog: config.CatalogConfig{Variant: config.CatalogVariantPlaylist},
	}
}

func setupServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()

	database, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, database.Migrate("file://../../migrations"))

	srv, err := New(cfg, database)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv
}

func TestRoutes(t *testing.T) {
	srv := setupServer(t, testConfig(t))
	handler := srv.Handler()

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "go_goroutines"))
}

func TestCORSAllowsPrincipalHeader(t *testing.T) {
	srv := setupServer(t, testConfig(t))

	req := httptest.NewRequest(http.MethodOptions, "/api/favourites", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "X-Principal")

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, strings.ToLower(w.Header().Get("Access-Control-Allow-Headers")), "x-principal")
}

func TestNew_BoltFavourites(t *testing.T) {
	cfg := testConfig(t)
	cfg.Favourites.Backend = config.FavouritesBackendBolt

	srv := setupServer(t, cfg)
	assert.NotNil(t, srv.kvCloser)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/favourites/m3u-0/toggle", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNew_InvalidRedisURL(t *testing.T) {
	cfg := testConfig(t)
	cfg.Favourites.Backend = config.FavouritesBackendRedis
	cfg.Favourites.RedisURL = "not a url"

	database, err := db.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer database.Close()

	_, err = New(cfg, database)
	assert.Error(t, err)
}
