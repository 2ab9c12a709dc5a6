//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/streamvault/internal/config"
	"github.com/stwalsh4118/streamvault/internal/db"
	"github.com/stwalsh4118/streamvault/internal/middleware"
	"github.com/stwalsh4118/streamvault/internal/server"
)

// migrationsPath resolves the migrations directory relative to this file so
// tests work regardless of working directory
func migrationsPath(t *testing.T) string {
	t.Helper()
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "Failed to get current file path")
	root := filepath.Dir(filepath.Dir(filepath.Dir(filename)))
	return "file://" + filepath.Join(root, "migrations")
}

// testConfig returns a valid configuration pointing at sourceURL
func testConfig(t *testing.T, variant, sourceURL, relayURL string) *config.Config {
	t.Helper()
	return &config.Config{
		Server:   config.ServerConfig{Port: 8080, Host: "127.0.0.1", ReadTimeout: 5 * time.Second, WriteTimeout: 5 * time.Second},
		Database: config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "streamvault.db"), ConnectionTimeout: 5 * time.Second},
		Logging:  config.LoggingConfig{Level: "info"},
		Source: config.SourceConfig{
			DefaultURL: sourceURL,
			RelayURL:   relayURL,
			Timeout:    5 * time.Second,
			UserAgent:  "streamvault-integration",
		},
		Favourites: config.FavouritesConfig{Backend: config.FavouritesBackendSQLite, Key: "streamvault_favourites"},
		Catalog:    config.CatalogConfig{Variant: variant},
	}
}

// setupServer opens a migrated database and builds the full server for cfg
func setupServer(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	require.NoError(t, cfg.Validate())

	database, err := db.Open(db.Options{Path: cfg.Database.Path, ConnectTimeout: cfg.Database.ConnectionTimeout})
	require.NoError(t, err, "Failed to open database")
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, database.Migrate(migrationsPath(t)), "Failed to run migrations")

	srv, err := server.New(cfg, database)
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	return srv.Handler()
}

// call performs a JSON request as principal and decodes the response into out
func call(t *testing.T, h http.Handler, method, path, principal string, body, out interface{}) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if principal != "" {
		req.Header.Set(middleware.PrincipalHeader, principal)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if out != nil && w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w.Code
}
