// Package server wires the channel browser components and serves them over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stwalsh4118/streamvault/internal/api"
	"github.com/stwalsh4118/streamvault/internal/backend"
	"github.com/stwalsh4118/streamvault/internal/browser"
	"github.com/stwalsh4118/streamvault/internal/catalog"
	"github.com/stwalsh4118/streamvault/internal/config"
	"github.com/stwalsh4118/streamvault/internal/db"
	"github.com/stwalsh4118/streamvault/internal/favourites"
	"github.com/stwalsh4118/streamvault/internal/fetcher"
	"github.com/stwalsh4118/streamvault/internal/logger"
	"github.com/stwalsh4118/streamvault/internal/middleware"
)

const startupLoadTimeout = 2 * time.Minute

// Server represents the HTTP server
type Server struct {
	config   *config.Config
	db       *db.DB
	repos    *db.Repositories
	service  *backend.Service
	session  *browser.Session
	kvCloser io.Closer
	router   *gin.Engine
	server   *http.Server
	cancel   context.CancelFunc
}

// New creates a new server instance. The favourites store named in the
// configuration is opened here.
func New(cfg *config.Config, database *db.DB) (*Server, error) {
	repos := db.NewRepositories(database)
	var serviceOpts []backend.Option
	if cfg.Catalog.Variant == config.CatalogVariantBackend {
		serviceOpts = append(serviceOpts, backend.WithKnownChannelsOnly())
	}
	service := backend.NewService(repos, serviceOpts...)

	kv, closer, err := openFavouritesKV(cfg.Favourites, repos)
	if err != nil {
		return nil, err
	}

	initCtx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectionTimeout)
	defer cancel()
	local := favourites.LoadLocal(initCtx, kv, cfg.Favourites.Key)

	source := fetcher.New(fetcher.Options{
		RelayBase: cfg.Source.RelayURL,
		Timeout:   cfg.Source.Timeout,
		UserAgent: cfg.Source.UserAgent,
	})

	session := browser.New(
		browser.Options{Variant: cfg.Catalog.Variant, DefaultURL: cfg.Source.DefaultURL},
		fetcher.NewLoader(source),
		catalog.NewRegistry(),
		favourites.NewSelector(local, service),
		service,
	)

	return &Server{
		config:   cfg,
		db:       database,
		repos:    repos,
		service:  service,
		session:  session,
		kvCloser: closer,
	}, nil
}

// openFavouritesKV returns the configured local favourites store and, when
// it holds a connection of its own, a closer for it
func openFavouritesKV(cfg config.FavouritesConfig, repos *db.Repositories) (favourites.KV, io.Closer, error) {
	switch cfg.Backend {
	case config.FavouritesBackendRedis:
		kv, err := favourites.NewRedisKV(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open redis favourites store: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := kv.Ping(ctx); err != nil {
			// Unreachable redis behaves like an empty store
			logger.Log.Warn().Err(err).Msg("Redis favourites store not reachable")
		}
		return kv, kv, nil
	case config.FavouritesBackendBolt:
		kv, err := favourites.OpenBoltKV(cfg.BoltPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open bolt favourites store: %w", err)
		}
		return kv, kv, nil
	default:
		return favourites.NewSQLiteKV(repos.KV), nil, nil
	}
}

// Session returns the browsing session
func (s *Server) Session() *browser.Session {
	return s.session
}

// setupRouter initializes the Gin router with middleware and routes
func (s *Server) setupRouter() {
	if s.config.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s.router = gin.New()

	s.router.Use(middleware.Identify())
	s.router.Use(middleware.RequestLogger())
	s.router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AddAllowHeaders(middleware.PrincipalHeader)
	s.router.Use(cors.New(corsConfig))

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := s.router.Group("/api")

	api.SetupHealthRoutes(apiGroup, s.db, s.session)
	api.SetupBrowserRoutes(apiGroup, s.session)
	api.SetupBackendRoutes(apiGroup, s.service, s.session)
}

// Handler returns the configured router
func (s *Server) Handler() http.Handler {
	if s.router == nil {
		s.setupRouter()
	}
	return s.router
}

// loadInitialCatalog fills the catalog in the background so the server can
// accept requests while a large playlist downloads
func (s *Server) loadInitialCatalog(ctx context.Context) {
	go func() {
		ctx, cancel := context.WithTimeout(ctx, startupLoadTimeout)
		defer cancel()

		var (
			n   int
			err error
		)
		switch s.config.Catalog.Variant {
		case config.CatalogVariantBackend:
			n, err = s.session.RefreshBackend(ctx)
		default:
			if s.config.Source.DefaultURL == "" {
				return
			}
			n, err = s.session.LoadSource(ctx, "")
		}

		if err != nil {
			if fetcher.IsSuperseded(err) || errors.Is(err, context.Canceled) {
				return
			}
			logger.Log.Error().
				Err(err).
				Str("variant", s.config.Catalog.Variant).
				Msg("Initial catalog load failed")
			return
		}

		logger.Log.Info().
			Str("variant", s.config.Catalog.Variant).
			Int("channels", n).
			Msg("Initial catalog loaded")
	}()
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.Handler()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.loadInitialCatalog(ctx)

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.server = &http.Server{
		Addr:           addr,
		Handler:        s.router,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	logger.Log.Info().
		Str("host", s.config.Server.Host).
		Int("port", s.config.Server.Port).
		Str("variant", s.config.Catalog.Variant).
		Msg("Starting HTTP server")

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Log.Info().Msg("Shutting down server gracefully")

	if s.cancel != nil {
		s.cancel()
	}

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
	}

	if s.kvCloser != nil {
		if err := s.kvCloser.Close(); err != nil {
			logger.Log.Warn().Err(err).Msg("Failed to close favourites store")
		}
	}

	logger.Log.Info().Msg("Server stopped")
	return nil
}
