// Package config provides configuration management using Viper.
// It loads configuration from environment variables, .env files, and config files.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultServerPort                = 8080
	defaultServerHost                = "0.0.0.0"
	defaultReadTimeout               = 30 * time.Second
	defaultWriteTimeout              = 30 * time.Second
	defaultDatabasePath              = "./data/streamvault.db"
	defaultDatabaseConnectionTimeout = 5 * time.Second
	defaultDatabaseEnableWAL         = true
	defaultMigrationsPath            = "file://./migrations"
	defaultLogLevel                  = "info"
	defaultLogPretty                 = false
	defaultSourceURL                 = "https://iptv-org.github.io/iptv/index.m3u"
	defaultSourceRelayURL            = "https://corsproxy.io/?url="
	defaultSourceTimeout             = 0 * time.Second
	defaultSourceUserAgent           = "StreamVault/1.0"
	defaultFavouritesBackend         = FavouritesBackendSQLite
	defaultFavouritesKey             = "streamvault_favourites"
	defaultFavouritesBoltPath        = "./data/favourites.bolt"
	defaultCatalogVariant            = CatalogVariantPlaylist
	envPrefix                        = "STREAMVAULT"
)

// Favourites storage backends
const (
	FavouritesBackendSQLite = "sqlite"
	FavouritesBackendRedis  = "redis"
	FavouritesBackendBolt   = "bolt"
)

// Catalog variants
const (
	// CatalogVariantPlaylist merges manual channels with a parsed playlist source
	CatalogVariantPlaylist = "playlist"
	// CatalogVariantBackend uses the backend channel list as the sole catalog
	CatalogVariantBackend = "backend"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Logging    LoggingConfig
	Source     SourceConfig
	Favourites FavouritesConfig
	Catalog    CatalogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Path              string
	ConnectionTimeout time.Duration
	EnableWAL         bool
	MigrationsPath    string
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Pretty bool
}

// SourceConfig holds playlist source retrieval configuration
type SourceConfig struct {
	// DefaultURL is loaded at startup when set
	DefaultURL string
	// RelayURL is prefixed to the query-escaped target URL for the fallback attempt
	RelayURL  string
	Timeout   time.Duration
	UserAgent string
}

// FavouritesConfig selects where the local favourites set is persisted
type FavouritesConfig struct {
	Backend  string
	Key      string
	RedisURL string
	BoltPath string
}

// CatalogConfig holds catalog assembly configuration
type CatalogConfig struct {
	Variant string
}

// Load reads configuration from .env file, config files, environment variables, and defaults
func Load() (*Config, error) {
	_ = godotenv.Load() // nolint:errcheck // .env file is optional

	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/streamvault")

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.host", defaultServerHost)
	v.SetDefault("server.readtimeout", defaultReadTimeout)
	v.SetDefault("server.writetimeout", defaultWriteTimeout)

	v.SetDefault("database.path", defaultDatabasePath)
	v.SetDefault("database.connectiontimeout", defaultDatabaseConnectionTimeout)
	v.SetDefault("database.enablewal", defaultDatabaseEnableWAL)
	v.SetDefault("database.migrationspath", defaultMigrationsPath)

	v.SetDefault("logging.level", defaultLogLevel)
	v.SetDefault("logging.pretty", defaultLogPretty)

	v.SetDefault("source.defaulturl", defaultSourceURL)
	v.SetDefault("source.relayurl", defaultSourceRelayURL)
	v.SetDefault("source.timeout", defaultSourceTimeout)
	v.SetDefault("source.useragent", defaultSourceUserAgent)

	v.SetDefault("favourites.backend", defaultFavouritesBackend)
	v.SetDefault("favourites.key", defaultFavouritesKey)
	v.SetDefault("favourites.redisurl", "")
	v.SetDefault("favourites.boltpath", defaultFavouritesBoltPath)

	v.SetDefault("catalog.variant", defaultCatalogVariant)
}

// Validate checks that configuration values are valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("invalid read timeout: %v (must be > 0)", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("invalid write timeout: %v (must be > 0)", c.Server.WriteTimeout)
	}
	if c.Database.ConnectionTimeout <= 0 {
		return fmt.Errorf("invalid database connection timeout: %v (must be > 0)", c.Database.ConnectionTimeout)
	}

	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.Logging.Level, strings.Join(validLevels, ", "))
	}

	// A zero timeout means the fetch waits for the transport
	if c.Source.Timeout < 0 {
		return fmt.Errorf("invalid source timeout: %v (must be >= 0)", c.Source.Timeout)
	}
	if c.Source.RelayURL != "" {
		if u, err := url.Parse(c.Source.RelayURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("invalid source relay url: %q (must be an http or https URL)", c.Source.RelayURL)
		}
	}

	validBackends := []string{FavouritesBackendSQLite, FavouritesBackendRedis, FavouritesBackendBolt}
	if !contains(validBackends, c.Favourites.Backend) {
		return fmt.Errorf("invalid favourites backend: %s (must be one of: %s)", c.Favourites.Backend, strings.Join(validBackends, ", "))
	}
	if c.Favourites.Key == "" {
		return errors.New("favourites key must not be empty")
	}
	if c.Favourites.Backend == FavouritesBackendRedis && c.Favourites.RedisURL == "" {
		return errors.New("favourites redis url is required when backend is redis")
	}
	if c.Favourites.Backend == FavouritesBackendBolt && c.Favourites.BoltPath == "" {
		return errors.New("favourites bolt path is required when backend is bolt")
	}

	validVariants := []string{CatalogVariantPlaylist, CatalogVariantBackend}
	if !contains(validVariants, c.Catalog.Variant) {
		return fmt.Errorf("invalid catalog variant: %s (must be one of: %s)", c.Catalog.Variant, strings.Join(validVariants, ", "))
	}

	return nil
}

// contains checks if a string slice contains a specific value
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
