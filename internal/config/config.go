package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Version is the application version, overridden at build time.
var Version = "dev"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Artwork  ArtworkConfig  `mapstructure:"artwork"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

// SourceConfig holds connection settings for one external catalog API.
type SourceConfig struct {
	BaseURL  string `mapstructure:"base_url"`
	ImageCDN string `mapstructure:"image_cdn"`
	Timeout  int    `mapstructure:"timeout"` // seconds
}

// TMDBConfig holds TMDB API configuration.
type TMDBConfig struct {
	APIKey       string `mapstructure:"api_key"`
	BaseURL      string `mapstructure:"base_url"`
	PosterBase   string `mapstructure:"poster_base"`
	BackdropBase string `mapstructure:"backdrop_base"`
	Timeout      int    `mapstructure:"timeout"` // seconds
}

// CatalogConfig holds configuration for the catalog aggregation layer.
type CatalogConfig struct {
	Ophim  SourceConfig `mapstructure:"ophim"`
	KKPhim SourceConfig `mapstructure:"kkphim"`
	TMDB   TMDBConfig   `mapstructure:"tmdb"`

	// Priority lists catalog source names highest first. Merge ties
	// break toward the earlier entry.
	Priority []string `mapstructure:"priority"`

	CacheTTLMinutes    int `mapstructure:"cache_ttl_minutes"`
	CacheMaxItems      int `mapstructure:"cache_max_items"`
	RefreshIntervalMin int `mapstructure:"refresh_interval_minutes"`
}

// ArtworkConfig holds configuration for the image proxy.
type ArtworkConfig struct {
	MaxConcurrent int `mapstructure:"max_concurrent"`
	Timeout       int `mapstructure:"timeout"` // seconds
}

// Default returns a Config with default values.
func Default() *Config {
	cfg := &Config{}
	v := viper.New()
	setDefaults(v)
	_ = v.Unmarshal(cfg)
	return cfg
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.phimhub")
	}

	v.SetEnvPrefix("PHIMHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults + env vars
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	v.SetDefault("database.path", "./data/phimhub.db")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)
	v.SetDefault("logging.compress", true)

	v.SetDefault("auth.jwt_secret", "")

	v.SetDefault("catalog.ophim.base_url", "https://ophim1.com")
	v.SetDefault("catalog.ophim.image_cdn", "https://img.ophim.live/uploads/movies")
	v.SetDefault("catalog.ophim.timeout", 15)

	v.SetDefault("catalog.kkphim.base_url", "https://phimapi.com/v1/api")
	v.SetDefault("catalog.kkphim.image_cdn", "https://phimimg.com")
	v.SetDefault("catalog.kkphim.timeout", 15)

	v.SetDefault("catalog.tmdb.api_key", "")
	v.SetDefault("catalog.tmdb.base_url", "https://api.themoviedb.org/3")
	v.SetDefault("catalog.tmdb.poster_base", "https://image.tmdb.org/t/p/w500")
	v.SetDefault("catalog.tmdb.backdrop_base", "https://image.tmdb.org/t/p/w780")
	v.SetDefault("catalog.tmdb.timeout", 15)

	v.SetDefault("catalog.priority", []string{"kkphim", "ophim"})
	v.SetDefault("catalog.cache_ttl_minutes", 5)
	v.SetDefault("catalog.cache_max_items", 1000)
	v.SetDefault("catalog.refresh_interval_minutes", 10)

	v.SetDefault("artwork.max_concurrent", 8)
	v.SetDefault("artwork.timeout", 30)
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
