// Package config provides configuration management for the application.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type Config struct {
	Server  ServerConfig
	Fetcher FetcherConfig
	Poller  PollerConfig
	Storage StorageConfig
	Display DisplayConfig
	Logging LoggingConfig
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int
	ShutdownTimeout time.Duration
}

// FetcherConfig contains the authenticated session configuration.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type FetcherConfig struct {
	CookiesPath    string
	BaseURL        string
	RequestTimeout time.Duration
	ProbeTimeout   time.Duration
	RequestPause   time.Duration
}

// PollerConfig contains the background polling cadences. Subscriptions and
// recommendations run on their own longer intervals to stay under upstream
// rate limits.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type PollerConfig struct {
	ScanInterval          time.Duration
	DuplicateHorizon      time.Duration
	SubscriptionsInterval time.Duration
	RecommendedInterval   time.Duration
	FetchRecommended      bool
	RefreshCooldown       time.Duration
}

// StorageConfig locates the two persisted JSON documents.
type StorageConfig struct {
	HistoryPath       string
	SubscriptionsPath string
}

// DisplayConfig controls presentation-facing behavior; the timezone decides
// which calendar day a watched video is recorded under.
type DisplayConfig struct {
	Timezone string
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string
	File  string
}

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	// Server
	viper.SetDefault("server.port", 8765)
	viper.SetDefault("server.shutdowntimeout", 30*time.Second)

	// Fetcher
	viper.SetDefault("fetcher.cookiespath", "config/youtube_cookies.txt")
	viper.SetDefault("fetcher.baseurl", "https://www.youtube.com")
	viper.SetDefault("fetcher.requesttimeout", 10*time.Second)
	viper.SetDefault("fetcher.probetimeout", 3*time.Second)
	viper.SetDefault("fetcher.requestpause", 2*time.Second)

	// Poller
	viper.SetDefault("poller.scaninterval", time.Minute)
	viper.SetDefault("poller.duplicatehorizon", 5*time.Minute)
	viper.SetDefault("poller.subscriptionsinterval", 2*time.Minute)
	viper.SetDefault("poller.recommendedinterval", 30*time.Minute)
	viper.SetDefault("poller.fetchrecommended", true)
	viper.SetDefault("poller.refreshcooldown", 10*time.Minute)

	// Storage
	viper.SetDefault("storage.historypath", "data/yt_history.json")
	viper.SetDefault("storage.subscriptionspath", "data/yt_subscriptions.json")

	// Display
	viper.SetDefault("display.timezone", "Asia/Seoul")

	// Logging
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.file", "")
}
