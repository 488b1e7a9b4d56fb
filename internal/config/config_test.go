package config

import (
	"os"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		setup   func()
		cleanup func()
		wantErr bool
		check   func(*testing.T, *Config)
	}{
		{
			name: "load with defaults (no config file)",
			setup: func() {
				viper.Reset()
			},
			cleanup: func() {},
			wantErr: false,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Server.Port != 8765 {
					t.Errorf("Server.Port = %d, want 8765", cfg.Server.Port)
				}
				if cfg.Fetcher.BaseURL != "https://www.youtube.com" {
					t.Errorf("Fetcher.BaseURL = %s, want https://www.youtube.com", cfg.Fetcher.BaseURL)
				}
				if cfg.Poller.ScanInterval != time.Minute {
					t.Errorf("Poller.ScanInterval = %v, want 1m", cfg.Poller.ScanInterval)
				}
				if !cfg.Poller.FetchRecommended {
					t.Error("Poller.FetchRecommended = false, want true")
				}
				if cfg.Storage.HistoryPath != "data/yt_history.json" {
					t.Errorf("Storage.HistoryPath = %s, want data/yt_history.json", cfg.Storage.HistoryPath)
				}
				if cfg.Display.Timezone != "Asia/Seoul" {
					t.Errorf("Display.Timezone = %s, want Asia/Seoul", cfg.Display.Timezone)
				}
			},
		},
		{
			name: "load with environment variables",
			setup: func() {
				viper.Reset()
				viper.SetEnvPrefix("APP")
				viper.AutomaticEnv()
				os.Setenv("APP_SERVER_PORT", "9090")
				os.Setenv("APP_FETCHER_COOKIESPATH", "/tmp/cookies.txt")
				os.Setenv("APP_POLLER_SCANINTERVAL", "30s")
				os.Setenv("APP_DISPLAY_TIMEZONE", "UTC")
				// Manually bind env vars since AutomaticEnv doesn't work with nested keys
				viper.BindEnv("server.port", "APP_SERVER_PORT")
				viper.BindEnv("fetcher.cookiespath", "APP_FETCHER_COOKIESPATH")
				viper.BindEnv("poller.scaninterval", "APP_POLLER_SCANINTERVAL")
				viper.BindEnv("display.timezone", "APP_DISPLAY_TIMEZONE")
			},
			cleanup: func() {
				os.Unsetenv("APP_SERVER_PORT")
				os.Unsetenv("APP_FETCHER_COOKIESPATH")
				os.Unsetenv("APP_POLLER_SCANINTERVAL")
				os.Unsetenv("APP_DISPLAY_TIMEZONE")
			},
			wantErr: false,
			check: func(t *testing.T, cfg *Config) {
				if cfg.Server.Port != 9090 {
					t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
				}
				if cfg.Fetcher.CookiesPath != "/tmp/cookies.txt" {
					t.Errorf("Fetcher.CookiesPath = %s, want /tmp/cookies.txt", cfg.Fetcher.CookiesPath)
				}
				if cfg.Poller.ScanInterval != 30*time.Second {
					t.Errorf("Poller.ScanInterval = %v, want 30s", cfg.Poller.ScanInterval)
				}
				if cfg.Display.Timezone != "UTC" {
					t.Errorf("Display.Timezone = %s, want UTC", cfg.Display.Timezone)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}
			defer func() {
				if tt.cleanup != nil {
					tt.cleanup()
				}
			}()

			cfg, err := Load()
			if (err != nil) != tt.wantErr {
				t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && cfg == nil {
				t.Fatal("Load() returned nil config")
			}

			if tt.check != nil && cfg != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestSetDefaults(t *testing.T) {
	viper.Reset()
	setDefaults()

	tests := []struct {
		name string
		key  string
		want interface{}
	}{
		{"server port", "server.port", 8765},
		{"fetcher cookiespath", "fetcher.cookiespath", "config/youtube_cookies.txt"},
		{"fetcher baseurl", "fetcher.baseurl", "https://www.youtube.com"},
		{"poller fetchrecommended", "poller.fetchrecommended", true},
		{"storage historypath", "storage.historypath", "data/yt_history.json"},
		{"storage subscriptionspath", "storage.subscriptionspath", "data/yt_subscriptions.json"},
		{"display timezone", "display.timezone", "Asia/Seoul"},
		{"logging level", "logging.level", "info"},
		{"logging file", "logging.file", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := viper.Get(tt.key)
			if got != tt.want {
				t.Errorf("viper.Get(%s) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}

	// Test time.Duration defaults
	if viper.GetDuration("server.shutdowntimeout") != 30*time.Second {
		t.Errorf("server.shutdowntimeout = %v, want 30s", viper.GetDuration("server.shutdowntimeout"))
	}
	if viper.GetDuration("fetcher.requestpause") != 2*time.Second {
		t.Errorf("fetcher.requestpause = %v, want 2s", viper.GetDuration("fetcher.requestpause"))
	}
	if viper.GetDuration("poller.scaninterval") != time.Minute {
		t.Errorf("poller.scaninterval = %v, want 1m", viper.GetDuration("poller.scaninterval"))
	}
	if viper.GetDuration("poller.duplicatehorizon") != 5*time.Minute {
		t.Errorf("poller.duplicatehorizon = %v, want 5m", viper.GetDuration("poller.duplicatehorizon"))
	}
	if viper.GetDuration("poller.subscriptionsinterval") != 2*time.Minute {
		t.Errorf("poller.subscriptionsinterval = %v, want 2m", viper.GetDuration("poller.subscriptionsinterval"))
	}
	if viper.GetDuration("poller.refreshcooldown") != 10*time.Minute {
		t.Errorf("poller.refreshcooldown = %v, want 10m", viper.GetDuration("poller.refreshcooldown"))
	}
}
