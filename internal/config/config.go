package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jask/tuidispatch/subscriptions"
	"github.com/jask/tuidispatch/tasks"
)

// Config holds application configuration.
type Config struct {
	Runtime   RuntimeConfig
	History   HistoryConfig
	Log       LogConfig
	Weather   WeatherConfig
	Telemetry TelemetryConfig
}

// RuntimeConfig holds dispatch loop and registry settings.
type RuntimeConfig struct {
	TickInterval             time.Duration `mapstructure:"tick_interval"`
	RefreshInterval          time.Duration `mapstructure:"refresh_interval"`
	SearchDebounce           time.Duration `mapstructure:"search_debounce"`
	PausePolicyTasks         string        `mapstructure:"pause_policy_tasks"`
	PausePolicySubscriptions string        `mapstructure:"pause_policy_subscriptions"`
}

// HistoryConfig holds action history settings. An empty DBPath keeps
// history in memory only.
type HistoryConfig struct {
	Capacity int
	Include  string
	Exclude  string
	DBPath   string `mapstructure:"db_path"`
}

// LogConfig holds log file settings.
type LogConfig struct {
	Level string
	Path  string
}

// WeatherConfig holds the demo application's settings.
type WeatherConfig struct {
	City       string
	Latitude   float64
	Longitude  float64
	Units      string
	BaseURL    string        `mapstructure:"base_url"`
	GeocodeURL string        `mapstructure:"geocode_url"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// TelemetryConfig selects the OTLP trace endpoint. Tracing stays off unless
// Enabled is set and Endpoint is non-empty.
type TelemetryConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string `mapstructure:"service_name"`
}

// Load reads configuration from file and env. Env var overrides use prefix TUIDISPATCH_.
func Load() (Config, error) {
	v := viper.New()

	home := os.Getenv("HOME")
	v.SetDefault("runtime.tick_interval", 100*time.Millisecond)
	v.SetDefault("runtime.refresh_interval", 10*time.Minute)
	v.SetDefault("runtime.search_debounce", 300*time.Millisecond)
	v.SetDefault("runtime.pause_policy_tasks", "buffer")
	v.SetDefault("runtime.pause_policy_subscriptions", "buffer")
	v.SetDefault("history.capacity", 500)
	v.SetDefault("history.include", "")
	v.SetDefault("history.exclude", "")
	v.SetDefault("history.db_path", filepath.Join(home, ".local", "share", "tuidispatch", "history.db"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", filepath.Join(home, ".local", "state", "tuidispatch", "tuidispatch.log"))
	v.SetDefault("weather.city", "Kyiv, Ukraine")
	v.SetDefault("weather.latitude", 50.4501)
	v.SetDefault("weather.longitude", 30.5234)
	v.SetDefault("weather.units", "celsius")
	v.SetDefault("weather.base_url", "https://api.open-meteo.com/v1/forecast")
	v.SetDefault("weather.geocode_url", "https://geocoding-api.open-meteo.com/v1/search")
	v.SetDefault("weather.timeout", 10*time.Second)
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.service_name", "tuidispatch")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("TUIDISPATCH_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(home, ".config", "tuidispatch"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("TUIDISPATCH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgPath != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks values that cannot be expressed as defaults.
func (c Config) Validate() error {
	if _, err := tasks.ParsePausePolicy(c.Runtime.PausePolicyTasks); err != nil {
		return fmt.Errorf("runtime.pause_policy_tasks: %w", err)
	}
	if _, err := subscriptions.ParsePausePolicy(c.Runtime.PausePolicySubscriptions); err != nil {
		return fmt.Errorf("runtime.pause_policy_subscriptions: %w", err)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch strings.ToLower(c.Weather.Units) {
	case "celsius", "fahrenheit":
	default:
		return fmt.Errorf("weather.units: unknown unit %q", c.Weather.Units)
	}
	if c.Runtime.TickInterval <= 0 || c.Runtime.RefreshInterval <= 0 {
		return fmt.Errorf("runtime: intervals must be positive")
	}
	return nil
}

// TaskPausePolicy returns the parsed task pause policy.
func (r RuntimeConfig) TaskPausePolicy() tasks.PausePolicy {
	p, _ := tasks.ParsePausePolicy(r.PausePolicyTasks)
	return p
}

// SubscriptionPausePolicy returns the parsed subscription pause policy.
func (r RuntimeConfig) SubscriptionPausePolicy() subscriptions.PausePolicy {
	p, _ := subscriptions.ParsePausePolicy(r.PausePolicySubscriptions)
	return p
}

// SlogLevel parses Level ("debug", "info", "warn", "error").
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, err
	}
	return lvl, nil
}
