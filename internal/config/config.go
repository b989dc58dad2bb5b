package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/i474232898/weather-assistant/internal/weather"
	"github.com/i474232898/weather-assistant/internal/weather/providers"
)

// AppConfig is the immutable process configuration handed to constructors.
type AppConfig struct {
	APIKey   string
	BaseURL  string
	Language string

	// Timeout bounds every provider call.
	Timeout time.Duration
	Verbose bool

	// HTTPAddr switches the server from MCP over stdio to the HTTP API.
	HTTPAddr string

	// Answer history retention.
	HistoryMax    int           // max number of answers (0 = unlimited)
	HistoryMaxAge time.Duration // max age of answers (0 = unlimited)
}

// settings maps viper keys to environment variables.
var settings = map[string]string{
	"api_key":         "OPENWEATHERMAP_API_KEY",
	"base_url":        "OPENWEATHERMAP_BASE_URL",
	"lang":            "WEATHER_LANG",
	"timeout":         "PROVIDER_TIMEOUT",
	"verbose":         "WEATHER_VERBOSE",
	"http_addr":       "WEATHER_HTTP_ADDR",
	"history_max":     "HISTORY_MAX_ENTRIES",
	"history_max_age": "HISTORY_MAX_AGE",
}

// flagKeys maps command-line flags to viper keys.
var flagKeys = map[string]string{
	"verbose":          "verbose",
	"provider-timeout": "timeout",
	"http":             "http_addr",
}

// Load reads .env (if present), the environment and any of the known flags
// present in flags. flags may be nil.
func Load(flags *pflag.FlagSet) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	v := viper.New()
	v.SetDefault("base_url", providers.DefaultBaseURL)
	v.SetDefault("lang", weather.DefaultLanguage)
	v.SetDefault("timeout", weather.DefaultTimeout)
	v.SetDefault("verbose", false)
	v.SetDefault("history_max", 100)
	v.SetDefault("history_max_age", 24*time.Hour)

	for key, env := range settings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}
	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	cfg := &AppConfig{
		APIKey:        v.GetString("api_key"),
		BaseURL:       v.GetString("base_url"),
		Language:      v.GetString("lang"),
		Timeout:       v.GetDuration("timeout"),
		Verbose:       v.GetBool("verbose"),
		HTTPAddr:      v.GetString("http_addr"),
		HistoryMax:    v.GetInt("history_max"),
		HistoryMaxAge: v.GetDuration("history_max_age"),
	}
	if cfg.Timeout <= 0 {
		return nil, &weather.ConfigurationError{Key: settings["timeout"], Reason: "must be a positive duration"}
	}
	return cfg, nil
}

// Validate reports settings required to reach the provider.
func (c *AppConfig) Validate() error {
	if c.APIKey == "" {
		return &weather.ConfigurationError{Key: settings["api_key"], Reason: "is not set"}
	}
	return nil
}
