// Package app assembles the gateway from configuration.
package app

import (
	"github.com/i474232898/weather-assistant/internal/config"
	"github.com/i474232898/weather-assistant/internal/store"
	"github.com/i474232898/weather-assistant/internal/weather"
	"github.com/i474232898/weather-assistant/internal/weather/providers"
)

// App holds the wired components shared by the server and the direct CLI.
type App struct {
	Config  *config.AppConfig
	Gateway *weather.Gateway
	History *store.MemoryStore
}

// New validates cfg and wires provider, history and gateway.
func New(cfg *config.AppConfig) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// In-memory answer log with configured retention.
	history := store.NewMemoryStore(cfg.HistoryMax, cfg.HistoryMaxAge)

	provider := providers.NewOpenWeatherProvider(cfg.APIKey,
		providers.WithBaseURL(cfg.BaseURL),
		providers.WithHTTPClient(providers.NewHTTPClient(cfg.Timeout)),
	)

	gw, err := weather.NewGateway(weather.Options{
		APIKey:   cfg.APIKey,
		Language: cfg.Language,
		Timeout:  cfg.Timeout,
	}, provider, history)
	if err != nil {
		return nil, err
	}

	return &App{Config: cfg, Gateway: gw, History: history}, nil
}
