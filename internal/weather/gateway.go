package weather

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/i474232898/weather-assistant/internal/query"
)

const (
	DefaultLanguage = "zh_cn"
	DefaultTimeout  = 10 * time.Second

	samplesPerDay = 8
	// maxForecastSamples is the provider's upper bound for cnt.
	maxForecastSamples = 40
)

// Options configures a Gateway. It is copied at construction.
type Options struct {
	APIKey   string
	Language string
	Timeout  time.Duration
	// ExtraCities extends the interpreter's built-in city hints.
	ExtraCities []string
}

// Gateway resolves intents against a Provider and renders the result as text.
type Gateway struct {
	opts        Options
	provider    Provider
	interpreter *query.Interpreter
	history     History
}

// NewGateway validates opts and returns a Gateway. history may be nil.
func NewGateway(opts Options, provider Provider, history History) (*Gateway, error) {
	if opts.APIKey == "" {
		return nil, &ConfigurationError{Key: "OPENWEATHERMAP_API_KEY", Reason: "is not set"}
	}
	if provider == nil {
		return nil, &ConfigurationError{Key: "provider", Reason: "is nil"}
	}
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Gateway{
		opts:        opts,
		provider:    provider,
		interpreter: query.NewInterpreter(opts.ExtraCities...),
		history:     history,
	}, nil
}

// Interpreter returns the interpreter used by Ask.
func (g *Gateway) Interpreter() *query.Interpreter {
	return g.interpreter
}

// Resolve performs the single provider call an intent maps to and formats
// the result.
func (g *Gateway) Resolve(ctx context.Context, intent query.Intent) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	switch in := intent.(type) {
	case query.CityCurrent:
		r, err := g.provider.CurrentByCity(ctx, in.City, g.opts.Language)
		if err != nil {
			return "", err
		}
		if r.Location == "" {
			r.Location = in.City
		}
		return FormatReading(r), nil

	case query.CoordsCurrent:
		r, err := g.provider.CurrentByCoords(ctx, in.Latitude, in.Longitude, g.opts.Language)
		if err != nil {
			return "", err
		}
		if r.Location == "" {
			r.Location = fmt.Sprintf("%s, %s", formatNumber(in.Latitude), formatNumber(in.Longitude))
		}
		return FormatReading(r), nil

	case query.CityForecast:
		days := query.ClampDays(in.Days)
		series, err := g.provider.ForecastByCity(ctx, in.City, min(days*samplesPerDay, maxForecastSamples), g.opts.Language)
		if err != nil {
			return "", err
		}
		if len(series.Samples) == 0 {
			return "", &ProviderError{Provider: g.provider.Name(), Cause: "empty forecast"}
		}
		if series.Location == "" {
			series.Location = in.City
		}
		return FormatForecast(AggregateForecast(series, days)), nil

	default:
		return "", errors.Errorf("unsupported intent %T", intent)
	}
}

// Ask interprets text and resolves it. Every failure is rendered into the
// returned Answer.
func (g *Gateway) Ask(ctx context.Context, text string) Answer {
	id := uuid.NewString()
	intent, err := g.interpreter.Interpret(text)
	if err != nil {
		log.Debug().Str("request_id", id).Str("query", text).Err(err).Msg("query not understood")
		return g.record(Answer{ID: id, Query: text, Text: RenderError(err), Failed: true, Err: err})
	}
	return g.answer(ctx, id, text, intent)
}

// Answer resolves an already structured intent. label is stored as the
// answer's query.
func (g *Gateway) Answer(ctx context.Context, label string, intent query.Intent) Answer {
	return g.answer(ctx, uuid.NewString(), label, intent)
}

func (g *Gateway) answer(ctx context.Context, id, label string, intent query.Intent) Answer {
	logger := log.With().Str("request_id", id).Str("intent", string(intent.Kind())).Logger()
	logger.Debug().Str("query", label).Msg("resolving")

	start := time.Now()
	text, err := g.Resolve(ctx, intent)
	a := Answer{ID: id, Query: label, Intent: intent.Kind(), Text: text}
	if err != nil {
		logger.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("weather request failed")
		a.Text = RenderError(err)
		a.Failed = true
		a.Err = err
	} else {
		logger.Debug().Dur("elapsed", time.Since(start)).Msg("resolved")
	}
	return g.record(a)
}

func (g *Gateway) record(a Answer) Answer {
	a.At = time.Now().UTC()
	if g.history != nil {
		g.history.Record(a)
	}
	return a
}
