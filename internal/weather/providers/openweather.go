package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-assistant/internal/weather"
)

// DefaultBaseURL is the OpenWeatherMap 2.5 API root.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
}

// Option customizes an OpenWeatherProvider.
type Option func(*OpenWeatherProvider)

// WithBaseURL points the provider at another API root, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(p *OpenWeatherProvider) {
		if u != "" {
			p.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithHTTPClient replaces the default traced client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *OpenWeatherProvider) {
		if c != nil {
			p.client = c
		}
	}
}

func NewOpenWeatherProvider(apiKey string, opts ...Option) *OpenWeatherProvider {
	p := &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		client:  NewHTTPClient(0),
		circuit: newCircuitBreaker("openweathermap"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type conditionItem struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

type currentPayload struct {
	Name string `json:"name"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Weather []conditionItem `json:"weather"`
}

type forecastPayload struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp    *float64 `json:"temp"`
			TempMin *float64 `json:"temp_min"`
			TempMax *float64 `json:"temp_max"`
		} `json:"main"`
		Weather []conditionItem `json:"weather"`
	} `json:"list"`
	City struct {
		Name     string `json:"name"`
		Timezone int    `json:"timezone"`
	} `json:"city"`
}

func (p *OpenWeatherProvider) CurrentByCity(ctx context.Context, city, lang string) (weather.Reading, error) {
	values := url.Values{}
	values.Set("q", city)

	var payload currentPayload
	if err := p.get(ctx, "/weather", values, lang, city, &payload); err != nil {
		return weather.Reading{}, err
	}
	return payload.reading(), nil
}

func (p *OpenWeatherProvider) CurrentByCoords(ctx context.Context, lat, lon float64, lang string) (weather.Reading, error) {
	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))

	var payload currentPayload
	location := values.Get("lat") + "," + values.Get("lon")
	if err := p.get(ctx, "/weather", values, lang, location, &payload); err != nil {
		return weather.Reading{}, err
	}
	return payload.reading(), nil
}

func (p *OpenWeatherProvider) ForecastByCity(ctx context.Context, city string, count int, lang string) (weather.ForecastSeries, error) {
	values := url.Values{}
	values.Set("q", city)
	values.Set("cnt", strconv.Itoa(count))

	var payload forecastPayload
	if err := p.get(ctx, "/forecast", values, lang, city, &payload); err != nil {
		return weather.ForecastSeries{}, err
	}

	zone := time.FixedZone("", payload.City.Timezone)
	series := weather.ForecastSeries{
		Location: payload.City.Name,
		Samples:  make([]weather.ForecastSample, 0, len(payload.List)),
	}
	for _, item := range payload.List {
		temp, lo, hi, ok := sampleTemperatures(item.Main.Temp, item.Main.TempMin, item.Main.TempMax)
		if !ok {
			continue
		}
		series.Samples = append(series.Samples, weather.ForecastSample{
			Time:        time.Unix(item.Dt, 0).In(zone),
			Temperature: temp,
			TempMin:     lo,
			TempMax:     hi,
			Condition:   describe(item.Weather),
		})
	}
	return series, nil
}

// get issues one GET against path and decodes the JSON body into out.
func (p *OpenWeatherProvider) get(ctx context.Context, path string, values url.Values, lang, location string, out interface{}) error {
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")
	if lang != "" {
		values.Set("lang", lang)
	}

	u := fmt.Sprintf("%s%s?%s", p.baseURL, path, values.Encode())
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return &weather.ProviderError{Provider: p.name, Cause: "invalid request", Err: err}
	}

	body, err := doRequest(ctx, p.client, p.circuit, p.name, location, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &weather.ProviderError{Provider: p.name, Status: http.StatusOK, Cause: "invalid response body", Err: err}
	}
	return nil
}

func (c currentPayload) reading() weather.Reading {
	return weather.Reading{
		Location:    c.Name,
		Temperature: c.Main.Temp,
		Condition:   describe(c.Weather),
		Humidity:    c.Main.Humidity,
		WindSpeed:   c.Wind.Speed,
	}
}

func describe(items []conditionItem) string {
	if len(items) == 0 {
		return "unknown"
	}
	if items[0].Description != "" {
		return items[0].Description
	}
	if items[0].Main != "" {
		return items[0].Main
	}
	return "unknown"
}

// sampleTemperatures fills in whatever the sample omits: a missing temp is
// the midpoint of min and max, a missing bound is the temp.
func sampleTemperatures(temp, lo, hi *float64) (t, low, high float64, ok bool) {
	switch {
	case temp != nil:
		t = *temp
	case lo != nil && hi != nil:
		t = (*lo + *hi) / 2
	case lo != nil:
		t = *lo
	case hi != nil:
		t = *hi
	default:
		return 0, 0, 0, false
	}
	low, high = t, t
	if lo != nil {
		low = *lo
	}
	if hi != nil {
		high = *hi
	}
	return t, low, high, true
}
