package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-assistant/internal/store"
	"github.com/i474232898/weather-assistant/internal/weather"
)

type stubProvider struct {
	err error
}

func (s stubProvider) Name() string { return "stub" }

func (s stubProvider) CurrentByCity(ctx context.Context, city, lang string) (weather.Reading, error) {
	if s.err != nil {
		return weather.Reading{}, s.err
	}
	return weather.Reading{Location: city, Temperature: 20, Condition: "晴", Humidity: 40, WindSpeed: 3}, nil
}

func (s stubProvider) CurrentByCoords(ctx context.Context, lat, lon float64, lang string) (weather.Reading, error) {
	if s.err != nil {
		return weather.Reading{}, s.err
	}
	return weather.Reading{Location: "Somewhere", Temperature: 1, Condition: "fog", Humidity: 90, WindSpeed: 1}, nil
}

func (s stubProvider) ForecastByCity(ctx context.Context, city string, count int, lang string) (weather.ForecastSeries, error) {
	if s.err != nil {
		return weather.ForecastSeries{}, s.err
	}
	day := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return weather.ForecastSeries{Location: city, Samples: []weather.ForecastSample{
		{Time: day, Temperature: 10, TempMin: 8, TempMax: 12, Condition: "rain"},
	}}, nil
}

func newTestApp(t *testing.T, p weather.Provider) (*fiber.App, *store.MemoryStore) {
	t.Helper()
	history := store.NewMemoryStore(10, time.Hour)
	gw, err := weather.NewGateway(weather.Options{APIKey: "k"}, p, history)
	require.NoError(t, err)

	app := fiber.New()
	RegisterRoutes(app, gw, history)
	return app, history
}

func get(t *testing.T, app *fiber.App, target string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil))
	require.NoError(t, err)
	return resp
}

func TestCurrentWeather(t *testing.T) {
	app, _ := newTestApp(t, stubProvider{})

	resp := get(t, app, "/api/v1/weather/current?city=Paris")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var a weather.Answer
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&a))
	assert.Equal(t, "Paris: 晴, 20°C, humidity 40%, wind 3", a.Text)

	resp = get(t, app, "/api/v1/weather/current")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// TestCoordinatesValidation verifies that the coordinates endpoint enforces
// latitude and longitude ranges.
func TestCoordinatesValidation(t *testing.T) {
	app, _ := newTestApp(t, stubProvider{})

	tests := []struct {
		target string
		status int
	}{
		{"/api/v1/weather/coordinates?lat=39.9&lon=116.4", http.StatusOK},
		{"/api/v1/weather/coordinates?lat=91&lon=0", http.StatusBadRequest},
		{"/api/v1/weather/coordinates?lat=0&lon=-181", http.StatusBadRequest},
		{"/api/v1/weather/coordinates?lat=abc&lon=0", http.StatusBadRequest},
		{"/api/v1/weather/coordinates?lat=0", http.StatusBadRequest},
	}
	for _, tt := range tests {
		resp := get(t, app, tt.target)
		assert.Equal(t, tt.status, resp.StatusCode, tt.target)
	}
}

func TestForecast(t *testing.T) {
	app, _ := newTestApp(t, stubProvider{})

	resp := get(t, app, "/api/v1/weather/forecast?city=Oslo&days=2")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var a weather.Answer
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&a))
	assert.Equal(t, "Oslo forecast for 2 days:\n2024-05-01: rain, 8°C ~ 12°C\n2024-05-02: no data", a.Text)

	resp = get(t, app, "/api/v1/weather/forecast?city=Oslo&days=-1")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = get(t, app, "/api/v1/weather/forecast?city=Oslo&days=many")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAskStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		q      string
		status int
	}{
		{"ok", nil, "北京天气", http.StatusOK},
		{"not understood", nil, "hello", http.StatusUnprocessableEntity},
		{"not found", &weather.NotFoundError{Location: "Atlantis"}, "weather in Atlantis", http.StatusNotFound},
		{"provider", &weather.ProviderError{Provider: "stub", Status: 500, Cause: "boom"}, "北京天气", http.StatusServiceUnavailable},
		{"timeout", &weather.ProviderError{Provider: "stub", Cause: "timeout", Timeout: true}, "北京天气", http.StatusGatewayTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _ := newTestApp(t, stubProvider{err: tt.err})
			resp := get(t, app, "/api/v1/ask?q="+url.QueryEscape(tt.q))
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestHistory(t *testing.T) {
	app, history := newTestApp(t, stubProvider{})

	get(t, app, "/api/v1/ask?q="+url.QueryEscape("北京天气"))
	get(t, app, "/api/v1/ask?q="+url.QueryEscape("上海天气"))
	require.Len(t, history.Recent(0), 2)

	resp := get(t, app, "/api/v1/history?limit=1")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Count   int              `json:"count"`
		Answers []weather.Answer `json:"answers"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "上海天气", body.Answers[0].Query)

	resp = get(t, app, "/api/v1/history?limit=0")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = get(t, app, "/api/v1/history?from=2024-05-02T00:00:00Z&to=2024-05-01T00:00:00Z")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = get(t, app, "/api/v1/history?from=0&to="+url.QueryEscape(time.Now().Add(time.Hour).UTC().Format(time.RFC3339)))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2, body.Count)
}
