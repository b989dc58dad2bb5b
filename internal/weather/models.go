package weather

import (
	"time"

	"github.com/i474232898/weather-assistant/internal/query"
)

// Reading is the current weather at one place as reported by the provider.
// Temperatures are °C; wind speed is in the provider's metric unit (m/s).
type Reading struct {
	Location    string  `json:"location"`
	Temperature float64 `json:"temperatureC"`
	Condition   string  `json:"condition"`
	Humidity    float64 `json:"humidityPercent"`
	WindSpeed   float64 `json:"windSpeed"`
}

// ForecastSample is one 3-hourly forecast point.
type ForecastSample struct {
	Time        time.Time `json:"time"`
	Temperature float64   `json:"temperatureC"`
	TempMin     float64   `json:"tempMinC"`
	TempMax     float64   `json:"tempMaxC"`
	Condition   string    `json:"condition"`
}

// ForecastSeries is the raw provider forecast for a location. Samples carry
// timestamps in the location's own time zone.
type ForecastSeries struct {
	Location string           `json:"location"`
	Samples  []ForecastSample `json:"samples"`
}

// ForecastDay is the per-day aggregation of forecast samples. Missing days
// pad a series that is shorter than requested.
type ForecastDay struct {
	Date      time.Time `json:"date"`
	TempMin   float64   `json:"tempMinC"`
	TempMax   float64   `json:"tempMaxC"`
	Condition string    `json:"condition"`
	Missing   bool      `json:"missing,omitempty"`
}

// Forecast is an ordered list of exactly the requested number of days.
type Forecast struct {
	Location string        `json:"location"`
	Days     []ForecastDay `json:"days"`
}

// Answer is one rendered reply, successful or not.
type Answer struct {
	ID     string     `json:"id"`
	Query  string     `json:"query"`
	Intent query.Kind `json:"intent,omitempty"`
	Text   string     `json:"text"`
	Failed bool       `json:"failed"`
	At     time.Time  `json:"at"`

	// Err is the underlying failure for Failed answers.
	Err error `json:"-"`
}
