package weather

import (
	"context"
	"time"
)

// Provider abstracts the upstream weather API. Each method makes exactly one
// outbound call.
type Provider interface {
	Name() string
	CurrentByCity(ctx context.Context, city, lang string) (Reading, error)
	CurrentByCoords(ctx context.Context, lat, lon float64, lang string) (Reading, error)
	// ForecastByCity requests count 3-hourly samples.
	ForecastByCity(ctx context.Context, city string, count int, lang string) (ForecastSeries, error)
}

// History is the contract the in-memory answer log satisfies.
type History interface {
	Record(a Answer)
	Recent(limit int) []Answer
	Range(from, to time.Time) []Answer
}
