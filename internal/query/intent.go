package query

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultForecastDays is used when a forecast is asked for without a usable day count.
	DefaultForecastDays = 3
	// MaxForecastDays is the longest horizon accepted; larger requests are clamped.
	MaxForecastDays = 16

	// ReasonNoIntent is the failure reason when nothing in the text can be resolved.
	ReasonNoIntent = "no recognizable location or intent"
	// ReasonInvalid is the failure reason when a request cannot be checked.
	ReasonInvalid = "the request could not be checked"
)

// Kind names an Intent variant.
type Kind string

const (
	KindCityCurrent   Kind = "city-current"
	KindCoordsCurrent Kind = "coords-current"
	KindCityForecast  Kind = "city-forecast"
)

// Intent is the structured form of a weather question. The set of
// implementations is closed: CityCurrent, CoordsCurrent and CityForecast.
type Intent interface {
	Kind() Kind
	isIntent()
}

// CityCurrent asks for the current weather in a named city.
type CityCurrent struct {
	City string `json:"city" validate:"required"`
}

// CoordsCurrent asks for the current weather at a point.
type CoordsCurrent struct {
	Latitude  float64 `json:"lat" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// CityForecast asks for a daily forecast for a named city.
type CityForecast struct {
	City string `json:"city" validate:"required"`
	Days int    `json:"days" validate:"gte=1,lte=16"`
}

func (CityCurrent) Kind() Kind   { return KindCityCurrent }
func (CoordsCurrent) Kind() Kind { return KindCoordsCurrent }
func (CityForecast) Kind() Kind  { return KindCityForecast }

func (CityCurrent) isIntent()   {}
func (CoordsCurrent) isIntent() {}
func (CityForecast) isIntent()  {}

// InterpretationError is returned when no intent can be derived from the input.
type InterpretationError struct {
	Text   string
	Reason string
}

func (e *InterpretationError) Error() string {
	return "interpretation failed: " + e.Reason
}

var validate = validator.New()

// NewCityCurrent builds a validated CityCurrent.
func NewCityCurrent(city string) (CityCurrent, error) {
	in := CityCurrent{City: strings.TrimSpace(city)}
	if err := validate.Struct(in); err != nil {
		return CityCurrent{}, invalid(city, err)
	}
	return in, nil
}

// NewCoordsCurrent builds a CoordsCurrent, rejecting out-of-range values.
func NewCoordsCurrent(lat, lon float64) (CoordsCurrent, error) {
	in := CoordsCurrent{Latitude: lat, Longitude: lon}
	if err := validate.Struct(in); err != nil {
		return CoordsCurrent{}, invalid(fmt.Sprintf("%v,%v", lat, lon), err)
	}
	return in, nil
}

// NewCityForecast builds a CityForecast with days clamped by ClampDays.
func NewCityForecast(city string, days int) (CityForecast, error) {
	in := CityForecast{City: strings.TrimSpace(city), Days: ClampDays(days)}
	if err := validate.Struct(in); err != nil {
		return CityForecast{}, invalid(city, err)
	}
	return in, nil
}

// ClampDays maps a requested day count onto [1, MaxForecastDays]; non-positive
// counts fall back to DefaultForecastDays.
func ClampDays(n int) int {
	switch {
	case n <= 0:
		return DefaultForecastDays
	case n > MaxForecastDays:
		return MaxForecastDays
	default:
		return n
	}
}

func invalid(text string, err error) *InterpretationError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		log.Debug().Err(err).Str("text", text).Msg("intent validation failed")
		return &InterpretationError{Text: text, Reason: ReasonInvalid}
	}

	fe := verrs[0]
	var reason string
	switch fe.Field() {
	case "Latitude":
		reason = fmt.Sprintf("latitude %v out of range [-90, 90]", fe.Value())
	case "Longitude":
		reason = fmt.Sprintf("longitude %v out of range [-180, 180]", fe.Value())
	case "City":
		reason = "city name is empty"
	default:
		reason = fmt.Sprintf("invalid %s", strings.ToLower(fe.Field()))
	}
	return &InterpretationError{Text: text, Reason: reason}
}
