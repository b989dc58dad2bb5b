package weather

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/i474232898/weather-assistant/internal/query"
)

// ConfigurationError reports a missing or invalid setting. It is fatal at
// startup.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s %s", e.Key, e.Reason)
}

// ProviderError reports a failed upstream call: a non-2xx status, a
// transport failure or a timeout.
type ProviderError struct {
	Provider string
	Status   int
	Cause    string
	Timeout  bool
	Err      error
}

func (e *ProviderError) Error() string {
	msg := e.Provider + ": " + e.Cause
	if e.Status != 0 {
		msg = fmt.Sprintf("%s: status %d: %s", e.Provider, e.Status, e.Cause)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NotFoundError means the provider does not know the requested location.
type NotFoundError struct {
	Location string
	Cause    string
}

func (e *NotFoundError) Error() string {
	if e.Cause == "" {
		return "location not found: " + e.Location
	}
	return fmt.Sprintf("location not found: %s (%s)", e.Location, e.Cause)
}

// RenderError turns a per-request failure into the text shown to the user.
func RenderError(err error) string {
	var (
		ie  *query.InterpretationError
		nfe *NotFoundError
		pe  *ProviderError
		ce  *ConfigurationError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ie):
		return fmt.Sprintf("Sorry, I could not understand the question (%s). Please rephrase, for example \"北京今天的天气\" or \"weather in Paris for 3 days\".", ie.Reason)
	case errors.As(err, &nfe):
		return "Location not found: " + nfe.Location
	case errors.As(err, &pe):
		if pe.Timeout {
			return "Weather service unavailable: the request timed out. Please try again later."
		}
		return "Weather service unavailable. Please try again later."
	case errors.As(err, &ce):
		return "Weather service is not configured: " + ce.Error()
	default:
		return "Something went wrong: " + err.Error()
	}
}
