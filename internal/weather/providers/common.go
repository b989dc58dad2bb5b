package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/i474232898/weather-assistant/internal/weather"
)

const (
	breakerTripAfter = 5
	breakerOpenFor   = 30 * time.Second
)

// statusError marks responses that count as breaker failures (429 and 5xx).
type statusError struct {
	status int
	body   []byte
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.status)
}

type response struct {
	status int
	body   []byte
}

// NewHTTPClient returns a client whose transport is traced with otelhttp.
// A zero timeout leaves the bound to the request context.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport.(*http.Transport).Clone()),
	}
}

func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     breakerOpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerTripAfter
		},
	})
}

// doRequest makes exactly one attempt inside the circuit breaker and returns
// the body of a 2xx response. Failures come back as *weather.NotFoundError or
// *weather.ProviderError.
func doRequest(
	ctx context.Context,
	client *http.Client,
	cb *gobreaker.CircuitBreaker,
	provider, location string,
	req *http.Request,
) ([]byte, error) {
	req = req.WithContext(ctx)

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, readErr
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, &statusError{status: resp.StatusCode, body: body}
		}
		return response{status: resp.StatusCode, body: body}, nil
	})
	if err != nil {
		return nil, classify(ctx, provider, err)
	}

	r, ok := result.(response)
	if !ok {
		return nil, &weather.ProviderError{Provider: provider, Cause: "unexpected result type from circuit breaker"}
	}
	switch {
	case r.status == http.StatusNotFound:
		return nil, &weather.NotFoundError{Location: location, Cause: providerMessage(r.status, r.body)}
	case r.status < 200 || r.status >= 300:
		return nil, &weather.ProviderError{Provider: provider, Status: r.status, Cause: providerMessage(r.status, r.body)}
	}
	return r.body, nil
}

func classify(ctx context.Context, provider string, err error) error {
	var se *statusError
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return &weather.ProviderError{Provider: provider, Cause: "circuit breaker open", Err: err}
	case errors.As(err, &se):
		return &weather.ProviderError{Provider: provider, Status: se.status, Cause: providerMessage(se.status, se.body)}
	case isTimeout(ctx, err):
		return &weather.ProviderError{Provider: provider, Cause: "timeout", Timeout: true, Err: err}
	default:
		return &weather.ProviderError{Provider: provider, Cause: "transport failure", Err: err}
	}
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// providerMessage extracts the upstream "message" field, falling back to the
// status text.
func providerMessage(status int, body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return http.StatusText(status)
}
