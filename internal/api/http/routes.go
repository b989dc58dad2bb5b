package httpapi

import (
	"context"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"github.com/i474232898/weather-assistant/internal/query"
	"github.com/i474232898/weather-assistant/internal/weather"
)

var validate = validator.New()

const defaultHistoryLimit = 20

// Gateway is the part of *weather.Gateway the handlers need.
type Gateway interface {
	Ask(ctx context.Context, text string) weather.Answer
	Answer(ctx context.Context, label string, intent query.Intent) weather.Answer
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. history may be
// nil, in which case the history endpoint is not registered.
func RegisterRoutes(app *fiber.App, gw Gateway, history weather.History) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather/current", func(c *fiber.Ctx) error {
		var req cityQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		intent, err := query.NewCityCurrent(req.City)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return respond(c, gw.Answer(c.UserContext(), req.City, intent))
	})

	v1.Get("/weather/coordinates", func(c *fiber.Ctx) error {
		var req coordsQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		intent, err := query.NewCoordsCurrent(*req.Lat, *req.Lon)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return respond(c, gw.Answer(c.UserContext(), c.Query("lat")+","+c.Query("lon"), intent))
	})

	v1.Get("/weather/forecast", func(c *fiber.Ctx) error {
		var req forecastQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		intent, err := query.NewCityForecast(req.City, req.Days)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return respond(c, gw.Answer(c.UserContext(), req.City, intent))
	})

	v1.Get("/ask", func(c *fiber.Ctx) error {
		q := c.Query("q")
		if q == "" {
			return fiber.NewError(fiber.StatusBadRequest, "q query parameter is required")
		}
		return respond(c, gw.Ask(c.UserContext(), q))
	})

	if history == nil {
		return
	}

	v1.Get("/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		var answers []weather.Answer
		if req.From != nil {
			answers = history.Range(*req.From, *req.To)
			if len(answers) > req.Limit {
				answers = answers[len(answers)-req.Limit:]
			}
		} else {
			answers = history.Recent(req.Limit)
		}
		if answers == nil {
			answers = []weather.Answer{}
		}
		return c.JSON(fiber.Map{
			"count":   len(answers),
			"answers": answers,
		})
	})
}

// respond writes successful answers as JSON and maps failures onto a status
// code; the message is the rendered answer text.
func respond(c *fiber.Ctx, a weather.Answer) error {
	if !a.Failed {
		return c.JSON(a)
	}
	return fiber.NewError(statusFor(a.Err), a.Text)
}

func statusFor(err error) int {
	var (
		ie  *query.InterpretationError
		nfe *weather.NotFoundError
		pe  *weather.ProviderError
	)
	switch {
	case errors.As(err, &ie):
		return fiber.StatusUnprocessableEntity
	case errors.As(err, &nfe):
		return fiber.StatusNotFound
	case errors.As(err, &pe) && pe.Timeout:
		return fiber.StatusGatewayTimeout
	case errors.As(err, &pe):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// cityQuery holds the city query parameter.
type cityQuery struct {
	City string `validate:"required"`
}

func (q *cityQuery) bind(c *fiber.Ctx) error {
	q.City = c.Query("city")
	return validate.Struct(q)
}

// coordsQuery holds the coordinate query parameters.
type coordsQuery struct {
	Lat *float64 `validate:"required,gte=-90,lte=90"`
	Lon *float64 `validate:"required,gte=-180,lte=180"`
}

func (q *coordsQuery) bind(c *fiber.Ctx) error {
	var err error
	if q.Lat, err = parseFloatParam(c, "lat"); err != nil {
		return err
	}
	if q.Lon, err = parseFloatParam(c, "lon"); err != nil {
		return err
	}
	return validate.Struct(q)
}

// forecastQuery holds the forecast query parameters. Days above the maximum
// are clamped; a missing value means the default.
type forecastQuery struct {
	City string `validate:"required"`
	Days int    `validate:"gte=0"`
}

func (q *forecastQuery) bind(c *fiber.Ctx) error {
	q.City = c.Query("city")
	if s := c.Query("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return errors.New("days must be an integer")
		}
		q.Days = n
	}
	return validate.Struct(q)
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Limit int        `validate:"gte=1,lte=1000"`
	From  *time.Time
	To    *time.Time `validate:"omitempty,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	h.Limit = defaultHistoryLimit
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return errors.New("limit must be an integer")
		}
		h.Limit = n
	}

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" && toStr == "" {
		return nil
	}
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters must be given together")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = &from
	h.To = &to
	return nil
}

func parseFloatParam(c *fiber.Ctx, name string) (*float64, error) {
	s := c.Query(name)
	if s == "" {
		return nil, errors.New(name + " query parameter is required")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, errors.New(name + " must be a number")
	}
	return &v, nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
