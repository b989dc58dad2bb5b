// Package mcpclient talks to the weather MCP server: it interprets the
// question locally and calls the matching tool.
package mcpclient

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/i474232898/weather-assistant/internal/mcpserver"
	"github.com/i474232898/weather-assistant/internal/query"
	"github.com/i474232898/weather-assistant/internal/weather"
)

const clientName = "weather-cli"

// Client is an initialized MCP session plus a local interpreter.
type Client struct {
	mcp         *client.Client
	interpreter *query.Interpreter
}

// Dial starts command as a subprocess speaking MCP over stdio and
// initializes a session. The subprocess inherits the current environment.
func Dial(ctx context.Context, command string, args ...string) (*Client, error) {
	c, err := client.NewStdioMCPClient(command, nil, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "start server %q", command)
	}
	cl, err := Connect(ctx, c)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return cl, nil
}

// Connect initializes a session on an already started transport.
func Connect(ctx context.Context, c *client.Client) (*Client, error) {
	var req mcp.InitializeRequest
	req.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcp.Implementation{Name: clientName, Version: "1.0.0"}

	res, err := c.Initialize(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "initialize session")
	}
	log.Debug().Str("server", res.ServerInfo.Name).Str("version", res.ServerInfo.Version).Msg("session initialized")

	return &Client{mcp: c, interpreter: query.NewInterpreter()}, nil
}

// ToolCall maps an intent onto the tool name and arguments that resolve it.
func ToolCall(intent query.Intent) (string, map[string]any) {
	switch in := intent.(type) {
	case query.CityCurrent:
		return mcpserver.ToolGetWeather, map[string]any{"city": in.City}
	case query.CoordsCurrent:
		return mcpserver.ToolGetWeatherByCoordinates, map[string]any{"lat": in.Latitude, "lon": in.Longitude}
	case query.CityForecast:
		return mcpserver.ToolGetForecast, map[string]any{"city": in.City, "days": in.Days}
	default:
		return "", nil
	}
}

// Call invokes a tool and returns its text. Tool-level failures are already
// rendered by the server and come back as text with isError set; err is
// only for protocol failures.
func (c *Client) Call(ctx context.Context, name string, args map[string]any) (text string, isError bool, err error) {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args

	res, err := c.mcp.CallTool(ctx, req)
	if err != nil {
		return "", false, errors.Wrapf(err, "call %s", name)
	}

	var parts []string
	for _, content := range res.Content {
		switch tc := content.(type) {
		case mcp.TextContent:
			parts = append(parts, tc.Text)
		case *mcp.TextContent:
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n"), res.IsError, nil
}

// Ask interprets text locally and resolves it through the matching tool.
// Every outcome is rendered into the returned Answer.
func (c *Client) Ask(ctx context.Context, text string) weather.Answer {
	a := weather.Answer{ID: uuid.NewString(), Query: text}

	intent, err := c.interpreter.Interpret(text)
	if err != nil {
		log.Debug().Str("request_id", a.ID).Err(err).Msg("query not understood")
		return finish(a, "", err)
	}
	a.Intent = intent.Kind()
	name, args := ToolCall(intent)
	return c.callTool(ctx, a, name, args)
}

// AskCity calls get_weather directly, bypassing interpretation.
func (c *Client) AskCity(ctx context.Context, city string) weather.Answer {
	a := weather.Answer{ID: uuid.NewString(), Query: city, Intent: query.KindCityCurrent}
	return c.callTool(ctx, a, mcpserver.ToolGetWeather, map[string]any{"city": city})
}

func (c *Client) callTool(ctx context.Context, a weather.Answer, name string, args map[string]any) weather.Answer {
	out, isError, err := c.Call(ctx, name, args)
	if err != nil {
		log.Error().Str("request_id", a.ID).Str("tool", name).Err(err).Msg("tool call failed")
		pe := &weather.ProviderError{Provider: "mcp", Cause: "tool call failed", Err: err}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			pe.Cause, pe.Timeout = "timeout", true
		}
		return finish(a, "", pe)
	}
	a.Failed = isError
	return finish(a, out, nil)
}

func finish(a weather.Answer, text string, err error) weather.Answer {
	a.At = time.Now().UTC()
	a.Text = text
	if err != nil {
		a.Failed = true
		a.Err = err
		a.Text = weather.RenderError(err)
	}
	return a
}

// Close shuts down the session and, for Dial, the subprocess.
func (c *Client) Close() error {
	return c.mcp.Close()
}
