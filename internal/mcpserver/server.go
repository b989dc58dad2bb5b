// Package mcpserver exposes the weather gateway as MCP tools.
package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/i474232898/weather-assistant/internal/query"
	"github.com/i474232898/weather-assistant/internal/weather"
)

// Tool names.
const (
	ToolGetWeather              = "get_weather"
	ToolGetWeatherByCoordinates = "get_weather_by_coordinates"
	ToolGetForecast             = "get_forecast"
	ToolQueryWeather            = "query_weather"
)

// Answerer is the part of *weather.Gateway the tools need.
type Answerer interface {
	Ask(ctx context.Context, text string) weather.Answer
	Answer(ctx context.Context, label string, intent query.Intent) weather.Answer
}

// Server registers the weather tools on an MCP server.
type Server struct {
	gw  Answerer
	mcp *server.MCPServer
}

func New(gw Answerer, version string) *Server {
	s := &Server{
		gw:  gw,
		mcp: server.NewMCPServer("weather", version, server.WithToolCapabilities(false), server.WithRecovery()),
	}

	s.mcp.AddTool(mcp.NewTool(ToolGetWeather,
		mcp.WithDescription("Get the current weather for a city."),
		mcp.WithString("city", mcp.Required(), mcp.Description("City name, e.g. 北京 or Paris")),
	), s.getWeather)

	s.mcp.AddTool(mcp.NewTool(ToolGetWeatherByCoordinates,
		mcp.WithDescription("Get the current weather at a latitude/longitude."),
		mcp.WithNumber("lat", mcp.Required(), mcp.Description("Latitude in [-90, 90]")),
		mcp.WithNumber("lon", mcp.Required(), mcp.Description("Longitude in [-180, 180]")),
	), s.getWeatherByCoordinates)

	s.mcp.AddTool(mcp.NewTool(ToolGetForecast,
		mcp.WithDescription("Get a daily forecast for a city."),
		mcp.WithString("city", mcp.Required(), mcp.Description("City name")),
		mcp.WithNumber("days", mcp.Description(fmt.Sprintf("Number of days, 1-%d (default %d)", query.MaxForecastDays, query.DefaultForecastDays))),
	), s.getForecast)

	s.mcp.AddTool(mcp.NewTool(ToolQueryWeather,
		mcp.WithDescription("Answer a free-text weather question in Chinese or English."),
		mcp.WithString("query", mcp.Required(), mcp.Description("The question, e.g. 上海未来3天的天气")),
	), s.queryWeather)

	return s
}

// MCP returns the underlying server, e.g. for in-process clients.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// ServeStdio serves the tools over stdin/stdout until stdin closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) getWeather(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	city, err := req.RequireString("city")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	intent, err := query.NewCityCurrent(city)
	if err != nil {
		return mcp.NewToolResultError(weather.RenderError(err)), nil
	}
	return toResult(s.gw.Answer(ctx, city, intent)), nil
}

func (s *Server) getWeatherByCoordinates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lat, err := req.RequireFloat("lat")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lon, err := req.RequireFloat("lon")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	intent, err := query.NewCoordsCurrent(lat, lon)
	if err != nil {
		return mcp.NewToolResultError(weather.RenderError(err)), nil
	}
	return toResult(s.gw.Answer(ctx, fmt.Sprintf("%v,%v", lat, lon), intent)), nil
}

func (s *Server) getForecast(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	city, err := req.RequireString("city")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	intent, err := query.NewCityForecast(city, req.GetInt("days", query.DefaultForecastDays))
	if err != nil {
		return mcp.NewToolResultError(weather.RenderError(err)), nil
	}
	return toResult(s.gw.Answer(ctx, fmt.Sprintf("%s %dd", city, intent.Days), intent)), nil
}

func (s *Server) queryWeather(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return toResult(s.gw.Ask(ctx, text)), nil
}

func toResult(a weather.Answer) *mcp.CallToolResult {
	if a.Failed {
		return mcp.NewToolResultError(a.Text)
	}
	return mcp.NewToolResultText(a.Text)
}
