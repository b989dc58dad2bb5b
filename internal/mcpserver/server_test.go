package mcpserver

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-assistant/internal/query"
	"github.com/i474232898/weather-assistant/internal/weather"
)

type recordingAnswerer struct {
	intents []query.Intent
	asked   []string
}

func (r *recordingAnswerer) Ask(ctx context.Context, text string) weather.Answer {
	r.asked = append(r.asked, text)
	return weather.Answer{Text: "asked: " + text}
}

func (r *recordingAnswerer) Answer(ctx context.Context, label string, intent query.Intent) weather.Answer {
	r.intents = append(r.intents, intent)
	if c, ok := intent.(query.CityCurrent); ok && c.City == "Atlantis" {
		return weather.Answer{Text: "Location not found: Atlantis", Failed: true}
	}
	return weather.Answer{Text: "ok " + string(intent.Kind())}
}

func newTestClient(t *testing.T, a Answerer) *client.Client {
	t.Helper()
	c, err := client.NewInProcessClient(New(a, "test").MCP())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	require.NoError(t, c.Start(ctx))

	var init mcp.InitializeRequest
	init.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	init.Params.ClientInfo = mcp.Implementation{Name: "test", Version: "0"}
	_, err = c.Initialize(ctx, init)
	require.NoError(t, err)
	return c
}

func callTool(t *testing.T, c *client.Client, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := c.CallTool(context.Background(), req)
	require.NoError(t, err)
	return res
}

func resultText(res *mcp.CallToolResult) string {
	for _, content := range res.Content {
		switch tc := content.(type) {
		case mcp.TextContent:
			return tc.Text
		case *mcp.TextContent:
			return tc.Text
		}
	}
	return ""
}

func TestListTools(t *testing.T) {
	c := newTestClient(t, &recordingAnswerer{})

	res, err := c.ListTools(context.Background(), mcp.ListToolsRequest{})
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{ToolGetWeather, ToolGetWeatherByCoordinates, ToolGetForecast, ToolQueryWeather}, names)
}

func TestToolsBuildIntents(t *testing.T) {
	a := &recordingAnswerer{}
	c := newTestClient(t, a)

	res := callTool(t, c, ToolGetWeather, map[string]any{"city": "北京"})
	assert.False(t, res.IsError)
	assert.Equal(t, "ok city-current", resultText(res))

	res = callTool(t, c, ToolGetWeatherByCoordinates, map[string]any{"lat": 39.9042, "lon": 116.4074})
	assert.False(t, res.IsError)

	res = callTool(t, c, ToolGetForecast, map[string]any{"city": "上海", "days": 40})
	assert.False(t, res.IsError)

	res = callTool(t, c, ToolGetForecast, map[string]any{"city": "上海"})
	assert.False(t, res.IsError)

	require.Len(t, a.intents, 4)
	assert.Equal(t, query.CityCurrent{City: "北京"}, a.intents[0])
	assert.Equal(t, query.CoordsCurrent{Latitude: 39.9042, Longitude: 116.4074}, a.intents[1])
	assert.Equal(t, query.CityForecast{City: "上海", Days: query.MaxForecastDays}, a.intents[2])
	assert.Equal(t, query.CityForecast{City: "上海", Days: query.DefaultForecastDays}, a.intents[3])
}

func TestToolErrorsAreText(t *testing.T) {
	a := &recordingAnswerer{}
	c := newTestClient(t, a)

	res := callTool(t, c, ToolGetWeatherByCoordinates, map[string]any{"lat": 91.0, "lon": 0.0})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(res), "latitude")

	res = callTool(t, c, ToolGetWeather, map[string]any{"city": "Atlantis"})
	assert.True(t, res.IsError)
	assert.Equal(t, "Location not found: Atlantis", resultText(res))

	res = callTool(t, c, ToolGetWeather, map[string]any{})
	assert.True(t, res.IsError)

	assert.Len(t, a.intents, 1)
}

func TestQueryWeatherForwardsText(t *testing.T) {
	a := &recordingAnswerer{}
	c := newTestClient(t, a)

	res := callTool(t, c, ToolQueryWeather, map[string]any{"query": "上海未来3天的天气"})
	assert.Equal(t, "asked: 上海未来3天的天气", resultText(res))
	assert.Equal(t, []string{"上海未来3天的天气"}, a.asked)
}
