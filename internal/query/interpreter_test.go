package query

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpretCityCurrent(t *testing.T) {
	in := NewInterpreter()

	tests := []struct {
		text string
		city string
	}{
		{"北京今天的天气怎么样？", "北京"},
		{"What's the weather in New York right now?", "New York"},
		{"how is the weather in oslo today", "oslo"},
		{"林芝明天的天气", "林芝"},
		{"请问成都天气", "成都"},
		{"Reykjavik weather", "Reykjavik"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := in.Interpret(tt.text)
			require.NoError(t, err)
			assert.Equal(t, CityCurrent{City: tt.city}, got)
			assert.Equal(t, KindCityCurrent, got.Kind())
		})
	}
}

func TestInterpretCoordinates(t *testing.T) {
	in := NewInterpreter()

	tests := []struct {
		text     string
		lat, lon float64
	}{
		{"weather at lat 39.9042 lon 116.4074", 39.9042, 116.4074},
		{"latitude: -33.8688, longitude: 151.2093", -33.8688, 151.2093},
		{"北纬31.23 东经121.47的天气", 31.23, 121.47},
		{"南纬33.86，西经70.65 天气", -33.86, -70.65},
		{"33.86S 151.21E weather", -33.86, 151.21},
		{"coordinates: 48.8566, 2.3522", 48.8566, 2.3522},
		{"坐标（0, 0）现在天气如何", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := in.Interpret(tt.text)
			require.NoError(t, err)
			assert.Equal(t, CoordsCurrent{Latitude: tt.lat, Longitude: tt.lon}, got)
		})
	}
}

func TestInterpretCoordinatesOutOfRange(t *testing.T) {
	in := NewInterpreter()

	_, err := in.Interpret("lat 95 lon 10")
	var ie *InterpretationError
	require.ErrorAs(t, err, &ie)
	assert.Contains(t, ie.Reason, "latitude")

	_, err = in.Interpret("lat 10 lon -181")
	require.ErrorAs(t, err, &ie)
	assert.Contains(t, ie.Reason, "longitude")
}

func TestInterpretForecast(t *testing.T) {
	in := NewInterpreter()

	tests := []struct {
		text string
		city string
		days int
	}{
		{"上海未来5天的天气", "上海", 5},
		{"杭州未来十天天气", "杭州", 10},
		{"重庆二十天天气预报", "重庆", MaxForecastDays},
		{"广州未来几天天气", "广州", DefaultForecastDays},
		{"伦敦未来两周的天气", "伦敦", 14},
		{"Tokyo forecast for the next 20 days", "Tokyo", MaxForecastDays},
		{"forecast for Oslo for a few days", "Oslo", DefaultForecastDays},
		{"Paris forecast", "Paris", DefaultForecastDays},
		{"weather in Berlin for 1 day", "Berlin", 1},
		{"Seattle 7-day forecast", "Seattle", 7},
		{"London weather next week", "London", 7},
		{"北京一百天天气", "北京", MaxForecastDays},
		{"上海未来一百天的天气", "上海", MaxForecastDays},
		{"weather in Paris for 99999999999999999999 days", "Paris", MaxForecastDays},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := in.Interpret(tt.text)
			require.NoError(t, err)
			assert.Equal(t, CityForecast{City: tt.city, Days: tt.days}, got)
		})
	}
}

func TestInterpretWeekdayIsNotDayCount(t *testing.T) {
	in := NewInterpreter()

	for _, text := range []string{"北京星期一天气怎么样", "北京周一天气", "北京礼拜一天气"} {
		t.Run(text, func(t *testing.T) {
			got, err := in.Interpret(text)
			require.NoError(t, err)
			assert.Equal(t, CityCurrent{City: "北京"}, got)
		})
	}

	got, err := in.Interpret("北京星期一未来两天的天气")
	require.NoError(t, err)
	assert.Equal(t, CityForecast{City: "北京", Days: 2}, got)
}

func TestInterpretRuleOrder(t *testing.T) {
	in := NewInterpreter()

	got, err := in.Interpret("北京 forecast lat 10 lon 20")
	require.NoError(t, err)
	assert.Equal(t, KindCoordsCurrent, got.Kind())
}

func TestInterpretNoIntent(t *testing.T) {
	in := NewInterpreter()

	for _, text := range []string{"", "   ", "hello there", "明天天气怎么样", "3天"} {
		t.Run(text, func(t *testing.T) {
			got, err := in.Interpret(text)
			assert.Nil(t, got)
			var ie *InterpretationError
			require.ErrorAs(t, err, &ie)
			assert.Equal(t, ReasonNoIntent, ie.Reason)
		})
	}
}

func TestInterpretExtraCities(t *testing.T) {
	in := NewInterpreter("Ulaanbaatar")

	got, err := in.Interpret("is it cold ulaanbaatar")
	require.NoError(t, err)
	assert.Equal(t, CityCurrent{City: "Ulaanbaatar"}, got)
}

func TestInvalidHidesUnexpectedCause(t *testing.T) {
	ie := invalid("北京", errors.New("validator: unsupported struct field"))
	assert.Equal(t, ReasonInvalid, ie.Reason)
	assert.NotContains(t, ie.Error(), "validator")
}

func TestClampDays(t *testing.T) {
	assert.Equal(t, DefaultForecastDays, ClampDays(0))
	assert.Equal(t, DefaultForecastDays, ClampDays(-2))
	assert.Equal(t, 1, ClampDays(1))
	assert.Equal(t, 16, ClampDays(16))
	assert.Equal(t, 16, ClampDays(40))
}

func TestParseCount(t *testing.T) {
	tests := map[string]int{
		"5": 5, "two": 2, "十": 10, "十二": 12, "二十": 20, "二十三": 23, "两": 2,
		"一百": 100, "一百零五": 105, "两千": 2000,
		"99999999999999999999": MaxForecastDays,
	}
	for in, want := range tests {
		got, ok := parseCount(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"几", "多", "一百几"} {
		_, ok := parseCount(in)
		assert.False(t, ok, in)
	}
}
