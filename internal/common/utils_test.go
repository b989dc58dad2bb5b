package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasAny(t *testing.T) {
	assert.True(t, HasAny("上海未来三天", "未来", "接下来"))
	assert.False(t, HasAny("Forecast", "forecast"))
	assert.False(t, HasAny("anything"))
}

func TestHasAnyFold(t *testing.T) {
	assert.True(t, HasAnyFold("Paris FORECAST", "forecast"))
	assert.True(t, HasAnyFold("paris forecast", "Forecast"))
	assert.False(t, HasAnyFold("paris weather", "forecast"))
}
