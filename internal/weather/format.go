package weather

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatReading renders a current reading as
// "<location>: <condition>, <temp>°C, humidity <h>%, wind <w>".
func FormatReading(r Reading) string {
	return fmt.Sprintf("%s: %s, %s°C, humidity %s%%, wind %s",
		r.Location, r.Condition, formatNumber(r.Temperature), formatNumber(r.Humidity), formatNumber(r.WindSpeed))
}

// FormatForecast renders a header line followed by one line per day.
func FormatForecast(f Forecast) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s forecast for %d days:", f.Location, len(f.Days))
	for _, d := range f.Days {
		b.WriteString("\n")
		b.WriteString(d.Date.Format("2006-01-02"))
		if d.Missing {
			b.WriteString(": no data")
			continue
		}
		fmt.Fprintf(&b, ": %s, %s°C ~ %s°C", d.Condition, formatNumber(d.TempMin), formatNumber(d.TempMax))
	}
	return b.String()
}

// formatNumber rounds to one decimal and drops trailing zeros.
func formatNumber(v float64) string {
	v = math.Round(v*10) / 10
	if v == 0 {
		v = 0 // no "-0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
