package query

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/i474232898/weather-assistant/internal/common"
)

// rule inspects the text and returns an Intent when it fully matches. A nil
// Intent with a nil error means the rule does not apply; an error stops
// interpretation.
type rule struct {
	name  string
	match func(in *Interpreter, text string) (Intent, error)
}

// defaultRules are tried in order; the first full match wins.
var defaultRules = []rule{
	{name: "coordinates", match: matchCoordinates},
	{name: "forecast", match: matchForecast},
	{name: "city", match: matchCity},
}

var (
	coordPairRe = regexp.MustCompile(`(?i)(?:coordinates|coords?|坐标|位置)\s*[:：]?\s*[(（]?\s*([-+]?\d+(?:\.\d+)?)\s*[,，\s]\s*([-+]?\d+(?:\.\d+)?)`)
	latMarkerRe = regexp.MustCompile(`(?i)(?:\blatitude|\blat|纬度)\s*[:=：]?\s*([-+]?\d+(?:\.\d+)?)`)
	lonMarkerRe = regexp.MustCompile(`(?i)(?:\blongitude|\blon|\blng|经度)\s*[:=：]?\s*([-+]?\d+(?:\.\d+)?)`)
	latHanRe    = regexp.MustCompile(`(北纬|南纬)\s*(\d+(?:\.\d+)?)`)
	lonHanRe    = regexp.MustCompile(`(东经|西经)\s*(\d+(?:\.\d+)?)`)
	latSuffixRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*°?\s*([NS])\b`)
	lonSuffixRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*°?\s*([EW])\b`)
)

func matchCoordinates(_ *Interpreter, text string) (Intent, error) {
	if m := coordPairRe.FindStringSubmatch(text); m != nil {
		lat, err1 := strconv.ParseFloat(m[1], 64)
		lon, err2 := strconv.ParseFloat(m[2], 64)
		if err1 == nil && err2 == nil {
			return coordsIntent(lat, lon)
		}
	}

	lat, okLat := findAxis(text, latMarkerRe, latHanRe, latSuffixRe, "南纬", "S")
	lon, okLon := findAxis(text, lonMarkerRe, lonHanRe, lonSuffixRe, "西经", "W")
	if !okLat || !okLon {
		return nil, nil
	}
	return coordsIntent(lat, lon)
}

func coordsIntent(lat, lon float64) (Intent, error) {
	c, err := NewCoordsCurrent(lat, lon)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// findAxis reads one coordinate from a marker ("lat 39.9"), a Chinese
// hemisphere prefix ("北纬39.9") or a hemisphere suffix ("39.9N").
func findAxis(text string, marker, hanHemisphere, suffix *regexp.Regexp, hanNegative, negative string) (float64, bool) {
	if m := marker.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return v, true
		}
	}
	if m := hanHemisphere.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[2], 64); err == nil {
			if m[1] == hanNegative {
				v = -v
			}
			return v, true
		}
	}
	if m := suffix.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			if m[2] == negative {
				v = -v
			}
			return v, true
		}
	}
	return 0, false
}

type dayPattern struct {
	re   *regexp.Regexp
	unit int
}

var dayPatterns = []dayPattern{
	{re: regexp.MustCompile(`([0-9]+|[零一二两三四五六七八九十百千]+|几|数|多)\s*个?\s*(?:天|日)`), unit: 1},
	{re: regexp.MustCompile(`(?i)\b([0-9]+|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|thirteen|fourteen|fifteen|sixteen|a few|few|several|a couple of|couple of)[\s-]*days?\b`), unit: 1},
	{re: regexp.MustCompile(`([一两二1-2])\s*个?\s*(?:周|星期|礼拜)`), unit: 7},
	{re: regexp.MustCompile(`(?i)\b(a|one|two|next|1|2)\s+weeks?\b`), unit: 7},
}

var forecastKeywords = []string{"forecast", "未来", "接下来"}

// dateMarkers precede numerals that name a weekday or lunar date ("星期一",
// "初三") rather than a count.
var dateMarkers = []string{"星期", "礼拜", "周", "初"}

type dayPhrase struct {
	days       int
	start, end int
}

// findDayPhrase locates a day-count phrase. Counts that cannot be read fall
// back to DefaultForecastDays; a bare week means seven days.
func findDayPhrase(text string) (dayPhrase, bool) {
	for _, p := range dayPatterns {
		for _, m := range p.re.FindAllStringSubmatchIndex(text, -1) {
			if followsDateMarker(text[:m[2]]) {
				continue
			}
			n, ok := parseCount(text[m[2]:m[3]])
			if !ok && p.unit > 1 {
				n, ok = 1, true
			}
			days := DefaultForecastDays
			if ok {
				days = n * p.unit
			}
			return dayPhrase{days: days, start: m[0], end: m[1]}, true
		}
	}
	return dayPhrase{}, false
}

func followsDateMarker(prefix string) bool {
	for _, marker := range dateMarkers {
		if strings.HasSuffix(prefix, marker) {
			return true
		}
	}
	return false
}

func matchForecast(in *Interpreter, text string) (Intent, error) {
	days := DefaultForecastDays
	rest := text
	if phrase, ok := findDayPhrase(text); ok {
		days = phrase.days
		rest = text[:phrase.start] + text[phrase.end:]
	} else if !common.HasAnyFold(text, forecastKeywords...) {
		return nil, nil
	}

	city := in.cities.extract(rest)
	if city == "" {
		return nil, nil
	}
	f, err := NewCityForecast(city, days)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func matchCity(in *Interpreter, text string) (Intent, error) {
	city := in.cities.extract(text)
	if city == "" {
		return nil, nil
	}
	c, err := NewCityCurrent(city)
	if err != nil {
		return nil, err
	}
	return c, nil
}
