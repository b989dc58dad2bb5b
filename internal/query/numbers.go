package query

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var englishNumbers = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6, "seven": 7, "eight": 8,
	"nine": 9, "ten": 10, "eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "a": 1,
}

var hanDigits = map[rune]int{
	'零': 0, '一': 1, '二': 2, '两': 2, '三': 3, '四': 4, '五': 5, '六': 6, '七': 7, '八': 8, '九': 9,
}

var hanUnits = map[rune]int{'十': 10, '百': 100, '千': 1000}

// parseCount reads a day count written as digits, English words or Chinese
// numerals. ok is false when the phrase carries no usable number. Digit
// strings too long for an int read as MaxForecastDays.
func parseCount(s string) (int, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	switch {
	case err == nil:
		return n, true
	case errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(s, "-"):
		return MaxForecastDays, true
	}
	if n, ok := englishNumbers[s]; ok {
		return n, true
	}
	return parseHanNumber(s)
}

// parseHanNumber reads Chinese numerals below 10000 ("十二", "一百零五", "两千").
// A leading unit counts as one of it, so "十五" is 15.
func parseHanNumber(s string) (int, bool) {
	total, digit := 0, -1
	for _, r := range s {
		if d, ok := hanDigits[r]; ok {
			digit = d
			continue
		}
		unit, ok := hanUnits[r]
		if !ok {
			return 0, false
		}
		if digit < 0 {
			digit = 1
		}
		total += digit * unit
		digit = -1
	}
	if digit > 0 {
		total += digit
	}
	if total == 0 && digit < 0 {
		return 0, false
	}
	return total, true
}
