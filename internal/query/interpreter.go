package query

import (
	"strings"

	"github.com/rs/zerolog/log"
)

// Interpreter turns free text into an Intent using an ordered rule table:
// coordinates, then forecast, then plain city.
type Interpreter struct {
	cities *cityIndex
	rules  []rule
}

// NewInterpreter returns an Interpreter whose city hints are the built-in
// list plus extraCities.
func NewInterpreter(extraCities ...string) *Interpreter {
	return &Interpreter{
		cities: newCityIndex(extraCities...),
		rules:  defaultRules,
	}
}

// Interpret maps text onto exactly one Intent or returns an
// *InterpretationError.
func (in *Interpreter) Interpret(text string) (Intent, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, &InterpretationError{Text: text, Reason: ReasonNoIntent}
	}

	for _, r := range in.rules {
		intent, err := r.match(in, trimmed)
		if err != nil {
			log.Debug().Str("rule", r.name).Err(err).Msg("rule rejected query")
			return nil, err
		}
		if intent != nil {
			log.Debug().Str("rule", r.name).Str("kind", string(intent.Kind())).Msg("query interpreted")
			return intent, nil
		}
	}
	return nil, &InterpretationError{Text: text, Reason: ReasonNoIntent}
}
