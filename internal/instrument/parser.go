// Package instrument recovers structured option contract data from the
// loosely formatted text the broker attaches to positions: strike and type
// from instrument names, expiry dates from expiry codes, and the canonical
// epic of the underlying from market identifiers.
package instrument

import (
	"strconv"
	"strings"

	"github.com/quantshed/optiongreeks/internal/domain"
)

// ParseOptionName extracts the strike price and option type from a broker
// instrument name.
//
// Names come in shapes like:
//
//	"US 500 6000 CALL"
//	"Daily US 500 6058.0 CALL"
//	"Daily EURUSD 10410 CALL ($1)"
//	"Weekly Germany 40 (Wed)21500 CALL"
//
// The strike is the rightmost run of digits (with an optional embedded
// decimal point) before the CALL/PUT keyword. The run may butt directly
// against other text, as in "(Wed)21500".
func ParseOptionName(name string) (float64, domain.OptionType, error) {
	upper := strings.ToUpper(name)

	var optionType domain.OptionType
	var prefix string
	if idx := strings.Index(upper, "CALL"); idx >= 0 {
		optionType = domain.OptionTypeCall
		prefix = strings.TrimSpace(upper[:idx])
	} else if idx := strings.Index(upper, "PUT"); idx >= 0 {
		optionType = domain.OptionTypePut
		prefix = strings.TrimSpace(upper[:idx])
	} else {
		return 0, "", &domain.ParseError{Input: name, Reason: "no CALL/PUT keyword found"}
	}

	run := trailingNumberRun(prefix)
	if run == "" {
		return 0, "", &domain.ParseError{Input: name, Reason: "no strike price found"}
	}

	strike, err := strconv.ParseFloat(run, 64)
	if err != nil || strike <= 0 {
		return 0, "", &domain.ParseError{Input: name, Reason: "invalid strike " + run}
	}

	return strike, optionType, nil
}

// trailingNumberRun returns the rightmost maximal run of digits in s,
// allowing a single embedded decimal point with digits on both sides.
func trailingNumberRun(s string) string {
	end := -1
	start := -1
	sawDot := false

	for i := len(s) - 1; i >= 0; i-- {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			if end < 0 {
				end = i + 1
			}
			start = i
		case c == '.' && end >= 0 && !sawDot && i > 0 && isDigit(s[i-1]):
			sawDot = true
			start = i
		default:
			if end >= 0 {
				return s[start:end]
			}
		}
	}

	if end < 0 {
		return ""
	}
	return s[start:end]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
