package instrument

import (
	"math"
	"strconv"
	"strings"
)

// NormalizeStrike aligns a parsed strike's decimal magnitude with the
// underlying's quoted price scale.
//
// FX option names carry strikes in point form (e.g. "8380") while the
// underlying may be quoted as a decimal rate (e.g. 0.8380), or both may be
// in points. When the two magnitudes are within one order of each other the
// strike is taken as already compatible; otherwise it is shifted by the
// difference in whole-digit counts. This is a heuristic, not an exact
// inverse of the broker's quoting convention.
//
// Both arguments must be strictly positive; callers guard that.
func NormalizeStrike(rawStrike, underlyingPrice float64) float64 {
	strikeMagnitude := math.Abs(math.Floor(math.Log10(rawStrike)))
	underlyingMagnitude := math.Abs(math.Floor(math.Log10(underlyingPrice)))

	if math.Abs(strikeMagnitude-underlyingMagnitude) <= 1 {
		return rawStrike
	}

	underlyingStr := strconv.FormatFloat(underlyingPrice, 'f', 6, 64)
	underlyingWholeDigits := len(strings.SplitN(underlyingStr, ".", 2)[0])

	rawStrikeDigits := len(strconv.Itoa(int(rawStrike)))
	shift := rawStrikeDigits - underlyingWholeDigits

	return rawStrike / math.Pow(10, float64(shift))
}
