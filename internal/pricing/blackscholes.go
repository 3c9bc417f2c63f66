// Package pricing implements the Black-Scholes pricing kernel and the
// implied volatility solver for vanilla options.
package pricing

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/quantshed/optiongreeks/internal/domain"
)

// w is the d1 term of the Black-Scholes formula:
//
//	(ln(s/k) + (r + v²/2)·t) / (v·√t)
//
// When the denominator degenerates (t=0, v=0, or t<0) the value is taken
// to its limit: +Inf for in-the-money spots, -Inf otherwise.
func w(s, k, t, v, r float64) float64 {
	denom := v * math.Sqrt(t)
	if denom == 0 || math.IsNaN(denom) {
		if s > k {
			return math.Inf(1)
		}
		return math.Inf(-1)
	}
	return (math.Log(s/k) + (r+v*v/2)*t) / denom
}

// CallPrice returns the Black-Scholes price of a European call.
// At or past expiry, and at the deep in/out-of-the-money boundary where w
// is no longer finite, the price collapses to intrinsic value.
func CallPrice(s, k, t, v, r float64) float64 {
	if t <= 0 {
		return math.Max(0, s-k)
	}

	d1 := w(s, k, t, v, r)
	if math.IsInf(d1, 0) || math.IsNaN(d1) {
		return math.Max(0, s-k)
	}

	d2 := d1 - v*math.Sqrt(t)
	return s*distuv.UnitNormal.CDF(d1) - k*math.Exp(-r*t)*distuv.UnitNormal.CDF(d2)
}

// PutPrice returns the price of a European put via put-call parity
func PutPrice(s, k, t, v, r float64) float64 {
	return CallPrice(s, k, t, v, r) - s + k*math.Exp(-r*t)
}

// Price dispatches to CallPrice or PutPrice
func Price(s, k, t, v, r float64, optionType domain.OptionType) float64 {
	if optionType == domain.OptionTypePut {
		return PutPrice(s, k, t, v, r)
	}
	return CallPrice(s, k, t, v, r)
}

// Vega returns the option's sensitivity to volatility. Calls and puts
// share the same vega.
func Vega(s, k, t, v, r float64) float64 {
	if t <= 0 {
		return 0
	}

	d1 := w(s, k, t, v, r)
	if math.IsInf(d1, 0) || math.IsNaN(d1) {
		return 0
	}

	return s * math.Sqrt(t) * distuv.UnitNormal.Prob(d1)
}

// CallDelta returns the delta of a call. At the degenerate boundary the
// delta is 1 in the money and 0 otherwise.
func CallDelta(s, k, t, v, r float64) float64 {
	d1 := w(s, k, t, v, r)
	if math.IsInf(d1, 0) || math.IsNaN(d1) {
		if s > k {
			return 1.0
		}
		return 0.0
	}
	return distuv.UnitNormal.CDF(d1)
}

// PutDelta returns the delta of a put. The at-the-money degenerate case
// (delta exactly -1 with k == s) is mapped to 0.
func PutDelta(s, k, t, v, r float64) float64 {
	delta := CallDelta(s, k, t, v, r) - 1
	if delta == -1 && k == s {
		return 0.0
	}
	return delta
}

// Delta returns the position delta for the given option type, with the
// sign inverted for short positions.
func Delta(s, k, t, v, r float64, optionType domain.OptionType, direction domain.Direction) float64 {
	var delta float64
	if optionType == domain.OptionTypePut {
		delta = PutDelta(s, k, t, v, r)
	} else {
		delta = CallDelta(s, k, t, v, r)
	}

	if direction == domain.DirectionSell {
		return -delta
	}
	return delta
}
