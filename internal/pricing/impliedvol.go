package pricing

import (
	"fmt"
	"math"

	"github.com/quantshed/optiongreeks/internal/domain"
)

const (
	initialVol     = 0.3
	maxIterations  = 100
	pricePrecision = 1.0e-5
	// Below this vega the Newton step degenerates and the iteration is
	// considered stalled.
	minVega = 1.0e-10
	// Volatility must stay strictly positive for the next price evaluation.
	MinVolatility = 0.0001
)

// ConvergenceError reports an implied volatility solve that failed to
// reach the target precision, carrying the last estimate so callers can
// decide whether to substitute a default.
type ConvergenceError struct {
	LastEstimate float64
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("implied volatility calculation did not converge, last estimate: %.4f", e.LastEstimate)
}

// ImpliedVolatility solves price(v) = marketPrice for v using
// Newton-Raphson over the pricing kernel.
func ImpliedVolatility(s, k, t, r, marketPrice float64, optionType domain.OptionType) (float64, error) {
	v := initialVol

	for i := 0; i < maxIterations; i++ {
		price := Price(s, k, t, v, r, optionType)
		diff := price - marketPrice

		if math.Abs(diff) < pricePrecision {
			return v, nil
		}

		vega := Vega(s, k, t, v, r)
		if math.Abs(vega) < minVega {
			// Stalled: no further progress possible from here.
			break
		}

		v = v - diff/vega

		if v <= 0 {
			v = MinVolatility
		}
	}

	return 0, &ConvergenceError{LastEstimate: v}
}
