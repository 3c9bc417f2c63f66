package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quantshed/optiongreeks/internal/domain"
)

func TestPutCallParity(t *testing.T) {
	spots := []float64{50, 100, 155.39, 6000}
	strikes := []float64{45, 100, 154, 6100}
	times := []float64{0.01, 0.25, 1, 3}
	vols := []float64{0.08, 0.2, 0.6, 1.5}
	rates := []float64{0, 0.02, 0.05}

	for _, s := range spots {
		for _, k := range strikes {
			for _, tt := range times {
				for _, v := range vols {
					for _, r := range rates {
						call := CallPrice(s, k, tt, v, r)
						put := PutPrice(s, k, tt, v, r)
						expected := s - k*math.Exp(-r*tt)
						assert.InDelta(t, expected, call-put, 1e-9,
							"parity violated for s=%v k=%v t=%v v=%v r=%v", s, k, tt, v, r)
					}
				}
			}
		}
	}
}

func TestDeltaParity(t *testing.T) {
	cases := []struct{ s, k, tt, v, r float64 }{
		{100, 100, 1, 0.2, 0},
		{100, 90, 0.5, 0.3, 0.02},
		{0.8375, 0.838, 0.1, 0.1, 0},
		{6000, 6100, 0.04, 0.25, 0},
	}

	for _, c := range cases {
		callDelta := CallDelta(c.s, c.k, c.tt, c.v, c.r)
		putDelta := PutDelta(c.s, c.k, c.tt, c.v, c.r)
		assert.InDelta(t, 1.0, callDelta-putDelta, 1e-12)
	}
}

func TestCallPrice_KnownValue(t *testing.T) {
	// ATM call, one year, 20% vol, zero rate: d1 = 0.1, d2 = -0.1
	price := CallPrice(100, 100, 1, 0.2, 0)
	assert.InDelta(t, 7.9656, price, 1e-4)
}

func TestPrices_IntrinsicAtExpiry(t *testing.T) {
	assert.Equal(t, 5.0, CallPrice(105, 100, 0, 0.2, 0))
	assert.Equal(t, 0.0, CallPrice(95, 100, 0, 0.2, 0))
	assert.Equal(t, 5.0, PutPrice(95, 100, 0, 0.2, 0))
	assert.Equal(t, 0.0, PutPrice(105, 100, 0, 0.2, 0))
}

func TestPrices_ZeroVolBoundary(t *testing.T) {
	// v=0 makes w undefined; the price collapses to intrinsic value
	assert.Equal(t, 10.0, CallPrice(110, 100, 1, 0, 0))
	assert.Equal(t, 0.0, CallPrice(90, 100, 1, 0, 0))
}

func TestVega(t *testing.T) {
	// s·√t·φ(0.1) for the ATM one-year case
	vega := Vega(100, 100, 1, 0.2, 0)
	assert.InDelta(t, 100*math.Exp(-0.005)/math.Sqrt(2*math.Pi), vega, 1e-9)

	assert.Equal(t, 0.0, Vega(100, 100, 0, 0.2, 0))
	assert.Equal(t, 0.0, Vega(100, 100, -1, 0.2, 0))
	assert.Equal(t, 0.0, Vega(110, 100, 1, 0, 0))
}

func TestDelta_DirectionSign(t *testing.T) {
	longCall := Delta(100, 100, 1, 0.2, 0, domain.OptionTypeCall, domain.DirectionBuy)
	assert.InDelta(t, 0.5398, longCall, 1e-4)

	longPut := Delta(100, 100, 1, 0.2, 0, domain.OptionTypePut, domain.DirectionBuy)
	assert.InDelta(t, -0.4602, longPut, 1e-4)

	shortCall := Delta(100, 100, 1, 0.2, 0, domain.OptionTypeCall, domain.DirectionSell)
	assert.InDelta(t, -0.5398, shortCall, 1e-4)

	shortPut := Delta(100, 100, 1, 0.2, 0, domain.OptionTypePut, domain.DirectionSell)
	assert.InDelta(t, 0.4602, shortPut, 1e-4)
}

func TestPutDelta_SingularBoundary(t *testing.T) {
	// Expired at-the-money put: call delta is 0, which would give a put
	// delta of exactly -1. That singular corner is mapped to 0.
	assert.Equal(t, 0.0, PutDelta(100, 100, 0, 0.2, 0))

	// Expired in-the-money put stays at -1
	assert.Equal(t, -1.0, PutDelta(95, 100, 0, 0.2, 0))
}

func TestCallDelta_DegenerateBoundary(t *testing.T) {
	assert.Equal(t, 1.0, CallDelta(105, 100, 0, 0.2, 0))
	assert.Equal(t, 0.0, CallDelta(95, 100, 0, 0.2, 0))
	assert.Equal(t, 0.0, CallDelta(100, 100, 0, 0.2, 0))
}
