package instrument

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStrike_CompatibleMagnitudes(t *testing.T) {
	// Within one order of magnitude the strike passes through unchanged
	assert.Equal(t, 6000.0, NormalizeStrike(6000, 5973.5))
	assert.Equal(t, 0.8380, NormalizeStrike(0.8380, 0.83752))
	assert.Equal(t, 154.0, NormalizeStrike(154, 155.393))
	assert.Equal(t, 21500.0, NormalizeStrike(21500, 19345.0))
	// One order apart is still considered compatible
	assert.Equal(t, 95.0, NormalizeStrike(95, 102.5))
}

func TestNormalizeStrike_PointQuotedFXStrikes(t *testing.T) {
	// USDJPY-style: strike in points, underlying quoted with three whole
	// digits. 15400 has five digits, shift by two.
	assert.InDelta(t, 154.00, NormalizeStrike(15400, 155.393), 1e-9)

	// EURUSD-style decimal rate underlying: four-digit point strike
	// against a single whole digit, shift by three.
	assert.InDelta(t, 8.380, NormalizeStrike(8380, 0.83752), 1e-9)

	// Five-digit EURUSD point strike against a rate just above parity
	assert.InDelta(t, 1.0410, NormalizeStrike(10410, 1.0392), 1e-9)
}
