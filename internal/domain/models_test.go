package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPosition() Position {
	return Position{
		Market: Market{
			Epic:           "OP.D.SPX1.6000C.IP",
			InstrumentName: "US 500 6000 CALL",
			Expiry:         "MAR-25",
			Bid:            55,
			Offer:          57,
		},
		Position: PositionDetail{
			DealID:    "DEAL1",
			Direction: DirectionBuy,
			DealSize:  1,
		},
	}
}

func TestPositionValidate(t *testing.T) {
	pos := validPosition()
	assert.NoError(t, pos.Validate())

	missing := validPosition()
	missing.Market.InstrumentName = ""
	assert.Error(t, missing.Validate())

	noExpiry := validPosition()
	noExpiry.Market.Expiry = ""
	assert.Error(t, noExpiry.Validate())

	badQuote := validPosition()
	badQuote.Market.Offer = 0
	assert.Error(t, badQuote.Validate())

	badDirection := validPosition()
	badDirection.Position.Direction = "HOLD"
	assert.Error(t, badDirection.Validate())
}

func TestPositionMidPrice(t *testing.T) {
	pos := validPosition()
	assert.Equal(t, 56.0, pos.MidPrice())
}

func TestSnapshotMidPrice(t *testing.T) {
	assert.Equal(t, 100.0, (&Snapshot{Bid: 99, Offer: 101}).MidPrice())
	// One-sided quotes fall back to the available side
	assert.Equal(t, 99.0, (&Snapshot{Bid: 99}).MidPrice())
	assert.Equal(t, 101.0, (&Snapshot{Offer: 101}).MidPrice())
}

func TestPositionsBatch_MissingKeyDecodesToNil(t *testing.T) {
	var batch PositionsBatch
	require.NoError(t, json.Unmarshal([]byte(`{}`), &batch))
	assert.Nil(t, batch.Positions)

	require.NoError(t, json.Unmarshal([]byte(`{"positions": []}`), &batch))
	assert.NotNil(t, batch.Positions)
	assert.Len(t, batch.Positions, 0)
}
