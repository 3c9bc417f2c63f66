// Package domain provides core domain models and types.
package domain

import "fmt"

// OptionType represents the kind of a vanilla option
type OptionType string

const (
	OptionTypeCall OptionType = "call"
	OptionTypePut  OptionType = "put"
)

// Direction represents the side of an open position
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// Market holds the market block of a brokerage position. Fields beyond
// the ones the enrichment needs are carried through to the output verbatim.
type Market struct {
	Epic             string  `json:"epic"`
	InstrumentName   string  `json:"instrumentName"`
	Expiry           string  `json:"expiry"`
	Bid              float64 `json:"bid"`
	Offer            float64 `json:"offer"`
	High             float64 `json:"high"`
	Low              float64 `json:"low"`
	PercentageChange float64 `json:"percentageChange"`
}

// PositionDetail holds the position block of a brokerage position.
// Opaque to the calculations, passed through unchanged.
type PositionDetail struct {
	DealID         string    `json:"dealId"`
	Direction      Direction `json:"direction"`
	DealSize       float64   `json:"dealSize"`
	ContractSize   float64   `json:"contractSize"`
	OpenLevel      float64   `json:"openLevel"`
	Currency       string    `json:"currency"`
	ControlledRisk bool      `json:"controlledRisk"`
	CreatedDate    string    `json:"createdDate"`
}

// Position is a single open position as reported by the broker
type Position struct {
	Market   Market         `json:"market"`
	Position PositionDetail `json:"position"`
}

// Validate checks the fields the enrichment pipeline depends on.
// Positions arrive as loosely shaped broker JSON; this is the ingress
// boundary where missing or malformed fields surface as a parse failure.
func (p *Position) Validate() error {
	if p.Market.InstrumentName == "" {
		return &ParseError{Input: p.Position.DealID, Reason: "missing instrument name"}
	}
	if p.Market.Expiry == "" {
		return &ParseError{Input: p.Position.DealID, Reason: "missing expiry"}
	}
	if p.Market.Bid <= 0 || p.Market.Offer <= 0 {
		return &ParseError{
			Input:  p.Position.DealID,
			Reason: fmt.Sprintf("invalid quote (bid=%v offer=%v)", p.Market.Bid, p.Market.Offer),
		}
	}
	if p.Position.Direction != DirectionBuy && p.Position.Direction != DirectionSell {
		return &ParseError{
			Input:  p.Position.DealID,
			Reason: fmt.Sprintf("invalid direction %q", p.Position.Direction),
		}
	}
	return nil
}

// MidPrice returns the mid of the position's own quote
func (p *Position) MidPrice() float64 {
	return (p.Market.Bid + p.Market.Offer) / 2.0
}

// PositionsBatch is the broker's positions response. A response without a
// "positions" key decodes to a nil slice, which the pipeline reports as the
// "no positions found" sentinel rather than an error.
type PositionsBatch struct {
	Positions []Position `json:"positions"`
}

// InstrumentInfo is the instrument block of a market details response
type InstrumentInfo struct {
	MarketID string `json:"marketId"`
}

// Snapshot is the live quote block of a market details response
type Snapshot struct {
	Bid   float64 `json:"bid"`
	Offer float64 `json:"offer"`
}

// MidPrice returns the snapshot mid, falling back to whichever side is
// quoted when the other is missing.
func (s *Snapshot) MidPrice() float64 {
	switch {
	case s.Bid > 0 && s.Offer > 0:
		return (s.Bid + s.Offer) / 2.0
	case s.Bid > 0:
		return s.Bid
	default:
		return s.Offer
	}
}

// MarketDetails is what the market-data provider returns for an epic
type MarketDetails struct {
	Instrument InstrumentInfo `json:"instrument"`
	Snapshot   Snapshot       `json:"snapshot"`
}
