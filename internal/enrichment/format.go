package enrichment

import (
	"fmt"
	"math"

	"github.com/quantshed/optiongreeks/internal/domain"
)

// FormattedCalculation is the human-readable form of a calculation:
// delta rounded to four decimals, time to expiry reported back in days,
// volatility and rate as percent strings.
type FormattedCalculation struct {
	Delta           float64 `json:"delta,omitempty"`
	UnderlyingPrice float64 `json:"underlying_price,omitempty"`
	StrikePrice     float64 `json:"strike_price,omitempty"`
	DaysToExpiry    int     `json:"days_to_expiry,omitempty"`
	Volatility      string  `json:"volatility,omitempty"`
	InterestRate    string  `json:"interest_rate,omitempty"`
	Error           string  `json:"error,omitempty"`
}

// FormattedPosition flattens a position and its calculation for display
type FormattedPosition struct {
	Instrument string  `json:"instrument"`
	Expiry     string  `json:"expiry"`
	Bid        float64 `json:"bid"`
	Offer      float64 `json:"offer"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Change     string  `json:"change"`

	DealID         string           `json:"deal_id"`
	Direction      domain.Direction `json:"direction"`
	DealSize       float64          `json:"deal_size"`
	ContractSize   float64          `json:"contract_size"`
	OpenLevel      float64          `json:"open_level"`
	Currency       string           `json:"currency"`
	ControlledRisk bool             `json:"controlled_risk"`
	CreatedDate    string           `json:"created_date"`

	Calculations *FormattedCalculation `json:"calculations,omitempty"`
}

// FormattedBatch is the display form of an enriched batch
type FormattedBatch struct {
	Positions []FormattedPosition `json:"positions,omitempty"`
	Message   string              `json:"message,omitempty"`
}

// FormatBatch converts an enriched batch into its display form
func FormatBatch(batch *domain.EnrichedBatch) *FormattedBatch {
	if batch == nil || (batch.Positions == nil && batch.Message != "") {
		msg := NoPositionsMessage
		if batch != nil {
			msg = batch.Message
		}
		return &FormattedBatch{Message: msg}
	}

	formatted := make([]FormattedPosition, 0, len(batch.Positions))
	for i := range batch.Positions {
		formatted = append(formatted, formatPosition(&batch.Positions[i]))
	}

	return &FormattedBatch{Positions: formatted}
}

func formatPosition(pos *domain.EnrichedPosition) FormattedPosition {
	fp := FormattedPosition{
		Instrument:     pos.Market.InstrumentName,
		Expiry:         pos.Market.Expiry,
		Bid:            pos.Market.Bid,
		Offer:          pos.Market.Offer,
		High:           pos.Market.High,
		Low:            pos.Market.Low,
		Change:         fmt.Sprintf("%v%%", pos.Market.PercentageChange),
		DealID:         pos.Position.DealID,
		Direction:      pos.Position.Direction,
		DealSize:       pos.Position.DealSize,
		ContractSize:   pos.Position.ContractSize,
		OpenLevel:      pos.Position.OpenLevel,
		Currency:       pos.Position.Currency,
		ControlledRisk: pos.Position.ControlledRisk,
		CreatedDate:    pos.Position.CreatedDate,
	}

	calc := pos.Calculations
	if calc.Failed() {
		fp.Calculations = &FormattedCalculation{Error: calc.Error}
		return fp
	}
	if calc.Greeks == nil {
		return fp
	}

	g := calc.Greeks
	fp.Calculations = &FormattedCalculation{
		Delta:           math.Round(g.Delta*10000) / 10000,
		UnderlyingPrice: g.UnderlyingPrice,
		StrikePrice:     g.StrikePrice,
		DaysToExpiry:    int(math.Round(g.TimeToExpiry * 365)),
		Volatility:      fmt.Sprintf("%.2f%%", g.Volatility*100),
		InterestRate:    fmt.Sprintf("%.2f%%", g.InterestRate*100),
	}
	return fp
}
