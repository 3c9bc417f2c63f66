package domain

// ErrorKind tags a per-position enrichment failure with its cause
type ErrorKind string

const (
	ErrorKindParse       ErrorKind = "parse"
	ErrorKindResolution  ErrorKind = "resolution"
	ErrorKindConvergence ErrorKind = "convergence"
	ErrorKindProvider    ErrorKind = "provider"
)

// Greeks holds the risk metrics computed for one option position
type Greeks struct {
	Delta           float64 `json:"delta"`
	Volatility      float64 `json:"volatility"`
	TimeToExpiry    float64 `json:"time_to_expiry"` // years, floored at 0.001
	InterestRate    float64 `json:"interest_rate"`
	UnderlyingPrice float64 `json:"underlying_price"`
	StrikePrice     float64 `json:"strike_price"` // post-normalization
}

// Calculation is the enrichment outcome for a single position: either
// greeks or an error, never both. The failure stays visible in the output
// instead of aborting the batch.
type Calculation struct {
	Greeks    *Greeks   `json:"greeks,omitempty"`
	Error     string    `json:"error,omitempty"`
	ErrorKind ErrorKind `json:"error_kind,omitempty"`
}

// Failed reports whether the calculation carries an error
func (c *Calculation) Failed() bool {
	return c.Error != ""
}

// EnrichedPosition is the input position annotated with its calculation
type EnrichedPosition struct {
	Market       Market         `json:"market"`
	Position     PositionDetail `json:"position"`
	Calculations Calculation    `json:"calculations"`
}

// EnrichedBatch is the pipeline output: 1:1 with the input batch, in the
// input's order. Message is set instead when the input had no positions.
type EnrichedBatch struct {
	Positions []EnrichedPosition `json:"positions,omitempty"`
	Message   string             `json:"message,omitempty"`
}
