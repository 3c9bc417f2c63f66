package instrument

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Default market→epic mapping, compiled into the binary. An override file
// can be supplied through configuration.
//
//go:embed markets.json
var defaultMarketsJSON []byte

// Table maps broker market identifiers to canonical instrument epics.
// It is built once at startup and never mutated afterwards.
type Table struct {
	markets map[string]string
}

// NewTable creates a table from an explicit mapping
func NewTable(markets map[string]string) *Table {
	m := make(map[string]string, len(markets))
	for k, v := range markets {
		m[k] = v
	}
	return &Table{markets: m}
}

// LoadTable reads the market→epic mapping from path, or the embedded
// default mapping when path is empty.
func LoadTable(path string) (*Table, error) {
	data := defaultMarketsJSON
	if path != "" {
		fileData, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read market mapping: %w", err)
		}
		data = fileData
	}

	var markets map[string]string
	if err := json.Unmarshal(data, &markets); err != nil {
		return nil, fmt.Errorf("failed to parse market mapping: %w", err)
	}

	return &Table{markets: markets}, nil
}

// Len returns the number of mapped market identifiers
func (t *Table) Len() int {
	return len(t.markets)
}

// Resolve maps a broker market identifier to its canonical epic. On a miss
// it retries two transformed variants: the identifier with all spaces
// removed, and the identifier with a space inserted after its second
// character. ok is false when all three lookups miss, which is a normal
// outcome for markets outside the table, not an error.
func (t *Table) Resolve(marketID string) (epic string, ok bool) {
	if epic, ok := t.markets[marketID]; ok {
		return epic, true
	}

	alternates := []string{strings.ReplaceAll(marketID, " ", "")}
	if len(marketID) > 2 {
		alternates = append(alternates, marketID[:2]+" "+marketID[2:])
	}

	for _, alt := range alternates {
		if epic, ok := t.markets[alt]; ok {
			return epic, true
		}
	}

	return "", false
}
