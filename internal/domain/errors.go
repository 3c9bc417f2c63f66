package domain

import "fmt"

// ParseError reports malformed instrument names, expiry codes, or position
// records that fail ingress validation.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %q: %s", e.Input, e.Reason)
}

// ResolutionError reports an underlying market identifier with no epic
// mapping. Resolver misses are a normal outcome of the lookup itself; the
// error exists for the pipeline, where an unresolvable underlying means the
// position cannot be enriched.
type ResolutionError struct {
	MarketID string
	Reason   string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve underlying %q: %s", e.MarketID, e.Reason)
}

// ProviderError wraps a market-data fetch failure. The pipeline treats it
// as a per-position failure, not a fatal one.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
