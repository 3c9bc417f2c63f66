// Package enrichment orchestrates the per-position risk calculation: it
// parses each option position, resolves and quotes the underlying, solves
// for implied volatility, and attaches a delta — isolating failures to the
// position they occurred on.
package enrichment

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/quantshed/optiongreeks/internal/domain"
	"github.com/quantshed/optiongreeks/internal/instrument"
	"github.com/quantshed/optiongreeks/internal/pricing"
)

// NoPositionsMessage is returned for batches without a positions list
const NoPositionsMessage = "No positions found"

// MarketDataProvider supplies market details for an epic. Fetch failures
// surface as per-position errors, never as batch failures.
type MarketDataProvider interface {
	GetMarketDetails(ctx context.Context, epic string) (*domain.MarketDetails, error)
}

// Config holds enrichment tuning
type Config struct {
	Concurrency       int     // parallel market-data fetches, minimum 1
	DefaultVolatility float64 // substituted when the IV solve does not converge
	RiskFreeRate      float64
}

// Service enriches position batches with greeks
type Service struct {
	provider     MarketDataProvider
	markets      *instrument.Table
	concurrency  int
	defaultVol   float64
	riskFreeRate float64
	now          func() time.Time
	log          zerolog.Logger
}

// NewService creates a new enrichment service
func NewService(provider MarketDataProvider, markets *instrument.Table, cfg Config, log zerolog.Logger) *Service {
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	defaultVol := cfg.DefaultVolatility
	if defaultVol <= 0 {
		defaultVol = 0.20
	}

	return &Service{
		provider:     provider,
		markets:      markets,
		concurrency:  concurrency,
		defaultVol:   defaultVol,
		riskFreeRate: cfg.RiskFreeRate,
		now:          time.Now,
		log:          log.With().Str("service", "enrichment").Logger(),
	}
}

// EnrichPositions annotates every position in the batch with either greeks
// or an error result. Output order and count match the input exactly.
// Positions are processed with bounded parallelism; cancelling ctx stops
// issuing further work and returns the context error instead of a partial
// batch.
func (s *Service) EnrichPositions(ctx context.Context, batch *domain.PositionsBatch) (*domain.EnrichedBatch, error) {
	if batch == nil || batch.Positions == nil {
		return &domain.EnrichedBatch{Message: NoPositionsMessage}, nil
	}

	results := make([]domain.EnrichedPosition, len(batch.Positions))
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

loop:
	for i := range batch.Positions {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break loop
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, pos domain.Position) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = s.enrichPosition(ctx, pos)
		}(i, batch.Positions[i])
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &domain.EnrichedBatch{Positions: results}, nil
}

// enrichPosition computes greeks for one position. Any failure is caught
// here, at the position boundary, and converted into an error calculation.
func (s *Service) enrichPosition(ctx context.Context, pos domain.Position) domain.EnrichedPosition {
	enriched := domain.EnrichedPosition{Market: pos.Market, Position: pos.Position}

	greeks, err := s.computeGreeks(ctx, &pos)
	if err != nil {
		s.log.Error().
			Err(err).
			Str("epic", pos.Market.Epic).
			Str("instrument", pos.Market.InstrumentName).
			Msg("Failed to enrich position")
		enriched.Calculations = domain.Calculation{Error: err.Error(), ErrorKind: errorKind(err)}
		return enriched
	}

	enriched.Calculations = domain.Calculation{Greeks: greeks}
	return enriched
}

func (s *Service) computeGreeks(ctx context.Context, pos *domain.Position) (*domain.Greeks, error) {
	if err := pos.Validate(); err != nil {
		return nil, err
	}

	optionDetails, err := s.provider.GetMarketDetails(ctx, pos.Market.Epic)
	if err != nil {
		return nil, &domain.ProviderError{Op: "fetch option market details", Err: err}
	}

	rawStrike, optionType, err := instrument.ParseOptionName(pos.Market.InstrumentName)
	if err != nil {
		return nil, err
	}

	marketID := optionDetails.Instrument.MarketID
	if marketID == "" {
		return nil, &domain.ResolutionError{MarketID: pos.Market.Epic, Reason: "option has no underlying market id"}
	}

	underlyingEpic, ok := s.markets.Resolve(marketID)
	if !ok {
		return nil, &domain.ResolutionError{MarketID: marketID, Reason: "no epic mapping"}
	}

	underlyingDetails, err := s.provider.GetMarketDetails(ctx, underlyingEpic)
	if err != nil {
		return nil, &domain.ProviderError{Op: "fetch underlying market details", Err: err}
	}

	underlyingPrice := underlyingDetails.Snapshot.MidPrice()
	if underlyingPrice <= 0 {
		return nil, &domain.ResolutionError{MarketID: underlyingEpic, Reason: "no usable underlying quote"}
	}

	strike := instrument.NormalizeStrike(rawStrike, underlyingPrice)

	timeToExpiry, err := instrument.TimeToExpiry(pos.Market.Expiry, s.now())
	if err != nil {
		return nil, err
	}

	marketPrice := pos.MidPrice()

	volatility, err := pricing.ImpliedVolatility(
		underlyingPrice, strike, timeToExpiry, s.riskFreeRate, marketPrice, optionType)
	if err != nil {
		var convErr *pricing.ConvergenceError
		if !errors.As(err, &convErr) {
			return nil, err
		}
		s.log.Warn().
			Err(err).
			Str("instrument", pos.Market.InstrumentName).
			Float64("default_volatility", s.defaultVol).
			Msg("Implied volatility did not converge, substituting default")
		volatility = s.defaultVol
	}

	delta := pricing.Delta(
		underlyingPrice, strike, timeToExpiry, volatility, s.riskFreeRate,
		optionType, pos.Position.Direction)

	return &domain.Greeks{
		Delta:           delta,
		Volatility:      volatility,
		TimeToExpiry:    timeToExpiry,
		InterestRate:    s.riskFreeRate,
		UnderlyingPrice: underlyingPrice,
		StrikePrice:     strike,
	}, nil
}

// errorKind classifies a per-position failure for the error result tag
func errorKind(err error) domain.ErrorKind {
	var parseErr *domain.ParseError
	if errors.As(err, &parseErr) {
		return domain.ErrorKindParse
	}
	var resolutionErr *domain.ResolutionError
	if errors.As(err, &resolutionErr) {
		return domain.ErrorKindResolution
	}
	var convErr *pricing.ConvergenceError
	if errors.As(err, &convErr) {
		return domain.ErrorKindConvergence
	}
	var providerErr *domain.ProviderError
	if errors.As(err, &providerErr) {
		return domain.ErrorKindProvider
	}
	return ""
}
