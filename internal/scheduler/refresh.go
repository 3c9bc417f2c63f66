package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quantshed/optiongreeks/internal/domain"
)

// PositionsSource fetches the account's open positions
type PositionsSource interface {
	GetPositions(ctx context.Context) (*domain.PositionsBatch, error)
}

// Enricher annotates a positions batch with greeks
type Enricher interface {
	EnrichPositions(ctx context.Context, batch *domain.PositionsBatch) (*domain.EnrichedBatch, error)
}

// SnapshotStore holds the most recent enriched batch produced by the
// refresh job. Enrichment itself is stateless; this is the only state the
// application keeps, and it lives outside the pipeline.
type SnapshotStore struct {
	mu        sync.RWMutex
	latest    *domain.EnrichedBatch
	updatedAt time.Time
}

// NewSnapshotStore creates an empty snapshot store
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Set replaces the stored snapshot
func (s *SnapshotStore) Set(batch *domain.EnrichedBatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest = batch
	s.updatedAt = time.Now()
}

// Latest returns the stored snapshot and when it was taken.
// ok is false when no refresh has completed yet.
func (s *SnapshotStore) Latest() (batch *domain.EnrichedBatch, updatedAt time.Time, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.updatedAt, s.latest != nil
}

// RefreshJob periodically fetches positions, enriches them, and stores the
// result for the snapshot endpoint.
type RefreshJob struct {
	source   PositionsSource
	enricher Enricher
	store    *SnapshotStore
	log      zerolog.Logger
}

// NewRefreshJob creates a new positions refresh job
func NewRefreshJob(source PositionsSource, enricher Enricher, store *SnapshotStore, log zerolog.Logger) *RefreshJob {
	return &RefreshJob{
		source:   source,
		enricher: enricher,
		store:    store,
		log:      log.With().Str("job", "positions_refresh").Logger(),
	}
}

// Name implements Job
func (j *RefreshJob) Name() string {
	return "positions:refresh"
}

// Run implements Job
func (j *RefreshJob) Run() error {
	runID := uuid.New().String()
	ctx := context.Background()

	batch, err := j.source.GetPositions(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch positions: %w", err)
	}

	enriched, err := j.enricher.EnrichPositions(ctx, batch)
	if err != nil {
		return fmt.Errorf("failed to enrich positions: %w", err)
	}

	j.store.Set(enriched)

	var failures int
	for _, pos := range enriched.Positions {
		if pos.Calculations.Failed() {
			failures++
		}
	}

	j.log.Info().
		Str("run_id", runID).
		Int("positions", len(enriched.Positions)).
		Int("failures", failures).
		Msg("Positions snapshot refreshed")

	return nil
}
