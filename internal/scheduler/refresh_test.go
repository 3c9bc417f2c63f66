package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantshed/optiongreeks/internal/domain"
)

type mockSource struct {
	batch *domain.PositionsBatch
	err   error
	calls int
}

func (m *mockSource) GetPositions(_ context.Context) (*domain.PositionsBatch, error) {
	m.calls++
	return m.batch, m.err
}

type mockEnricher struct {
	result *domain.EnrichedBatch
	err    error
}

func (m *mockEnricher) EnrichPositions(_ context.Context, _ *domain.PositionsBatch) (*domain.EnrichedBatch, error) {
	return m.result, m.err
}

func TestRefreshJob_StoresSnapshot(t *testing.T) {
	enriched := &domain.EnrichedBatch{
		Positions: []domain.EnrichedPosition{
			{Calculations: domain.Calculation{Greeks: &domain.Greeks{Delta: 0.54}}},
			{Calculations: domain.Calculation{Error: "boom", ErrorKind: domain.ErrorKindParse}},
		},
	}

	source := &mockSource{batch: &domain.PositionsBatch{Positions: []domain.Position{{}, {}}}}
	store := NewSnapshotStore()
	job := NewRefreshJob(source, &mockEnricher{result: enriched}, store, zerolog.Nop())

	require.NoError(t, job.Run())
	assert.Equal(t, 1, source.calls)

	got, updatedAt, ok := store.Latest()
	require.True(t, ok)
	assert.Equal(t, enriched, got)
	assert.False(t, updatedAt.IsZero())
}

func TestRefreshJob_SourceFailure(t *testing.T) {
	store := NewSnapshotStore()
	job := NewRefreshJob(&mockSource{err: errors.New("gateway down")}, &mockEnricher{}, store, zerolog.Nop())

	err := job.Run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to fetch positions")

	_, _, ok := store.Latest()
	assert.False(t, ok, "failed run must not overwrite the snapshot")
}

func TestRefreshJob_EnrichFailure(t *testing.T) {
	store := NewSnapshotStore()
	source := &mockSource{batch: &domain.PositionsBatch{}}
	job := NewRefreshJob(source, &mockEnricher{err: errors.New("cancelled")}, store, zerolog.Nop())

	require.Error(t, job.Run())

	_, _, ok := store.Latest()
	assert.False(t, ok)
}

func TestSnapshotStore_EmptyUntilSet(t *testing.T) {
	store := NewSnapshotStore()

	_, _, ok := store.Latest()
	assert.False(t, ok)

	store.Set(&domain.EnrichedBatch{Message: "No positions found"})
	got, _, ok := store.Latest()
	require.True(t, ok)
	assert.Equal(t, "No positions found", got.Message)
}
