package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantshed/optiongreeks/internal/domain"
	"github.com/quantshed/optiongreeks/internal/scheduler"
)

type mockSession struct {
	loginErr      error
	authenticated bool
}

func (m *mockSession) Login(_ context.Context) error {
	if m.loginErr == nil {
		m.authenticated = true
	}
	return m.loginErr
}

func (m *mockSession) Authenticated() bool { return m.authenticated }

type mockPositions struct {
	batch *domain.PositionsBatch
	err   error
}

func (m *mockPositions) GetPositions(_ context.Context) (*domain.PositionsBatch, error) {
	return m.batch, m.err
}

type mockEnricher struct {
	result *domain.EnrichedBatch
	err    error
}

func (m *mockEnricher) EnrichPositions(_ context.Context, _ *domain.PositionsBatch) (*domain.EnrichedBatch, error) {
	return m.result, m.err
}

func newTestServer(session Session, positions PositionsSource, enricher Enricher, snapshots *scheduler.SnapshotStore) *Server {
	return New(Config{
		Port:      0,
		Log:       zerolog.Nop(),
		Session:   session,
		Positions: positions,
		Enricher:  enricher,
		Snapshots: snapshots,
		DevMode:   true,
	})
}

func doRequest(t *testing.T, s *Server, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(&mockSession{}, &mockPositions{}, &mockEnricher{}, nil)

	rec := doRequest(t, s, http.MethodGet, "/health")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "optiongreeks", body["service"])
}

func TestHandleSession(t *testing.T) {
	session := &mockSession{}
	s := newTestServer(session, &mockPositions{}, &mockEnricher{}, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/session")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, session.Authenticated())
}

func TestHandleSession_Failure(t *testing.T) {
	session := &mockSession{loginErr: errors.New("login failed (status 401): invalid credentials")}
	s := newTestServer(session, &mockPositions{}, &mockEnricher{}, nil)

	rec := doRequest(t, s, http.MethodPost, "/api/session")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body["error"], "invalid credentials")
}

func TestHandlePositions(t *testing.T) {
	enriched := &domain.EnrichedBatch{
		Positions: []domain.EnrichedPosition{
			{
				Market:       domain.Market{InstrumentName: "US 500 6000 CALL", Expiry: "MAR-25"},
				Position:     domain.PositionDetail{DealID: "DEAL1", Direction: domain.DirectionBuy},
				Calculations: domain.Calculation{Greeks: &domain.Greeks{Delta: 0.5398}},
			},
		},
	}
	s := newTestServer(&mockSession{authenticated: true},
		&mockPositions{batch: &domain.PositionsBatch{Positions: []domain.Position{{}}}},
		&mockEnricher{result: enriched}, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/positions")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	positions, ok := body["positions"].([]interface{})
	require.True(t, ok)
	require.Len(t, positions, 1)
	first := positions[0].(map[string]interface{})
	assert.Equal(t, "US 500 6000 CALL", first["instrument"])
	calcs, ok := first["calculations"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 0.5398, calcs["delta"])
}

func TestHandlePositions_GatewayFailure(t *testing.T) {
	s := newTestServer(&mockSession{},
		&mockPositions{err: errors.New("session expired - please log in again")},
		&mockEnricher{}, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/positions")

	require.Equal(t, http.StatusBadGateway, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body["error"], "session expired")
}

func TestHandlePositionsSnapshot(t *testing.T) {
	store := scheduler.NewSnapshotStore()
	s := newTestServer(&mockSession{}, &mockPositions{}, &mockEnricher{}, store)

	rec := doRequest(t, s, http.MethodGet, "/api/positions/snapshot")
	require.Equal(t, http.StatusNotFound, rec.Code)

	store.Set(&domain.EnrichedBatch{Message: "No positions found"})

	rec = doRequest(t, s, http.MethodGet, "/api/positions/snapshot")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["updated_at"])
	snapshot, ok := body["positions"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "No positions found", snapshot["message"])
}

func TestHandlePositionsSnapshot_Disabled(t *testing.T) {
	s := newTestServer(&mockSession{}, &mockPositions{}, &mockEnricher{}, nil)

	rec := doRequest(t, s, http.MethodGet, "/api/positions/snapshot")

	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body["error"], "not enabled")
}
