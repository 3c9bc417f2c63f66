package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/quantshed/optiongreeks/internal/enrichment"
)

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"service": "optiongreeks",
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleSystemStatus handles system status requests
func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	cpuPercent, ramPercent := s.getSystemStats()

	response := map[string]interface{}{
		"status":        "running",
		"authenticated": s.session.Authenticated(),
		"uptime_hours":  time.Since(s.startedAt).Hours(),
		"cpu_percent":   cpuPercent,
		"ram_percent":   ramPercent,
		"memory": map[string]interface{}{
			"alloc_mb":       m.Alloc / 1024 / 1024,
			"total_alloc_mb": m.TotalAlloc / 1024 / 1024,
			"sys_mb":         m.Sys / 1024 / 1024,
			"num_gc":         m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}

	s.writeJSON(w, http.StatusOK, response)
}

// getSystemStats returns CPU and RAM usage percentages. CPU sampling uses a
// 100ms interval to keep the status endpoint responsive.
func (s *Server) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

// handleSession authenticates with the broker gateway
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Login(r.Context()); err != nil {
		s.log.Error().Err(err).Msg("Login failed")
		s.writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "Session established",
	})
}

// handlePositions fetches open positions live and returns them enriched
// with greeks.
func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	batch, err := s.positions.GetPositions(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to fetch positions")
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	enriched, err := s.enricher.EnrichPositions(r.Context(), batch)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to enrich positions")
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, enrichment.FormatBatch(enriched))
}

// handlePositionsSnapshot returns the last batch produced by the refresh
// job without touching the broker.
func (s *Server) handlePositionsSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.snapshots == nil {
		s.writeError(w, http.StatusNotFound, "snapshot refresh is not enabled")
		return
	}

	batch, updatedAt, ok := s.snapshots.Latest()
	if !ok {
		s.writeError(w, http.StatusNotFound, "no snapshot available yet")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"updated_at": updatedAt.UTC().Format(time.RFC3339),
		"positions":  enrichment.FormatBatch(batch),
	})
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{
		"error": message,
	})
}
