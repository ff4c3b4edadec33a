package api

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"sitemap-console/pkg/console"
)

// handleHealth handles GET /api/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:  "ok",
		Uptime:  s.getUptime(),
		Version: s.version,
		TLS:     s.secureTransport(),
	}

	s.writeJSON(w, http.StatusOK, response)
}

// handleHealthz handles GET /healthz
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, LivenessResponse{Status: "alive"})
}

// handleReadyz handles GET /readyz. The console must hold a document and
// the revision store must answer.
func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, 2)
	ready := true

	err := s.session.Do(ctx, nil, func(c *console.SiteSettings) error {
		if !c.Loaded() {
			return console.ErrNoDocument
		}
		return nil
	})
	if err != nil {
		checks["console"] = err.Error()
		ready = false
	} else {
		checks["console"] = "ok"
	}

	if err := s.storage.Ping(ctx); err != nil {
		checks["storage"] = err.Error()
		ready = false
	} else {
		checks["storage"] = "ok"
	}

	if !ready {
		s.writeJSON(w, http.StatusServiceUnavailable, ReadinessResponse{Status: "not_ready", Checks: checks})
		return
	}
	s.writeJSON(w, http.StatusOK, ReadinessResponse{Status: "ready", Checks: checks})
}

// handleSystem handles GET /api/system
func (s *Server) handleSystem(w http.ResponseWriter, r *http.Request) {
	path := "."
	if s.source != nil {
		path = s.source.Path
	}
	m := collectSystemMetrics(r.Context(), path)

	resp := SystemResponse{
		CPUPercent: m.CPUPercent,
		MemUsed:    m.MemUsed,
		MemTotal:   m.MemTotal,
		MemPercent: m.MemPercent,
		DiskFree:   m.DiskFree,
		Goroutines: runtime.NumGoroutine(),
	}
	if m.TemperatureAvailable() {
		t := m.TemperatureC
		resp.TemperatureC = &t
	}
	s.writeJSON(w, http.StatusOK, resp)
}
