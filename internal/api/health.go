package api

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// HealthStatus represents the overall health status
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthCheckResponse represents a comprehensive health check response
type HealthCheckResponse struct {
	Status        HealthStatus           `json:"status"`
	Timestamp     string                 `json:"timestamp"`
	EngineVersion string                 `json:"engine_version"`
	GitCommit     string                 `json:"git_commit,omitempty"`
	BuildTime     string                 `json:"build_time,omitempty"`
	Uptime        string                 `json:"uptime"`
	Checks        map[string]HealthCheck `json:"checks"`
	System        SystemInfo             `json:"system"`
	RequestID     string                 `json:"request_id,omitempty"`
}

// HealthCheck represents an individual health check
type HealthCheck struct {
	Status      HealthStatus `json:"status"`
	Message     string       `json:"message,omitempty"`
	LastChecked string       `json:"last_checked"`
	Duration    string       `json:"duration,omitempty"`
}

// SystemInfo contains system information
type SystemInfo struct {
	GoVersion     string `json:"go_version"`
	NumGoroutines int    `json:"num_goroutines"`
	NumCPU        int    `json:"num_cpu"`
	MemoryAlloc   uint64 `json:"memory_alloc_bytes"`
	GCCycles      uint32 `json:"gc_cycles"`
}

const pingTimeout = 2 * time.Second

// runChecks evaluates every dependency. Optional ones that are not configured
// report healthy with a note.
func (s *Server) runChecks(ctx context.Context) (map[string]HealthCheck, HealthStatus) {
	checks := map[string]HealthCheck{
		"games":    s.checkGames(),
		"database": s.checkPing(ctx, "database", s.db),
		"cache":    s.checkPing(ctx, "cache", s.cache),
	}

	overall := HealthStatusHealthy
	for name, c := range checks {
		switch {
		case c.Status == HealthStatusUnhealthy && name != "cache":
			overall = HealthStatusUnhealthy
		case c.Status != HealthStatusHealthy && overall == HealthStatusHealthy:
			overall = HealthStatusDegraded
		}
	}
	return checks, overall
}

func (s *Server) checkGames() HealthCheck {
	start := time.Now()
	n := len(s.engine.Registry().List())
	check := HealthCheck{
		Status:  HealthStatusHealthy,
		Message: fmt.Sprintf("%d games available", n),
	}
	if n == 0 {
		check.Status = HealthStatusUnhealthy
		check.Message = "No games available"
	}
	check.LastChecked = time.Now().UTC().Format(time.RFC3339)
	check.Duration = time.Since(start).String()
	return check
}

type pinger interface {
	Ping(ctx context.Context) error
}

func (s *Server) checkPing(ctx context.Context, name string, p pinger) HealthCheck {
	start := time.Now()
	check := HealthCheck{Status: HealthStatusHealthy, Message: name + " reachable"}

	if p == nil {
		check.Message = name + " not configured"
	} else {
		ctx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			check.Status = HealthStatusUnhealthy
			check.Message = err.Error()
		}
	}

	check.LastChecked = time.Now().UTC().Format(time.RFC3339)
	check.Duration = time.Since(start).String()
	return check
}

// handleHealthCheck provides comprehensive health check endpoint
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	checks, overall := s.runChecks(r.Context())

	status := http.StatusOK
	if overall == HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}

	s.writeJSON(w, status, HealthCheckResponse{
		Status:        overall,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		EngineVersion: EngineVersion,
		GitCommit:     GitCommit,
		BuildTime:     BuildTime,
		Uptime:        time.Since(s.getStartTime()).String(),
		Checks:        checks,
		System:        getSystemInfo(),
		RequestID:     middleware.GetReqID(r.Context()),
	})
}

// handleReadiness reports whether the store and cache are reachable.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	checks, overall := s.runChecks(r.Context())

	ready := overall == HealthStatusHealthy
	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}

	s.writeJSON(w, status, map[string]any{
		"ready":          ready,
		"checks":         checks,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"engine_version": EngineVersion,
		"request_id":     middleware.GetReqID(r.Context()),
	})
}

// handleLiveness provides liveness probe endpoint
func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"alive":          true,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"engine_version": EngineVersion,
		"uptime":         time.Since(s.getStartTime()).String(),
		"request_id":     middleware.GetReqID(r.Context()),
	})
}

func getSystemInfo() SystemInfo {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return SystemInfo{
		GoVersion:     runtime.Version(),
		NumGoroutines: runtime.NumGoroutine(),
		NumCPU:        runtime.NumCPU(),
		MemoryAlloc:   m.Alloc,
		GCCycles:      m.NumGC,
	}
}
