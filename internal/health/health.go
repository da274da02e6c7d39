// SPDX-License-Identifier: MIT

// Package health serves liveness and readiness probes.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ManuGH/vidgate/internal/log"
)

// Status represents the overall health/readiness status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// CheckResult represents the result of a component health check
type CheckResult struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// Response is the body of both probes.
type Response struct {
	Status    Status                 `json:"status"`
	Ready     *bool                  `json:"ready,omitempty"`
	Version   string                 `json:"version,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
}

// Checker defines the interface for readiness checks
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

// CheckFunc adapts a function into a Checker.
type CheckFunc struct {
	ID string
	Fn func(ctx context.Context) CheckResult
}

func (c CheckFunc) Name() string                          { return c.ID }
func (c CheckFunc) Check(ctx context.Context) CheckResult { return c.Fn(ctx) }

// Manager aggregates checks for the probes.
type Manager struct {
	version  string
	mu       sync.RWMutex
	checkers []Checker
	draining atomic.Bool
}

// NewManager creates a new health check manager
func NewManager(version string) *Manager {
	return &Manager{version: version}
}

// RegisterChecker adds a readiness checker.
func (m *Manager) RegisterChecker(c Checker) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkers = append(m.checkers, c)
}

// Drain marks the process as shutting down; readiness fails from now on.
func (m *Manager) Drain() {
	m.draining.Store(true)
}

// Live reports process liveness. It never runs checks.
func (m *Manager) Live() Response {
	return Response{Status: StatusHealthy, Version: m.version, Timestamp: time.Now()}
}

// Ready runs every registered check. Any unhealthy check, or draining, makes it not ready.
func (m *Manager) Ready(ctx context.Context) Response {
	resp := Response{Status: StatusHealthy, Version: m.version, Timestamp: time.Now()}
	ready := true

	m.mu.RLock()
	checkers := append([]Checker(nil), m.checkers...)
	m.mu.RUnlock()

	if len(checkers) > 0 || m.draining.Load() {
		resp.Checks = make(map[string]CheckResult, len(checkers)+1)
	}
	if m.draining.Load() {
		resp.Checks["shutdown"] = CheckResult{Status: StatusUnhealthy, Message: "draining"}
		resp.Status = StatusUnhealthy
		ready = false
	}
	for _, c := range checkers {
		res := c.Check(ctx)
		resp.Checks[c.Name()] = res
		switch res.Status {
		case StatusUnhealthy:
			resp.Status = StatusUnhealthy
			ready = false
		case StatusDegraded:
			if resp.Status == StatusHealthy {
				resp.Status = StatusDegraded
			}
		}
	}
	resp.Ready = &ready
	return resp
}

// ServeHealth handles liveness requests; always 200.
func (m *Manager) ServeHealth(w http.ResponseWriter, r *http.Request) {
	writeProbe(w, r, "health", http.StatusOK, m.Live())
}

// ServeReady handles readiness requests; 503 when not ready.
func (m *Manager) ServeReady(w http.ResponseWriter, r *http.Request) {
	resp := m.Ready(r.Context())
	code := http.StatusOK
	if !*resp.Ready {
		code = http.StatusServiceUnavailable
	}
	writeProbe(w, r, "readiness", code, resp)
}

func writeProbe(w http.ResponseWriter, r *http.Request, probe string, code int, resp Response) {
	logger := log.WithComponentFromContext(r.Context(), probe)
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error().Err(err).Str("event", probe+".encode_error").Msg("failed to encode probe response")
	}
	logger.Debug().
		Str("event", probe+".checked").
		Str("status", string(resp.Status)).
		Msg("probe served")
}
