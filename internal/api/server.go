// SPDX-License-Identifier: MIT

// Package api exposes the gateway's HTTP surface.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ManuGH/vidgate/internal/health"
	"github.com/ManuGH/vidgate/internal/middleware"
	"github.com/ManuGH/vidgate/internal/problem"
	"github.com/ManuGH/vidgate/internal/relay"
	"github.com/ManuGH/vidgate/internal/resolver"
)

// Config is fixed at construction time.
type Config struct {
	// Development exposes raw resolver text in error envelopes.
	Development bool
	// WebRoot serves a static site at "/" when set.
	WebRoot string
	// AllowedOrigins enables CORS for the listed origins when non-empty.
	AllowedOrigins []string
	// TracingService names the server tracer; empty disables request spans.
	TracingService string
	// RelayBufferSize is the per-download copy buffer; zero uses the relay default.
	RelayBufferSize int
}

// Server wires validation, resolution, cataloguing and relaying to routes.
type Server struct {
	cfg      Config
	adapter  *resolver.Adapter
	health   *health.Manager
	problems problem.Writer
	relayOpt relay.Options
	router   chi.Router
}

// New builds the server and its router.
func New(cfg Config, adapter *resolver.Adapter, hm *health.Manager) *Server {
	s := &Server{
		cfg:      cfg,
		adapter:  adapter,
		health:   hm,
		problems: problem.Writer{Development: cfg.Development},
		relayOpt: relay.Options{BufferSize: cfg.RelayBufferSize},
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := middleware.NewRouter(middleware.StackConfig{
		EnableCORS:            len(s.cfg.AllowedOrigins) > 0,
		AllowedOrigins:        s.cfg.AllowedOrigins,
		EnableSecurityHeaders: true,
		EnableMetrics:         true,
		TracingService:        s.cfg.TracingService,
		EnableLogging:         true,
	})

	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)

	r.Route("/api", func(r chi.Router) {
		r.Get("/openapi.yaml", handleOpenAPI)
		r.Post("/video-info", s.handleVideoInfo)
		r.Get("/download", s.handleDownload)
		r.Get("/stream-download", s.handleStreamDownload)
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			s.problems.Write(w, r, problem.NotFound("Not found"), problem.PathMetadata)
		})
	})

	if s.cfg.WebRoot != "" {
		r.Handle("/*", staticHandler(s.cfg.WebRoot))
	}
	return r
}
