// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ManuGH/vidgate/internal/catalog"
	"github.com/ManuGH/vidgate/internal/log"
	"github.com/ManuGH/vidgate/internal/metrics"
	"github.com/ManuGH/vidgate/internal/problem"
	"github.com/ManuGH/vidgate/internal/relay"
	"github.com/ManuGH/vidgate/internal/resolver"
	"github.com/ManuGH/vidgate/internal/validate"
)

const (
	maxBodyBytes = 64 << 10

	routeDownload       = "download"
	routeStreamDownload = "stream-download"
)

type videoInfoRequest struct {
	URL string `json:"url"`
}

type videoInfoResponse struct {
	Success      bool                 `json:"success"`
	VideoDetails catalog.VideoDetails `json:"videoDetails"`
	Formats      catalog.Catalog      `json:"formats"`
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// handleVideoInfo implements POST /api/video-info.
func (s *Server) handleVideoInfo(w http.ResponseWriter, r *http.Request) {
	var req videoInfoRequest
	// A body that is not JSON leaves url empty.
	_ = json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req)

	url := strings.TrimSpace(req.URL)
	if url == "" {
		s.problems.Write(w, r, problem.Invalid(problem.MsgURLRequired), problem.PathMetadata)
		return
	}
	if err := validate.VideoURL(url); err != nil {
		s.problems.Write(w, r, problem.Invalid(problem.MsgInvalidURL), problem.PathMetadata)
		return
	}

	logger := log.WithComponentFromContext(r.Context(), "api")
	logger.Info().Str(log.FieldURL, validate.SanitizeURL(url)).Msg("fetching video info")

	v, err := s.adapter.FetchMetadata(r.Context(), url)
	if err != nil {
		s.problems.Write(w, r, err, problem.PathMetadata)
		return
	}

	formats := catalog.Build(v.Formats)
	for bucket, size := range formats.Sizes() {
		metrics.ObserveCatalogBucket(string(bucket), size)
	}

	writeJSON(w, http.StatusOK, videoInfoResponse{
		Success:      true,
		VideoDetails: catalog.Details(v),
		Formats:      formats,
	})
}

// handleDownload implements GET /api/download?url=&itag=&type=.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	tr := relay.Track(r.Context(), routeDownload)
	q := r.URL.Query()
	url := strings.TrimSpace(q.Get("url"))
	rawItag := strings.TrimSpace(q.Get("itag"))

	if url == "" || rawItag == "" {
		s.fail(w, r, tr, problem.Invalid(problem.MsgURLItagRequired))
		return
	}
	if err := validate.VideoURL(url); err != nil {
		s.fail(w, r, tr, problem.Invalid(problem.MsgInvalidURL))
		return
	}
	// No resolver offers a format that is not a positive integer.
	itag, err := strconv.Atoi(rawItag)
	if err != nil || itag <= 0 {
		s.fail(w, r, tr, problem.NotFound(problem.MsgFormatNotFound))
		return
	}

	logger := log.WithComponentFromContext(r.Context(), "api")
	logger.Info().
		Str(log.FieldURL, validate.SanitizeURL(url)).
		Int(log.FieldItag, itag).
		Str("type", q.Get("type")).
		Msg("starting download")

	s.relay(w, r, tr, url, resolver.ByItag(itag))
}

// handleStreamDownload implements GET /api/stream-download?url=&quality=.
func (s *Server) handleStreamDownload(w http.ResponseWriter, r *http.Request) {
	tr := relay.Track(r.Context(), routeStreamDownload)
	q := r.URL.Query()
	url := strings.TrimSpace(q.Get("url"))

	if url == "" {
		s.fail(w, r, tr, problem.Invalid(problem.MsgURLRequired))
		return
	}
	if err := validate.VideoURL(url); err != nil {
		s.fail(w, r, tr, problem.Invalid(problem.MsgInvalidURL))
		return
	}

	sel := resolver.ByQuality(q.Get("quality"))
	logger := log.WithComponentFromContext(r.Context(), "api")
	logger.Info().
		Str(log.FieldURL, validate.SanitizeURL(url)).
		Str(log.FieldQuality, sel.Quality).
		Msg("starting streaming download")

	s.relay(w, r, tr, url, sel)
}

func (s *Server) relay(w http.ResponseWriter, r *http.Request, tr *relay.Tracker, url string, sel resolver.Selector) {
	tr.To(relay.StateResolving)
	stream, err := s.adapter.OpenStream(r.Context(), url, sel)
	if err != nil {
		if r.Context().Err() != nil {
			tr.To(relay.StateCancelled)
			metrics.IncRelayOutcome(tr.Route(), relay.StateCancelled.String())
			return
		}
		s.fail(w, r, tr, err)
		return
	}

	res := relay.Relay(w, r, stream, tr, s.relayOpt)
	if res.State != relay.StateFailed {
		return
	}
	if res.Committed {
		// Headers are out; only dropping the connection signals the failure.
		panic(http.ErrAbortHandler)
	}
	// The adapter already classified upstream read failures.
	s.problems.Write(w, r, res.Err, problem.PathDownload)
}

// fail ends a download request before any byte was relayed.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, tr *relay.Tracker, err error) {
	tr.To(relay.StateFailed)
	outcome := relay.StateFailed.String()
	var pe *problem.Error
	if errors.As(err, &pe) && pe.Code == problem.CodeInvalidInput {
		outcome = "rejected"
	}
	metrics.IncRelayOutcome(tr.Route(), outcome)
	s.problems.Write(w, r, err, problem.PathDownload)
}
