// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package relay copies a resolver stream into an HTTP response with
// backpressure, and tears the upstream down when the client goes away.
package relay

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/ManuGH/vidgate/internal/log"
	"github.com/ManuGH/vidgate/internal/metrics"
	"github.com/ManuGH/vidgate/internal/resolver"
	"github.com/ManuGH/vidgate/internal/telemetry"
)

const (
	// DefaultBufferSize is the single per-request copy buffer.
	DefaultBufferSize = 32 * 1024

	progressInterval = 2 * time.Second
)

// Result is the terminal outcome of a relay.
type Result struct {
	State State
	Bytes int64
	// Committed is true once response headers were sent.
	Committed bool
	Err       error
}

// Options tunes a Relay call.
type Options struct {
	BufferSize int
}

// Relay streams s into w. Headers are set once, right before the first
// byte. The next chunk is read only after the previous one was written and
// flushed. s is always closed on return, and as soon as r's context ends.
func Relay(w http.ResponseWriter, r *http.Request, s *resolver.Stream, t *Tracker, opts Options) Result {
	ctx := r.Context()
	stop := context.AfterFunc(ctx, func() { _ = s.Close() })
	defer stop()
	defer func() { _ = s.Close() }()

	t.To(StateStreaming)
	metrics.RelaysActive.Inc()
	defer metrics.RelaysActive.Dec()

	_, span := telemetry.Tracer("vidgate/relay").Start(ctx, "relay.stream",
		trace.WithAttributes(telemetry.FormatAttributes(s.Meta.VideoID, s.Meta.Format.Itag, s.Meta.Format.MimeType)...))
	defer span.End()

	res := pump(w, r, s, t, opts)

	t.To(res.State)
	metrics.IncRelayOutcome(t.Route(), res.State.String())
	span.SetAttributes(
		attribute.String(telemetry.RelayStateKey, res.State.String()),
		attribute.Int64(telemetry.RelayBytesKey, res.Bytes),
	)
	if res.State == StateFailed {
		telemetry.RecordError(span, res.Err, "")
	}

	evt := t.Logger().Info()
	if res.State == StateFailed {
		evt = t.Logger().Warn().Err(res.Err)
	}
	evt.Str(log.FieldEvent, "relay."+res.State.String()).
		Str(log.FieldVideoID, s.Meta.VideoID).
		Int(log.FieldItag, s.Meta.Format.Itag).
		Int64(log.FieldBytes, res.Bytes).
		Bool("committed", res.Committed).
		Msg("relay finished")
	return res
}

func pump(w http.ResponseWriter, r *http.Request, s *resolver.Stream, t *Tracker, opts Options) Result {
	size := opts.BufferSize
	if size <= 0 {
		size = DefaultBufferSize
	}
	buf := make([]byte, size)
	rc := http.NewResponseController(w)
	progress := rate.Sometimes{Interval: progressInterval}

	var res Result
	commit := func() {
		if res.Committed {
			return
		}
		h := w.Header()
		h.Set("Content-Disposition", ContentDisposition(s.Meta.Title, s.Meta.Container()))
		h.Set("Content-Type", s.Meta.ContentType())
		h.Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		res.Committed = true
	}

	for {
		n, rerr := s.Read(buf)
		if n > 0 {
			commit()
			if _, werr := w.Write(buf[:n]); werr != nil {
				res.State, res.Err = StateCancelled, werr
				return res
			}
			if ferr := rc.Flush(); ferr != nil && !errors.Is(ferr, http.ErrNotSupported) {
				res.State, res.Err = StateCancelled, ferr
				return res
			}
			res.Bytes += int64(n)
			metrics.AddRelayBytes(t.Route(), n)
			progress.Do(func() {
				t.Logger().Debug().
					Float64("downloaded_mb", float64(res.Bytes)/1024/1024).
					Msg("relay progress")
			})
		}

		if rerr == nil {
			continue
		}
		if r.Context().Err() != nil {
			res.State, res.Err = StateCancelled, r.Context().Err()
			return res
		}
		if errors.Is(rerr, io.EOF) {
			commit()
			res.State = StateCompleted
			return res
		}
		res.State, res.Err = StateFailed, rerr
		return res
	}
}
