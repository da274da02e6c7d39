// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package resolver

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/vidgate/internal/log"
	"github.com/ManuGH/vidgate/internal/metrics"
	"github.com/ManuGH/vidgate/internal/problem"
	"github.com/ManuGH/vidgate/internal/telemetry"
	"github.com/ManuGH/vidgate/internal/validate"
)

const (
	opMetadata = "metadata"
	opOpen     = "open"
	opRead     = "read"
)

// Adapter fronts a Backend. Every error it returns is a *problem.Error.
type Adapter struct {
	backend Backend
	tracer  trace.Tracer
}

// NewAdapter wraps backend.
func NewAdapter(backend Backend) *Adapter {
	return &Adapter{
		backend: backend,
		tracer:  telemetry.Tracer("vidgate/resolver"),
	}
}

// FetchMetadata resolves the metadata and format list of url.
func (a *Adapter) FetchMetadata(ctx context.Context, url string) (*Video, error) {
	return a.fetch(ctx, url, problem.PathMetadata)
}

// OpenStream resolves url, selects a format and opens its byte stream.
// An unknown selection is a NotFound that never reaches the classifier.
func (a *Adapter) OpenStream(ctx context.Context, url string, sel Selector) (*Stream, error) {
	v, err := a.fetch(ctx, url, problem.PathDownload)
	if err != nil {
		return nil, err
	}

	f, ok := Select(v.Formats, sel)
	if !ok {
		logger := log.WithComponentFromContext(ctx, "resolver")
		logger.Info().
			Str(log.FieldVideoID, v.ID).
			Str("selector", sel.String()).
			Msg("format not offered")
		return nil, problem.NotFound(problem.MsgFormatNotFound)
	}

	openCtx, span := a.tracer.Start(ctx, "resolver.open",
		trace.WithAttributes(telemetry.FormatAttributes(v.ID, f.Itag, f.MimeType)...))
	defer span.End()

	start := time.Now()
	body, err := a.backend.Open(openCtx, v, f)
	metrics.ObserveResolverCall(opOpen, err == nil, time.Since(start))
	if err != nil {
		return nil, a.fail(openCtx, span, opOpen, err, problem.PathDownload)
	}

	return NewStream(StreamMeta{VideoID: v.ID, Title: v.Title, Format: f}, &classifiedBody{
		ReadCloser: body,
		ctx:        ctx,
		fail: func(err error) *problem.Error {
			return a.fail(ctx, trace.SpanFromContext(ctx), opRead, err, problem.PathDownload)
		},
	}), nil
}

// classifiedBody classifies upstream read failures at the adapter boundary.
// EOF passes through untouched, and so does anything after ctx ended, since
// that is the client going away rather than the resolver failing.
type classifiedBody struct {
	io.ReadCloser
	ctx  context.Context
	fail func(error) *problem.Error

	once sync.Once
	err  *problem.Error
}

func (b *classifiedBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if err == nil || errors.Is(err, io.EOF) || b.ctx.Err() != nil {
		return n, err
	}
	b.once.Do(func() { b.err = b.fail(err) })
	return n, b.err
}

func (a *Adapter) fetch(ctx context.Context, url string, path problem.Path) (*Video, error) {
	ctx, span := a.tracer.Start(ctx, "resolver.metadata",
		trace.WithAttributes(attribute.String(telemetry.HTTPURLKey, validate.SanitizeURL(url))))
	defer span.End()

	start := time.Now()
	v, err := a.backend.Video(ctx, url)
	metrics.ObserveResolverCall(opMetadata, err == nil, time.Since(start))
	if err != nil {
		return nil, a.fail(ctx, span, opMetadata, err, path)
	}

	span.SetAttributes(
		attribute.String(telemetry.VideoIDKey, v.ID),
		attribute.Int("video.formats", len(v.Formats)),
	)
	return v, nil
}

func (a *Adapter) fail(ctx context.Context, span trace.Span, op string, err error, path problem.Path) *problem.Error {
	pe := problem.FromResolver(err, path)
	metrics.IncResolverError(op, string(pe.Code))
	telemetry.RecordError(span, err, string(pe.Code))

	logger := log.WithComponentFromContext(ctx, "resolver")
	logger.Warn().
		Err(err).
		Str(log.FieldEvent, "resolver."+op+".failed").
		Str(log.FieldCode, string(pe.Code)).
		Int(log.FieldStatus, pe.Status).
		Str("path", path.String()).
		Msg("resolver call failed")
	return pe
}
