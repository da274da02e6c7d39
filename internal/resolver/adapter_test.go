// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package resolver_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuGH/vidgate/internal/metrics"
	"github.com/ManuGH/vidgate/internal/problem"
	"github.com/ManuGH/vidgate/internal/resolver"
	"github.com/ManuGH/vidgate/internal/resolver/resolvertest"
)

const sampleURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

func TestFetchMetadata(t *testing.T) {
	a := resolver.NewAdapter(resolvertest.NewBackend(sampleURL, resolvertest.Sample()))

	v, err := a.FetchMetadata(context.Background(), sampleURL)
	require.NoError(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", v.ID)
	assert.Len(t, v.Formats, 6)
}

func TestFetchMetadata_ClassifiesOnce(t *testing.T) {
	b := resolvertest.NewBackend(sampleURL, nil)
	b.VideoErr = errors.New("cannot playback and download, status: ERROR, reason: Video unavailable")
	a := resolver.NewAdapter(b)

	before := testutil.ToFloat64(metrics.ResolverErrorsTotal.WithLabelValues("metadata", string(problem.CodeNotFound)))
	_, err := a.FetchMetadata(context.Background(), sampleURL)
	require.Error(t, err)

	var pe *problem.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusNotFound, pe.Status)
	assert.Equal(t, problem.MsgUnavailable, pe.Message)
	assert.ErrorIs(t, err, b.VideoErr)

	after := testutil.ToFloat64(metrics.ResolverErrorsTotal.WithLabelValues("metadata", string(problem.CodeNotFound)))
	assert.Equal(t, before+1, after)
}

func TestFetchMetadata_DeadlineIsTimeout(t *testing.T) {
	b := resolvertest.NewBackend(sampleURL, resolvertest.Sample())
	b.VideoErr = context.DeadlineExceeded
	_, err := resolver.NewAdapter(b).FetchMetadata(context.Background(), sampleURL)

	var pe *problem.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, problem.CodeTimeout, pe.Code)
	assert.Equal(t, http.StatusRequestTimeout, pe.Status)
}

func TestOpenStream(t *testing.T) {
	b := resolvertest.NewBackend(sampleURL, resolvertest.Sample())
	b.Bodies[22] = func() io.ReadCloser { return resolvertest.NewBody([]byte("hello"), []byte(" world")) }
	a := resolver.NewAdapter(b)

	s, err := a.OpenStream(context.Background(), sampleURL, resolver.ByItag(22))
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, "dQw4w9WgXcQ", s.Meta.VideoID)
	assert.Equal(t, "mp4", s.Meta.Container())
	data, err := io.ReadAll(s)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
	assert.Equal(t, []int{22}, b.Opened())
}

func TestOpenStream_UnknownItagIsLocalNotFound(t *testing.T) {
	b := resolvertest.NewBackend(sampleURL, resolvertest.Sample())
	_, err := resolver.NewAdapter(b).OpenStream(context.Background(), sampleURL, resolver.ByItag(999))

	var pe *problem.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusNotFound, pe.Status)
	assert.Equal(t, problem.MsgFormatNotFound, pe.Message)
	assert.Empty(t, b.Opened())
}

func TestOpenStream_OpenFailurePassesRawText(t *testing.T) {
	b := resolvertest.NewBackend(sampleURL, resolvertest.Sample())
	b.OpenErr = errors.New("unexpected status code: 403")
	_, err := resolver.NewAdapter(b).OpenStream(context.Background(), sampleURL, resolver.ByQuality(""))

	var pe *problem.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, problem.CodeUnknown, pe.Code)
	assert.Equal(t, http.StatusInternalServerError, pe.Status)
	assert.Equal(t, "unexpected status code: 403", pe.Message)
	assert.Equal(t, []int{18}, b.Opened())
}

func TestOpenStream_ReadFailureIsClassified(t *testing.T) {
	upstream := errors.New("read tcp 10.0.0.1:443: connection timed out")
	b := resolvertest.NewBackend(sampleURL, resolvertest.Sample())
	b.Bodies[18] = func() io.ReadCloser {
		body := resolvertest.NewBody([]byte("partial"))
		body.Err = upstream
		return body
	}

	readErrors := metrics.ResolverErrorsTotal.WithLabelValues("read", string(problem.CodeTimeout))
	before := testutil.ToFloat64(readErrors)

	s, err := resolver.NewAdapter(b).OpenStream(context.Background(), sampleURL, resolver.ByItag(18))
	require.NoError(t, err)
	defer s.Close()

	data, err := io.ReadAll(s)
	assert.Equal(t, "partial", string(data))

	var pe *problem.Error
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, problem.CodeTimeout, pe.Code)
	assert.Equal(t, http.StatusRequestTimeout, pe.Status)
	assert.ErrorIs(t, err, upstream)

	// Repeated reads report the same classification without counting again.
	_, again := s.Read(make([]byte, 8))
	assert.Same(t, pe, again)
	assert.Equal(t, before+1, testutil.ToFloat64(readErrors))
}

func TestOpenStream_ReadAfterCancelIsNotClassified(t *testing.T) {
	upstream := errors.New("connection reset by peer")
	b := resolvertest.NewBackend(sampleURL, resolvertest.Sample())
	b.Bodies[18] = func() io.ReadCloser {
		body := resolvertest.NewBody()
		body.Err = upstream
		return body
	}

	readErrors := metrics.ResolverErrorsTotal.WithLabelValues("read", string(problem.CodeUnknown))
	before := testutil.ToFloat64(readErrors)

	ctx, cancel := context.WithCancel(context.Background())
	s, err := resolver.NewAdapter(b).OpenStream(ctx, sampleURL, resolver.ByItag(18))
	require.NoError(t, err)
	defer s.Close()
	cancel()

	_, err = s.Read(make([]byte, 8))
	assert.Same(t, upstream, err)
	assert.Equal(t, before, testutil.ToFloat64(readErrors))
}

func TestOpenStream_EOFPassesThrough(t *testing.T) {
	b := resolvertest.NewBackend(sampleURL, resolvertest.Sample())
	s, err := resolver.NewAdapter(b).OpenStream(context.Background(), sampleURL, resolver.ByItag(18))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Read(make([]byte, 8))
	assert.Equal(t, io.EOF, err)
}
