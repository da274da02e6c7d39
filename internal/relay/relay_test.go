// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package relay

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ManuGH/vidgate/internal/metrics"
	"github.com/ManuGH/vidgate/internal/resolver"
	"github.com/ManuGH/vidgate/internal/resolver/resolvertest"
)

var sampleMeta = resolver.StreamMeta{
	VideoID: "dQw4w9WgXcQ",
	Title:   "Never Gonna: Give/You Up!",
	Format:  resolver.Format{Itag: 18, MimeType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`},
}

func relayTo(t *testing.T, body *resolvertest.Body, meta resolver.StreamMeta) (*httptest.ResponseRecorder, Result) {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/download", nil)
	tr := Track(req.Context(), "download")
	tr.To(StateResolving)
	res := Relay(rec, req, resolver.NewStream(meta, body), tr, Options{BufferSize: 4})
	return rec, res
}

func TestRelay_Completed(t *testing.T) {
	before := testutil.ToFloat64(metrics.RelayOutcomeTotal.WithLabelValues("download", "completed"))
	body := resolvertest.NewBody([]byte("hello "), []byte("world"))

	rec, res := relayTo(t, body, sampleMeta)

	assert.Equal(t, StateCompleted, res.State)
	assert.True(t, res.Committed)
	assert.NoError(t, res.Err)
	assert.Equal(t, int64(11), res.Bytes)
	assert.Equal(t, "hello world", rec.Body.String())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="Never%20Gonna%20GiveYou%20Up.mp4"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, sampleMeta.Format.MimeType, rec.Header().Get("Content-Type"))
	assert.Equal(t, 1, body.CloseCalls())
	assert.True(t, rec.Flushed)

	after := testutil.ToFloat64(metrics.RelayOutcomeTotal.WithLabelValues("download", "completed"))
	assert.Equal(t, before+1, after)
}

func TestRelay_EmptyBodyStillCommitsHeaders(t *testing.T) {
	meta := sampleMeta
	meta.Format.MimeType = ""
	rec, res := relayTo(t, resolvertest.NewBody(), meta)

	assert.Equal(t, StateCompleted, res.State)
	assert.True(t, res.Committed)
	assert.Equal(t, "video/mp4", rec.Header().Get("Content-Type"))
	assert.Empty(t, rec.Body.String())
}

func TestRelay_FailureBeforeHeaders(t *testing.T) {
	body := resolvertest.NewBody()
	body.Err = errors.New("upstream status 403")

	rec, res := relayTo(t, body, sampleMeta)

	assert.Equal(t, StateFailed, res.State)
	assert.False(t, res.Committed)
	assert.EqualError(t, res.Err, "upstream status 403")
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, 1, body.CloseCalls())
}

func TestRelay_FailureAfterHeaders(t *testing.T) {
	body := resolvertest.NewBody([]byte("partial"))
	body.Err = io.ErrUnexpectedEOF

	rec, res := relayTo(t, body, sampleMeta)

	assert.Equal(t, StateFailed, res.State)
	assert.True(t, res.Committed)
	assert.Equal(t, int64(7), res.Bytes)
	assert.Equal(t, "partial", rec.Body.String())
}

func TestRelay_ClientDisconnectClosesUpstream(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	body := resolvertest.NewEndlessBody(bytes.Repeat([]byte("x"), 4096))
	results := make(chan Result, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tr := Track(r.Context(), "stream-download")
		tr.To(StateResolving)
		results <- Relay(w, r, resolver.NewStream(sampleMeta, body), tr, Options{BufferSize: 1024})
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)

	_, err = io.ReadFull(resp.Body, make([]byte, 16*1024))
	require.NoError(t, err)
	cancel()
	_ = resp.Body.Close()

	select {
	case <-body.Closed():
	case <-time.After(5 * time.Second):
		t.Fatal("upstream was not closed after client disconnect")
	}

	select {
	case res := <-results:
		assert.Equal(t, StateCancelled, res.State)
		assert.True(t, res.Committed)
	case <-time.After(5 * time.Second):
		t.Fatal("relay did not return after client disconnect")
	}

	served := body.Served()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, served, body.Served(), "no reads after teardown")
}

func TestTracker(t *testing.T) {
	tr := Track(context.Background(), "download")
	assert.Equal(t, StateInitiating, tr.State())
	assert.False(t, tr.To(StateStreaming))
	assert.True(t, tr.To(StateResolving))
	assert.True(t, tr.To(StateStreaming))
	assert.True(t, tr.To(StateCancelled))
	assert.True(t, tr.State().Terminal())
	assert.False(t, tr.To(StateCompleted))
	assert.Equal(t, "cancelled", tr.State().String())
}
