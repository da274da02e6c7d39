// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package resolver

import (
	"io"
	"sync"
)

// StreamMeta is known before the first byte and drives the response headers.
type StreamMeta struct {
	VideoID string
	Title   string
	Format  Format
}

// ContentType of the relayed body.
func (m StreamMeta) ContentType() string { return m.Format.ContentType() }

// Container is the file extension of the relayed body.
func (m StreamMeta) Container() string { return m.Format.Container() }

// Stream is a finite, non-restartable byte sequence for one format.
// Close may be called any number of times from any goroutine.
type Stream struct {
	Meta StreamMeta

	body      io.ReadCloser
	closeOnce sync.Once
	closeErr  error
}

// NewStream binds metadata to an open upstream body.
func NewStream(meta StreamMeta, body io.ReadCloser) *Stream {
	return &Stream{Meta: meta, body: body}
}

func (s *Stream) Read(p []byte) (int, error) {
	return s.body.Read(p)
}

// Close releases the upstream body. Only the first call reaches it.
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.body.Close()
	})
	return s.closeErr
}
