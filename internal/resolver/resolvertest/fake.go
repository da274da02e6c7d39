// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package resolvertest provides an in-memory resolver backend for tests.
package resolvertest

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/ManuGH/vidgate/internal/resolver"
)

// Backend is a scripted resolver.Backend.
type Backend struct {
	mu sync.Mutex

	Videos   map[string]*resolver.Video
	VideoErr error
	OpenErr  error
	// Bodies maps itag to the body factory used by Open.
	Bodies map[int]func() io.ReadCloser

	videoCalls int
	opened     []int
}

// NewBackend returns a backend serving v for every URL.
func NewBackend(url string, v *resolver.Video) *Backend {
	return &Backend{
		Videos: map[string]*resolver.Video{url: v},
		Bodies: map[int]func() io.ReadCloser{},
	}
}

// Video implements resolver.Backend.
func (b *Backend) Video(ctx context.Context, url string) (*resolver.Video, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.videoCalls++
	if b.VideoErr != nil {
		return nil, b.VideoErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, ok := b.Videos[url]
	if !ok {
		return nil, errors.New("Video unavailable")
	}
	return v, nil
}

// Open implements resolver.Backend.
func (b *Backend) Open(_ context.Context, _ *resolver.Video, f resolver.Format) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opened = append(b.opened, f.Itag)
	if b.OpenErr != nil {
		return nil, b.OpenErr
	}
	if mk, ok := b.Bodies[f.Itag]; ok {
		return mk(), nil
	}
	return io.NopCloser(&emptyReader{}), nil
}

// VideoCalls reports how many times Video was called.
func (b *Backend) VideoCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.videoCalls
}

// Opened lists the itags passed to Open.
func (b *Backend) Opened() []int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]int(nil), b.opened...)
}

type emptyReader struct{}

func (emptyReader) Read([]byte) (int, error) { return 0, io.EOF }

// Body is a controllable upstream body. It serves Chunks in order, then
// either Err or io.EOF. With Endless set it keeps producing until closed.
type Body struct {
	Chunks  [][]byte
	Err     error
	Endless bool

	mu      sync.Mutex
	next    int
	off     int
	closed  chan struct{}
	once    sync.Once
	closes  atomic.Int32
	served  atomic.Int64
	started chan struct{}
	startMu sync.Once
}

// NewBody returns a body serving chunks then EOF.
func NewBody(chunks ...[]byte) *Body {
	return &Body{Chunks: chunks, closed: make(chan struct{}), started: make(chan struct{})}
}

// NewEndlessBody returns a body that produces chunk repeatedly until closed.
func NewEndlessBody(chunk []byte) *Body {
	b := NewBody(chunk)
	b.Endless = true
	return b
}

func (b *Body) Read(p []byte) (int, error) {
	b.startMu.Do(func() { close(b.started) })
	select {
	case <-b.closed:
		return 0, io.ErrClosedPipe
	default:
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.next >= len(b.Chunks) {
		if b.Endless && len(b.Chunks) > 0 {
			b.next, b.off = 0, 0
		} else if b.Err != nil {
			return 0, b.Err
		} else {
			return 0, io.EOF
		}
	}
	chunk := b.Chunks[b.next][b.off:]
	n := copy(p, chunk)
	b.off += n
	if b.off >= len(b.Chunks[b.next]) {
		b.next, b.off = b.next+1, 0
	}
	b.served.Add(int64(n))
	return n, nil
}

// Close implements io.Closer.
func (b *Body) Close() error {
	b.closes.Add(1)
	b.once.Do(func() { close(b.closed) })
	return nil
}

// Closed is closed once Close has been called.
func (b *Body) Closed() <-chan struct{} { return b.closed }

// Started is closed on the first Read.
func (b *Body) Started() <-chan struct{} { return b.started }

// CloseCalls reports how many times Close reached the body.
func (b *Body) CloseCalls() int { return int(b.closes.Load()) }

// Served reports the bytes handed out so far.
func (b *Body) Served() int64 { return b.served.Load() }

// Sample returns a video with a representative format list.
func Sample() *resolver.Video {
	return &resolver.Video{
		ID:          "dQw4w9WgXcQ",
		Title:       "Never Gonna: Give/You Up!",
		Author:      "Rick Astley",
		Description: "The official video.",
		Views:       1500000000,
		Thumbnails:  []string{"https://i.ytimg.com/vi/dQw4w9WgXcQ/hqdefault.jpg"},
		Formats: []resolver.Format{
			{Itag: 18, MimeType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`, Quality: "medium", QualityLabel: "360p", Bitrate: 500000, AudioChannels: 2, AudioQuality: "AUDIO_QUALITY_LOW", Width: 640, Height: 360, ContentLength: 15 * 1024 * 1024},
			{Itag: 22, MimeType: `video/mp4; codecs="avc1.64001F, mp4a.40.2"`, Quality: "hd720", QualityLabel: "720p", Bitrate: 1500000, AudioChannels: 2, AudioQuality: "AUDIO_QUALITY_MEDIUM", Width: 1280, Height: 720, ContentLength: resolver.UnknownLength},
			{Itag: 137, MimeType: `video/mp4; codecs="avc1.640028"`, Quality: "hd1080", QualityLabel: "1080p", Bitrate: 4000000, Width: 1920, Height: 1080, ContentLength: 80 * 1024 * 1024},
			{Itag: 248, MimeType: `video/webm; codecs="vp9"`, Quality: "hd1080", QualityLabel: "1080p", Bitrate: 2600000, Width: 1920, Height: 1080, ContentLength: 60 * 1024 * 1024},
			{Itag: 140, MimeType: `audio/mp4; codecs="mp4a.40.2"`, Quality: "tiny", Bitrate: 130000, AverageBitrate: 129500, AudioChannels: 2, AudioQuality: "AUDIO_QUALITY_MEDIUM", ContentLength: 3 * 1024 * 1024},
			{Itag: 251, MimeType: `audio/webm; codecs="opus"`, Quality: "tiny", Bitrate: 160000, AudioChannels: 2, AudioQuality: "AUDIO_QUALITY_MEDIUM", ContentLength: 3500000},
		},
	}
}
