// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kkdai/youtube/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrFormatMissing is returned when Open is asked for a format the video does not carry.
var ErrFormatMissing = errors.New("format not offered by video")

// YouTubeConfig tunes the production backend.
type YouTubeConfig struct {
	// ChunkSize is the byte range requested per upstream fetch. Zero keeps the library default.
	ChunkSize int64
	// MaxRoutines bounds parallel chunk fetches. Zero keeps the library default.
	MaxRoutines int
	// Transport overrides the outbound transport, mostly for tests.
	Transport http.RoundTripper
}

// YouTube is the production Backend.
type YouTube struct {
	client *youtube.Client
}

// NewYouTube builds a backend whose outbound requests are traced.
func NewYouTube(cfg YouTubeConfig) *YouTube {
	base := cfg.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	c := &youtube.Client{
		HTTPClient: &http.Client{
			Transport: otelhttp.NewTransport(base,
				otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
					return "resolver " + r.Method + " " + r.URL.Host
				}),
			),
		},
	}
	if cfg.ChunkSize > 0 {
		c.ChunkSize = cfg.ChunkSize
	}
	if cfg.MaxRoutines > 0 {
		c.MaxRoutines = cfg.MaxRoutines
	}
	return &YouTube{client: c}
}

// Video implements Backend.
func (y *YouTube) Video(ctx context.Context, url string) (*Video, error) {
	v, err := y.client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, err
	}
	return fromNative(v), nil
}

// Open implements Backend.
func (y *YouTube) Open(ctx context.Context, v *Video, f Format) (io.ReadCloser, error) {
	if v.native == nil {
		return nil, fmt.Errorf("open itag %d: video %s was not resolved by this backend", f.Itag, v.ID)
	}
	matches := v.native.Formats.Itag(f.Itag)
	if len(matches) == 0 {
		return nil, fmt.Errorf("open itag %d: %w", f.Itag, ErrFormatMissing)
	}
	rc, _, err := y.client.GetStreamContext(ctx, v.native, &matches[0])
	if err != nil {
		return nil, err
	}
	return rc, nil
}

func fromNative(v *youtube.Video) *Video {
	out := &Video{
		ID:          v.ID,
		Title:       v.Title,
		Author:      v.Author,
		Description: v.Description,
		Duration:    v.Duration.Truncate(time.Second),
		Views:       v.Views,
		Formats:     make([]Format, 0, len(v.Formats)),
		native:      v,
	}
	for _, t := range v.Thumbnails {
		if t.URL != "" {
			out.Thumbnails = append(out.Thumbnails, t.URL)
		}
	}
	for _, f := range v.Formats {
		out.Formats = append(out.Formats, fromNativeFormat(f))
	}
	return out
}

func fromNativeFormat(f youtube.Format) Format {
	length := f.ContentLength
	if length <= 0 {
		length = UnknownLength
	}
	return Format{
		Itag:           f.ItagNo,
		MimeType:       f.MimeType,
		Quality:        f.Quality,
		QualityLabel:   f.QualityLabel,
		Bitrate:        f.Bitrate,
		AverageBitrate: f.AverageBitrate,
		AudioChannels:  f.AudioChannels,
		AudioQuality:   f.AudioQuality,
		Width:          f.Width,
		Height:         f.Height,
		ContentLength:  length,
	}
}
