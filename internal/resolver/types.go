// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package resolver wraps the external video resolver. It is the only place
// where resolver failures enter the gateway, and it classifies them there.
package resolver

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/kkdai/youtube/v2"
)

// UnknownLength marks a format whose byte length the resolver did not report.
const UnknownLength int64 = -1

// Format is one encoding offered by the resolver.
type Format struct {
	Itag           int
	MimeType       string
	Quality        string
	QualityLabel   string
	Bitrate        int
	AverageBitrate int
	AudioChannels  int
	AudioQuality   string
	Width          int
	Height         int
	// ContentLength is UnknownLength when not reported.
	ContentLength int64
}

// HasVideo reports whether the format declares a video track.
func (f Format) HasVideo() bool {
	if f.QualityLabel != "" || f.Width > 0 || f.Height > 0 {
		return true
	}
	if !f.audioDeclared() {
		return !strings.HasPrefix(f.mediaType(), "audio/")
	}
	return false
}

// HasAudio reports whether the format declares an audio track.
func (f Format) HasAudio() bool {
	if f.audioDeclared() {
		return true
	}
	if f.QualityLabel == "" && f.Width == 0 && f.Height == 0 {
		return strings.HasPrefix(f.mediaType(), "audio/")
	}
	return false
}

// audioDeclared is true when the resolver described audio properties.
func (f Format) audioDeclared() bool {
	return f.AudioChannels > 0 || f.AudioQuality != ""
}

// Container is the mime subtype, e.g. "mp4" or "webm".
func (f Format) Container() string {
	mt := f.mediaType()
	if _, sub, ok := strings.Cut(mt, "/"); ok && sub != "" {
		return sub
	}
	return "mp4"
}

// ContentType is the declared mime type or "video/mp4".
func (f Format) ContentType() string {
	if ct := strings.TrimSpace(f.MimeType); ct != "" {
		return ct
	}
	return "video/mp4"
}

// Label is the resolution label, falling back to the generic quality tag.
func (f Format) Label() string {
	if f.QualityLabel != "" {
		return f.QualityLabel
	}
	return f.Quality
}

func (f Format) mediaType() string {
	mt, _, _ := strings.Cut(f.MimeType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

// Video is the resolver's metadata for one video.
type Video struct {
	ID          string
	Title       string
	Author      string
	Description string
	Duration    time.Duration
	Views       int
	Thumbnails  []string
	Formats     []Format

	native *youtube.Video
}

// Backend is the black-box resolver port.
type Backend interface {
	// Video fetches metadata and the format list for a video URL.
	Video(ctx context.Context, url string) (*Video, error)
	// Open starts the byte stream of one format.
	Open(ctx context.Context, v *Video, f Format) (io.ReadCloser, error)
}
