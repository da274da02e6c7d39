// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package catalog reshapes the resolver's format list into the bounded,
// client-facing format catalog.
package catalog

import (
	"math"
	"strconv"

	"github.com/ManuGH/vidgate/internal/resolver"
)

// MaxPerBucket caps every catalog bucket.
const MaxPerBucket = 5

// Unknown is shown for sizes and bitrates the resolver did not report.
const Unknown = "Unknown"

// Bucket is the media composition of a format.
type Bucket string

const (
	BucketAudioVideo Bucket = "audio+video"
	BucketVideoOnly  Bucket = "video-only"
	BucketAudioOnly  Bucket = "audio-only"
)

// Descriptor is the client view of one format.
type Descriptor struct {
	Itag      int    `json:"itag"`
	Quality   string `json:"quality"`
	Container string `json:"container"`
	Size      string `json:"size"`
	Type      Bucket `json:"type"`
}

// Catalog holds the three buckets in resolver order, each truncated to MaxPerBucket.
type Catalog struct {
	AudioVideo []Descriptor `json:"audioVideo"`
	VideoOnly  []Descriptor `json:"videoOnly"`
	AudioOnly  []Descriptor `json:"audioOnly"`
}

// BucketOf classifies a format by its declared tracks. ok is false for a
// format that declares neither.
func BucketOf(f resolver.Format) (b Bucket, ok bool) {
	switch v, a := f.HasVideo(), f.HasAudio(); {
	case v && a:
		return BucketAudioVideo, true
	case v:
		return BucketVideoOnly, true
	case a:
		return BucketAudioOnly, true
	default:
		return "", false
	}
}

// Build partitions formats into buckets. The resolver's order is kept as is.
func Build(formats []resolver.Format) Catalog {
	c := Catalog{
		AudioVideo: []Descriptor{},
		VideoOnly:  []Descriptor{},
		AudioOnly:  []Descriptor{},
	}
	for _, f := range formats {
		b, ok := BucketOf(f)
		if !ok {
			continue
		}
		dst := c.bucket(b)
		if len(*dst) >= MaxPerBucket {
			continue
		}
		*dst = append(*dst, Describe(f, b))
	}
	return c
}

func (c *Catalog) bucket(b Bucket) *[]Descriptor {
	switch b {
	case BucketAudioVideo:
		return &c.AudioVideo
	case BucketVideoOnly:
		return &c.VideoOnly
	default:
		return &c.AudioOnly
	}
}

// Sizes reports the length of each bucket.
func (c Catalog) Sizes() map[Bucket]int {
	return map[Bucket]int{
		BucketAudioVideo: len(c.AudioVideo),
		BucketVideoOnly:  len(c.VideoOnly),
		BucketAudioOnly:  len(c.AudioOnly),
	}
}

// Describe maps one format into its descriptor for bucket b.
func Describe(f resolver.Format, b Bucket) Descriptor {
	quality := f.Label()
	if b == BucketAudioOnly {
		quality = AudioLabel(f)
	}
	return Descriptor{
		Itag:      f.Itag,
		Quality:   quality,
		Container: f.Container(),
		Size:      ApproxSize(f.ContentLength),
		Type:      b,
	}
}

// AudioLabel renders the bitrate as "<N>kbps".
func AudioLabel(f resolver.Format) string {
	// The resolver has no nominal audio bitrate, so this is the measured
	// average (e.g. 129500 bps gives "130kbps" rather than a nominal "128kbps").
	bps := f.AverageBitrate
	if bps <= 0 {
		bps = f.Bitrate
	}
	if bps <= 0 {
		return Unknown
	}
	return strconv.Itoa(int(math.Floor(float64(bps)/1000+0.5))) + "kbps"
}

// ApproxSize renders a byte length in whole megabytes, rounding half up.
// Negative lengths are unknown.
func ApproxSize(n int64) string {
	if n < 0 {
		return Unknown
	}
	mb := math.Floor(float64(n)/1024/1024 + 0.5)
	return strconv.FormatInt(int64(mb), 10) + " MB"
}
