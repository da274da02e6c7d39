// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package resolver

import (
	"strconv"
	"strings"
)

// Quality keywords understood by ByQuality.
const (
	QualityLowest  = "lowest"
	QualityHighest = "highest"
)

// Selector picks a format either by itag or by a quality keyword.
type Selector struct {
	Itag    int
	Quality string
}

// ByItag selects the exact format, whatever its composition.
func ByItag(itag int) Selector { return Selector{Itag: itag} }

// ByQuality selects among audio+video formats. Empty means lowest.
func ByQuality(q string) Selector {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		q = QualityLowest
	}
	return Selector{Quality: q}
}

func (s Selector) String() string {
	if s.Itag > 0 {
		return "itag=" + strconv.Itoa(s.Itag)
	}
	return "quality=" + s.Quality
}

// Select resolves sel against formats.
func Select(formats []Format, sel Selector) (Format, bool) {
	if sel.Itag > 0 {
		for _, f := range formats {
			if f.Itag == sel.Itag {
				return f, true
			}
		}
		return Format{}, false
	}

	muxed := make([]Format, 0, len(formats))
	for _, f := range formats {
		if f.HasVideo() && f.HasAudio() {
			muxed = append(muxed, f)
		}
	}
	if len(muxed) == 0 {
		return Format{}, false
	}

	q := strings.ToLower(sel.Quality)
	switch q {
	case "", QualityLowest:
		return pick(muxed, func(a, b Format) bool { return rank(a).less(rank(b)) }), true
	case QualityHighest:
		return pick(muxed, func(a, b Format) bool { return rank(b).less(rank(a)) }), true
	}

	if itag, err := strconv.Atoi(q); err == nil {
		for _, f := range muxed {
			if f.Itag == itag {
				return f, true
			}
		}
		return Format{}, false
	}
	for _, f := range muxed {
		if strings.EqualFold(f.QualityLabel, q) || strings.EqualFold(f.Quality, q) {
			return f, true
		}
	}
	return Format{}, false
}

type formatRank struct {
	height  int
	bitrate int
}

func rank(f Format) formatRank {
	return formatRank{height: f.Height, bitrate: f.Bitrate}
}

func (r formatRank) less(o formatRank) bool {
	if r.height != o.height {
		return r.height < o.height
	}
	return r.bitrate < o.bitrate
}

// pick returns the best format by the given ordering.
// Ties keep resolver order.
func pick(fs []Format, better func(a, b Format) bool) Format {
	best := fs[0]
	for _, f := range fs[1:] {
		if better(f, best) {
			best = f
		}
	}
	return best
}
