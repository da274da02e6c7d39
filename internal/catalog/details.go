// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package catalog

import (
	"github.com/ManuGH/vidgate/internal/resolver"
)

const (
	snippetRunes  = 200
	snippetSuffix = "..."
)

// VideoDetails is the client view of a video's metadata.
type VideoDetails struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	LengthSeconds int    `json:"lengthSeconds"`
	ViewCount     int    `json:"viewCount"`
	Description   string `json:"description"`
	Thumbnail     string `json:"thumbnail,omitempty"`
	VideoID       string `json:"videoId"`
}

// Details maps resolver metadata into VideoDetails.
func Details(v *resolver.Video) VideoDetails {
	d := VideoDetails{
		Title:         v.Title,
		Author:        v.Author,
		LengthSeconds: max(int(v.Duration.Seconds()), 0),
		ViewCount:     max(v.Views, 0),
		Description:   Snippet(v.Description),
		VideoID:       v.ID,
	}
	if len(v.Thumbnails) > 0 {
		d.Thumbnail = v.Thumbnails[0]
	}
	return d
}

// Snippet keeps the first 200 characters and always appends "...".
func Snippet(s string) string {
	r := []rune(s)
	if len(r) > snippetRunes {
		r = r[:snippetRunes]
	}
	return string(r) + snippetSuffix
}
