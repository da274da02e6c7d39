// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Never Gonna: Give/You Up!", "Never Gonna GiveYou Up"},
		{"  spaced - out  ", "spaced - out"},
		{"snake_case-123", "snake_case-123"},
		{"日本語 title", "title"},
		{"???", ""},
		{"tab\tseparated", "tab\tseparated"},
	}
	for _, tt := range tests {
		got := SanitizeFilename(tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
		assert.Equal(t, got, SanitizeFilename(got), "idempotent for %q", tt.in)
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "clip.webm", Filename("clip", "webm"))
	assert.Equal(t, "video.mp4", Filename("!!!", ""))
}

func TestContentDisposition(t *testing.T) {
	assert.Equal(t, `attachment; filename="a%20b-c.mp4"`, ContentDisposition("a b-c", "mp4"))
	assert.Equal(t, `attachment; filename="tab%09x.webm"`, ContentDisposition("tab\tx", "webm"))
}
