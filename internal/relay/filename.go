// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package relay

import (
	"net/url"
	"strings"
	"unicode"
)

// FallbackFilename is used when sanitizing leaves nothing.
const FallbackFilename = "video"

// SanitizeFilename drops every character except ASCII word characters,
// whitespace and '-', then trims surrounding whitespace.
func SanitizeFilename(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// Filename builds "<sanitized title>.<container>".
func Filename(title, container string) string {
	name := SanitizeFilename(title)
	if name == "" {
		name = FallbackFilename
	}
	if container == "" {
		container = "mp4"
	}
	return name + "." + container
}

// ContentDisposition renders an attachment header with a percent-encoded filename.
func ContentDisposition(title, container string) string {
	return `attachment; filename="` + encodeComponent(Filename(title, container)) + `"`
}

func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
