// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package problem owns the client-facing error taxonomy: it classifies resolver
// failures into stable codes and renders the JSON error envelope.
package problem

import (
	"context"
	"errors"
	"net"
	"net/http"
	"regexp"
	"strings"
)

// Code is a stable, machine-readable error code exposed to clients.
type Code string

const (
	CodeInvalidInput  Code = "INVALID_INPUT"
	CodeNotFound      Code = "NOT_FOUND"
	CodeTimeout       Code = "TIMEOUT"
	CodeAuthRequired  Code = "AUTH_REQUIRED"
	CodeAgeRestricted Code = "AGE_RESTRICTED"
	CodeUnknown       Code = "UNKNOWN"
)

// Path selects the fallback message for unclassified failures.
type Path int

const (
	// PathMetadata hides unknown resolver text behind a generic message.
	PathMetadata Path = iota
	// PathDownload passes unknown resolver text through to the client.
	PathDownload
)

func (p Path) String() string {
	if p == PathDownload {
		return "download"
	}
	return "metadata"
}

// Client-facing messages.
const (
	MsgURLRequired     = "URL is required"
	MsgURLItagRequired = "URL and itag are required"
	MsgInvalidURL      = "Invalid YouTube URL"
	MsgFormatNotFound  = "Format not found"
	MsgUnavailable     = "Video is unavailable, private, or deleted"
	MsgTimeout         = "Request timeout - please try again"
	MsgAuthRequired    = "This video requires authentication"
	MsgAgeRestricted   = "Age-restricted content not supported"
	MsgMetadataFailed  = "Failed to get video information"
	MsgDownloadFailed  = "Download failed"
)

// Classification is the outcome of mapping a resolver failure.
type Classification struct {
	Status  int
	Code    Code
	Message string
}

type rule struct {
	match func(lower string) bool
	class Classification
}

func containsAny(subs ...string) func(string) bool {
	return func(s string) bool {
		for _, sub := range subs {
			if strings.Contains(s, sub) {
				return true
			}
		}
		return false
	}
}

var ageWord = regexp.MustCompile(`\bage\b|age[- ]restrict`)

// rules are evaluated in order; the first match wins.
var rules = []rule{
	{
		match: containsAny("video unavailable", "video is unavailable", "private video", "video is private",
			"user restricted access", "has been removed", "deleted"),
		class: Classification{Status: http.StatusNotFound, Code: CodeNotFound, Message: MsgUnavailable},
	},
	{
		match: containsAny("timeout", "timed out", "deadline exceeded"),
		class: Classification{Status: http.StatusRequestTimeout, Code: CodeTimeout, Message: MsgTimeout},
	},
	{
		match: containsAny("sign in", "sign-in", "login required", "authentication"),
		class: Classification{Status: http.StatusForbidden, Code: CodeAuthRequired, Message: MsgAuthRequired},
	},
	{
		match: ageWord.MatchString,
		class: Classification{Status: http.StatusForbidden, Code: CodeAgeRestricted, Message: MsgAgeRestricted},
	},
}

// Classify maps raw resolver text to a client-facing classification.
// It never fails: unmatched text falls through to CodeUnknown.
func Classify(raw string, path Path) Classification {
	lower := strings.ToLower(raw)
	for _, r := range rules {
		if r.match(lower) {
			return r.class
		}
	}
	msg := MsgMetadataFailed
	if path == PathDownload {
		msg = strings.TrimSpace(raw)
		if msg == "" {
			msg = MsgDownloadFailed
		}
	}
	return Classification{Status: http.StatusInternalServerError, Code: CodeUnknown, Message: msg}
}

// ClassifyError prefers structured error kinds and falls back to Classify on the text.
func ClassifyError(err error, path Path) Classification {
	if err == nil {
		return Classify("", path)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Classification{Status: http.StatusRequestTimeout, Code: CodeTimeout, Message: MsgTimeout}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return Classification{Status: http.StatusRequestTimeout, Code: CodeTimeout, Message: MsgTimeout}
	}
	return Classify(err.Error(), path)
}
