// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package problem

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "dial tcp: something slow" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify_Table(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		path    Path
		status  int
		code    Code
		message string
	}{
		{"unavailable", "Video unavailable", PathMetadata, http.StatusNotFound, CodeNotFound, MsgUnavailable},
		{"unavailable in playability status", "cannot playback and download, status: ERROR, reason: Video unavailable", PathDownload, http.StatusNotFound, CodeNotFound, MsgUnavailable},
		{"private", "This video is private", PathMetadata, http.StatusNotFound, CodeNotFound, MsgUnavailable},
		{"restricted access", "user restricted access to this video", PathMetadata, http.StatusNotFound, CodeNotFound, MsgUnavailable},
		{"timeout", "net/http: request canceled (Client.Timeout exceeded while awaiting headers)", PathMetadata, http.StatusRequestTimeout, CodeTimeout, MsgTimeout},
		{"timed out", "read tcp 1.2.3.4:443: operation timed out", PathMetadata, http.StatusRequestTimeout, CodeTimeout, MsgTimeout},
		{"sign in", "Sign in to confirm you're not a bot", PathMetadata, http.StatusForbidden, CodeAuthRequired, MsgAuthRequired},
		{"sign in wins over age", "Sign in to confirm your age", PathMetadata, http.StatusForbidden, CodeAuthRequired, MsgAuthRequired},
		{"login required", "login required to confirm your age", PathMetadata, http.StatusForbidden, CodeAuthRequired, MsgAuthRequired},
		{"age restricted", "This content is age-restricted", PathMetadata, http.StatusForbidden, CodeAgeRestricted, MsgAgeRestricted},
		{"age word", "video may be inappropriate, confirm your age", PathMetadata, http.StatusForbidden, CodeAgeRestricted, MsgAgeRestricted},
		{"page is not age", "could not parse watch page", PathMetadata, http.StatusInternalServerError, CodeUnknown, MsgMetadataFailed},
		{"unknown metadata", "cipher not found", PathMetadata, http.StatusInternalServerError, CodeUnknown, MsgMetadataFailed},
		{"unknown download passthrough", "cipher not found", PathDownload, http.StatusInternalServerError, CodeUnknown, "cipher not found"},
		{"empty download", "", PathDownload, http.StatusInternalServerError, CodeUnknown, MsgDownloadFailed},
		{"empty metadata", "", PathMetadata, http.StatusInternalServerError, CodeUnknown, MsgMetadataFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.raw, tt.path)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.code, got.Code)
			assert.Equal(t, tt.message, got.Message)
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	inputs := []string{"", "Video unavailable", "timeout", "Sign in", "age", "\x00\xff", "some random failure"}
	for _, in := range inputs {
		for _, p := range []Path{PathMetadata, PathDownload} {
			first := Classify(in, p)
			for i := 0; i < 10; i++ {
				assert.Equal(t, first, Classify(in, p), "input %q path %s", in, p)
			}
		}
	}
}

func TestClassifyError_StructuredKinds(t *testing.T) {
	got := ClassifyError(fmt.Errorf("fetch player: %w", context.DeadlineExceeded), PathMetadata)
	assert.Equal(t, CodeTimeout, got.Code)

	got = ClassifyError(timeoutErr{}, PathDownload)
	assert.Equal(t, CodeTimeout, got.Code)

	got = ClassifyError(errors.New("Video unavailable"), PathMetadata)
	assert.Equal(t, CodeNotFound, got.Code)

	got = ClassifyError(nil, PathMetadata)
	assert.Equal(t, CodeUnknown, got.Code)
}

func TestFromResolver_ClassifiesOnce(t *testing.T) {
	first := FromResolver(errors.New("Video unavailable"), PathMetadata)
	assert.Equal(t, CodeNotFound, first.Code)
	assert.Equal(t, "Video unavailable", first.Raw)

	wrapped := fmt.Errorf("open stream: %w", first)
	again := FromResolver(wrapped, PathDownload)
	assert.Same(t, first, again)
}

func TestError_Unwrap(t *testing.T) {
	base := errors.New("boom")
	pe := FromResolver(base, PathDownload)
	assert.ErrorIs(t, pe, base)
	assert.Equal(t, "boom", pe.Error())

	meta := FromResolver(base, PathMetadata)
	assert.Equal(t, MsgMetadataFailed+": boom", meta.Error())
}

func TestInvalidAndNotFound(t *testing.T) {
	inv := Invalid(MsgURLRequired)
	assert.Equal(t, http.StatusBadRequest, inv.Status)
	assert.Equal(t, CodeInvalidInput, inv.Code)

	nf := NotFound(MsgFormatNotFound)
	assert.Equal(t, http.StatusNotFound, nf.Status)
	assert.Equal(t, MsgFormatNotFound, nf.Error())
}
