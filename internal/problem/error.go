// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package problem

import (
	"errors"
	"net/http"
)

// Error is a classified failure. Raw keeps the original resolver text for
// development diagnostics; it is never shown to clients in production.
type Error struct {
	Classification
	Raw string
	Err error
}

func (e *Error) Error() string {
	if e.Raw != "" && e.Raw != e.Message {
		return e.Message + ": " + e.Raw
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// FromResolver classifies a resolver failure exactly once.
func FromResolver(err error, path Path) *Error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	raw := ""
	if err != nil {
		raw = err.Error()
	}
	return &Error{Classification: ClassifyError(err, path), Raw: raw, Err: err}
}

// Invalid reports a locally detected input problem; it bypasses the classifier.
func Invalid(msg string) *Error {
	return &Error{Classification: Classification{Status: http.StatusBadRequest, Code: CodeInvalidInput, Message: msg}}
}

// NotFound reports a locally detected missing resource, such as an unknown format.
func NotFound(msg string) *Error {
	return &Error{Classification: Classification{Status: http.StatusNotFound, Code: CodeNotFound, Message: msg}}
}

// As extracts a classified error. Unclassified errors become CodeUnknown on the given path.
func As(err error, path Path) *Error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	return FromResolver(err, path)
}
