// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package problem

import (
	"encoding/json"
	"net/http"

	"github.com/ManuGH/vidgate/internal/log"
)

// Envelope is the JSON body of every error response.
type Envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    Code   `json:"code"`
	Details string `json:"details,omitempty"`
}

// Writer renders envelopes. Development enables the details field.
type Writer struct {
	Development bool
}

// Envelope builds the response body for err.
func (wr Writer) Envelope(err *Error) Envelope {
	env := Envelope{Error: err.Message, Code: err.Code}
	if wr.Development && err.Raw != "" {
		env.Details = err.Raw
	}
	return env
}

// Write writes err as a JSON envelope with its classified status.
func (wr Writer) Write(w http.ResponseWriter, r *http.Request, err error, path Path) {
	pe := As(err, path)

	logger := log.WithComponentFromContext(r.Context(), "problem")
	ev := logger.Warn()
	if pe.Status >= http.StatusInternalServerError {
		ev = logger.Error()
	}
	ev.Str(log.FieldEvent, "request.failed").
		Str(log.FieldCode, string(pe.Code)).
		Int(log.FieldStatus, pe.Status).
		Str("raw", pe.Raw).
		Msg(pe.Message)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(pe.Status)
	if encErr := json.NewEncoder(w).Encode(wr.Envelope(pe)); encErr != nil {
		logger.Debug().Err(encErr).Msg("failed to encode error envelope")
	}
}
