// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldService   = "service"
	FieldVersion   = "version"
	FieldRequestID = "request_id"
	FieldVideoID   = "video_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"

	// HTTP fields
	FieldMethod   = "method"
	FieldRoute    = "route"
	FieldStatus   = "status"
	FieldBytes    = "bytes"
	FieldDuration = "duration"
	FieldRemote   = "remote_addr"

	// Media fields
	FieldURL      = "url"
	FieldItag     = "itag"
	FieldQuality  = "quality"
	FieldMimeType = "mime_type"
	FieldCode     = "code"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"
)
