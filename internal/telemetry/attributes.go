// SPDX-License-Identifier: MIT

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Common attribute keys for consistent tracing across the application.
const (
	// HTTP attributes
	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"
	HTTPURLKey        = "http.url"

	// Media attributes
	VideoIDKey    = "video.id"
	FormatItagKey = "format.itag"
	FormatMimeKey = "format.mime_type"
	QualityKey    = "format.quality"

	// Relay attributes
	RelayStateKey = "relay.state"
	RelayBytesKey = "relay.bytes"

	// Error attributes
	ErrorCodeKey = "error.code"
)

// HTTPAttributes creates common HTTP span attributes.
func HTTPAttributes(method, route, url string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.String(HTTPURLKey, url),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// FormatAttributes describes a selected media format.
func FormatAttributes(videoID string, itag int, mimeType string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 3)
	if videoID != "" {
		attrs = append(attrs, attribute.String(VideoIDKey, videoID))
	}
	if itag > 0 {
		attrs = append(attrs, attribute.Int(FormatItagKey, itag))
	}
	if mimeType != "" {
		attrs = append(attrs, attribute.String(FormatMimeKey, mimeType))
	}
	return attrs
}

// RecordError marks span as failed with a stable error code.
func RecordError(span trace.Span, err error, code string) {
	if err == nil {
		return
	}
	span.RecordError(err)
	if code != "" {
		span.SetAttributes(attribute.String(ErrorCodeKey, code))
	}
	span.SetStatus(codes.Error, err.Error())
}
