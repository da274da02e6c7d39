// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ManuGH/vidgate/internal/log"
)

// Environment variable names.
const (
	EnvKeyEnvironment     = "VIDGATE_ENV"
	EnvKeyLogLevel        = "VIDGATE_LOG_LEVEL"
	EnvKeyLogService      = "VIDGATE_LOG_SERVICE"
	EnvKeyListen          = "VIDGATE_LISTEN"
	EnvKeyPort            = "PORT"
	EnvKeyReadTimeout     = "VIDGATE_SERVER_READ_TIMEOUT"
	EnvKeyWriteTimeout    = "VIDGATE_SERVER_WRITE_TIMEOUT"
	EnvKeyIdleTimeout     = "VIDGATE_SERVER_IDLE_TIMEOUT"
	EnvKeyMaxHeaderBytes  = "VIDGATE_SERVER_MAX_HEADER_BYTES"
	EnvKeyShutdownTimeout = "VIDGATE_SERVER_SHUTDOWN_TIMEOUT"
	EnvKeyMetricsListen   = "VIDGATE_METRICS_LISTEN"
	EnvKeyWebRoot         = "VIDGATE_WEB_ROOT"
	EnvKeyCORSOrigins     = "VIDGATE_CORS_ORIGINS"
	EnvKeyTracingEnabled  = "VIDGATE_TRACING_ENABLED"
	EnvKeyTracingExporter = "VIDGATE_TRACING_EXPORTER"
	EnvKeyTracingEndpoint = "VIDGATE_TRACING_ENDPOINT"
	EnvKeyTracingSampling = "VIDGATE_TRACING_SAMPLING_RATE"
	EnvKeyChunkSize       = "VIDGATE_RESOLVER_CHUNK_SIZE"
	EnvKeyMaxRoutines     = "VIDGATE_RESOLVER_MAX_ROUTINES"
)

// parseEnv reads key and converts it with parse. Empty or invalid values
// keep defaultValue; the choice is logged either way.
func parseEnv[T any](key string, defaultValue T, parse func(string) (T, error)) T {
	logger := log.WithComponent("config")
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		logger.Debug().
			Str("key", key).
			Interface("default", defaultValue).
			Str("source", "default").
			Msg("using default value")
		return defaultValue
	}
	parsed, err := parse(v)
	if err != nil {
		logger.Warn().
			Err(err).
			Str("key", key).
			Str("value", v).
			Interface("default", defaultValue).
			Msg("invalid value in environment variable, using default")
		return defaultValue
	}
	logger.Debug().
		Str("key", key).
		Interface("value", parsed).
		Str("source", "environment").
		Msg("using environment variable")
	return parsed
}

// ParseString reads a string from environment variable or returns default value.
func ParseString(key, defaultValue string) string {
	return parseEnv(key, defaultValue, func(s string) (string, error) { return s, nil })
}

// ParseInt reads an integer from environment variable or returns default value.
func ParseInt(key string, defaultValue int) int {
	return parseEnv(key, defaultValue, strconv.Atoi)
}

// ParseInt64 reads a 64-bit integer from environment variable or returns default value.
func ParseInt64(key string, defaultValue int64) int64 {
	return parseEnv(key, defaultValue, func(s string) (int64, error) {
		return strconv.ParseInt(s, 10, 64)
	})
}

// ParseDuration reads a duration in Go format (e.g. "5s").
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	return parseEnv(key, defaultValue, time.ParseDuration)
}

// ParseFloat reads a float64 from environment variable or returns default value.
func ParseFloat(key string, defaultValue float64) float64 {
	return parseEnv(key, defaultValue, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// ParseBool accepts "true", "false", "1", "0", "yes", "no" (case-insensitive).
func ParseBool(key string, defaultValue bool) bool {
	return parseEnv(key, defaultValue, func(s string) (bool, error) {
		switch strings.ToLower(s) {
		case "true", "1", "yes":
			return true, nil
		case "false", "0", "no":
			return false, nil
		}
		return false, fmt.Errorf("not a boolean: %q", s)
	})
}

// ParseList reads a comma separated list. Blank items are dropped.
func ParseList(key string, defaultValue []string) []string {
	return parseEnv(key, defaultValue, func(s string) ([]string, error) {
		var out []string
		for _, item := range strings.Split(s, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		return out, nil
	})
}

// listenFromEnv resolves VIDGATE_LISTEN, falling back to PORT as ":<PORT>".
func listenFromEnv(current string) string {
	if v := strings.TrimSpace(os.Getenv(EnvKeyListen)); v != "" {
		return v
	}
	if port := strings.TrimSpace(os.Getenv(EnvKeyPort)); port != "" {
		if _, err := strconv.Atoi(port); err == nil {
			return ":" + port
		}
		logger := log.WithComponent("config")
		logger.Warn().Str("key", EnvKeyPort).Str("value", port).Msg("ignoring non-numeric port")
	}
	return current
}

// mergeEnv applies environment overrides on top of cfg.
func mergeEnv(cfg *AppConfig) {
	cfg.Environment = ParseString(EnvKeyEnvironment, cfg.Environment)
	cfg.LogLevel = ParseString(EnvKeyLogLevel, cfg.LogLevel)
	cfg.LogService = ParseString(EnvKeyLogService, cfg.LogService)
	cfg.API.ListenAddr = listenFromEnv(cfg.API.ListenAddr)

	cfg.Server.ReadTimeout = ParseDuration(EnvKeyReadTimeout, cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = ParseDuration(EnvKeyWriteTimeout, cfg.Server.WriteTimeout)
	cfg.Server.IdleTimeout = ParseDuration(EnvKeyIdleTimeout, cfg.Server.IdleTimeout)
	cfg.Server.MaxHeaderBytes = ParseInt(EnvKeyMaxHeaderBytes, cfg.Server.MaxHeaderBytes)
	cfg.Server.ShutdownTimeout = ParseDuration(EnvKeyShutdownTimeout, cfg.Server.ShutdownTimeout)

	cfg.Metrics.ListenAddr = ParseString(EnvKeyMetricsListen, cfg.Metrics.ListenAddr)
	cfg.Web.Root = ParseString(EnvKeyWebRoot, cfg.Web.Root)
	cfg.CORS.AllowedOrigins = ParseList(EnvKeyCORSOrigins, cfg.CORS.AllowedOrigins)

	cfg.Tracing.Enabled = ParseBool(EnvKeyTracingEnabled, cfg.Tracing.Enabled)
	cfg.Tracing.Exporter = ParseString(EnvKeyTracingExporter, cfg.Tracing.Exporter)
	cfg.Tracing.Endpoint = ParseString(EnvKeyTracingEndpoint, cfg.Tracing.Endpoint)
	cfg.Tracing.SamplingRate = ParseFloat(EnvKeyTracingSampling, cfg.Tracing.SamplingRate)

	cfg.Resolver.ChunkSize = ParseInt64(EnvKeyChunkSize, cfg.Resolver.ChunkSize)
	cfg.Resolver.MaxRoutines = ParseInt(EnvKeyMaxRoutines, cfg.Resolver.MaxRoutines)
}
