// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"github.com/rs/zerolog"

	"github.com/ManuGH/vidgate/internal/validate"
)

// Validate checks cfg and reports every problem at once.
func Validate(cfg AppConfig) error {
	v := validate.New()

	v.OneOf("environment", cfg.Environment, []string{EnvProduction, EnvDevelopment})
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil || cfg.LogLevel == "" {
		v.AddError("logLevel", "must be a zerolog level (trace, debug, info, warn, error)", cfg.LogLevel)
	}
	v.ListenAddr("api.listenAddr", cfg.API.ListenAddr, false)
	v.ListenAddr("metrics.listenAddr", cfg.Metrics.ListenAddr, true)

	v.NonNegative("server.readTimeout", int64(cfg.Server.ReadTimeout))
	v.NonNegative("server.writeTimeout", int64(cfg.Server.WriteTimeout))
	v.NonNegative("server.idleTimeout", int64(cfg.Server.IdleTimeout))
	v.NonNegative("server.shutdownTimeout", int64(cfg.Server.ShutdownTimeout))
	v.Range("server.maxHeaderBytes", cfg.Server.MaxHeaderBytes, 1024, 16<<20)

	v.Directory("web.root", cfg.Web.Root)

	if cfg.Tracing.Enabled {
		v.OneOf("tracing.exporter", cfg.Tracing.Exporter, []string{"grpc", "http"})
		if cfg.Tracing.Endpoint == "" {
			v.AddError("tracing.endpoint", "is required when tracing is enabled", cfg.Tracing.Endpoint)
		}
	}
	v.FloatRange("tracing.samplingRate", cfg.Tracing.SamplingRate, 0, 1)

	v.NonNegative("resolver.chunkSize", cfg.Resolver.ChunkSize)
	v.NonNegative("resolver.maxRoutines", int64(cfg.Resolver.MaxRoutines))

	return v.Err()
}
