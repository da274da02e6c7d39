// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package config loads the gateway configuration with the precedence
// ENV > YAML file > defaults.
package config

import (
	"time"
)

// Environments accepted by the environment key.
const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

// AppConfig is the complete runtime configuration.
type AppConfig struct {
	Environment string         `yaml:"environment"`
	LogLevel    string         `yaml:"logLevel"`
	LogService  string         `yaml:"logService"`
	API         APIConfig      `yaml:"api"`
	Server      ServerFile     `yaml:"server"`
	Metrics     MetricsConfig  `yaml:"metrics"`
	Web         WebConfig      `yaml:"web"`
	CORS        CORSConfig     `yaml:"cors"`
	Tracing     TracingConfig  `yaml:"tracing"`
	Resolver    ResolverConfig `yaml:"resolver"`
}

// APIConfig configures the public listener.
type APIConfig struct {
	ListenAddr string `yaml:"listenAddr"`
}

// ServerFile holds the http.Server tunables as written in YAML.
type ServerFile struct {
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	IdleTimeout     time.Duration `yaml:"idleTimeout"`
	MaxHeaderBytes  int           `yaml:"maxHeaderBytes"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// MetricsConfig configures the Prometheus listener. Empty disables it.
type MetricsConfig struct {
	ListenAddr string `yaml:"listenAddr"`
}

// WebConfig configures the optional static site.
type WebConfig struct {
	Root string `yaml:"root"`
}

// CORSConfig lists allowed browser origins.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"`
	Endpoint     string  `yaml:"endpoint"`
	SamplingRate float64 `yaml:"samplingRate"`
}

// ResolverConfig tunes the YouTube resolver client.
type ResolverConfig struct {
	ChunkSize   int64 `yaml:"chunkSize"`
	MaxRoutines int   `yaml:"maxRoutines"`
}

// Development reports whether error details may be exposed to clients.
func (c AppConfig) Development() bool {
	return c.Environment == EnvDevelopment
}

// Defaults returns the built-in configuration.
func Defaults() AppConfig {
	return AppConfig{
		Environment: EnvProduction,
		LogLevel:    "info",
		LogService:  "vidgate",
		API:         APIConfig{ListenAddr: ":3000"},
		Server: ServerFile{
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			IdleTimeout:     defaultIdleTimeout,
			MaxHeaderBytes:  defaultMaxHeaderBytes,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Metrics: MetricsConfig{ListenAddr: ":9090"},
		CORS:    CORSConfig{AllowedOrigins: []string{"*"}},
		Tracing: TracingConfig{
			Exporter:     "grpc",
			Endpoint:     "localhost:4317",
			SamplingRate: 1.0,
		},
	}
}
