// Package config loads the runtime settings for the poold/backstopd
// service daemons: listen address, TLS, and JWT authentication. Protocol
// parameters (reserve/pool/backstop config) are governance state and live in
// native/pool and native/backstop instead, loaded from TOML at genesis.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config captures one daemon's runtime settings.
type Config struct {
	PoolID        string              `yaml:"pool_id"`
	ListenAddress string              `yaml:"listen"`
	TLS           TLSConfig           `yaml:"tls"`
	Auth          AuthConfig          `yaml:"auth"`
	StorePath     string              `yaml:"store_path"`
	GenesisPath   string              `yaml:"genesis_path"`
	Observability ObservabilityConfig `yaml:"observability"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
}

// ObservabilityConfig controls structured logging identity and the OTLP
// exporter, mirroring observability/otel.Config.
type ObservabilityConfig struct {
	ServiceName   string `yaml:"service_name"`
	OTLPEndpoint  string `yaml:"otlp_endpoint"`
	OTLPInsecure  bool   `yaml:"otlp_insecure"`
	OTLPHeaders   string `yaml:"otlp_headers"`
	EnableTraces  bool   `yaml:"enable_traces"`
	EnableMetrics bool   `yaml:"enable_metrics"`
}

// RateLimitConfig bounds per-address Submit throughput.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// TLSConfig describes the TLS material for the HTTP server.
type TLSConfig struct {
	CertPath      string `yaml:"cert"`
	KeyPath       string `yaml:"key"`
	AllowInsecure bool   `yaml:"allow_insecure"`
}

// AuthConfig configures JWT-bearer authentication for admin endpoints.
type AuthConfig struct {
	JWTSigningKey  string   `yaml:"jwt_signing_key"`
	AllowedIssuers []string `yaml:"allowed_issuers"`
}

// Load reads the YAML configuration from disk and validates the result.
func Load(path string) (Config, error) {
	cfg := Config{ListenAddress: ":8090", StorePath: "./data"}
	if path == "" {
		return cfg, fmt.Errorf("config path required")
	}
	file, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) normalize() {
	cfg.PoolID = strings.TrimSpace(cfg.PoolID)
	cfg.ListenAddress = strings.TrimSpace(cfg.ListenAddress)
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = ":8090"
	}
	cfg.StorePath = strings.TrimSpace(cfg.StorePath)
	if cfg.StorePath == "" {
		cfg.StorePath = "./data"
	}
	cfg.TLS.CertPath = strings.TrimSpace(cfg.TLS.CertPath)
	cfg.TLS.KeyPath = strings.TrimSpace(cfg.TLS.KeyPath)
	cfg.Auth.JWTSigningKey = strings.TrimSpace(cfg.Auth.JWTSigningKey)
	cfg.Observability.ServiceName = strings.TrimSpace(cfg.Observability.ServiceName)
	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = "blendpool"
	}
	if cfg.RateLimit.RequestsPerSecond <= 0 {
		cfg.RateLimit.RequestsPerSecond = 5
	}
	if cfg.RateLimit.Burst <= 0 {
		cfg.RateLimit.Burst = 10
	}
}

func (cfg Config) validate() error {
	if cfg.PoolID == "" {
		return fmt.Errorf("pool_id is required")
	}
	hasCert := cfg.TLS.CertPath != ""
	hasKey := cfg.TLS.KeyPath != ""
	if hasCert != hasKey {
		return fmt.Errorf("tls: cert and key must either both be provided or both be empty")
	}
	if !cfg.TLS.AllowInsecure && !hasCert {
		return fmt.Errorf("tls: cert and key are required unless allow_insecure=true")
	}
	if cfg.Auth.JWTSigningKey == "" {
		return fmt.Errorf("auth: jwt_signing_key is required")
	}
	return nil
}
