package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadAppliesDefaultsForOmittedFields(t *testing.T) {
	path := writeConfigFile(t, `
pool_id: pool-1
tls:
  allow_insecure: true
auth:
  jwt_signing_key: shhh
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddress != ":8090" {
		t.Fatalf("ListenAddress = %q, want :8090", cfg.ListenAddress)
	}
	if cfg.StorePath != "./data" {
		t.Fatalf("StorePath = %q, want ./data", cfg.StorePath)
	}
	if cfg.Observability.ServiceName != "blendpool" {
		t.Fatalf("ServiceName = %q, want blendpool", cfg.Observability.ServiceName)
	}
	if cfg.RateLimit.RequestsPerSecond != 5 {
		t.Fatalf("RequestsPerSecond = %v, want 5", cfg.RateLimit.RequestsPerSecond)
	}
	if cfg.RateLimit.Burst != 10 {
		t.Fatalf("Burst = %d, want 10", cfg.RateLimit.Burst)
	}
}

func TestLoadPreservesExplicitValues(t *testing.T) {
	path := writeConfigFile(t, `
pool_id: pool-1
listen: "127.0.0.1:9999"
store_path: /var/lib/blendpool
tls:
  allow_insecure: true
auth:
  jwt_signing_key: shhh
  allowed_issuers:
    - issuer-a
    - issuer-b
rate_limit:
  requests_per_second: 25
  burst: 50
observability:
  service_name: poold-primary
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddress != "127.0.0.1:9999" {
		t.Fatalf("ListenAddress = %q, want 127.0.0.1:9999", cfg.ListenAddress)
	}
	if cfg.StorePath != "/var/lib/blendpool" {
		t.Fatalf("StorePath = %q, want /var/lib/blendpool", cfg.StorePath)
	}
	if len(cfg.Auth.AllowedIssuers) != 2 {
		t.Fatalf("AllowedIssuers = %v, want 2 entries", cfg.Auth.AllowedIssuers)
	}
	if cfg.RateLimit.RequestsPerSecond != 25 || cfg.RateLimit.Burst != 50 {
		t.Fatalf("RateLimit = %+v, want {25 50}", cfg.RateLimit)
	}
	if cfg.Observability.ServiceName != "poold-primary" {
		t.Fatalf("ServiceName = %q, want poold-primary", cfg.Observability.ServiceName)
	}
}

func TestLoadRejectsEmptyPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatal("Load(\"\") = nil error, want config path required error")
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Load on a missing file = nil error, want open error")
	}
}

func TestLoadRejectsMissingPoolID(t *testing.T) {
	path := writeConfigFile(t, `
tls:
  allow_insecure: true
auth:
  jwt_signing_key: shhh
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load without pool_id = nil error, want validation error")
	}
}

func TestLoadRejectsMissingSigningKey(t *testing.T) {
	path := writeConfigFile(t, `
pool_id: pool-1
tls:
  allow_insecure: true
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load without jwt_signing_key = nil error, want validation error")
	}
}

func TestLoadRejectsTLSWithoutCertOrInsecure(t *testing.T) {
	path := writeConfigFile(t, `
pool_id: pool-1
auth:
  jwt_signing_key: shhh
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load without cert/key and without allow_insecure = nil error, want validation error")
	}
}

func TestLoadRejectsMismatchedCertAndKey(t *testing.T) {
	path := writeConfigFile(t, `
pool_id: pool-1
tls:
  cert: /etc/blendpool/tls.crt
auth:
  jwt_signing_key: shhh
`)
	if _, err := Load(path); err == nil {
		t.Fatal("Load with cert but no key = nil error, want validation error")
	}
}

func TestLoadAcceptsMatchedCertAndKeyWithoutInsecure(t *testing.T) {
	path := writeConfigFile(t, `
pool_id: pool-1
tls:
  cert: /etc/blendpool/tls.crt
  key: /etc/blendpool/tls.key
auth:
  jwt_signing_key: shhh
`)
	if _, err := Load(path); err != nil {
		t.Fatalf("Load with matched cert/key: %v", err)
	}
}
