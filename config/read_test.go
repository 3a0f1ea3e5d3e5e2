package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

const testConfigYAML = `
server:
  port: 8080
  environment: development
store:
  url: https://store.example.com
  anon_key: anon-key
identity:
  url: https://auth.example.com
  anon_key: anon-key
  jwt_secret: test-secret
`

func writeTestConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestReadConfig(t *testing.T) {
	viper.Reset()
	dir := writeTestConfig(t, testConfigYAML)

	cfg, err := ReadConfig(dir)
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Store.URL != "https://store.example.com" {
		t.Errorf("store.url = %q", cfg.Store.URL)
	}
	if cfg.Identity.JWTSecret != "test-secret" {
		t.Errorf("identity.jwt_secret = %q", cfg.Identity.JWTSecret)
	}
}

func TestReadConfigEnvOverride(t *testing.T) {
	viper.Reset()
	dir := writeTestConfig(t, testConfigYAML)
	t.Setenv("NOVADENT_SERVER_PORT", "9090")
	t.Setenv("NOVADENT_STORE_URL", "https://override.example.com")

	cfg, err := ReadConfig(dir)
	if err != nil {
		t.Fatalf("ReadConfig: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server.port = %d, want env override 9090", cfg.Server.Port)
	}
	if cfg.Store.URL != "https://override.example.com" {
		t.Errorf("store.url = %q, want env override", cfg.Store.URL)
	}
}

func TestReadConfigValidation(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"missing store url", `
store:
  anon_key: anon-key
identity:
  url: https://auth.example.com
  jwt_secret: s
`},
		{"missing jwt secret", `
store:
  url: https://store.example.com
  anon_key: anon-key
identity:
  url: https://auth.example.com
`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			viper.Reset()
			dir := writeTestConfig(t, tc.yaml)
			if _, err := ReadConfig(dir); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
