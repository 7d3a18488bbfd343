package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestInitConsoleDirSeedsDefaults(t *testing.T) {
	baseDir := t.TempDir()
	if err := InitConsoleDir(baseDir); err != nil {
		t.Fatalf("init console dir: %v", err)
	}
	cfg, err := NewConfig(baseDir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.ServerURL() != "http://localhost:8080" {
		t.Fatalf("unexpected default server url: %s", cfg.ServerURL())
	}
	if cfg.PageSize() != 50 {
		t.Fatalf("unexpected default page size: %d", cfg.PageSize())
	}
	if cfg.QuotaCheckInterval() != 5*time.Second {
		t.Fatalf("unexpected quota interval: %s", cfg.QuotaCheckInterval())
	}
	if cfg.Admin() {
		t.Fatalf("admin must default to false")
	}
	if _, err := os.Stat(cfg.LogsDir()); err != nil {
		t.Fatalf("logs dir missing: %v", err)
	}
}

func TestNewConfigParsesYaml(t *testing.T) {
	baseDir := t.TempDir()
	home := filepath.Join(baseDir, ConsoleDir)
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatal(err)
	}
	configYAML := strings.TrimSpace(`
version: 1
server:
  url: https://blog.example.com/
  token: tkn-123
account:
  admin: true
lists:
  page_size: 10
`)
	if err := os.WriteFile(filepath.Join(home, "config.yaml"), []byte(configYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := NewConfig(baseDir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.ServerURL() != "https://blog.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.ServerURL())
	}
	if cfg.AccessToken() != "tkn-123" {
		t.Fatalf("wrong token: %s", cfg.AccessToken())
	}
	if !cfg.Admin() {
		t.Fatalf("expected admin account")
	}
	if cfg.PageSize() != 10 {
		t.Fatalf("wrong page size: %d", cfg.PageSize())
	}
	// Fields the file omits keep their defaults.
	if cfg.QuotaCheckInterval() != 5*time.Second {
		t.Fatalf("omitted interval not defaulted: %s", cfg.QuotaCheckInterval())
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	baseDir := t.TempDir()
	if err := InitConsoleDir(baseDir); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BLOG_SERVER_URL", "https://override.example.com")
	t.Setenv("BLOG_ACCESS_TOKEN", "env-token")
	cfg, err := NewConfig(baseDir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.ServerURL() != "https://override.example.com" {
		t.Fatalf("env url not applied: %s", cfg.ServerURL())
	}
	if cfg.AccessToken() != "env-token" {
		t.Fatalf("env token not applied: %s", cfg.AccessToken())
	}
}

func TestSetServerURLPersists(t *testing.T) {
	baseDir := t.TempDir()
	if err := InitConsoleDir(baseDir); err != nil {
		t.Fatal(err)
	}
	cfg, err := NewConfig(baseDir)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.SetServerURL("https://new.example.com"); err != nil {
		t.Fatalf("set server url: %v", err)
	}
	reloaded, err := NewConfig(baseDir)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.ServerURL() != "https://new.example.com" {
		t.Fatalf("url did not survive reload: %s", reloaded.ServerURL())
	}
}

func TestSetAccessTokenPersists(t *testing.T) {
	baseDir := t.TempDir()
	if err := InitConsoleDir(baseDir); err != nil {
		t.Fatal(err)
	}
	cfg, err := NewConfig(baseDir)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.SetAccessToken("  tkn-new  "); err != nil {
		t.Fatalf("set access token: %v", err)
	}
	reloaded, err := NewConfig(baseDir)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.AccessToken() != "tkn-new" {
		t.Fatalf("token did not survive reload: %q", reloaded.AccessToken())
	}
}

func TestStoredConfigIgnoresEnvironment(t *testing.T) {
	baseDir := t.TempDir()
	if err := InitConsoleDir(baseDir); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BLOG_SERVER_URL", "https://session-only.example.com")
	t.Setenv("BLOG_ACCESS_TOKEN", "session-token")
	cfg, err := NewStoredConfig(baseDir)
	if err != nil {
		t.Fatalf("new stored config: %v", err)
	}
	if cfg.ServerURL() != "http://localhost:8080" {
		t.Fatalf("stored config picked up the env url: %s", cfg.ServerURL())
	}
	if cfg.AccessToken() != "" {
		t.Fatalf("stored config picked up the env token: %q", cfg.AccessToken())
	}
	// Persisting through the stored config must not bake the env in.
	if err := cfg.SetServerURL("https://durable.example.com"); err != nil {
		t.Fatalf("set server url: %v", err)
	}
	again, err := NewStoredConfig(baseDir)
	if err != nil {
		t.Fatal(err)
	}
	if again.ServerURL() != "https://durable.example.com" {
		t.Fatalf("persisted url lost: %s", again.ServerURL())
	}
	if again.AccessToken() != "" {
		t.Fatalf("env token leaked into config.yaml: %q", again.AccessToken())
	}
}

func TestSetServerURLRejectsEmpty(t *testing.T) {
	baseDir := t.TempDir()
	if err := InitConsoleDir(baseDir); err != nil {
		t.Fatal(err)
	}
	cfg, err := NewConfig(baseDir)
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.SetServerURL("   "); err == nil {
		t.Fatalf("expected error for blank url")
	}
}
