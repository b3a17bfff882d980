package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.Storage.Driver != "sqlite" || cfg.Blob.Root != "uploads" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Admin.Email != "admin" || cfg.Admin.Password != "Admin123" || cfg.Admin.Name != "Master Admin" {
		t.Fatalf("unexpected admin defaults: %+v", cfg.Admin)
	}
	if cfg.Session.TTL != 720*time.Hour {
		t.Fatalf("ttl = %v", cfg.Session.TTL)
	}
	if cfg.Calendar.Enabled() || cfg.Email.Enabled() {
		t.Fatalf("integrations should be off by default")
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"addr": ":9090", "storage": {"driver": "postgres", "postgres_dsn": "postgres://db/badiri"}, "email": {"resend_api_key": "re_123"}}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BADIRI_STORAGE_DRIVER", "csv")
	t.Setenv("BADIRI_AI_API_KEY", "gk")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.Storage.PostgresDSN != "postgres://db/badiri" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Storage.Driver != "csv" || cfg.AI.APIKey != "gk" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if !cfg.Email.Enabled() {
		t.Fatalf("resend key should enable email")
	}
}

func TestLoadBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}
