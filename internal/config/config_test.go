package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("RETENTION_DAYS", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Expected port 8080, got %s", cfg.Port)
	}
	if cfg.WordPress.TablePrefix != "wp_" {
		t.Errorf("Expected table prefix wp_, got %s", cfg.WordPress.TablePrefix)
	}
	if cfg.CRM.Timeout != 30*time.Second {
		t.Errorf("Expected CRM timeout 30s, got %s", cfg.CRM.Timeout)
	}
	if cfg.Redis.Enabled() {
		t.Error("Expected Redis disabled without REDIS_HOST")
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("Expected 2 CORS origins, got %v", cfg.CORSOrigins)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PG_HOST", "db.internal")
	t.Setenv("RETENTION_DAYS", "30")
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("CRM_FORM_ID", "FormConfigID-aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Postgres.Host != "db.internal" {
		t.Errorf("Expected PG host db.internal, got %s", cfg.Postgres.Host)
	}
	if cfg.RetentionDays != 30 {
		t.Errorf("Expected retention 30, got %d", cfg.RetentionDays)
	}
	if !cfg.Redis.Enabled() {
		t.Error("Expected Redis enabled")
	}
	if cfg.CRM.DefaultFormID == "" {
		t.Error("Expected default CRM form id from env")
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "formbridge.yaml")
	if err := os.WriteFile(path, []byte("port: \"9090\"\nwp_table_prefix: site_\n"), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	t.Setenv("FORMBRIDGE_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Port)
	}
	if cfg.WordPress.TablePrefix != "site_" {
		t.Errorf("Expected prefix site_, got %s", cfg.WordPress.TablePrefix)
	}
}

func TestValidate_ProductionRequiresSecret(t *testing.T) {
	cfg := &Config{AppEnv: "production", RetentionDays: 90, SubmitRatePerSec: 1, SubmitBurst: 5}
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error without admin token secret in production")
	}
}

func TestValidate_RejectsNonPositiveRetention(t *testing.T) {
	cfg := &Config{RetentionDays: 0, SubmitRatePerSec: 1, SubmitBurst: 5}
	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for zero retention")
	}
}
