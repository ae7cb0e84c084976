package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileCreatesTemplateOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.Outlook.TenantID != DefaultTenantID {
		t.Errorf("TenantID = %q, want default", cfg.Outlook.TenantID)
	}
	if cfg.Server.Addr != DefaultServerAddr {
		t.Errorf("Addr = %q, want default", cfg.Server.Addr)
	}

	// The annotated template must now exist and parse back to the defaults.
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("template not written: %v", err)
	}
	again, err := LoadFile(path)
	if err != nil {
		t.Fatalf("re-reading template: %v", err)
	}
	if again.Outlook.ClientID != DefaultClientID {
		t.Errorf("ClientID = %q, want default from template", again.Outlook.ClientID)
	}
}

func TestLoadFilePartialConfigFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "db_path: /tmp/custom.db\nactivitywatch:\n  min_seconds: 60\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.DBPath != "/tmp/custom.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.Outlook.TenantID != DefaultTenantID {
		t.Errorf("TenantID = %q, want backfilled default", cfg.Outlook.TenantID)
	}

	f := cfg.ActivityWatch.Filters()
	if f.MinSeconds != 60 {
		t.Errorf("MinSeconds = %d, want 60", f.MinSeconds)
	}
	if f.GapMergeSeconds != 300 {
		t.Errorf("GapMergeSeconds = %d, want default 300", f.GapMergeSeconds)
	}
}

func TestLoadFileMalformedReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(":\n  - not valid yaml: ["), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if cfg.Outlook.TenantID != DefaultTenantID {
		t.Errorf("malformed config must fall back to defaults, got %+v", cfg)
	}
}
