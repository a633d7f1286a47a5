package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Chdir(t.TempDir())
	Init()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Retries != DefaultRetries {
		t.Errorf("Retries = %d, want %d", cfg.Retries, DefaultRetries)
	}
	if cfg.Backup.Timestamped {
		t.Error("Timestamped = true, want false by default")
	}
	if cfg.Backup.Retention != DefaultRetention {
		t.Errorf("Retention = %d, want %d", cfg.Backup.Retention, DefaultRetention)
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	viper.Reset()
	Init()

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "version: 1\nretries: 9\nbackup:\n  timestamped: true\n  retention: 3\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Retries != 9 {
		t.Errorf("Retries = %d, want 9", cfg.Retries)
	}
	if !cfg.Backup.Timestamped {
		t.Error("Timestamped = false, want true")
	}
	if cfg.Backup.Retention != 3 {
		t.Errorf("Retention = %d, want 3", cfg.Backup.Retention)
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	viper.Reset()
	Init()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault failed: %v", err)
	}

	viper.Reset()
	Init()
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if cfg.Version != 1 || cfg.Retries != DefaultRetries {
		t.Errorf("written config = %+v, want defaults", cfg)
	}

	// A second write must refuse to clobber.
	if err := WriteDefault(path); err == nil {
		t.Error("WriteDefault overwrote an existing file")
	}
}
