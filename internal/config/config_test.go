package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Agent.LogLevel != "info" {
		t.Fatalf("log_level = %q", cfg.Agent.LogLevel)
	}
	if !cfg.Server.UseMainThreadExecutor {
		t.Fatalf("use_main_thread_executor must default to true")
	}
	if cfg.Server.TimeoutMS != 10000 || cfg.Server.PollIntervalMS != 50 {
		t.Fatalf("unexpected bridge defaults: %+v", cfg.Server)
	}
	if !reflect.DeepEqual(cfg.Modules, []string{"system"}) {
		t.Fatalf("modules = %v", cfg.Modules)
	}
	if cfg.SQLite.RetentionDays != 30 || cfg.Scheduler.IntervalSeconds != 3600 {
		t.Fatalf("unexpected housekeeping defaults")
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\"): %v", err)
	}
	if !reflect.DeepEqual(cfg, Default()) {
		t.Fatalf("Load(\"\") differs from Default()")
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
agent:
  log_level: debug
server:
  host_program: blender
  timeout_ms: 2500
modules:
  - system
  - render
sqlite:
  path: /tmp/history.db
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Agent.LogLevel != "debug" {
		t.Fatalf("log_level = %q", cfg.Agent.LogLevel)
	}
	if cfg.Server.HostProgram != "blender" || cfg.Server.TimeoutMS != 2500 {
		t.Fatalf("unexpected server config: %+v", cfg.Server)
	}
	// Незатронутые поля сохраняют значения по умолчанию.
	if cfg.Server.PollIntervalMS != 50 {
		t.Fatalf("poll_interval_ms = %d", cfg.Server.PollIntervalMS)
	}
	if !reflect.DeepEqual(cfg.Modules, []string{"system", "render"}) {
		t.Fatalf("modules = %v", cfg.Modules)
	}
	if cfg.SQLite.Path != "/tmp/history.db" || cfg.SQLite.RetentionDays != 30 {
		t.Fatalf("unexpected sqlite config: %+v", cfg.SQLite)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for empty file")
	}
}
