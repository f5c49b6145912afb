package cli

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestConfigFile_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "celeroot.yml")
	file := NewConfigFile(path)

	if file.Exists() {
		t.Fatal("file must not exist yet")
	}

	if err := file.Save(DefaultConfig()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	cfg, err := file.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Name != "default-cluster" {
		t.Errorf("unexpected cluster name: %s", cfg.Name)
	}
	if len(cfg.Hosts) != 2 || len(cfg.Roles) != 2 {
		t.Errorf("expected 2 hosts and 2 roles, got %d/%d", len(cfg.Hosts), len(cfg.Roles))
	}

	sched, ok := cfg.Schedules["security-updates"]
	if !ok {
		t.Fatal("default schedule missing after round trip")
	}
	if sched.Cron != "0 2 * * *" || sched.Task != "check-security-updates" {
		t.Errorf("schedule fields lost in round trip: %+v", sched)
	}
	if len(sched.Targets) != 2 {
		t.Errorf("expected 2 targets, got %d", len(sched.Targets))
	}
}

func TestConfigFile_LoadMissing(t *testing.T) {
	file := NewConfigFile(filepath.Join(t.TempDir(), "absent.yml"))

	if _, err := file.Load(); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("expected ErrConfigNotFound, got %v", err)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	if problems := DefaultConfig().Validate(); len(problems) != 0 {
		t.Errorf("default config must validate cleanly: %v", problems)
	}
}
