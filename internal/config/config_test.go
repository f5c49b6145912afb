package config

import (
	"testing"
	"time"
)

func TestParseLabels(t *testing.T) {
	labels, err := ParseLabels("env=prod, dc=ams1 ,tier=db")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(labels) != 3 {
		t.Fatalf("expected 3 labels, got %v", labels)
	}
	if labels["env"] != "prod" || labels["dc"] != "ams1" || labels["tier"] != "db" {
		t.Errorf("unexpected labels: %v", labels)
	}
}

func TestParseLabels_Empty(t *testing.T) {
	labels, err := ParseLabels("  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(labels) != 0 {
		t.Errorf("expected empty map, got %v", labels)
	}
}

func TestParseLabels_Malformed(t *testing.T) {
	for _, raw := range []string{"noequals", "=value", "a=1,bad"} {
		if _, err := ParseLabels(raw); err == nil {
			t.Errorf("expected error for %q", raw)
		}
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	for _, name := range []string{
		"CELEROOT_HOSTNAME", "CELEROOT_ROLE", "CELEROOT_LABELS",
		"REDIS_URL", "RABBITMQ_URL", "DB_URL",
		"CELEROOT_POLL_INTERVAL", "CELEROOT_LOCK_TTL", "CELEROOT_WORKER_TTL",
		"ENVIRONMENT", "WORKER_PORT",
	} {
		t.Setenv(name, "")
	}

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Hostname == "" {
		t.Error("hostname must fall back to os.Hostname")
	}
	if cfg.Role != "worker" {
		t.Errorf("expected default role worker, got %s", cfg.Role)
	}
	if cfg.PollInterval != 30*time.Second {
		t.Errorf("expected default poll interval 30s, got %s", cfg.PollInterval)
	}
	if cfg.LockTTL != 300*time.Second {
		t.Errorf("expected default lock TTL 300s, got %s", cfg.LockTTL)
	}
	if cfg.DBURL != "" {
		t.Error("DB_URL must default to empty (history disabled)")
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("CELEROOT_HOSTNAME", "db01")
	t.Setenv("CELEROOT_ROLE", "database")
	t.Setenv("CELEROOT_LABELS", "env=prod")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("CELEROOT_POLL_INTERVAL", "10")
	t.Setenv("CELEROOT_LOCK_TTL", "45s")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Hostname != "db01" || cfg.Role != "database" {
		t.Errorf("unexpected identity: %s/%s", cfg.Hostname, cfg.Role)
	}
	if cfg.Labels["env"] != "prod" {
		t.Errorf("unexpected labels: %v", cfg.Labels)
	}
	if cfg.Labels["environment"] != "production" {
		t.Errorf("ENVIRONMENT must become the environment label: %v", cfg.Labels)
	}
	// Целые секунды и Go-duration принимаются одинаково
	if cfg.PollInterval != 10*time.Second {
		t.Errorf("expected 10s poll interval, got %s", cfg.PollInterval)
	}
	if cfg.LockTTL != 45*time.Second {
		t.Errorf("expected 45s lock TTL, got %s", cfg.LockTTL)
	}
}

func TestFromEnv_WorkerTTLBelowHeartbeat(t *testing.T) {
	// Heartbeat идёт раз в poll interval: TTL короче него означает,
	// что живой worker истекает между heartbeat'ами
	t.Setenv("CELEROOT_POLL_INTERVAL", "60")
	t.Setenv("CELEROOT_WORKER_TTL", "30")

	if _, err := FromEnv(); err == nil {
		t.Error("expected error when worker TTL does not exceed poll interval")
	}
}

func TestFromEnv_BadDuration(t *testing.T) {
	t.Setenv("CELEROOT_POLL_INTERVAL", "soon")

	if _, err := FromEnv(); err == nil {
		t.Error("expected error for malformed duration")
	}
}
