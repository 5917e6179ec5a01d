package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.DBPath != "lemonqwest.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "lemonqwest.db")
	}
	if cfg.LoginRateLimit != 10 {
		t.Errorf("LoginRateLimit = %d, want 10", cfg.LoginRateLimit)
	}
	if cfg.LoginRateWindow != time.Minute {
		t.Errorf("LoginRateWindow = %v, want 1m", cfg.LoginRateWindow)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("LEMONQWEST_PORT", "9090")
	t.Setenv("LEMONQWEST_LOG_LEVEL", "debug")
	t.Setenv("LEMONQWEST_SHUTDOWN_TIMEOUT", "10s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want %q", cfg.Port, "9090")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", cfg.ShutdownTimeout)
	}
}
