package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "ENV", "READ_TIMEOUT", "WRITE_TIMEOUT", "TAKEOFF_INBOX_DB"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Port != "3080" || cfg.Environment != "development" || cfg.InboxDB != "data/inbox.db" {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.ReadTimeoutDuration() != 10*time.Second {
		t.Errorf("read timeout = %v", cfg.ReadTimeoutDuration())
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("WRITE_TIMEOUT", "30")
	t.Setenv("READ_TIMEOUT", "soon")
	t.Setenv("TAKEOFF_INBOX_DB", "/tmp/x.db")
	cfg := Load()
	if cfg.Port != "9000" || cfg.WriteTimeout != 30 || cfg.InboxDB != "/tmp/x.db" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.ReadTimeout != 10 {
		t.Errorf("malformed READ_TIMEOUT should fall back to 10, got %d", cfg.ReadTimeout)
	}
}
