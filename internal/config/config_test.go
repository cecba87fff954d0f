package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  port: "9090"
log:
  level: debug
  format: json
redis:
  addr: localhost:6379
  lock_ttl: 3s
postgres:
  url: postgres://hangman@localhost/hangman
nats:
  url: nats://localhost:4222
words:
  url: http://words.local/word?length=%d
  attempts: 3
mail:
  host: smtp.local
  port: 2525
schedule:
  reminder_interval: 24h
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Fatalf("unexpected server/log config: %+v", cfg)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.LockTTL != "3s" {
		t.Fatalf("unexpected redis config: %+v", cfg.Redis)
	}
	if cfg.Words.Attempts != 3 || cfg.Mail.Port != 2525 || cfg.NATS.URL != "nats://localhost:4222" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if got := TTLDuration(cfg.Schedule.ReminderInterval, time.Hour); got != 24*time.Hour {
		t.Fatalf("expected 24h, got %v", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if cfg.Postgres.URL != "" || cfg.Redis.Addr != "" {
		t.Fatalf("expected zero config, got %+v", cfg)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestTTLDuration(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("empty: got %v", got)
	}
	if got := TTLDuration("garbage", time.Minute); got != time.Minute {
		t.Fatalf("garbage: got %v", got)
	}
	if got := TTLDuration("90s", time.Minute); got != 90*time.Second {
		t.Fatalf("90s: got %v", got)
	}
}
