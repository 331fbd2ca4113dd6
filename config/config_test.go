package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"oscreplay/player"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
input:
  path: ./session.pcap
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Playback.Host != "127.0.0.1" {
		t.Fatalf("expected default host 127.0.0.1, got %s", cfg.Playback.Host)
	}
	if cfg.Playback.Port != 8000 {
		t.Fatalf("expected default port 8000, got %d", cfg.Playback.Port)
	}
	if cfg.Playback.Speed != 1.0 {
		t.Fatalf("expected default speed 1.0, got %v", cfg.Playback.Speed)
	}
	if cfg.Playback.Loop {
		t.Fatalf("loop should default to false")
	}
	if cfg.Input.Path != "./session.pcap" {
		t.Fatalf("unexpected input path %s", cfg.Input.Path)
	}
}

func TestLoadReadsFileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
playback:
  host: 10.0.0.5
  port: 9000
  speed: 2.5
  loop: true
http:
  addr: ":8080"
`)
	t.Setenv("OSCREPLAY_PORT", "9100")
	t.Setenv("OSCREPLAY_INTERRUPTIBLE_STOP", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	want := player.Config{Host: "10.0.0.5", Port: 9100, Speed: 2.5, Loop: true, InterruptibleStop: true}
	if got := cfg.Player(); got != want {
		t.Fatalf("player config = %+v, want %+v", got, want)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("expected http addr :8080, got %s", cfg.HTTP.Addr)
	}
}

func TestLoadWithoutFileUsesEnv(t *testing.T) {
	t.Setenv("OSCREPLAY_HOST", "192.168.0.9")
	t.Setenv("OSCREPLAY_INPUT", "/tmp/capture.pcap")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Playback.Host != "192.168.0.9" || cfg.Input.Path != "/tmp/capture.pcap" {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestLoadRejectsInvalidPlayback(t *testing.T) {
	path := writeConfig(t, "playback:\n  speed: -2\n")
	if _, err := Load(path); !errors.Is(err, player.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}

	path = writeConfig(t, "playback:\n  host: example.org\n")
	if _, err := Load(path); !errors.Is(err, player.ErrInvalidAddress) {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
}

func TestLoadRejectsBadEnv(t *testing.T) {
	t.Setenv("OSCREPLAY_SPEED", "fast")
	if _, err := Load(""); err == nil {
		t.Fatal("expected env parse error")
	}
}
