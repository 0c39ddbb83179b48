package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if cfg.Storage.Backend != nil || cfg.Counter.AsyncDelay != nil {
		t.Fatalf("expected unset values, got %+v", cfg)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigSections(t *testing.T) {
	path := writeConfig(t, `
[storage]
backend = "s3"
codec = "cbor"

[storage.s3]
bucket = "todos"
endpoint = "http://localhost:9000"
path-style = true

[counter]
async-delay = "250ms"

[todo]
latency = "0s"

[log]
level = "debug"

[metrics]
addr = ":9102"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Backend == nil || *cfg.Storage.Backend != "s3" {
		t.Fatalf("unexpected backend: %v", cfg.Storage.Backend)
	}
	if cfg.Storage.Codec == nil || *cfg.Storage.Codec != "cbor" {
		t.Fatalf("unexpected codec: %v", cfg.Storage.Codec)
	}
	if cfg.Storage.Path != nil {
		t.Fatalf("path should stay unset")
	}
	s3 := cfg.Storage.S3
	if s3.Bucket == nil || *s3.Bucket != "todos" || s3.PathStyle == nil || !*s3.PathStyle {
		t.Fatalf("unexpected s3 section: %+v", s3)
	}
	if cfg.Counter.AsyncDelay == nil || cfg.Counter.AsyncDelay.Std() != 250*time.Millisecond {
		t.Fatalf("unexpected async delay: %v", cfg.Counter.AsyncDelay)
	}
	if cfg.Todo.Latency == nil || cfg.Todo.Latency.Std() != 0 {
		t.Fatalf("explicit zero latency should be kept")
	}
	if cfg.Log.Level == nil || *cfg.Log.Level != "debug" || cfg.Log.File != nil {
		t.Fatalf("unexpected log section: %+v", cfg.Log)
	}
	if cfg.Metrics.Addr == nil || *cfg.Metrics.Addr != ":9102" {
		t.Fatalf("unexpected metrics addr: %v", cfg.Metrics.Addr)
	}
}

func TestLoadConfigRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, "[counter]\nasync-delay = \"soon\"\n")
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected duration error")
	}
}

func TestLoadConfigRejectsUnknownKey(t *testing.T) {
	path := writeConfig(t, "[storage]\nbackedn = \"file\"\n")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "backedn") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))

	if got, want := DefaultConfigPath(), filepath.Join(dir, "config", "mvi", "config.toml"); got != want {
		t.Fatalf("config path = %q, want %q", got, want)
	}
	if got, want := DefaultDBPath(), filepath.Join(dir, "data", "mvi", "mvi.db"); got != want {
		t.Fatalf("db path = %q, want %q", got, want)
	}
	if got, want := DefaultBlobDir(), filepath.Join(dir, "data", "mvi", "blobs"); got != want {
		t.Fatalf("blob dir = %q, want %q", got, want)
	}
	if got, want := DefaultLogPath(), filepath.Join(dir, "state", "mvi", "mvi.log"); got != want {
		t.Fatalf("log path = %q, want %q", got, want)
	}
}
