package main

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeConfig writes content to a temp config file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

// freePort asks the kernel for an unused TCP port.
func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func sqliteConfig(dbPath string, port int) string {
	return fmt.Sprintf(`
server:
  host: "127.0.0.1"
  port: %d

storage:
  backend: sqlite

database:
  path: %q
  wal_mode: true
  busy_timeout: 5

logging:
  level: error
  format: text

sources:
  - name: room
    poll_interval_seconds: 30
    fetch:
      url: "http://127.0.0.1:1/room"
    retention:
      active: true
      age_seconds: 86400
      check_interval_seconds: 3600
  - name: legacy
    active: false
    interval: 60
    config:
      url: "http://127.0.0.1:1/legacy"
`, port, dbPath)
}

// ===== Config path =====

func TestGetConfigPath_Default(t *testing.T) {
	t.Setenv(configEnv, "")

	if got := getConfigPath(); got != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
	}
}

func TestGetConfigPath_EnvOverride(t *testing.T) {
	expected := "/custom/path/config.yaml"
	t.Setenv(configEnv, expected)

	if got := getConfigPath(); got != expected {
		t.Errorf("getConfigPath() = %q, want %q", got, expected)
	}
}

// ===== validate =====

func TestValidate(t *testing.T) {
	path := writeConfig(t, sqliteConfig(filepath.Join(t.TempDir(), "samples.db"), 3000))

	var out bytes.Buffer
	if err := validate(&out, path); err != nil {
		t.Fatalf("validate() error = %v", err)
	}

	for _, want := range []string{
		"storage backend: sqlite",
		"sources: 2 defined, 1 active",
		"room: every 30s, retention 24h0m0s every 1h0m0s",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("validate() output missing %q\n%s", want, out.String())
		}
	}
	if strings.Contains(out.String(), "legacy:") {
		t.Errorf("validate() listed inactive source\n%s", out.String())
	}
}

func TestValidate_DuplicateSource(t *testing.T) {
	path := writeConfig(t, `
storage:
  backend: sqlite
sources:
  - name: dup
    poll_interval_seconds: 5
    fetch: {url: "http://example.com/a"}
  - name: dup
    poll_interval_seconds: 5
    fetch: {url: "http://example.com/b"}
`)

	if err := validate(&bytes.Buffer{}, path); err == nil {
		t.Fatal("validate() should fail on duplicate source names")
	}
}

func TestRootCmd_ValidateFlag(t *testing.T) {
	path := writeConfig(t, sqliteConfig(filepath.Join(t.TempDir(), "samples.db"), 3000))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"validate", "--config", path})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out.String(), "config "+path+" OK") {
		t.Errorf("output = %q, want config OK line", out.String())
	}
}

// ===== run =====

func TestRun_InvalidConfig(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx, "/nonexistent/path/config.yaml"); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

func TestRun_UnreachableMQTT(t *testing.T) {
	path := writeConfig(t, sqliteConfig(filepath.Join(t.TempDir(), "samples.db"), freePort(t))+`
mqtt:
  enabled: true
  broker:
    host: "127.0.0.1"
    port: 1
`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx, path); err == nil {
		t.Fatal("run() should fail when the MQTT broker is unreachable")
	}
}

func TestRun_SQLiteStartupAndShutdown(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "samples.db")
	path := writeConfig(t, sqliteConfig(dbPath, freePort(t)))

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	if err := run(ctx, path); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}
