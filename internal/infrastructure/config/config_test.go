package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeConfig writes content to a temporary config.yaml and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
server:
  host: "127.0.0.1"
  port: 8080
storage:
  backend: "influxdb"
influxdb:
  url: "http://influx:8086"
  org: "test-org"
  bucket: "test-bucket"
sources:
  - name: "cpu"
    poll_interval_seconds: 5
    fetch:
      method: "GET"
      url: "http://example.com/cpu"
    retention:
      active: true
      age_seconds: 3600
      check_interval_seconds: 60
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.InfluxDB.Bucket != "test-bucket" {
		t.Errorf("InfluxDB.Bucket = %q, want %q", cfg.InfluxDB.Bucket, "test-bucket")
	}
	if len(cfg.Sources) != 1 {
		t.Fatalf("len(Sources) = %d, want 1", len(cfg.Sources))
	}

	src := cfg.Sources[0]
	if !src.Active {
		t.Error("Sources[0].Active = false, want true when omitted")
	}
	if src.PollIntervalSeconds != 5 {
		t.Errorf("Sources[0].PollIntervalSeconds = %d, want 5", src.PollIntervalSeconds)
	}
	if src.Fetch.URL != "http://example.com/cpu" {
		t.Errorf("Sources[0].Fetch.URL = %q, want %q", src.Fetch.URL, "http://example.com/cpu")
	}
	if src.Retention.AgeSeconds != 3600 || src.Retention.CheckIntervalSeconds != 60 {
		t.Errorf("Sources[0].Retention = %+v, want age 3600 / check 60", src.Retention)
	}
}

func TestLoad_SourceAliases(t *testing.T) {
	content := `
sources:
  - name: "disk"
    active: false
    interval: 30
    config:
      url: "http://example.com/disk"
      headers:
        Accept: "application/json"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	src := cfg.Sources[0]
	if src.Active {
		t.Error("Sources[0].Active = true, want false")
	}
	if src.PollIntervalSeconds != 30 {
		t.Errorf("PollIntervalSeconds = %d, want 30 from interval alias", src.PollIntervalSeconds)
	}
	if src.Fetch.URL != "http://example.com/disk" {
		t.Errorf("Fetch.URL = %q, want value from config alias", src.Fetch.URL)
	}
	if src.Fetch.Headers["Accept"] != "application/json" {
		t.Errorf("Fetch.Headers[Accept] = %q, want %q", src.Fetch.Headers["Accept"], "application/json")
	}
}

func TestLoad_ConflictingAliases(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "interval disagrees",
			content: `
sources:
  - name: "cpu"
    interval: 10
    poll_interval_seconds: 5
`,
		},
		{
			name: "fetch and config",
			content: `
sources:
  - name: "cpu"
    fetch:
      url: "http://a"
    config:
      url: "http://b"
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("Load() expected error for conflicting aliases, got nil")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
storage:
  backend: "cassandra"
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("Load() expected validation error for unknown backend, got nil")
	}
	if !strings.Contains(err.Error(), "storage.backend") {
		t.Errorf("Load() error = %v, want mention of storage.backend", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config { return defaultConfig() }

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(_ *Config) {},
			wantErr: false,
		},
		{
			name: "sqlite backend",
			mutate: func(c *Config) {
				c.Storage.Backend = BackendSQLite
			},
			wantErr: false,
		},
		{
			name: "sqlite without path",
			mutate: func(c *Config) {
				c.Storage.Backend = BackendSQLite
				c.Database.Path = ""
			},
			wantErr: true,
		},
		{
			name: "influxdb without bucket",
			mutate: func(c *Config) {
				c.InfluxDB.Bucket = ""
			},
			wantErr: true,
		},
		{
			name: "negative bucket retention",
			mutate: func(c *Config) {
				c.InfluxDB.RetentionSeconds = -1
			},
			wantErr: true,
		},
		{
			name: "invalid port low",
			mutate: func(c *Config) {
				c.Server.Port = 0
			},
			wantErr: true,
		},
		{
			name: "invalid port high",
			mutate: func(c *Config) {
				c.Server.Port = 70000
			},
			wantErr: true,
		},
		{
			name: "invalid QoS when mqtt enabled",
			mutate: func(c *Config) {
				c.MQTT.Enabled = true
				c.MQTT.QoS = 3
			},
			wantErr: true,
		},
		{
			name: "invalid QoS ignored when mqtt disabled",
			mutate: func(c *Config) {
				c.MQTT.QoS = 3
			},
			wantErr: false,
		},
		{
			name: "zero tick",
			mutate: func(c *Config) {
				c.Scheduler.TickInterval = 0
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetDurations(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{
			Timeouts: ServerTimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
		Scheduler: SchedulerConfig{
			TickInterval:  2,
			ShutdownGrace: 15,
		},
	}

	if got := cfg.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}
	if got := cfg.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}
	if got := cfg.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
	if got := cfg.GetTickInterval().Seconds(); got != 2 {
		t.Errorf("GetTickInterval() = %v, want 2", got)
	}
	if got := cfg.GetShutdownGrace().Seconds(); got != 15 {
		t.Errorf("GetShutdownGrace() = %v, want 15", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("TSPROVIDER_SERVER_HOST", "192.168.1.1")
	t.Setenv("TSPROVIDER_INFLUXDB_URL", "http://influx.example.com:8086")
	t.Setenv("TSPROVIDER_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("TSPROVIDER_DATABASE_PATH", "/custom/path.db")
	t.Setenv("TSPROVIDER_MQTT_HOST", "mqtt.example.com")
	t.Setenv("TSPROVIDER_MQTT_USERNAME", "testuser")
	t.Setenv("TSPROVIDER_MQTT_PASSWORD", "testpass")
	t.Setenv("TSPROVIDER_LOG_LEVEL", "debug")

	applyEnvOverrides(cfg)

	checks := []struct {
		field string
		got   string
		want  string
	}{
		{"Server.Host", cfg.Server.Host, "192.168.1.1"},
		{"InfluxDB.URL", cfg.InfluxDB.URL, "http://influx.example.com:8086"},
		{"InfluxDB.Token", cfg.InfluxDB.Token, "secret-token"},
		{"Database.Path", cfg.Database.Path, "/custom/path.db"},
		{"MQTT.Broker.Host", cfg.MQTT.Broker.Host, "mqtt.example.com"},
		{"MQTT.Auth.Username", cfg.MQTT.Auth.Username, "testuser"},
		{"MQTT.Auth.Password", cfg.MQTT.Auth.Password, "testpass"},
		{"Logging.Level", cfg.Logging.Level, "debug"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.field, c.got, c.want)
		}
	}
}
