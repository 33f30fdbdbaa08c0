package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
mqtt:
  broker:
    host: "broker.local"
    port: 1883
    client_id: "test-client"
  qos: 1
discovery:
  domains: ["homie", "factory"]
  queries_dir: "/etc/homiectl/queries"
history:
  enabled: true
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Host != "broker.local" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "broker.local")
	}
	if len(cfg.Discovery.Domains) != 2 || cfg.Discovery.Domains[1] != "factory" {
		t.Errorf("Discovery.Domains = %v", cfg.Discovery.Domains)
	}
	if cfg.History.Path != "/tmp/test.db" {
		t.Errorf("History.Path = %q, want %q", cfg.History.Path, "/tmp/test.db")
	}
	// Unset fields keep their defaults.
	if cfg.Discovery.EventBuffer != 256 {
		t.Errorf("Discovery.EventBuffer = %d, want default 256", cfg.Discovery.EventBuffer)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
mqtt:
  broker:
    host: ""
  qos: 1
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for empty broker host, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config { return defaultConfig() }

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid defaults",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "invalid QoS",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name:    "missing broker host",
			mutate:  func(c *Config) { c.MQTT.Broker.Host = "" },
			wantErr: true,
		},
		{
			name:    "missing client id",
			mutate:  func(c *Config) { c.MQTT.Broker.ClientID = "" },
			wantErr: true,
		},
		{
			name:    "no discovery domains",
			mutate:  func(c *Config) { c.Discovery.Domains = nil },
			wantErr: true,
		},
		{
			name:    "zero event buffer",
			mutate:  func(c *Config) { c.Discovery.EventBuffer = 0 },
			wantErr: true,
		},
		{
			name: "history enabled without path",
			mutate: func(c *Config) {
				c.History.Enabled = true
				c.History.Path = ""
			},
			wantErr: true,
		},
		{
			name: "influxdb enabled without token",
			mutate: func(c *Config) {
				c.InfluxDB.Enabled = true
				c.InfluxDB.URL = "http://localhost:8086"
				c.InfluxDB.Token = ""
			},
			wantErr: true,
		},
		{
			name: "influxdb enabled with credentials",
			mutate: func(c *Config) {
				c.InfluxDB.Enabled = true
				c.InfluxDB.URL = "http://localhost:8086"
				c.InfluxDB.Token = "token"
			},
			wantErr: false,
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

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("HOMIECTL_MQTT_HOST", "mqtt.example.com")
	t.Setenv("HOMIECTL_MQTT_USERNAME", "testuser")
	t.Setenv("HOMIECTL_MQTT_PASSWORD", "testpass")
	t.Setenv("HOMIECTL_HISTORY_PATH", "/custom/path.db")
	t.Setenv("HOMIECTL_INFLUXDB_TOKEN", "secret-token")

	applyEnvOverrides(cfg)

	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}
	if cfg.MQTT.Auth.Username != "testuser" {
		t.Errorf("MQTT.Auth.Username = %q, want %q", cfg.MQTT.Auth.Username, "testuser")
	}
	if cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth.Password = %q, want %q", cfg.MQTT.Auth.Password, "testpass")
	}
	if cfg.History.Path != "/custom/path.db" {
		t.Errorf("History.Path = %q, want %q", cfg.History.Path, "/custom/path.db")
	}
	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if len(cfg.Discovery.Domains) != 1 || cfg.Discovery.Domains[0] != "homie" {
		t.Errorf("defaultConfig Discovery.Domains = %v", cfg.Discovery.Domains)
	}
	if cfg.GetEventTimeout().Seconds() != 300 {
		t.Errorf("GetEventTimeout = %v, want 300s", cfg.GetEventTimeout())
	}
}
