package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeConfigFile writes a config file to a temp dir and returns its path.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

const validConfig = `
api:
  host: 127.0.0.1
  port: 9090
platform:
  base_url: https://platform.internal
  token: test-token-123
telegram:
  applications:
    "1000000021":
      bot_token: bot-abc
      channel_id: "1234567"
database:
  path: ./test.db
logging:
  level: debug
  format: text
`

func TestLoadValidConfig(t *testing.T) {
	path := writeConfigFile(t, validConfig)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("API.Host = %q, want 127.0.0.1", cfg.API.Host)
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port = %d, want 9090", cfg.API.Port)
	}
	if cfg.Platform.BaseURL != "https://platform.internal" {
		t.Errorf("Platform.BaseURL = %q", cfg.Platform.BaseURL)
	}

	// Defaults should fill unspecified values.
	if cfg.Platform.ReadTimeout != 90 {
		t.Errorf("Platform.ReadTimeout = %d, want default 90", cfg.Platform.ReadTimeout)
	}
	if cfg.Platform.BatchTimeout != 180 {
		t.Errorf("Platform.BatchTimeout = %d, want default 180", cfg.Platform.BatchTimeout)
	}
	if cfg.Stock.AlertThreshold != 3 {
		t.Errorf("Stock.AlertThreshold = %d, want default 3", cfg.Stock.AlertThreshold)
	}

	app, ok := cfg.Telegram.Applications["1000000021"]
	if !ok {
		t.Fatal("telegram application 1000000021 not loaded")
	}
	if app.BotToken != "bot-abc" || app.ChannelID != "1234567" {
		t.Errorf("telegram app = %+v", app)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Load() with missing file should error")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "api: [not a mapping")
	if _, err := Load(path); err == nil {
		t.Fatal("Load() with invalid YAML should error")
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{
			name:    "missing platform base URL",
			mutate:  func(c *Config) { c.Platform.BaseURL = "" },
			wantMsg: "platform.base_url",
		},
		{
			name:    "missing platform token",
			mutate:  func(c *Config) { c.Platform.Token = "" },
			wantMsg: "platform.token",
		},
		{
			name:    "invalid qos",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantMsg: "mqtt.qos",
		},
		{
			name:    "invalid port",
			mutate:  func(c *Config) { c.API.Port = 0 },
			wantMsg: "api.port",
		},
		{
			name:    "negative alert threshold",
			mutate:  func(c *Config) { c.Stock.AlertThreshold = -1 },
			wantMsg: "stock.alert_threshold",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Platform.BaseURL = "https://platform.internal"
			cfg.Platform.Token = "tok"
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() should error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Validate() = %v, want message containing %q", err, tt.wantMsg)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VENDHUB_PLATFORM_TOKEN", "env-token")
	t.Setenv("VENDHUB_DATABASE_PATH", "/tmp/override.db")

	path := writeConfigFile(t, validConfig)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Platform.Token != "env-token" {
		t.Errorf("Platform.Token = %q, want env-token", cfg.Platform.Token)
	}
	if cfg.Database.Path != "/tmp/override.db" {
		t.Errorf("Database.Path = %q, want /tmp/override.db", cfg.Database.Path)
	}
}
