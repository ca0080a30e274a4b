package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func assertStringEqual(t *testing.T, name, got, want string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %q, want %q", name, got, want)
	}
}

func assertIntEqual(t *testing.T, name string, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %d, want %d", name, got, want)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, "service:\n  name: cro-engine\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	assertIntEqual(t, "service.port", cfg.Service.Port, 8096)
	assertStringEqual(t, "redis.address", cfg.Redis.Address, "localhost:6379")
	assertStringEqual(t, "database.host", cfg.Database.Host, "localhost")
	assertIntEqual(t, "database.port", cfg.Database.Port, 5432)
	assertStringEqual(t, "logging.level", cfg.Logging.Level, "info")
	assertStringEqual(t, "experiments.path", cfg.Experiments.Path, "experiments.yml")
	assertIntEqual(t, "session.max_conversion_log", cfg.Session.MaxConversionLog, 50)

	if cfg.Session.TTL != 720*time.Hour {
		t.Errorf("session.ttl: got %v, want %v", cfg.Session.TTL, 720*time.Hour)
	}
	if cfg.Archive.FlushInterval != time.Second {
		t.Errorf("archive.flush_interval: got %v, want %v", cfg.Archive.FlushInterval, time.Second)
	}
}

func TestLoadReadsYAMLValues(t *testing.T) {
	path := writeConfigFile(t, `
service:
  name: cro-engine
  port: 9090
session:
  ttl: 48h
  max_conversion_log: 10
sinks:
  - name: crm-webhook
    type: http
    url: https://crm.example.com/hooks/events
  - name: debug
    type: log
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	assertIntEqual(t, "service.port", cfg.Service.Port, 9090)
	assertIntEqual(t, "session.max_conversion_log", cfg.Session.MaxConversionLog, 10)
	if cfg.Session.TTL != 48*time.Hour {
		t.Errorf("session.ttl: got %v, want 48h", cfg.Session.TTL)
	}

	if len(cfg.Sinks) != 2 {
		t.Fatalf("sinks: got %d, want 2", len(cfg.Sinks))
	}
	assertStringEqual(t, "sinks[0].name", cfg.Sinks[0].Name, "crm-webhook")
	if cfg.Sinks[0].Timeout != 5*time.Second {
		t.Errorf("sinks[0].timeout default: got %v, want 5s", cfg.Sinks[0].Timeout)
	}
}

func TestLoadEnvOverridesWin(t *testing.T) {
	t.Setenv("CRO_ENGINE_PORT", "7070")
	t.Setenv("REDIS_ADDRESS", "redis.internal:6380")
	t.Setenv("CRO_SESSION_TTL", "24h")

	path := writeConfigFile(t, "service:\n  port: 9090\nredis:\n  address: localhost:6379\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	assertIntEqual(t, "service.port", cfg.Service.Port, 7070)
	assertStringEqual(t, "redis.address", cfg.Redis.Address, "redis.internal:6380")
	if cfg.Session.TTL != 24*time.Hour {
		t.Errorf("session.ttl: got %v, want 24h", cfg.Session.TTL)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestDatabaseDSN(t *testing.T) {
	db := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "cro",
		Password: "secret",
		Database: "cro_engine",
		SSLMode:  "require",
	}

	want := "host=db.internal port=5433 user=cro password=secret dbname=cro_engine sslmode=require"
	assertStringEqual(t, "dsn", db.DSN(), want)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		setDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:   "valid defaults",
			mutate: func(*Config) {},
		},
		{
			name:      "port out of range",
			mutate:    func(c *Config) { c.Service.Port = 70000 },
			wantField: "service.port",
		},
		{
			name:      "missing redis address",
			mutate:    func(c *Config) { c.Redis.Address = "" },
			wantField: "redis.address",
		},
		{
			name:      "negative session ttl",
			mutate:    func(c *Config) { c.Session.TTL = -time.Hour },
			wantField: "session.ttl",
		},
		{
			name: "sink without name",
			mutate: func(c *Config) {
				c.Sinks = []SinkConfig{{Type: "log"}}
			},
			wantField: "sinks[0].name",
		},
		{
			name: "http sink without url",
			mutate: func(c *Config) {
				c.Sinks = []SinkConfig{{Name: "crm", Type: "http"}}
			},
			wantField: "sinks[0].url",
		},
		{
			name: "unknown sink type",
			mutate: func(c *Config) {
				c.Sinks = []SinkConfig{{Name: "crm", Type: "kafka"}}
			},
			wantField: "sinks[0].type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Validate: unexpected error %v", err)
				}
				return
			}

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			assertStringEqual(t, "field", verr.Field, tt.wantField)
		})
	}
}
