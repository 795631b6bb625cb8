package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	_ = os.Unsetenv("WORKLOG_DB_DRIVER")
	_ = os.Unsetenv("WORKLOG_GRAMMAR")
	_ = os.Unsetenv("WORKLOG_HTTP_PORT")
	_ = os.Setenv("WORKLOG_TELEGRAM_TOKEN", "test-token")
	defer func() { _ = os.Unsetenv("WORKLOG_TELEGRAM_TOKEN") }()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.Database.Driver != DriverSQLite || cfg.Database.Path != "./worklog_bot.db" {
		t.Fatalf("unexpected default database config: %+v", cfg.Database)
	}
	if cfg.Dispatch.Grammar != GrammarStrict {
		t.Fatalf("unexpected default grammar: %q", cfg.Dispatch.Grammar)
	}
	if cfg.Export.Mode != ExportModeNoop || cfg.Export.TimeoutSeconds != 10 {
		t.Fatalf("unexpected default export config: %+v", cfg.Export)
	}
	if cfg.Scheduler.TickSeconds != 60 {
		t.Fatalf("unexpected default tick: %d", cfg.Scheduler.TickSeconds)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("unexpected default log level: %q", cfg.Logging.Level)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	_ = os.Setenv("WORKLOG_TELEGRAM_TOKEN", "test-token")
	_ = os.Setenv("WORKLOG_GRAMMAR", "legacy")
	_ = os.Setenv("WORKLOG_DB_DRIVER", "memory")
	defer func() {
		_ = os.Unsetenv("WORKLOG_TELEGRAM_TOKEN")
		_ = os.Unsetenv("WORKLOG_GRAMMAR")
		_ = os.Unsetenv("WORKLOG_DB_DRIVER")
	}()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.Dispatch.Grammar != GrammarLegacy {
		t.Fatalf("grammar env override failed, got %q", cfg.Dispatch.Grammar)
	}
	if cfg.Database.Driver != DriverMemory {
		t.Fatalf("driver env override failed, got %q", cfg.Database.Driver)
	}
}

func TestLoad_YAMLFileWithEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
telegram:
  token: file-token
http:
  port: 9090
dispatch:
  grammar: legacy
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	_ = os.Setenv("WORKLOG_GRAMMAR", "strict")
	defer func() { _ = os.Unsetenv("WORKLOG_GRAMMAR") }()

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("config load: %v", err)
	}
	if cfg.Telegram.Token != "file-token" {
		t.Fatalf("file value not applied, got token %q", cfg.Telegram.Token)
	}
	if cfg.HTTP.Port != 9090 {
		t.Fatalf("file value not applied, got port %d", cfg.HTTP.Port)
	}
	if cfg.Dispatch.Grammar != GrammarStrict {
		t.Fatalf("env should win over file, got grammar %q", cfg.Dispatch.Grammar)
	}
}

func TestNormalize_Rejects(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Database.Driver = "oracle" }},
		{"postgres without dsn", func(c *Config) { c.Database.Driver = DriverPostgres }},
		{"unknown grammar", func(c *Config) { c.Dispatch.Grammar = "fuzzy" }},
		{"webhook export without url", func(c *Config) { c.Export.Mode = ExportModeWebhook }},
		{"no transport", func(c *Config) { c.Telegram.Token = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.Telegram.Token = "test-token"
			tc.mut(cfg)
			if err := Normalize(cfg); err == nil {
				t.Fatalf("expected Normalize to fail")
			}
		})
	}
}
