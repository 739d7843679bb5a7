package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"DATA_DIR", "PROVIDER",
		"SES_REGION", "SES_ACCESS_KEY_ID", "SES_SECRET_ACCESS_KEY", "SES_SENDER",
		"LOG_LEVEL", "LOG_FILE",
	}
	for _, env := range envVars {
		t.Setenv(env, "")
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasSuffix(cfg.DataDir, defaultDataDirName) {
		t.Errorf("DataDir: got %q, want suffix %q", cfg.DataDir, defaultDataDirName)
	}
	if cfg.Provider != "smtp" {
		t.Errorf("Provider: got %q, want %q", cfg.Provider, "smtp")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.File != "" {
		t.Errorf("Logging.File: got %q, want empty", cfg.Logging.File)
	}
	if cfg.SES.Region != "" {
		t.Errorf("SES.Region: got %q, want empty", cfg.SES.Region)
	}
}

func TestLoad_EnvVarOverrides(t *testing.T) {
	t.Setenv("DATA_DIR", "/var/lib/mailer")
	t.Setenv("PROVIDER", "SES")
	t.Setenv("SES_REGION", "eu-west-1")
	t.Setenv("SES_ACCESS_KEY_ID", "AKIA123")
	t.Setenv("SES_SECRET_ACCESS_KEY", "secret456")
	t.Setenv("SES_SENDER", "noreply@example.com")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FILE", "/tmp/mailer.log")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DataDir != "/var/lib/mailer" {
		t.Errorf("DataDir: got %q, want %q", cfg.DataDir, "/var/lib/mailer")
	}
	if cfg.Provider != "ses" {
		t.Errorf("Provider: got %q, want %q (lowercased)", cfg.Provider, "ses")
	}
	if cfg.SES.Region != "eu-west-1" {
		t.Errorf("SES.Region: got %q, want %q", cfg.SES.Region, "eu-west-1")
	}
	if cfg.SES.AccessKeyID != "AKIA123" {
		t.Errorf("SES.AccessKeyID: got %q, want %q", cfg.SES.AccessKeyID, "AKIA123")
	}
	if cfg.SES.SecretAccessKey != "secret456" {
		t.Errorf("SES.SecretAccessKey: got %q, want %q", cfg.SES.SecretAccessKey, "secret456")
	}
	if cfg.SES.Sender != "noreply@example.com" {
		t.Errorf("SES.Sender: got %q, want %q", cfg.SES.Sender, "noreply@example.com")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level: got %q, want %q (lowercased)", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.File != "/tmp/mailer.log" {
		t.Errorf("Logging.File: got %q, want %q", cfg.Logging.File, "/tmp/mailer.log")
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)

	yamlContent := `
data_dir: /srv/mailer-data
provider: stdout
ses:
  region: us-east-1
  sender: file@example.com
logging:
  level: warn
  file: /var/log/mailer.log
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yamlContent), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.DataDir != "/srv/mailer-data" {
		t.Errorf("DataDir: got %q, want %q", cfg.DataDir, "/srv/mailer-data")
	}
	if cfg.Provider != "stdout" {
		t.Errorf("Provider: got %q, want %q", cfg.Provider, "stdout")
	}
	if cfg.SES.Region != "us-east-1" {
		t.Errorf("SES.Region: got %q, want %q", cfg.SES.Region, "us-east-1")
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "warn")
	}
	if cfg.Logging.File != "/var/log/mailer.log" {
		t.Errorf("Logging.File: got %q, want %q", cfg.Logging.File, "/var/log/mailer.log")
	}
}

func TestLoadFromFile_EnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	t.Setenv("PROVIDER", "ses")
	t.Setenv("LOG_LEVEL", "error")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("provider: stdout\nlogging:\n  level: debug\n"), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Provider != "ses" {
		t.Errorf("Provider: got %q, want %q (env wins)", cfg.Provider, "ses")
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level: got %q, want %q (env wins)", cfg.Logging.Level, "error")
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	if _, err := LoadFromFile("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("provider: [unterminated"), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestSESConfigured(t *testing.T) {
	tests := []struct {
		name string
		ses  SESConfig
		want bool
	}{
		{"empty", SESConfig{}, false},
		{"region only", SESConfig{Region: "us-east-1"}, false},
		{"sender only", SESConfig{Sender: "a@example.com"}, false},
		{"region and sender", SESConfig{Region: "us-east-1", Sender: "a@example.com"}, true},
		{
			"full credentials",
			SESConfig{Region: "us-east-1", AccessKeyID: "k", SecretAccessKey: "s", Sender: "a@example.com"},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{SES: tt.ses}
			if got := cfg.SESConfigured(); got != tt.want {
				t.Errorf("SESConfigured() = %v, want %v", got, tt.want)
			}
		})
	}
}
