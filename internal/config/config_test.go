// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML and TOML loading, defaults, env var expansion, and validation

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidYAML(t *testing.T) {
	path := writeConfig(t, "widget.yaml", `
service:
  endpoint: "http://faq.internal:5000"
  timeout: "3s"

server:
  http_addr: "0.0.0.0:9090"

widget:
  welcome_message: "Hello!"
  error_message: "Oops."
  no_match_message: "Nothing here."
  suggestion_prompt: "Pick one:"

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Service.Endpoint != "http://faq.internal:5000" {
		t.Errorf("Service.Endpoint = %q, want %q", cfg.Service.Endpoint, "http://faq.internal:5000")
	}
	if cfg.Service.Timeout != 3*time.Second {
		t.Errorf("Service.Timeout = %v, want %v", cfg.Service.Timeout, 3*time.Second)
	}
	if cfg.Server.HTTPAddr != "0.0.0.0:9090" {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "0.0.0.0:9090")
	}
	if cfg.Widget.SuggestionPrompt != "Pick one:" {
		t.Errorf("Widget.SuggestionPrompt = %q, want %q", cfg.Widget.SuggestionPrompt, "Pick one:")
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want debug/json", cfg.Logging)
	}

	texts := cfg.Widget.Texts()
	if texts.Welcome != "Hello!" || texts.ErrorNotice != "Oops." || texts.NoMatch != "Nothing here." {
		t.Errorf("Widget.Texts() = %+v", texts)
	}
}

func TestLoad_TOML(t *testing.T) {
	path := writeConfig(t, "widget.toml", `
[service]
endpoint = "https://faq.example.com"
timeout = "750ms"

[server]
http_addr = "127.0.0.1:7070"

[logging]
level = "warn"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Service.Endpoint != "https://faq.example.com" {
		t.Errorf("Service.Endpoint = %q", cfg.Service.Endpoint)
	}
	if cfg.Service.Timeout != 750*time.Millisecond {
		t.Errorf("Service.Timeout = %v, want 750ms", cfg.Service.Timeout)
	}
	if cfg.Server.HTTPAddr != "127.0.0.1:7070" {
		t.Errorf("Server.HTTPAddr = %q", cfg.Server.HTTPAddr)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
	// Untouched sections keep defaults
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format = %q, want default text", cfg.Logging.Format)
	}
	if cfg.Widget.NoMatchMessage != "Sorry, I couldn't find anything relevant." {
		t.Errorf("Widget.NoMatchMessage = %q, want default", cfg.Widget.NoMatchMessage)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "widget.yaml", `
service:
  endpoint: "http://localhost:5001"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	def := Default()
	if cfg.Service.Timeout != def.Service.Timeout {
		t.Errorf("Service.Timeout = %v, want default %v", cfg.Service.Timeout, def.Service.Timeout)
	}
	if cfg.Server.HTTPAddr != def.Server.HTTPAddr {
		t.Errorf("Server.HTTPAddr = %q, want default %q", cfg.Server.HTTPAddr, def.Server.HTTPAddr)
	}
	if cfg.Widget.WelcomeMessage != def.Widget.WelcomeMessage {
		t.Errorf("Widget.WelcomeMessage = %q, want default", cfg.Widget.WelcomeMessage)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_FAQ_ENDPOINT", "http://from-env:5000")
	os.Unsetenv("UNSET_VAR_FOR_TEST")

	path := writeConfig(t, "widget.yaml", `
service:
  endpoint: "${TEST_FAQ_ENDPOINT}"
widget:
  suggestion_prompt: "${UNSET_VAR_FOR_TEST}"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Service.Endpoint != "http://from-env:5000" {
		t.Errorf("Service.Endpoint = %q, want %q", cfg.Service.Endpoint, "http://from-env:5000")
	}
	if cfg.Widget.SuggestionPrompt != "" {
		t.Errorf("Widget.SuggestionPrompt = %q, want empty for unset var", cfg.Widget.SuggestionPrompt)
	}
}

func TestLoadDotEnv(t *testing.T) {
	t.Setenv("TEST_DOTENV_ENDPOINT", "")
	os.Unsetenv("TEST_DOTENV_ENDPOINT")
	t.Setenv("TEST_DOTENV_PRESET", "from-shell")

	envPath := writeConfig(t, ".env", "TEST_DOTENV_ENDPOINT=http://from-dotenv:5000\nTEST_DOTENV_PRESET=from-file\n")
	if err := LoadDotEnv(envPath); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}

	if got := os.Getenv("TEST_DOTENV_ENDPOINT"); got != "http://from-dotenv:5000" {
		t.Errorf("TEST_DOTENV_ENDPOINT = %q, want value from .env", got)
	}
	if got := os.Getenv("TEST_DOTENV_PRESET"); got != "from-shell" {
		t.Errorf("TEST_DOTENV_PRESET = %q, want existing value kept", got)
	}

	path := writeConfig(t, "widget.yaml", `
service:
  endpoint: "${TEST_DOTENV_ENDPOINT}"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Service.Endpoint != "http://from-dotenv:5000" {
		t.Errorf("Service.Endpoint = %q, want value from .env", cfg.Service.Endpoint)
	}

	if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("LoadDotEnv() on missing file error = %v, want nil", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/widget.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, found, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if found {
		t.Error("LoadOrDefault() reported a file that does not exist")
	}
	if cfg.Service.Endpoint != Default().Service.Endpoint {
		t.Errorf("Service.Endpoint = %q, want default", cfg.Service.Endpoint)
	}

	path := writeConfig(t, "widget.yaml", "logging:\n  level: \"loud\"\n")
	if _, _, err := LoadOrDefault(path); err == nil {
		t.Error("LoadOrDefault() should surface validation errors for existing files")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "widget.yaml", "service:\n  endpoint: [unclosed\n")

	if _, err := Load(path); err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := writeConfig(t, "widget.yaml", "service:\n  timeout: \"soon\"\n")

	_, err := Load(path)
	if err == nil {
		t.Fatal("Load() expected error for invalid duration, got nil")
	}
	if !strings.Contains(err.Error(), "timeout") {
		t.Errorf("error should mention timeout, got: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"missing endpoint", func(c *Config) { c.Service.Endpoint = "" }, "service.endpoint is required"},
		{"non-http endpoint", func(c *Config) { c.Service.Endpoint = "ftp://faq" }, "http(s) URL"},
		{"endpoint without host", func(c *Config) { c.Service.Endpoint = "http://" }, "http(s) URL"},
		{"zero timeout", func(c *Config) { c.Service.Timeout = 0 }, "service.timeout"},
		{"missing http addr", func(c *Config) { c.Server.HTTPAddr = "" }, "server.http_addr"},
		{"blank welcome", func(c *Config) { c.Widget.WelcomeMessage = "  " }, "welcome_message"},
		{"blank error", func(c *Config) { c.Widget.ErrorMessage = "" }, "error_message"},
		{"blank no-match", func(c *Config) { c.Widget.NoMatchMessage = "" }, "no_match_message"},
		{"bad level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want substring %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR_1", "value1")
	t.Setenv("TEST_VAR_2", "value2")

	tests := []struct {
		input string
		want  string
	}{
		{"no vars here", "no vars here"},
		{"${TEST_VAR_1}", "value1"},
		{"prefix ${TEST_VAR_1} suffix", "prefix value1 suffix"},
		{"${TEST_VAR_1} and ${TEST_VAR_2}", "value1 and value2"},
		{"${NONEXISTENT_VAR_XYZ}", ""},
		{"$TEST_VAR_1", "$TEST_VAR_1"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := expandEnvVars(tt.input); got != tt.want {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPath(t *testing.T) {
	t.Setenv("FAQ_WIDGET_CONFIG", "/etc/faq/widget.toml")
	if got := Path(); got != "/etc/faq/widget.toml" {
		t.Errorf("Path() = %q, want env override", got)
	}

	t.Setenv("FAQ_WIDGET_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := Path(); got != filepath.Join("/tmp/xdg", "faq-widget", "widget.yaml") {
		t.Errorf("Path() = %q, want XDG location", got)
	}
}

func TestString_RoundTrips(t *testing.T) {
	cfg := Default()
	cfg.Service.Endpoint = "http://roundtrip:5000"

	path := writeConfig(t, "widget.yaml", cfg.String())
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Service.Endpoint != "http://roundtrip:5000" {
		t.Errorf("Service.Endpoint = %q after round trip", loaded.Service.Endpoint)
	}
	if loaded.Service.Timeout != cfg.Service.Timeout {
		t.Errorf("Service.Timeout = %v after round trip, want %v", loaded.Service.Timeout, cfg.Service.Timeout)
	}
}
