// ABOUTME: Configuration loading and parsing for faq-widget
// ABOUTME: Supports YAML or TOML files with environment variable expansion and duration parsing

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/2389/faq-widget/internal/conversation"
)

// Config represents the complete faq-widget configuration
type Config struct {
	Service ServiceConfig `yaml:"service" toml:"service"`
	Server  ServerConfig  `yaml:"server" toml:"server"`
	Widget  WidgetConfig  `yaml:"widget" toml:"widget"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
}

// ServiceConfig points at the remote FAQ answering service
type ServiceConfig struct {
	Endpoint string        `yaml:"endpoint" toml:"endpoint"`
	Timeout  time.Duration `yaml:"-" toml:"-"`

	// Raw string value for unmarshaling
	TimeoutRaw string `yaml:"timeout" toml:"timeout"`
}

// ServerConfig holds the web widget listen address
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr" toml:"http_addr"`
}

// WidgetConfig holds the fixed lines the widget shows
type WidgetConfig struct {
	WelcomeMessage   string `yaml:"welcome_message" toml:"welcome_message"`
	ErrorMessage     string `yaml:"error_message" toml:"error_message"`
	NoMatchMessage   string `yaml:"no_match_message" toml:"no_match_message"`
	SuggestionPrompt string `yaml:"suggestion_prompt" toml:"suggestion_prompt"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

// Texts converts the widget wording into controller texts.
func (w WidgetConfig) Texts() conversation.Texts {
	return conversation.Texts{
		Welcome:     w.WelcomeMessage,
		ErrorNotice: w.ErrorMessage,
		NoMatch:     w.NoMatchMessage,
	}
}

// Default returns a configuration that works against a local FAQ service.
func Default() *Config {
	texts := conversation.DefaultTexts()
	return &Config{
		Service: ServiceConfig{
			Endpoint:   "http://localhost:5000",
			Timeout:    10 * time.Second,
			TimeoutRaw: "10s",
		},
		Server: ServerConfig{
			HTTPAddr: "127.0.0.1:8080",
		},
		Widget: WidgetConfig{
			WelcomeMessage:   texts.Welcome,
			ErrorMessage:     texts.ErrorNotice,
			NoMatchMessage:   texts.NoMatch,
			SuggestionPrompt: "Did you mean one of these?",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Files ending in .toml are decoded as TOML, everything else as YAML.
// Environment variables in the format ${VAR_NAME} are expanded.
// Values missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expandedData := expandEnvVars(string(data))

	cfg := Default()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expandedData, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expandedData), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := parseDurations(cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path, or returns Default when the file does not exist.
// The boolean reports whether a file was read.
func LoadOrDefault(path string) (*Config, bool, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

// Path returns the config file location.
// Priority: FAQ_WIDGET_CONFIG env var > XDG_CONFIG_HOME/faq-widget/widget.yaml > ~/.config/faq-widget/widget.yaml
func Path() string {
	if envPath := os.Getenv("FAQ_WIDGET_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "widget.yaml"
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "faq-widget", "widget.yaml")
}

// LoadDotEnv loads KEY=value pairs from a .env file into the process
// environment so that ${VAR} references in the config can use them.
// Variables already set are not overridden. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Service.Endpoint == "" {
		return fmt.Errorf("service.endpoint is required")
	}
	u, err := url.Parse(c.Service.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("service.endpoint must be an http(s) URL, got %q", c.Service.Endpoint)
	}

	if c.Service.Timeout <= 0 {
		return fmt.Errorf("service.timeout must be positive")
	}

	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}

	if strings.TrimSpace(c.Widget.WelcomeMessage) == "" {
		return fmt.Errorf("widget.welcome_message cannot be empty")
	}
	if strings.TrimSpace(c.Widget.ErrorMessage) == "" {
		return fmt.Errorf("widget.error_message cannot be empty")
	}
	if strings.TrimSpace(c.Widget.NoMatchMessage) == "" {
		return fmt.Errorf("widget.no_match_message cannot be empty")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	if cfg.Service.TimeoutRaw != "" {
		d, err := time.ParseDuration(cfg.Service.TimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing timeout %q: %w", cfg.Service.TimeoutRaw, err)
		}
		cfg.Service.Timeout = d
	}
	return nil
}

// String renders the configuration as YAML, as written by `faq-widget init`.
func (c *Config) String() string {
	out, err := yaml.Marshal(c)
	if err != nil {
		return ""
	}
	return string(out)
}
