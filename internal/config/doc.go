// Package config handles configuration loading for faq-widget.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from FAQ_WIDGET_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/faq-widget/widget.yaml
//  3. ~/.config/faq-widget/widget.yaml
//
// A missing file is not an error for LoadOrDefault; every value has a default.
// Files ending in .toml are parsed as TOML, anything else as YAML.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	service:
//	  endpoint: "${FAQ_SERVICE_URL}"
//
// Before the config is read, the binary loads a .env file (FAQ_WIDGET_ENV_FILE,
// or .env in the working directory) with LoadDotEnv. Variables already present
// in the environment win over the file.
//
// # Configuration Sections
//
//	service:
//	  endpoint: "http://localhost:5000"   # FAQ answering service
//	  timeout: "10s"                      # per-request bound
//
//	server:
//	  http_addr: "127.0.0.1:8080"         # web widget
//
//	widget:
//	  welcome_message: "..."
//	  error_message: "..."
//	  no_match_message: "Sorry, I couldn't find anything relevant."
//	  suggestion_prompt: "Did you mean one of these?"
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
package config
