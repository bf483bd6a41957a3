// ABOUTME: Entry point for the faq-widget binary
// ABOUTME: Serves the web widget, runs it in a terminal, or writes a default config

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"

	"github.com/2389/faq-widget/internal/answer"
	"github.com/2389/faq-widget/internal/config"
	"github.com/2389/faq-widget/internal/conversation"
	"github.com/2389/faq-widget/internal/terminal"
	"github.com/2389/faq-widget/internal/webwidget"
)

// version is set by goreleaser at build time.
var version = "dev"

const banner = `
  __                        _     _            _
 / _| __ _  __ _      __ __(_) __| | __ _  ___| |_
| |_ / _' |/ _' |_____\ V  V / |/ _' |/ _' |/ _ \ __|
|  _| (_| | (_| |_____|\_/\_/| | (_| | (_| |  __/ |_
|_|  \__,_|\__, |            |_|\__,_|\__, |\___|\__|
              |_|                     |___/
`

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: faq-widget <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve      Serve the web widget")
		fmt.Println("  chat       Run the widget in this terminal")
		fmt.Println("  init       Write a default config file")
		fmt.Println("  version    Print the version")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "chat":
		err = runChat(ctx)
	case "init":
		err = runInit()
	case "version":
		fmt.Println(version)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, string, bool, error) {
	envFile := os.Getenv("FAQ_WIDGET_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, "", false, err
	}

	configPath := config.Path()
	cfg, found, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, configPath, false, fmt.Errorf("loading config: %w", err)
	}
	return cfg, configPath, found, nil
}

// newController wires the answer client and a controller from cfg.
func newController(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*conversation.Controller, *answer.Client) {
	client := answer.NewClient(cfg.Service.Endpoint, cfg.Service.Timeout, logger)

	ctrl := conversation.NewController(client, cfg.Widget.Texts(), logger)
	ctrl.SetTimeout(cfg.Service.Timeout)
	ctrl.SetBaseContext(ctx)
	return ctrl, client
}

func runServe(ctx context.Context) error {
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, configPath, found, err := loadConfig()
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Logging, os.Stdout)

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Print("    ▶ ")
	fmt.Printf("Config:    %s", configPath)
	if !found {
		yellow.Print(" (not found, using defaults)")
	}
	fmt.Println()
	green.Print("    ▶ ")
	fmt.Printf("Service:   %s (timeout %s)\n", cfg.Service.Endpoint, cfg.Service.Timeout)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:      http://%s\n", cfg.Server.HTTPAddr)
	fmt.Println()

	logger.Info("starting faq-widget",
		"config", configPath,
		"endpoint", cfg.Service.Endpoint,
		"http_addr", cfg.Server.HTTPAddr,
	)

	events := conversation.NewEventBroadcaster(logger)
	defer events.Close()

	ctrl, _ := newController(ctx, cfg, logger)
	ctrl.SetBroadcaster(events)

	srv := webwidget.New(ctrl, events, webwidget.Options{
		SuggestionPrompt: cfg.Widget.SuggestionPrompt,
	}, logger)
	defer srv.Close()

	return srv.ListenAndServe(ctx, cfg.Server.HTTPAddr)
}

func runChat(ctx context.Context) error {
	cfg, _, _, err := loadConfig()
	if err != nil {
		return err
	}

	// Logs go to stderr so they do not interleave with the transcript.
	logCfg := cfg.Logging
	if logCfg.Level == "info" {
		logCfg.Level = "warn"
	}
	logger := setupLogger(logCfg, os.Stderr)

	ctrl, client := newController(ctx, cfg, logger)

	session := terminal.NewSession(ctrl, client, os.Stdin, os.Stdout, terminal.Options{
		SuggestionPrompt: cfg.Widget.SuggestionPrompt,
		Color:            !color.NoColor,
	}, logger)

	if err := session.Run(ctx); err != nil {
		return err
	}

	fmt.Println("\nGoodbye!")
	return nil
}

func runInit() error {
	configPath := config.Path()

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	if _, err := os.Stat(configPath); err == nil {
		yellow.Printf("Config already exists at %s\n", configPath)
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(config.Default().String()), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	green.Print("✓ ")
	fmt.Printf("Wrote default config to %s\n", configPath)
	return nil
}
