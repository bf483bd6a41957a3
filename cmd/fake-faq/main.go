// ABOUTME: Minimal fake FAQ answering service for local runs and E2E testing.
// ABOUTME: Usage: fake-faq [-addr localhost:5000] [-fixture faqs.yaml] [-watch] [-delay 0s]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/2389/faq-widget/internal/fakefaq"
)

func main() {
	addr := flag.String("addr", "localhost:5000", "HTTP listen address")
	fixturePath := flag.String("fixture", "", "YAML fixture file (built-in sample when empty)")
	delay := flag.Duration("delay", 0, "Artificial latency added to every /ask")
	threshold := flag.Float64("threshold", fakefaq.DefaultThreshold, "Minimum match score for catalogue search")
	watch := flag.Bool("watch", false, "Reload the fixture file when it changes")
	verbose := flag.Bool("v", false, "Log every request")
	flag.Parse()

	if err := run(*addr, *fixturePath, *delay, *threshold, *watch, *verbose); err != nil {
		log.Fatal(err)
	}
}

func run(addr, fixturePath string, delay time.Duration, threshold float64, watch, verbose bool) error {
	fixture := fakefaq.DefaultFixture()
	if fixturePath != "" {
		f, err := fakefaq.LoadFixture(fixturePath)
		if err != nil {
			return err
		}
		fixture = f
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	svc := fakefaq.NewServer(fixture, fakefaq.Options{Delay: delay, Threshold: threshold}, logger)
	if watch {
		if fixturePath == "" {
			return errors.New("-watch needs -fixture")
		}
		if err := fakefaq.WatchFixture(ctx, svc, fixturePath, logger); err != nil {
			return err
		}
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           svc.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	fmt.Fprintf(os.Stderr, "fake FAQ service on http://%s (%d entries)\n", addr, len(fixture.FAQs))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serving: %w", err)
	}
	return nil
}
