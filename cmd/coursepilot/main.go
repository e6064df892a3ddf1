// Package main runs the coursepilot workflow: it opens an authenticated
// browsing session against the configured e-learning platform, walks every
// enrolled course, and plays each unfinished lecture video to completion.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/entrhq/coursepilot/pkg/browser"
	"github.com/entrhq/coursepilot/pkg/config"
	"github.com/entrhq/coursepilot/pkg/lms"
	"github.com/entrhq/coursepilot/pkg/logger"
)

const version = "0.1.0"

// Exit codes, one per error category.
const (
	exitOK            = 0
	exitConfiguration = 1
	exitAuth          = 2
	exitMissingField  = 3
	exitNavTimeout    = 4
	exitRuntime       = 5
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath  string
		headless    bool
		debug       bool
		showVersion bool
	)
	flag.StringVar(&configPath, "config", "", "Path to YAML config file (optional)")
	flag.BoolVar(&headless, "headless", false, "Run the browser without a window")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&showVersion, "version", false, "Show version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("coursepilot v%s\n", version)
		return exitOK
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "coursepilot: %v\n", err)
		return exitCode(err)
	}
	if headless {
		cfg.Browser.Headless = true
	}

	log := logger.New(logger.Options{Debug: debug, File: cfg.LogFile})
	defer log.Sync()
	log = log.With(zap.String("run", uuid.NewString()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		// After the first signal, restore default handling so a second
		// one kills the process even if teardown is stuck.
		<-ctx.Done()
		stop()
	}()

	if err := runWorkflow(ctx, cfg, log); err != nil {
		log.Error("run failed", zap.Error(err))
		return exitCode(err)
	}
	log.Info("run complete")
	return exitOK
}

func runWorkflow(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	manager := browser.NewManager()
	if err := manager.Initialize(); err != nil {
		return err
	}
	defer func() {
		if err := manager.Shutdown(); err != nil {
			log.Warn("browser shutdown failed", zap.Error(err))
		}
	}()

	// Playwright waits don't take a context, so cancellation has to tear
	// the session down underneath them to unblock the runner.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			if err := manager.Shutdown(); err != nil {
				log.Warn("browser shutdown failed", zap.Error(err))
			}
		case <-done:
		}
	}()

	session, err := manager.OpenSession(browser.Options{
		Headless:     cfg.Browser.Headless,
		ProfileDir:   cfg.Browser.ProfileDir,
		SlowMo:       cfg.Browser.SlowMoMillis,
		PollInterval: cfg.Timeouts.PollInterval,
	})
	if err != nil {
		return err
	}

	runner, err := lms.NewRunner(session, cfg, log)
	if err != nil {
		return err
	}
	return runner.Run(ctx)
}

// exitCode maps an error onto its category's exit code.
func exitCode(err error) int {
	var (
		configErr    *config.ConfigurationError
		missingField *lms.MissingFieldError
		navTimeout   *lms.NavigationTimeoutError
	)
	switch {
	case errors.As(err, &configErr):
		return exitConfiguration
	case errors.Is(err, lms.ErrAuthenticationFailed):
		return exitAuth
	case errors.As(err, &missingField):
		return exitMissingField
	case errors.As(err, &navTimeout):
		return exitNavTimeout
	default:
		return exitRuntime
	}
}
