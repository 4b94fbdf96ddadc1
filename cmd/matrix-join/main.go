// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Matrix-join logs in to a Matrix homeserver, finds a room in the public
// room directory by canonical alias, joins it, confirms the membership,
// and logs out.
//
// Configuration comes from a YAML or JSONC file (--config or
// MATRIX_JOIN_CONFIG), overridden by flags. With no file at all the
// built-in defaults target #JSinJena on matrix.org.
//
// Failures in the login/find/join sequence are logged and the process
// still exits 0, unless --strict-exit (or strict_exit in the config) is
// set, in which case it exits 1. Configuration and flag errors always
// exit non-zero.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/matrix-join/lib/config"
	"github.com/bureau-foundation/matrix-join/lib/version"
	"github.com/bureau-foundation/matrix-join/messaging"
)

const programName = "matrix-join"

func main() {
	if err := run(os.Args[1:]); err != nil {
		var exitCoder interface{ ExitCode() int }
		if errors.As(err, &exitCoder) {
			os.Exit(exitCoder.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	options, flagSet := newFlags()
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return &exitError{code: 2}
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", flagSet.Args())
	}

	if options.showVersion {
		version.Print(os.Stdout, programName)
		return nil
	}

	level, err := parseLogLevel(options.logLevel)
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, level)

	cfg, err := loadConfig(options.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	options.apply(flagSet, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	target, err := options.roomReference()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if timeout := cfg.TimeoutDuration(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	client, err := messaging.NewClient(messaging.ClientConfig{
		HomeserverURL: cfg.Homeserver,
		Logger:        logger,
		UserAgent:     version.UserAgent(programName),
	})
	if err != nil {
		return fmt.Errorf("creating matrix client: %w", err)
	}
	defer client.Close()

	credentials, err := readCredentials(cfg)
	if err != nil {
		return failure(cfg, logger, "reading credentials", err)
	}
	defer credentials.Close()

	if err := joinRoom(ctx, client, cfg, credentials, target, logger); err != nil {
		return failure(cfg, logger, "joining room", err)
	}
	return nil
}

// failure logs a sequence failure and decides the process outcome
// according to the exit policy.
func failure(cfg *config.Config, logger *slog.Logger, step string, err error) error {
	logger.Error(step+" failed", "error", err)
	if cfg.StrictExit {
		return &exitError{code: 1}
	}
	return nil
}

// loadConfig loads from an explicit path, then MATRIX_JOIN_CONFIG, and
// falls back to the defaults when neither is given.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	if os.Getenv(config.EnvironmentVariable) != "" {
		return config.Load()
	}
	return config.Default(), nil
}

// exitError carries a process exit code without an additional message;
// the failure has already been logged.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

func (e *exitError) ExitCode() int {
	return e.code
}
