/*
Copyright © 2025 Applied Computing Research Labs
SPDX-License-Identifier: MIT
*/

// Package cli defines the skpack command line surface. All environment
// reads happen here, at the boundary; values are passed down as explicit
// configuration.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/acrlabs/skpack/pkg/logging"
)

const name = "skpack"

var (
	// overridden during build with ldflags
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// New builds the root command.
func New() *cli.Command {
	return &cli.Command{
		Name:    name,
		Version: version,
		Usage:   "Package SimKube deployment manifests",
		Description: fmt.Sprintf(`skpack - SimKube manifest packaging

Version: %s
Commit:  %s
Built:   %s

Assembles the Kubernetes manifests for the simulation platform components
and packages them either as a single dependency-ordered stream for local
development or as kustomize overlay trees for release.`, version, commit, date),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug, info, warn, error; default from LOG_LEVEL, else info)",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if level := cmd.String("log-level"); level != "" {
				logging.SetDefaultStructuredLoggerWithLevel(name, version, level)
			} else {
				logging.SetDefaultStructuredLogger(name, version)
			}
			slog.Debug("starting",
				"name", name,
				"version", version,
				"commit", commit,
				"date", date,
			)
			return ctx, nil
		},
		Commands: []*cli.Command{
			generateCmd(),
		},
	}
}

// Execute runs the root command. Called by main.main(); exits non-zero on
// any unhandled error.
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	if err := New().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
