/*
Copyright © 2025 Applied Computing Research Labs
SPDX-License-Identifier: MIT
*/

package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/acrlabs/skpack/pkg/packager"
	"github.com/acrlabs/skpack/pkg/target"
)

type generateCmdOptions struct {
	buildDir     string
	outputDir    string
	namespace    string
	kustomize    bool
	imageVersion string
	registry     string
	checksums    bool
}

func parseGenerateCmdOptions(cmd *cli.Command) *generateCmdOptions {
	return &generateCmdOptions{
		buildDir:     cmd.String("build-dir"),
		outputDir:    cmd.String("output"),
		namespace:    cmd.String("namespace"),
		kustomize:    cmd.Bool("kustomize"),
		imageVersion: cmd.String("image-version"),
		registry:     cmd.String("registry"),
		checksums:    cmd.Bool("checksums"),
	}
}

func generateCmd() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate packaged manifests for the simulation platform",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "build-dir",
				Aliases: []string{"b"},
				Value:   ".build",
				Usage:   "directory holding locally built image records",
				Sources: cli.EnvVars("BUILD_DIR"),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   ".",
				Usage:   "directory to write generated artifacts into",
			},
			&cli.StringFlag{
				Name:    "namespace",
				Aliases: []string{"n"},
				Value:   packager.DefaultNamespace,
				Usage:   "namespace the generated workloads target",
			},
			&cli.BoolFlag{
				Name:  "kustomize",
				Usage: "emit kustomize overlay trees instead of a single manifest stream",
			},
			&cli.StringFlag{
				Name:    "image-version",
				Usage:   "image tag version for release images (required with --kustomize)",
				Sources: cli.EnvVars("IMAGE_VERSION"),
			},
			&cli.StringFlag{
				Name:  "registry",
				Usage: "image registry prefix for release images",
			},
			&cli.BoolFlag{
				Name:  "checksums",
				Usage: "write a checksums.txt covering the generated files",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts := parseGenerateCmdOptions(cmd)

			mode := target.ModeDevGraph
			if opts.kustomize {
				mode = target.ModeReleaseKustomize
			}

			cfgOpts := []packager.ConfigOption{
				packager.WithMode(mode),
				packager.WithBuildDir(opts.buildDir),
				packager.WithOutputDir(opts.outputDir),
				packager.WithNamespace(opts.namespace),
				packager.WithImageVersion(opts.imageVersion),
				packager.WithChecksums(opts.checksums),
				packager.WithVersion(version),
			}
			if opts.registry != "" {
				cfgOpts = append(cfgOpts, packager.WithRegistryPrefix(opts.registry))
			}

			cfg, err := packager.NewConfig(cfgOpts...)
			if err != nil {
				return err
			}

			p, err := packager.New(cfg)
			if err != nil {
				return err
			}

			out, err := p.Run(ctx)
			if err != nil {
				return err
			}

			// subcommands get their own default Writer; print through
			// the root so a configured writer is honored
			fmt.Fprintln(cmd.Root().Writer, out.Summary())
			return nil
		},
	}
}
