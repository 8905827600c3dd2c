// Copyright (c) Peter Newcomb. All rights reserved.
// Licensed under the MIT License.

// Package cmd implements the projsim command-line interface.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	modelPath string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "projsim",
	Short: "Simulate project-network schedules",
	Long: `projsim runs discrete-time simulations of an engineering project:
a network of interdependent tasks competing for a limited pool of skilled
resources. It reports the executed schedule, the critical path with
per-task float, and per-resource utilization, optionally aggregated over
many Monte-Carlo trials.

Project models are YAML files describing workflows (tasks and precedence
edges), resources (capabilities and absence calendars), teams, components,
and the simulation configuration (horizon, allocation policy, seed).`,
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&modelPath, "file", "f", "project.yaml", "path to the project model file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
