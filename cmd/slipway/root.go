package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func initLogger() {
	logLevel := os.Getenv("SLIPWAY_LOG_LEVEL")
	var level slog.Leveler
	if logLevel == "DEBUG" {
		level = slog.LevelDebug
	} else {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))

	slog.SetDefault(logger)
}

var rootCmd = &cobra.Command{
	Use:   "slipway",
	Short: "A CI entrypoint for Pulumi deployments",
}
