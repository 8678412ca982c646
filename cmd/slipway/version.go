package main

import (
	"log/slog"

	"github.com/slipwayhq/slipway/pkg/utils"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		slog.Info(utils.GetVersion())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
