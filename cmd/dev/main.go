package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/mklimuk/d6t/cmd/dev/cmd"
)

var debug bool

func main() {
	rootCmd := &cobra.Command{
		Use:   "dev",
		Short: "build and test tool for the d6t binding",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			charm := log.NewWithOptions(os.Stdout, log.Options{
				ReportCaller:    debug,
				ReportTimestamp: true,
				TimeFormat:      time.DateTime,
				Prefix:          "dev",
			})
			charm.SetColorProfile(termenv.TrueColor)
			charm.SetLevel(log.InfoLevel)
			if debug {
				charm.SetLevel(log.DebugLevel)
			}
			slog.SetDefault(slog.New(charm))
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(cmd.BuildCmd())
	rootCmd.AddCommand(cmd.ChangelogCmd())
	rootCmd.AddCommand(cmd.TestCmd())
	rootCmd.AddCommand(cmd.LintCmd())
	rootCmd.AddCommand(cmd.IntegrationTestCmd())

	err := rootCmd.Execute()
	if err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
