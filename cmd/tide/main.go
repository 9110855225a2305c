package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/tide/internal/cli"
	"github.com/example/tide/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "tide",
		Short:   "tide - track focused work across the time hierarchy",
		Version: version.String(),
		Long: `tide is a CLI tool for tracking focused-work sessions.
Sessions are recorded into daily, weekly and monthly tides plus any
project or seasonal tide you name.`,
	}

	// Add subcommands
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.DoctorCmd())
	rootCmd.AddCommand(cli.TideCmd())
	rootCmd.AddCommand(cli.FlowCmd())
	rootCmd.AddCommand(cli.EnergyCmd())
	rootCmd.AddCommand(cli.TaskCmd())
	rootCmd.AddCommand(cli.DailyCmd())
	rootCmd.AddCommand(cli.ContextsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
