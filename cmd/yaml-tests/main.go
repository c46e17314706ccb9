package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"yamltests/internal/cli"
	"yamltests/internal/cli/commands"
	"yamltests/internal/config"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:   "yaml-tests [filter...]",
		Short: "Run the tests of a YAML manifest and report them to GitHub",
		Long: `Run the shell commands listed in a YAML manifest one after another and report each
result as a GitHub commit status. Failures are posted as commit comments.

Filters select the tests whose name contains any of them.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	// Create initial config with defaults
	cfg := config.New()

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands with dependencies
	cmds := commands.NewCommands(cfg, os.Stdout)

	// Register the run command on the root
	cmds.Register(rootCmd, &flags, cfg)

	err := rootCmd.ExecuteContext(context.Background())
	if err == nil {
		return
	}

	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) || !exitErr.Silent() {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("Error:"), err)
		// The wrapped error carries the stack
		if flags.Verbose && exitErr != nil && exitErr.Err != nil {
			fmt.Fprintf(os.Stderr, "%+v\n", exitErr.Err)
		}
	}
	os.Exit(cli.GetExitCode(err))
}
