package commands

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"yamltests/internal/cli"
	"yamltests/internal/config"
	"yamltests/internal/discovery"
	"yamltests/internal/execution"
	"yamltests/internal/gitinfo"
	"yamltests/internal/remote"
	"yamltests/internal/ui"
)

// Commands holds all CLI commands
type Commands struct {
	Run *RunCommand
	Log *ui.Logger
}

// NewCommands creates all commands with dependencies. Console output goes to out.
func NewCommands(cfg *config.Config, out io.Writer) *Commands {
	log := ui.NewLogger(out, false)
	interactive := func() bool {
		return term.IsTerminal(int(os.Stdout.Fd()))
	}

	// Hidden output only drives a spinner when someone is watching
	var hidden execution.SinkFactory
	if interactive() {
		hidden = func(name string) execution.Sink {
			return ui.NewSpinner(out, name)
		}
	}

	runner := execution.NewRunner(cfg, out, hidden)
	formatter := ui.NewFormatter(out)
	filter := discovery.NewFilter()
	viewer := func(hostname string) ui.Viewer {
		return ui.NewFailureViewer(hostname)
	}
	discover := func(ctx context.Context, dir string) (*gitinfo.Info, error) {
		return gitinfo.Discover(ctx, dir, os.Getenv)
	}
	connect := func(token string, ignoreSSL bool) (*remote.Client, error) {
		return remote.NewClient(token, ignoreSSL)
	}

	return &Commands{
		Run: NewRunCommand(cfg, log, formatter, filter, runner, viewer, discover, connect, interactive),
		Log: log,
	}
}

// Register makes the run command the root command's action and binds its flags
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	rootCmd.Args = cobra.ArbitraryArgs
	rootCmd.RunE = c.Run.Execute
	rootCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		// Update config with flags after parsing
		flags.Filters = args
		flags.StatusURLSet = cmd.Flags().Changed("status-url")
		cfg.Flags = flags.ToConfigFlags()
		c.Log.SetVerbose(flags.Verbose)
		return nil
	}

	f := rootCmd.Flags()
	f.StringVar(&flags.TestsFile, "tests-file", config.DefaultTestsFile, "Path to the YAML file with the tests to run")
	f.StringVar(&flags.GitHubToken, "github-token", "", "GitHub token used to post statuses and comments ("+config.EnvGitHubToken+" wins when set)")
	f.StringVar(&flags.ProjectFile, "project-file", config.DefaultProjectFile, "Project file that must exist in the working directory, empty to skip the check")
	f.StringVar(&flags.Hostname, "hostname", "", "Hostname shown in commit statuses (default is this machine's hostname)")
	f.StringVar(&flags.StatusURL, "status-url", "", "Target URL of commit statuses (default is "+config.EnvStatusURL+")")
	f.BoolVar(&flags.IgnoreDirty, "ignore-dirty", false, "Do not warn when the working tree has uncommitted changes")
	f.BoolVar(&flags.DryRun, "dry-run", false, "Run the tests without posting anything to GitHub")
	f.BoolVar(&flags.IgnoreSSL, "ignore-ssl", false, "Skip TLS certificate verification of the GitHub API")
	f.BoolVar(&flags.List, "list", false, "List the selected tests and exit without running them")
	f.BoolVar(&flags.Review, "review", false, "Open an interactive viewer of failed tests when the run finishes")
	f.BoolVarP(&flags.Verbose, "verbose", "v", false, "Print debug output and stack traces of fatal errors")
}
