package commands

import (
	"context"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"yamltests/internal/cli"
	"yamltests/internal/config"
	"yamltests/internal/discovery"
	"yamltests/internal/domain"
	"yamltests/internal/execution"
	"yamltests/internal/gitinfo"
	"yamltests/internal/remote"
	"yamltests/internal/ui"
)

// Discoverer reads the git state of the working copy in dir
type Discoverer func(ctx context.Context, dir string) (*gitinfo.Info, error)

// Connector creates the GitHub API client
type Connector func(token string, ignoreSSL bool) (*remote.Client, error)

// ViewerFactory creates the failure viewer for a run on hostname
type ViewerFactory func(hostname string) ui.Viewer

// RunCommand runs the tests of the manifest and reports them to GitHub
type RunCommand struct {
	config      *config.Config
	log         *ui.Logger
	formatter   *ui.Formatter
	filter      *discovery.Filter
	executor    execution.Executor
	viewer      ViewerFactory
	discover    Discoverer
	connect     Connector
	interactive func() bool
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(
	cfg *config.Config,
	log *ui.Logger,
	formatter *ui.Formatter,
	filter *discovery.Filter,
	executor execution.Executor,
	viewer ViewerFactory,
	discover Discoverer,
	connect Connector,
	interactive func() bool,
) *RunCommand {
	return &RunCommand{
		config:      cfg,
		log:         log,
		formatter:   formatter,
		filter:      filter,
		executor:    executor,
		viewer:      viewer,
		discover:    discover,
		connect:     connect,
		interactive: interactive,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	return rc.Run(cmd.Context())
}

// Run executes the whole run. Test failures are returned as a silent
// cli.ExitError with cli.ExitFailure; anything that stops the run early is
// wrapped with cli.Fatal.
func (rc *RunCommand) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	rc.log.Title("yaml-tests")

	runCtx, reporter, err := rc.initialize(ctx)
	if err != nil {
		return cli.Fatal(err)
	}

	manifest, err := discovery.LoadManifest(runCtx.TestsFile)
	if err != nil {
		return cli.Fatal(err)
	}
	rc.formatter.PrintTestList(ui.FoundTitle(runCtx.TestsFile), manifest)

	filters := rc.config.Flags.Filters
	selected := rc.filter.FilterByName(manifest, filters)
	if len(filters) > 0 {
		filter := strings.Join(filters, " ")
		if selected.Len() == 0 {
			rc.log.Warning("No tests match the filter '%s'", filter)
			return cli.Fail()
		}
		rc.formatter.PrintTestList(ui.FilteredTitle(filter), selected)
	}

	if rc.config.Flags.List {
		return nil
	}

	if reporter != nil {
		rc.log.Section("Posting pending statuses")
		for _, test := range selected.Tests {
			if err := reporter.PostStatus(ctx, domain.StatePending, test, ""); err != nil {
				return cli.Fatal(err)
			}
		}
	}

	results := ui.NewResults()
	for _, test := range selected.Tests {
		if err := rc.runTest(ctx, runCtx, reporter, results, test); err != nil {
			return cli.Fatal(err)
		}
	}

	rc.log.Newline()
	results.Render(rc.log.Writer())

	if rc.config.Flags.Review {
		rc.review(results, runCtx.Hostname)
	}

	if code := results.ExitCode(); code != cli.ExitSuccess {
		return &cli.ExitError{Code: code}
	}
	return nil
}

// runTest runs one test and reports its outcome. Only errors that should end
// the run are returned.
func (rc *RunCommand) runTest(ctx context.Context, runCtx *domain.RunContext, reporter *remote.Reporter, results *ui.Results, test domain.Test) error {
	rc.log.Section(test.Label())
	rc.log.Field("Command", test.CommandLine())
	rc.log.Newline()

	result, err := rc.executor.Run(ctx, test)
	if err != nil {
		return errors.WithStack(err)
	}
	if result.OutputHidden {
		rc.log.Warning("Output was hidden, as configured in %s", runCtx.TestsFile)
	}
	outcome := results.Add(test, result)

	rc.log.Newline()
	switch outcome {
	case domain.OutcomePassed:
		rc.log.Success("%s passed", test.Name)
	case domain.OutcomeFailedIgnored:
		rc.log.Warning("%s failed with exit code %d, ignoring as configured", test.Name, result.ExitCode)
	default:
		rc.log.Error("%s failed with exit code %d", test.Name, result.ExitCode)
	}

	if reporter == nil {
		return nil
	}

	note := ""
	if outcome == domain.OutcomeFailedIgnored {
		note = remote.IgnoredNote
	}
	if err := reporter.PostStatus(ctx, outcome.State(), test, note); err != nil {
		return err
	}

	if outcome != domain.OutcomeFailed {
		return nil
	}
	if !test.PostErrors {
		rc.log.Warning("Skipped post of errors to GitHub, as configured in %s", runCtx.TestsFile)
		return nil
	}
	payload, err := remote.RenderComment(test, result, runCtx.SHA, runCtx.Hostname)
	if err != nil {
		return err
	}
	url, err := reporter.PostComment(ctx, payload)
	if err != nil {
		rc.log.Error("Unable to post the failure comment: %v", err)
		return nil
	}
	rc.log.Success("Comment Created: %s", url)
	return nil
}

// initialize builds the run context from git, env files, flags and, unless
// this is a dry run, the GitHub API. The returned reporter is nil on dry runs.
func (rc *RunCommand) initialize(ctx context.Context) (*domain.RunContext, *remote.Reporter, error) {
	cfg := rc.config

	info, err := rc.discover(ctx, cfg.WorkingDir)
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}

	home, _ := os.UserHomeDir()
	loaded, err := cfg.LoadEnvFiles(cfg.WorkingDir, info.Root, home)
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}
	for _, file := range loaded {
		rc.log.Debug("Loaded environment from %s", file)
	}

	if err := cfg.CheckProjectFile(); err != nil {
		return nil, nil, errors.WithStack(err)
	}

	if info.Dirty && !cfg.Flags.IgnoreDirty {
		rc.log.Warning("Working tree has uncommitted changes, results are reported on commit %s", info.SHA)
	}
	if info.Travis {
		rc.log.Info("Using TRAVIS_PULL_REQUEST_SHA %s instead of HEAD %s", info.SHA, info.HeadSHA)
	}

	runCtx := &domain.RunContext{
		RunID:     cfg.RunID,
		Owner:     info.Owner,
		Repo:      info.Name,
		SHA:       info.SHA,
		Branch:    info.Branch,
		Hostname:  cfg.ResolveHostname(),
		TargetURL: cfg.ResolveStatusURL(),
		TestsFile: cfg.GetTestsFilePath(),
		DryRun:    cfg.Flags.DryRun,
	}

	token := cfg.ResolveToken()
	if token == "" && !runCtx.DryRun {
		rc.log.Warning("No GitHub token found. Running with --dry-run. Set one with --github-token or %s, or create one at %s",
			config.EnvGitHubToken, config.AddTokenURL)
		runCtx.DryRun = true
	}

	var reporter *remote.Reporter
	commitURL := ""
	if !runCtx.DryRun {
		if runCtx.Owner == "" || runCtx.Repo == "" {
			return nil, nil, errors.WithStack(&domain.ConfigError{
				Message: "unable to find the GitHub repository from the git remote, use --dry-run to run without GitHub",
			})
		}
		if cfg.Flags.IgnoreSSL {
			rc.log.Warning("SSL verification of the GitHub API is disabled")
		}

		client, err := rc.connect(token, cfg.Flags.IgnoreSSL)
		if err != nil {
			return nil, nil, errors.WithStack(err)
		}
		res, err := client.Resolve(ctx, runCtx.Owner, runCtx.Repo, runCtx.SHA, runCtx.Branch)
		if err != nil {
			return nil, nil, err
		}
		if res.ForkOf != "" {
			rc.log.Info("Repository is a fork, reporting to %s", res.ForkOf)
		}
		runCtx.Owner, runCtx.Repo = res.Owner, res.Repo
		runCtx.PullRequest = res.PullRequest
		if runCtx.PullRequest == nil {
			rc.log.Warning("No pull request found for branch %s", runCtx.Branch)
		}
		commitURL = res.CommitURL
		reporter = remote.NewReporter(client, runCtx, rc.log)
	}

	rc.log.Section("Initialization")
	rc.log.Field("Remote", info.RemoteURL)
	rc.log.Field("Branch", runCtx.Branch)
	rc.log.Field("Working dir", cfg.WorkingDir)
	rc.log.Field("Repo dir", info.Root)
	rc.log.Field("Commit", runCtx.SHA)
	rc.log.Field("Tests file", runCtx.TestsFile)
	if commitURL != "" {
		rc.log.Field("Repository", runCtx.FullName())
		rc.log.Field("Commit URL", commitURL)
	}
	if runCtx.PullRequest != nil {
		rc.log.Field("Pull request", runCtx.PullRequest.HTMLURL)
	}
	if runCtx.DryRun {
		rc.log.Info("Dry run, nothing is posted to GitHub")
	}
	rc.log.Debug("Run ID %s", runCtx.RunID)

	return runCtx, reporter, nil
}

// review opens the failure viewer when there is something to review and
// someone to see it
func (rc *RunCommand) review(results *ui.Results, hostname string) {
	failures := results.Failures()
	if len(failures) == 0 {
		return
	}
	if rc.interactive == nil || !rc.interactive() {
		rc.log.Warning("--review needs an interactive terminal")
		return
	}
	if err := rc.viewer(hostname).View(failures); err != nil {
		rc.log.Error("Failure viewer: %v", err)
	}
}
