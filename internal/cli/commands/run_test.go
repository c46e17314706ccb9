package commands

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yamltests/internal/cli"
	"yamltests/internal/config"
	"yamltests/internal/discovery"
	"yamltests/internal/domain"
	"yamltests/internal/gitinfo"
	"yamltests/internal/remote"
	"yamltests/internal/remote/remotetest"
	"yamltests/internal/ui"
)

const manifest = `unit:
  command:
    - composer install
    - vendor/bin/phpunit
lint: vendor/bin/phpcs
integration:
  command: vendor/bin/behat
  show-output: false
`

type fakeExecutor struct {
	exitCodes map[string]int
	ran       []string
}

func (f *fakeExecutor) Run(ctx context.Context, test domain.Test) (domain.RunResult, error) {
	f.ran = append(f.ran, test.Name)
	result := domain.RunResult{
		ExitCode:     f.exitCodes[test.Name],
		Started:      time.Now(),
		Duration:     10 * time.Millisecond,
		OutputHidden: !test.ShowOutput,
	}
	result.Output = domain.OutputHidden
	if test.ShowOutput {
		result.Output = "output of " + test.Name
	}
	return result, nil
}

type fakeViewer struct {
	hostname string
	viewed   []ui.ResultRow
}

func (f *fakeViewer) View(failures []ui.ResultRow) error {
	f.viewed = failures
	return nil
}

type harness struct {
	cfg         *config.Config
	executor    *fakeExecutor
	viewer      *fakeViewer
	server      *remotetest.Server
	out         *bytes.Buffer
	interactive bool
	cmd         *RunCommand
}

// newHarness runs against manifest in a fresh working directory with a token
// in the environment.
func newHarness(t *testing.T, yaml string, flags config.Flags) *harness {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.DefaultTestsFile), []byte(yaml), 0o644))
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvGitHubToken, "secret-token")
	t.Setenv(config.EnvStatusURL, "")

	cfg := config.New()
	cfg.WorkingDir = dir
	flags.TestsFile = config.DefaultTestsFile
	flags.Hostname = "ci-1"
	cfg.Flags = flags

	h := &harness{
		cfg:      cfg,
		executor: &fakeExecutor{exitCodes: map[string]int{}},
		viewer:   &fakeViewer{},
		server:   remotetest.NewServer(t),
		out:      &bytes.Buffer{},
	}

	discover := func(ctx context.Context, wd string) (*gitinfo.Info, error) {
		return &gitinfo.Info{
			Root:      wd,
			SHA:       "abc123",
			HeadSHA:   "abc123",
			Branch:    "feature",
			RemoteURL: "https://github.com/acme/site",
			Owner:     "acme",
			Name:      "site",
		}, nil
	}
	connect := func(token string, ignoreSSL bool) (*remote.Client, error) {
		return remote.NewClient(token, ignoreSSL, remote.WithBaseURL(h.server.URL))
	}
	viewer := func(hostname string) ui.Viewer {
		h.viewer.hostname = hostname
		return h.viewer
	}

	h.cmd = NewRunCommand(cfg, ui.NewLogger(h.out, false), ui.NewFormatter(h.out), discovery.NewFilter(),
		h.executor, viewer, discover, connect, func() bool { return h.interactive })
	return h
}

func (h *harness) run() error {
	return h.cmd.Run(context.Background())
}

func states(statuses []remotetest.Status) []string {
	var out []string
	for _, s := range statuses {
		out = append(out, s.Context+":"+s.State)
	}
	return out
}

func TestRun_AllPass(t *testing.T) {
	h := newHarness(t, manifest, config.Flags{})

	err := h.run()
	require.NoError(t, err)

	assert.Equal(t, []string{"unit", "lint", "integration"}, h.executor.ran)
	assert.Equal(t, []string{
		"unit:pending", "lint:pending", "integration:pending",
		"unit:success", "lint:success", "integration:success",
	}, states(h.server.Statuses()))
	assert.Empty(t, h.server.Comments())

	status := h.server.Statuses()[0]
	assert.Equal(t, "acme", status.Owner)
	assert.Equal(t, "site", status.Repo)
	assert.Equal(t, "abc123", status.SHA)
	assert.Equal(t, "ci-1 — unit...", status.Description)

	assert.Contains(t, h.out.String(), "Test Results")
	assert.Contains(t, h.out.String(), "https://github.com/acme/site/commit/abc123")
}

func TestRun_DryRunMakesNoRequests(t *testing.T) {
	h := newHarness(t, "lint: vendor/bin/phpcs\n", config.Flags{DryRun: true})

	require.NoError(t, h.run())

	assert.Equal(t, []string{"lint"}, h.executor.ran)
	assert.Empty(t, h.server.Requests())
	assert.Contains(t, h.out.String(), "Dry run")
}

func TestRun_MissingTokenForcesDryRun(t *testing.T) {
	h := newHarness(t, manifest, config.Flags{})
	t.Setenv(config.EnvGitHubToken, "")
	h.executor.exitCodes["unit"] = 1

	err := h.run()
	assert.Equal(t, cli.ExitFailure, cli.GetExitCode(err))

	assert.Len(t, h.executor.ran, 3)
	assert.Empty(t, h.server.Requests())
	assert.Contains(t, h.out.String(), "No GitHub token found")
}

func TestRun_IgnoredFailure(t *testing.T) {
	yaml := `flaky:
  command: vendor/bin/phpunit --group flaky
  ignore-failure: true
`
	h := newHarness(t, yaml, config.Flags{})
	h.executor.exitCodes["flaky"] = 1

	require.NoError(t, h.run())

	statuses := h.server.Statuses()
	assert.Equal(t, []string{"flaky:pending", "flaky:success"}, states(statuses))
	assert.Equal(t, "ci-1 — flaky | TEST FAILED but is set to ignore....", statuses[1].Description)
	assert.Empty(t, h.server.Comments())
	assert.Contains(t, h.out.String(), "Failed (Ignoring)")
}

func TestRun_FilterSelectsMatches(t *testing.T) {
	h := newHarness(t, manifest, config.Flags{Filters: []string{"lint"}})

	require.NoError(t, h.run())

	assert.Equal(t, []string{"lint"}, h.executor.ran)
	assert.Equal(t, []string{"lint:pending", "lint:success"}, states(h.server.Statuses()))
	assert.Contains(t, h.out.String(), "Tests to run based on filter 'lint'")
}

func TestRun_FilterWithoutMatches(t *testing.T) {
	h := newHarness(t, manifest, config.Flags{Filters: []string{"deploy", "smoke"}})

	err := h.run()
	assert.Equal(t, cli.ExitFailure, cli.GetExitCode(err))

	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.True(t, exitErr.Silent())

	assert.Empty(t, h.executor.ran)
	assert.Empty(t, h.server.Statuses())
	assert.Contains(t, h.out.String(), "No tests match the filter 'deploy smoke'")
}

func TestRun_FailurePostsComment(t *testing.T) {
	h := newHarness(t, manifest, config.Flags{})
	h.executor.exitCodes["unit"] = 2

	err := h.run()
	assert.Equal(t, cli.ExitFailure, cli.GetExitCode(err))

	assert.Equal(t, []string{"unit", "lint", "integration"}, h.executor.ran, "a failure does not stop the run")
	assert.Equal(t, []string{
		"unit:pending", "lint:pending", "integration:pending",
		"unit:failure", "lint:success", "integration:success",
	}, states(h.server.Statuses()))

	comments := h.server.Comments()
	require.Len(t, comments, 1)
	assert.Equal(t, "abc123", comments[0].CommitID)
	assert.Equal(t, 1, comments[0].Position)
	assert.Contains(t, comments[0].Body, "Test Failed: <code>unit</code>")
	assert.Contains(t, comments[0].Body, "composer install &amp;&amp; vendor/bin/phpunit")
	assert.Contains(t, comments[0].Body, "output of unit")
	assert.Contains(t, comments[0].Body, "- **On:** ci-1")
	assert.Contains(t, h.out.String(), "Comment Created: https://github.com/acme/site/commit/abc123#commitcomment-1")
}

func TestRun_HiddenOutputFailure(t *testing.T) {
	h := newHarness(t, manifest, config.Flags{Filters: []string{"integration"}})
	h.executor.exitCodes["integration"] = 1

	err := h.run()
	assert.Equal(t, cli.ExitFailure, cli.GetExitCode(err))

	comments := h.server.Comments()
	require.Len(t, comments, 1)
	assert.Contains(t, comments[0].Body, domain.OutputHidden)
	assert.Contains(t, h.out.String(), "Output was hidden, as configured in")
}

func TestRun_HiddenOutputWarning(t *testing.T) {
	tests := []struct {
		name  string
		flags config.Flags
	}{
		{name: "reported run", flags: config.Flags{}},
		{name: "dry run", flags: config.Flags{DryRun: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, manifest, tt.flags)

			require.NoError(t, h.run())
			assert.Equal(t, 1, strings.Count(h.out.String(), "Output was hidden, as configured in"))
			assert.Empty(t, h.server.Comments())
		})
	}
}

func TestRun_PostErrorsDisabled(t *testing.T) {
	yaml := `unit:
  command: vendor/bin/phpunit
  post-errors: false
`
	h := newHarness(t, yaml, config.Flags{})
	h.executor.exitCodes["unit"] = 1

	err := h.run()
	assert.Equal(t, cli.ExitFailure, cli.GetExitCode(err))

	assert.Equal(t, []string{"unit:pending", "unit:failure"}, states(h.server.Statuses()))
	assert.Empty(t, h.server.Comments())
	assert.Contains(t, h.out.String(), "Skipped post of errors to GitHub, as configured in")
}

func TestRun_CommentFailureDoesNotStopRun(t *testing.T) {
	h := newHarness(t, manifest, config.Flags{})
	h.server.CommentCode = http.StatusInternalServerError
	h.executor.exitCodes["unit"] = 1

	err := h.run()
	assert.Equal(t, cli.ExitFailure, cli.GetExitCode(err))

	assert.Len(t, h.executor.ran, 3)
	assert.Contains(t, h.out.String(), "Unable to post the failure comment")
}

func TestRun_StatusErrors(t *testing.T) {
	tests := []struct {
		name      string
		code      int
		failAfter int
		message   string
		ran       []string
	}{
		{name: "not found on pending", code: http.StatusNotFound, message: "Check the allowed scopes", ran: nil},
		{name: "unauthorized on pending", code: http.StatusUnauthorized, message: "Bad token", ran: nil},
		{name: "forbidden on pending", code: http.StatusForbidden, message: "Bad token", ran: nil},
		{name: "server error on pending", code: http.StatusInternalServerError, message: "Bad token", ran: nil},
		{name: "validation error on pending", code: http.StatusUnprocessableEntity, message: "Bad token", ran: nil},
		{name: "unauthorized on first result", code: http.StatusUnauthorized, failAfter: 3, message: "Bad token", ran: []string{"unit"}},
		{name: "forbidden on first result", code: http.StatusForbidden, failAfter: 3, message: "Bad token", ran: []string{"unit"}},
		{name: "server error on second result", code: http.StatusInternalServerError, failAfter: 4, message: "Bad token", ran: []string{"unit", "lint"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, manifest, config.Flags{})
			h.server.StatusCode = tt.code
			h.server.StatusFailAfter = tt.failAfter

			err := h.run()
			assert.Equal(t, cli.ExitFatal, cli.GetExitCode(err))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)

			var apiErr *domain.RemoteAPIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.code, apiErr.StatusCode)

			assert.Equal(t, tt.ran, h.executor.ran, "nothing runs after the failing post")
			assert.Len(t, h.server.Statuses(), tt.failAfter+1)
			assert.NotContains(t, h.out.String(), "Test Results")
		})
	}
}

func TestRun_CommitNotPushed(t *testing.T) {
	h := newHarness(t, manifest, config.Flags{})
	h.server.CommitCode = http.StatusNotFound

	err := h.run()
	assert.Equal(t, cli.ExitFatal, cli.GetExitCode(err))
	assert.Contains(t, err.Error(), "Commit not found")

	var apiErr *domain.RemoteAPIError
	require.True(t, errors.As(err, &apiErr))
	assert.Empty(t, h.executor.ran)
	assert.Empty(t, h.server.Statuses())
}

func TestRun_ForkReportsToParent(t *testing.T) {
	h := newHarness(t, "lint: vendor/bin/phpcs\n", config.Flags{})
	h.server.ParentOwner = "upstream"
	h.server.ParentName = "site"
	h.server.PullRequest = 12

	require.NoError(t, h.run())

	for _, status := range h.server.Statuses() {
		assert.Equal(t, "upstream", status.Owner)
		assert.Equal(t, "site", status.Repo)
	}
	assert.Equal(t, "acme:feature", h.server.PullHead())
	assert.Contains(t, h.out.String(), "https://github.com/upstream/site/pull/12")
}

func TestRun_InvalidManifest(t *testing.T) {
	h := newHarness(t, "- not\n- a mapping\n", config.Flags{DryRun: true})

	err := h.run()
	assert.Equal(t, cli.ExitFatal, cli.GetExitCode(err))

	var manifestErr *domain.ManifestError
	assert.True(t, errors.As(err, &manifestErr))
	assert.Empty(t, h.executor.ran)
}

func TestRun_MissingProjectFile(t *testing.T) {
	h := newHarness(t, manifest, config.Flags{DryRun: true, ProjectFile: "composer.json"})

	err := h.run()
	assert.Equal(t, cli.ExitFatal, cli.GetExitCode(err))

	var configErr *domain.ConfigError
	assert.True(t, errors.As(err, &configErr))
}

func TestRun_List(t *testing.T) {
	h := newHarness(t, manifest, config.Flags{DryRun: true, List: true})

	require.NoError(t, h.run())

	assert.Empty(t, h.executor.ran)
	assert.Contains(t, h.out.String(), "Tests found in")
	assert.Contains(t, h.out.String(), "vendor/bin/behat")
}

func TestRun_Review(t *testing.T) {
	t.Run("interactive", func(t *testing.T) {
		h := newHarness(t, manifest, config.Flags{DryRun: true, Review: true})
		h.interactive = true
		h.executor.exitCodes["lint"] = 1

		err := h.run()
		assert.Equal(t, cli.ExitFailure, cli.GetExitCode(err))

		require.Len(t, h.viewer.viewed, 1)
		assert.Equal(t, "lint", h.viewer.viewed[0].Name)
		assert.Equal(t, "ci-1", h.viewer.hostname)
	})

	t.Run("not a terminal", func(t *testing.T) {
		h := newHarness(t, manifest, config.Flags{DryRun: true, Review: true})
		h.executor.exitCodes["lint"] = 1

		err := h.run()
		assert.Equal(t, cli.ExitFailure, cli.GetExitCode(err))

		assert.Empty(t, h.viewer.viewed)
		assert.Contains(t, h.out.String(), "--review needs an interactive terminal")
	})

	t.Run("nothing failed", func(t *testing.T) {
		h := newHarness(t, manifest, config.Flags{DryRun: true, Review: true})
		h.interactive = true

		require.NoError(t, h.run())
		assert.Empty(t, h.viewer.viewed)
	})
}
