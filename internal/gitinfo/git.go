// Package gitinfo discovers the commit, branch and GitHub repository of the
// working copy by shelling out to git.
package gitinfo

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"strings"

	"yamltests/internal/domain"
)

// Info describes the working copy tests run against
type Info struct {
	Root      string // Repository top level directory
	SHA       string // Commit statuses are posted to
	HeadSHA   string // Commit checked out locally
	Branch    string
	RemoteURL string // Push URL, normalized to https
	Owner     string
	Name      string
	Dirty     bool
	Travis    bool // SHA came from TRAVIS_PULL_REQUEST_SHA
}

// Repo runs git commands in a working copy
type Repo struct {
	dir string
}

// Open finds the repository containing dir
func Open(ctx context.Context, dir string) (*Repo, error) {
	r := &Repo{dir: dir}
	root, err := r.git(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, &domain.ConfigError{Message: fmt.Sprintf("%s is not inside a git repository", dir), Err: err}
	}
	r.dir = root
	return r, nil
}

// Root returns the repository top level directory
func (r *Repo) Root() string {
	return r.dir
}

// CurrentCommit returns the SHA of HEAD
func (r *Repo) CurrentCommit(ctx context.Context) (string, error) {
	return r.git(ctx, "rev-parse", "HEAD")
}

// CurrentBranch returns the checked out branch, or HEAD when detached
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	return r.git(ctx, "rev-parse", "--abbrev-ref", "HEAD")
}

// RemoteURL returns the push URL of the branch's remote, falling back to origin
func (r *Repo) RemoteURL(ctx context.Context, branch string) (string, error) {
	remote, err := r.git(ctx, "config", "--get", "branch."+branch+".remote")
	if err != nil || remote == "" {
		remote = "origin"
	}
	return r.git(ctx, "remote", "get-url", "--push", remote)
}

// IsDirty reports whether the working copy has uncommitted changes
func (r *Repo) IsDirty(ctx context.Context) (bool, error) {
	out, err := r.git(ctx, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return out != "", nil
}

// Discover collects everything about the working copy in one go. getenv is
// used for the Travis CI pull request override.
func Discover(ctx context.Context, dir string, getenv func(string) string) (*Info, error) {
	repo, err := Open(ctx, dir)
	if err != nil {
		return nil, err
	}

	head, err := repo.CurrentCommit(ctx)
	if err != nil {
		return nil, &domain.ConfigError{Message: "unable to read the current commit", Err: err}
	}
	branch, err := repo.CurrentBranch(ctx)
	if err != nil {
		return nil, &domain.ConfigError{Message: "unable to read the current branch", Err: err}
	}
	dirty, err := repo.IsDirty(ctx)
	if err != nil {
		return nil, &domain.ConfigError{Message: "unable to read the working copy status", Err: err}
	}

	info := &Info{
		Root:    repo.Root(),
		HeadSHA: head,
		Branch:  branch,
		Dirty:   dirty,
	}
	info.SHA, info.Travis = ResolveSHA(head, info.Root, getenv)

	// A repository without remotes can still run in dry-run mode
	if remote, err := repo.RemoteURL(ctx, branch); err == nil {
		info.RemoteURL, info.Owner, info.Name = ParseRemote(remote)
	}
	return info, nil
}

// ResolveSHA returns the SHA statuses are posted to. Travis builds pull
// requests from a merge commit, so the pull request's own SHA is used when
// Travis is building this repository.
func ResolveSHA(head, root string, getenv func(string) string) (string, bool) {
	if getenv == nil {
		return head, false
	}
	prSHA := getenv("TRAVIS_PULL_REQUEST_SHA")
	if prSHA != "" && root == getenv("TRAVIS_BUILD_DIR") {
		return prSHA, true
	}
	return head, false
}

var remoteReplacer = strings.NewReplacer(
	"ssh://git@", "https://",
	"git@", "https://",
	"git://", "https://",
	"github.com:", "github.com/",
)

// ParseRemote normalizes a remote URL to https and extracts the owner and
// repository name from its path. Owner and name are empty when the path has
// fewer than two segments.
func ParseRemote(remote string) (normalized, owner, name string) {
	normalized = remoteReplacer.Replace(strings.TrimSpace(remote))
	normalized = strings.TrimSuffix(normalized, ".git")

	u, err := url.Parse(normalized)
	if err != nil {
		return normalized, "", ""
	}
	parts := strings.Split(u.Path, "/")
	if len(parts) < 3 || parts[1] == "" || parts[2] == "" {
		return normalized, "", ""
	}
	return normalized, parts[1], parts[2]
}

func (r *Repo) git(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
		}
		return "", fmt.Errorf("git %s: %s: %w", strings.Join(args, " "), msg, err)
	}
	return strings.TrimSpace(stdout.String()), nil
}
