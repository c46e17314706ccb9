// Package remote talks to the GitHub REST API: it resolves the repository
// and pull request at startup and posts commit statuses and comments.
package remote

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v66/github"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"yamltests/internal/config"
	"yamltests/internal/domain"
)

// Client wraps the GitHub API client
type Client struct {
	gh *github.Client
}

// Option configures a Client
type Option func(*Client) error

// WithBaseURL points the client at another API root, such as a GitHub
// Enterprise server or a test server
func WithBaseURL(raw string) Option {
	return func(c *Client) error {
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid API URL %q: %w", raw, err)
		}
		c.gh.BaseURL = u
		return nil
	}
}

// NewClient creates an authenticated client. ignoreSSL disables certificate
// verification for every API call.
func NewClient(token string, ignoreSSL bool, opts ...Option) (*Client, error) {
	base := http.DefaultTransport.(*http.Transport).Clone()
	if ignoreSSL {
		base.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via --ignore-ssl
	}

	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}),
			Base:   base,
		},
	}

	c := &Client{gh: github.NewClient(httpClient)}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Resolution is what the API tells us about the commit under test
type Resolution struct {
	CommitURL   string
	Owner       string // Owner statuses are posted to, the parent for forks
	Repo        string
	ForkOf      string // Parent full name when the repository is a fork
	PullRequest *domain.PullRequest
}

// Resolve checks the commit exists on GitHub, switches to the parent
// repository for forks and looks up the pull request for branch.
func (c *Client) Resolve(ctx context.Context, owner, repo, sha, branch string) (*Resolution, error) {
	commit, resp, err := c.gh.Repositories.GetCommit(ctx, owner, repo, sha, nil)
	if err != nil {
		apiErr := apiError("get commit", resp, err)
		switch apiErr.StatusCode {
		case http.StatusNotFound, http.StatusUnprocessableEntity:
			apiErr.Message = "Commit not found in the remote repository. yaml-tests cannot post commit status until the commits are pushed to the remote repository"
		case http.StatusUnauthorized, http.StatusForbidden:
			apiErr.Message = badTokenMessage
		}
		return nil, errors.WithStack(apiErr)
	}

	res := &Resolution{
		CommitURL: commit.GetHTMLURL(),
		Owner:     owner,
		Repo:      repo,
	}

	repository, resp, err := c.gh.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, errors.WithStack(apiError("get repository", resp, err))
	}
	if parent := repository.GetParent(); parent != nil {
		res.Owner = parent.GetOwner().GetLogin()
		res.Repo = parent.GetName()
		res.ForkOf = parent.GetFullName()
	}

	// Pull requests live on the parent but their head is the fork's branch
	prs, resp, err := c.gh.PullRequests.List(ctx, res.Owner, res.Repo, &github.PullRequestListOptions{
		Head: owner + ":" + branch,
	})
	if err != nil {
		return nil, errors.WithStack(apiError("list pull requests", resp, err))
	}
	if len(prs) > 0 {
		res.PullRequest = &domain.PullRequest{
			Number:  prs[0].GetNumber(),
			HTMLURL: prs[0].GetHTMLURL(),
		}
	}
	return res, nil
}

var badTokenMessage = "Bad token. Set with --github-token option or " + config.EnvGitHubToken +
	" environment variable. Create a new token at " + config.AddTokenURL

// apiError converts a go-github error into a RemoteAPIError, keeping the HTTP
// status when there was a response.
func apiError(op string, resp *github.Response, err error) *domain.RemoteAPIError {
	apiErr := &domain.RemoteAPIError{Op: op, Err: err}
	if resp != nil && resp.Response != nil {
		apiErr.StatusCode = resp.StatusCode
	}
	var ghErr *github.ErrorResponse
	if apiErr.StatusCode == 0 && errors.As(err, &ghErr) && ghErr.Response != nil {
		apiErr.StatusCode = ghErr.Response.StatusCode
	}
	return apiErr
}
