package remote

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/go-github/v66/github"
	"github.com/pkg/errors"

	"yamltests/internal/config"
	"yamltests/internal/domain"
	"yamltests/internal/ui"
)

const (
	// StatusDescriptionMaxSize is GitHub's limit on status descriptions, in characters
	StatusDescriptionMaxSize = 140

	// IgnoredNote is appended to the description of an ignored failure
	IgnoredNote = " | TEST FAILED but is set to ignore."
)

// Reporter posts commit statuses and failure comments for one run
type Reporter struct {
	client *Client
	rc     *domain.RunContext
	log    *ui.Logger
}

// NewReporter creates a Reporter posting to the repository and commit of rc
func NewReporter(client *Client, rc *domain.RunContext, log *ui.Logger) *Reporter {
	return &Reporter{client: client, rc: rc, log: log}
}

// StatusDescription builds the status description. It is always cut to 137
// characters and suffixed with "...", even when it was already short enough.
func StatusDescription(hostname, label, note string) string {
	desc := []rune(hostname + " — " + label + note)
	if len(desc) > StatusDescriptionMaxSize-3 {
		desc = desc[:StatusDescriptionMaxSize-3]
	}
	return string(desc) + "..."
}

// NewStatusUpdate builds the status for test in state
func (r *Reporter) NewStatusUpdate(state domain.StatusState, test domain.Test, note string) domain.StatusUpdate {
	return domain.StatusUpdate{
		State:       state,
		TargetURL:   r.rc.TargetURL,
		Description: StatusDescription(r.rc.Hostname, test.Label(), note),
		Context:     test.Name,
	}
}

// PostStatus posts a commit status for test. Any error from the API is
// logged and returned, and should end the run.
func (r *Reporter) PostStatus(ctx context.Context, state domain.StatusState, test domain.Test, note string) error {
	update := r.NewStatusUpdate(state, test, note)
	status := &github.RepoStatus{
		State:       github.String(string(update.State)),
		Description: github.String(update.Description),
		Context:     github.String(update.Context),
	}
	if update.TargetURL != "" {
		status.TargetURL = github.String(update.TargetURL)
	}

	message := fmt.Sprintf("GitHub Status: %s: %s", test.Name, state)

	_, resp, err := r.client.gh.Repositories.CreateStatus(ctx, r.rc.Owner, r.rc.Repo, r.rc.SHA, status)
	if err != nil {
		apiErr := apiError("create status", resp, err)
		switch {
		case apiErr.StatusCode == http.StatusNotFound:
			apiErr.Message = "Unable to reach commit status API. Check the allowed scopes of your GitHub Token. " +
				"Skip github interaction with --dry-run, or create a new token with the right scopes at " + config.AddTokenURL
		case apiErr.Transport():
			apiErr.Message = "Unable to reach the GitHub API"
		default:
			apiErr.Message = badTokenMessage
		}
		r.log.Error("%s (HTTP %d: %v)", message, apiErr.StatusCode, err)
		return errors.WithStack(apiErr)
	}

	switch state {
	case domain.StatePending:
		r.log.Log(ui.LevelPending, "%s", message)
	case domain.StateFailure:
		r.log.Error("%s", message)
	default:
		r.log.Success("%s", message)
	}
	return nil
}
