package remote

import (
	"context"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/acarl005/stripansi"
	"github.com/google/go-github/v66/github"
	"github.com/pkg/errors"

	"yamltests/internal/domain"
)

const (
	// CommentMaxSize is GitHub's limit on comment bodies, in bytes
	CommentMaxSize = 65536

	// TruncateMarker ends output that was cut to fit a comment
	TruncateMarker = "... *(truncated)*"

	fence = "```"
)

// RenderComment builds the failure comment for test. The output is shortened
// to keep the body within CommentMaxSize. A name or command too long to leave
// room for it is shortened as well.
func RenderComment(test domain.Test, result domain.RunResult, sha, hostname string) (domain.CommentPayload, error) {
	head := func(name, command string) string {
		return "<details>\n" +
			"    <summary>:x: Test Failed: <code>" + name + "</code></summary>\n" +
			"    <pre>" + command + "</pre>\n" +
			"   \n" +
			fence + "\n"
	}
	tail := "\n" + fence + "\n" +
		"    \n" +
		"- **On:** " + hostname + "\n" +
		"- **In:** " + result.Duration.Round(time.Millisecond).String() + "\n" +
		"    \n" +
		"</details>"

	fixed := len(head("", "")) + len(tail) + len(TruncateMarker)
	name, command := fitFields(html.EscapeString(test.Name), html.EscapeString(test.CommandLine()), CommentMaxSize-fixed)
	opening := head(name, command)

	remaining := CommentMaxSize - (len(opening) + len(tail) + len(TruncateMarker))
	output := truncate(strings.TrimSpace(stripansi.Strip(result.CommentOutput())), remaining)

	body := opening + output + tail
	if len(body) > CommentMaxSize {
		return domain.CommentPayload{}, errors.WithStack(&domain.CommentTooLongError{Length: len(body), Limit: CommentMaxSize})
	}

	return domain.CommentPayload{
		CommitID: sha,
		Position: 1,
		Body:     body,
	}, nil
}

const ellipsis = "..."

// fitFields shortens the escaped name and command so together they take at
// most budget bytes. The name gets at most a quarter of the budget.
func fitFields(name, command string, budget int) (string, string) {
	if len(name)+len(command) <= budget {
		return name, command
	}
	if limit := budget / 4; len(name) > limit {
		name = cutEscaped(name, limit-len(ellipsis)) + ellipsis
	}
	if limit := budget - len(name); len(command) > limit {
		command = cutEscaped(command, limit-len(ellipsis)) + ellipsis
	}
	return name, command
}

// cutEscaped cuts HTML-escaped s to at most limit bytes without splitting a
// rune or an entity
func cutEscaped(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if limit >= len(s) {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	if i := strings.LastIndexByte(s[:limit], '&'); i >= 0 && !strings.Contains(s[i:limit], ";") {
		limit = i
	}
	return s[:limit]
}

// truncate cuts s to at most limit bytes on a rune boundary and appends
// TruncateMarker. s is returned unchanged when it fits.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	if limit < 0 {
		limit = 0
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit] + TruncateMarker
}

// PostComment posts payload as a commit comment and returns its URL. Pull
// request comments are not supported, so this is used for pull requests too.
func (r *Reporter) PostComment(ctx context.Context, payload domain.CommentPayload) (string, error) {
	comment := &github.RepositoryComment{
		CommitID: github.String(payload.CommitID),
		Position: github.Int(payload.Position),
		Body:     github.String(payload.Body),
	}
	created, resp, err := r.client.gh.Repositories.CreateComment(ctx, r.rc.Owner, r.rc.Repo, payload.CommitID, comment)
	if err != nil {
		return "", errors.WithStack(apiError("create comment", resp, err))
	}
	return created.GetHTMLURL(), nil
}
