package domain

// PullRequest is the pull request resolved for the current branch
type PullRequest struct {
	Number  int
	HTMLURL string
}

// RunContext holds everything resolved at startup. It is built once and
// only read afterwards.
type RunContext struct {
	RunID       string
	Owner       string
	Repo        string
	SHA         string
	Branch      string
	PullRequest *PullRequest
	Hostname    string
	TargetURL   string
	TestsFile   string
	DryRun      bool
}

// FullName returns owner/repo
func (rc *RunContext) FullName() string {
	return rc.Owner + "/" + rc.Repo
}
