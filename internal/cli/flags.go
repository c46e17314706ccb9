package cli

import "yamltests/internal/config"

// Flags holds command-line flags
type Flags struct {
	TestsFile    string
	GitHubToken  string
	ProjectFile  string
	Hostname     string
	StatusURL    string
	StatusURLSet bool
	IgnoreDirty  bool
	DryRun       bool
	IgnoreSSL    bool
	Verbose      bool
	List         bool
	Review       bool
	Filters      []string
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		TestsFile:    f.TestsFile,
		GitHubToken:  f.GitHubToken,
		ProjectFile:  f.ProjectFile,
		Hostname:     f.Hostname,
		StatusURL:    f.StatusURL,
		StatusURLSet: f.StatusURLSet,
		IgnoreDirty:  f.IgnoreDirty,
		DryRun:       f.DryRun,
		IgnoreSSL:    f.IgnoreSSL,
		Verbose:      f.Verbose,
		List:         f.List,
		Review:       f.Review,
		Filters:      append([]string(nil), f.Filters...),
	}
}
