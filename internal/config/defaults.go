package config

const (
	// DefaultTestsFile is the default manifest path, relative to the working directory
	DefaultTestsFile = "tests.yml"
	// DefaultProjectFile is the project file that must exist in the working directory
	DefaultProjectFile = "composer.json"
	// DefaultShell runs each test's command pipeline
	DefaultShell = "/bin/sh"
	// DefaultEnvFile is the name of the env file looked up in each env directory
	DefaultEnvFile = ".env"

	// EnvGitHubToken overrides the --github-token flag when set
	EnvGitHubToken = "GITHUB_TOKEN"
	// EnvStatusURL is the default for --status-url
	EnvStatusURL = "YAML_TASKS_STATUS_URL"

	// AddTokenURL is where users create a token with the scopes this tool needs
	AddTokenURL = "https://github.com/settings/tokens/new?description=yaml-tests&scopes=repo:status,public_repo"
)
