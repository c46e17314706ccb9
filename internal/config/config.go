package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"yamltests/internal/domain"
)

// Config holds all configuration for the application
type Config struct {
	// Directory tests run in, normally the current directory
	WorkingDir string

	// Shell used to run command pipelines
	Shell string

	// Unique identifier for this run, exported to tests as YAML_TESTS_RUN_ID
	RunID string

	// Command flags
	Flags Flags
}

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

// New creates a new Config with defaults
func New() *Config {
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	return &Config{
		WorkingDir: wd,
		Shell:      DefaultShell,
		RunID:      uuid.NewString(),
		Flags: Flags{
			TestsFile:   DefaultTestsFile,
			ProjectFile: DefaultProjectFile,
		},
	}
}

// Load creates a config and applies flags
func Load(flags Flags) *Config {
	cfg := New()
	cfg.Flags = flags
	return cfg
}

// GetTestsFilePath returns the absolute path of the tests file
func (c *Config) GetTestsFilePath() string {
	file := c.Flags.TestsFile
	if file == "" {
		file = DefaultTestsFile
	}
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(c.WorkingDir, file)
}

// CheckProjectFile verifies the project file is present and valid JSON. An
// empty project file name disables the check.
func (c *Config) CheckProjectFile() error {
	if c.Flags.ProjectFile == "" {
		return nil
	}
	path := c.Flags.ProjectFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.WorkingDir, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return &domain.ConfigError{Message: fmt.Sprintf("unable to read project data from %s", path), Err: err}
	}
	var project map[string]interface{}
	if err := json.Unmarshal(data, &project); err != nil {
		return &domain.ConfigError{Message: fmt.Sprintf("unable to parse project data from %s", path), Err: err}
	}
	return nil
}

// LoadEnvFiles loads the env file from each directory that has one. Variables
// already in the environment are never overridden, so earlier directories win.
// It returns the files that were loaded.
func (c *Config) LoadEnvFiles(dirs ...string) ([]string, error) {
	var loaded []string
	seen := make(map[string]bool)
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, DefaultEnvFile)
		if seen[path] {
			continue
		}
		seen[path] = true

		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return loaded, &domain.ConfigError{Message: fmt.Sprintf("unable to load %s", path), Err: err}
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}

// ResolveToken returns the GitHub token. The environment wins over the flag.
func (c *Config) ResolveToken() string {
	if token := os.Getenv(EnvGitHubToken); token != "" {
		return token
	}
	return c.Flags.GitHubToken
}

// ResolveStatusURL returns the status target URL, falling back to the
// environment when the flag was not given.
func (c *Config) ResolveStatusURL() string {
	if c.Flags.StatusURLSet {
		return c.Flags.StatusURL
	}
	if url := os.Getenv(EnvStatusURL); url != "" {
		return url
	}
	return c.Flags.StatusURL
}

// ResolveHostname returns the hostname shown in status descriptions
func (c *Config) ResolveHostname() string {
	if c.Flags.Hostname != "" {
		return c.Flags.Hostname
	}
	host, err := os.Hostname()
	if err != nil {
		return "localhost"
	}
	return host
}
