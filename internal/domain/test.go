package domain

import "strings"

// Test represents a single named entry from the tests manifest
type Test struct {
	Name          string   // Manifest key, also used as the status context
	Command       []string // Command lines, run joined by &&
	Description   string   // Empty means the name is used
	ShowOutput    bool
	PostErrors    bool
	IgnoreFailure bool
}

// Label returns the description, falling back to the test name
func (t Test) Label() string {
	if t.Description != "" {
		return t.Description
	}
	return t.Name
}

// CommandLine returns the command lines joined into one shell pipeline
func (t Test) CommandLine() string {
	return strings.Join(t.Command, " && ")
}

// CommandView returns the command lines one per line, for tables
func (t Test) CommandView() string {
	return strings.Join(t.Command, "\n")
}

// MarshalYAML writes the test back in its canonical mapping form
func (t Test) MarshalYAML() (interface{}, error) {
	out := struct {
		Command       []string `yaml:"command"`
		Description   string   `yaml:"description,omitempty"`
		ShowOutput    bool     `yaml:"show-output"`
		PostErrors    bool     `yaml:"post-errors"`
		IgnoreFailure bool     `yaml:"ignore-failure"`
	}{
		Command:       t.Command,
		Description:   t.Description,
		ShowOutput:    t.ShowOutput,
		PostErrors:    t.PostErrors,
		IgnoreFailure: t.IgnoreFailure,
	}
	return out, nil
}

// Manifest is the ordered set of tests loaded from a tests file
type Manifest struct {
	Tests []Test
}

// Len returns the number of tests
func (m *Manifest) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Tests)
}

// Names returns the test names in manifest order
func (m *Manifest) Names() []string {
	names := make([]string, 0, m.Len())
	for _, t := range m.Tests {
		names = append(names, t.Name)
	}
	return names
}

// Get looks a test up by name
func (m *Manifest) Get(name string) (Test, bool) {
	for _, t := range m.Tests {
		if t.Name == name {
			return t, true
		}
	}
	return Test{}, false
}
