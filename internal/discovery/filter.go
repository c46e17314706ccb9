package discovery

import (
	"strings"

	"yamltests/internal/domain"
)

// Filter narrows a manifest down to the tests selected on the command line
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName keeps the tests whose name contains at least one of the
// filters. Matching is case-sensitive. With no filters the manifest is
// returned unchanged.
func (f *Filter) FilterByName(manifest *domain.Manifest, filters []string) *domain.Manifest {
	if len(filters) == 0 {
		return manifest
	}

	filtered := &domain.Manifest{}
	for _, test := range manifest.Tests {
		if matchesAny(test.Name, filters) {
			filtered.Tests = append(filtered.Tests, test)
		}
	}
	return filtered
}

func matchesAny(name string, filters []string) bool {
	for _, filter := range filters {
		if strings.Contains(name, filter) {
			return true
		}
	}
	return false
}
