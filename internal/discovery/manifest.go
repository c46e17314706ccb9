package discovery

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"yamltests/internal/domain"
)

// Manifest option keys
const (
	keyCommand       = "command"
	keyDescription   = "description"
	keyPostErrors    = "post-errors"
	keyShowOutput    = "show-output"
	keyIgnoreFailure = "ignore-failure"
)

var optionKeys = map[string]bool{
	keyCommand:       true,
	keyDescription:   true,
	keyPostErrors:    true,
	keyShowOutput:    true,
	keyIgnoreFailure: true,
}

// LoadManifest reads and normalizes the tests file at path
func LoadManifest(path string) (*domain.Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WithStack(&domain.ManifestError{Path: path, Err: fmt.Errorf("tests file does not exist")})
		}
		return nil, errors.WithStack(&domain.ManifestError{Path: path, Err: err})
	}

	manifest, err := ParseManifest(data)
	if err != nil {
		var merr *domain.ManifestError
		if errors.As(err, &merr) {
			merr.Path = path
		}
		return nil, err
	}
	return manifest, nil
}

// ParseManifest normalizes a YAML tests document into a Manifest, keeping
// the order in which tests appear in the document.
func ParseManifest(data []byte) (*domain.Manifest, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, manifestErr(err)
	}
	if len(doc.Content) == 0 {
		return nil, manifestErr(fmt.Errorf("no tests defined"))
	}

	root := resolve(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, manifestErr(fmt.Errorf("line %d: expected a mapping of test names to commands", root.Line))
	}
	if len(root.Content) == 0 {
		return nil, manifestErr(fmt.Errorf("no tests defined"))
	}

	manifest := &domain.Manifest{}
	seen := make(map[string]bool)
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		if seen[name] {
			return nil, manifestErr(fmt.Errorf("line %d: duplicate test %q", root.Content[i].Line, name))
		}
		seen[name] = true

		test, err := normalize(name, resolve(root.Content[i+1]))
		if err != nil {
			return nil, manifestErr(err)
		}
		manifest.Tests = append(manifest.Tests, test)
	}
	return manifest, nil
}

// normalize turns one manifest entry into a Test. An entry may be a single
// command string, a list of commands, or a mapping with a command key. A
// mapping without a command key is the legacy shorthand where the mapping's
// values are the commands.
func normalize(name string, node *yaml.Node) (domain.Test, error) {
	test := domain.Test{
		Name:       name,
		ShowOutput: true,
		PostErrors: true,
	}

	var err error
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag != "!!null" {
			test.Command = []string{node.Value}
		}
	case yaml.SequenceNode:
		test.Command, err = commandList(name, node)
	case yaml.MappingNode:
		err = normalizeMapping(&test, node)
	default:
		err = fmt.Errorf("line %d: test %q has an unsupported value", node.Line, name)
	}
	if err != nil {
		return domain.Test{}, err
	}

	if len(test.Command) == 0 {
		return domain.Test{}, fmt.Errorf("line %d: test %q has no commands", node.Line, name)
	}
	return test, nil
}

func normalizeMapping(test *domain.Test, node *yaml.Node) error {
	var command *yaml.Node
	var shorthand []string

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		value := resolve(node.Content[i+1])

		var err error
		switch key {
		case keyCommand:
			command = value
		case keyDescription:
			test.Description = description(value)
		case keyPostErrors:
			err = option(test.Name, key, value, &test.PostErrors)
		case keyShowOutput:
			err = option(test.Name, key, value, &test.ShowOutput)
		case keyIgnoreFailure:
			err = option(test.Name, key, value, &test.IgnoreFailure)
		default:
			if value.Kind != yaml.ScalarNode {
				err = fmt.Errorf("line %d: test %q: command %q must be a string", value.Line, test.Name, key)
			} else {
				shorthand = append(shorthand, value.Value)
			}
		}
		if err != nil {
			return err
		}
	}

	if command == nil {
		test.Command = shorthand
		return nil
	}

	switch command.Kind {
	case yaml.ScalarNode:
		if command.Tag != "!!null" {
			test.Command = []string{command.Value}
		}
		return nil
	case yaml.SequenceNode:
		var err error
		test.Command, err = commandList(test.Name, command)
		return err
	default:
		return fmt.Errorf("line %d: test %q: command must be a string or a list", command.Line, test.Name)
	}
}

func commandList(name string, node *yaml.Node) ([]string, error) {
	commands := make([]string, 0, len(node.Content))
	for _, item := range node.Content {
		item = resolve(item)
		if item.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("line %d: test %q: commands must be strings", item.Line, name)
		}
		commands = append(commands, item.Value)
	}
	return commands, nil
}

// description returns the description text. Booleans and null mean "use
// the test name" and normalize to empty.
func description(node *yaml.Node) string {
	if node.Kind != yaml.ScalarNode || node.Tag == "!!bool" || node.Tag == "!!null" {
		return ""
	}
	return node.Value
}

func option(name, key string, node *yaml.Node, dst *bool) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil
	}
	if err := node.Decode(dst); err != nil {
		return fmt.Errorf("line %d: test %q: %s must be true or false", node.Line, name, key)
	}
	return nil
}

func resolve(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func manifestErr(err error) error {
	return errors.WithStack(&domain.ManifestError{Err: err})
}
