package taxonomy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"admatch/internal/util"
)

// Source produces complete graphs for the Registry.
type Source interface {
	Load(ctx context.Context) (*Graph, error)
	String() string
}

// FileSource loads a YAML or JSON taxonomy artifact from disk.
type FileSource struct {
	Path string
}

func (s FileSource) Load(ctx context.Context) (*Graph, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadFile(s.Path)
}

func (s FileSource) String() string { return s.Path }

type artifact struct {
	Version    string    `yaml:"version"`
	Categories yaml.Node `yaml:"categories"`
}

var definitionFields = map[string]struct{}{
	"display_name": {},
	"primary":      {},
	"related":      {},
	"fallback":     {},
}

// LoadFile reads and compiles the artifact at path.
func LoadFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse compiles a taxonomy artifact. Category order in the artifact is kept
// as the declaration order of neighbor lists.
func Parse(data []byte, source string) (*Graph, error) {
	problems := &LoadError{Source: source}

	text, err := util.CleanText(data, source)
	if err != nil {
		problems.add("%v", err)
		return nil, problems
	}

	dec := yaml.NewDecoder(strings.NewReader(text))
	dec.KnownFields(true)
	var a artifact
	if err := dec.Decode(&a); err != nil {
		if errors.Is(err, io.EOF) {
			problems.add("artifact is empty")
		} else {
			problems.add("unparsable artifact: %v", err)
		}
		return nil, problems
	}

	defs := parseDefinitions(&a.Categories, problems)
	if len(problems.Problems) > 0 {
		return nil, problems
	}
	return Build(a.Version, source, defs)
}

func parseDefinitions(node *yaml.Node, problems *LoadError) []Definition {
	if node.Kind == 0 {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		problems.add("line %d: categories must be a mapping", node.Line)
		return nil
	}

	defs := make([]Definition, 0, len(node.Content)/2)
	firstLine := make(map[string]int, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			problems.add("line %d: category key must be a string", keyNode.Line)
			continue
		}
		if key := Normalize(keyNode.Value); key != "" {
			if line, dup := firstLine[key]; dup {
				problems.add("line %d: category %q already defined on line %d", keyNode.Line, keyNode.Value, line)
				continue
			}
			firstLine[key] = keyNode.Line
		}
		def := Definition{Category: keyNode.Value}

		switch valueNode.Kind {
		case yaml.MappingNode:
			for j := 0; j+1 < len(valueNode.Content); j += 2 {
				field := valueNode.Content[j].Value
				if _, ok := definitionFields[field]; !ok {
					problems.add("line %d: category %q has unknown field %q", valueNode.Content[j].Line, keyNode.Value, field)
				}
			}
			var entry struct {
				DisplayName string   `yaml:"display_name"`
				Primary     []string `yaml:"primary"`
				Related     []string `yaml:"related"`
				Fallback    []string `yaml:"fallback"`
			}
			if err := valueNode.Decode(&entry); err != nil {
				problems.add("line %d: category %q: %v", valueNode.Line, keyNode.Value, err)
				continue
			}
			def.DisplayName = entry.DisplayName
			def.Primary = entry.Primary
			def.Related = entry.Related
			def.Fallback = entry.Fallback
		case yaml.ScalarNode:
			if valueNode.Tag != "!!null" {
				problems.add("line %d: category %q must map to neighbor lists", valueNode.Line, keyNode.Value)
				continue
			}
		default:
			problems.add("line %d: category %q must map to neighbor lists", valueNode.Line, keyNode.Value)
			continue
		}
		defs = append(defs, def)
	}
	return defs
}
