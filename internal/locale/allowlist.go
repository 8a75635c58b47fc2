package locale

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// allowlistDocument is the object form {"calculators": [...]}.
type allowlistDocument struct {
	Calculators []string `yaml:"calculators"`
}

// LoadAllowlist reads the extended-locale allowlist. The document may be the
// JSON object {"calculators": [...]}, its YAML equivalent, or a bare list.
// An empty path yields an empty allowlist.
func LoadAllowlist(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading allowlist %s: %w", path, err)
	}

	slugs, err := ParseAllowlist(data)
	if err != nil {
		return nil, fmt.Errorf("parsing allowlist %s: %w", path, err)
	}

	return slugs, nil
}

// ParseAllowlist decodes an allowlist document. JSON is accepted because it
// is a subset of YAML. The result is sorted and deduplicated.
func ParseAllowlist(data []byte) ([]string, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if node.Kind == 0 || len(node.Content) == 0 {
		return nil, nil
	}

	var raw []string
	switch root := node.Content[0]; root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&raw); err != nil {
			return nil, err
		}
	case yaml.MappingNode:
		var doc allowlistDocument
		if err := root.Decode(&doc); err != nil {
			return nil, err
		}
		raw = doc.Calculators
	default:
		return nil, fmt.Errorf("expected a list or an object with a calculators list")
	}

	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, slug := range raw {
		slug = strings.TrimSpace(slug)
		if slug == "" {
			continue
		}
		if _, dup := seen[slug]; dup {
			continue
		}
		seen[slug] = struct{}{}
		out = append(out, slug)
	}
	sort.Strings(out)

	return out, nil
}
