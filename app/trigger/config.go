package trigger

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// SourceKey identifies a trigger implementation. The set is closed: resolution
// happens through an exhaustive switch so an unrecognized key fails before any
// network I/O.
type SourceKey string

const (
	SourceRSS         SourceKey = "rss"
	SourceActivityPub SourceKey = "activitypub"
	SourceMock        SourceKey = "mock"
)

// Source is one (key, config) pair from the "on" input, in configuration
// order.
type Source struct {
	Key    SourceKey
	config *yaml.Node
}

// Decode unmarshals the source's configuration block into out.
func (s Source) Decode(out any) error {
	if s.config == nil {
		return nil
	}
	if err := s.config.Decode(out); err != nil {
		return fmt.Errorf("invalid %s configuration: %w", s.Key, err)
	}
	return nil
}

// ParseConfig parses the "on" input into an ordered list of sources. The input
// is a mapping of source key to source configuration; JSON and YAML are both
// accepted (the CI surface passes JSON).
func ParseConfig(data []byte) ([]Source, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse trigger configuration: %w", err)
	}

	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, fmt.Errorf("trigger configuration is empty")
	}

	mapping := root.Content[0]
	if mapping.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("trigger configuration must be a mapping of source key to config")
	}

	sources := make([]Source, 0, len(mapping.Content)/2)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		keyNode := mapping.Content[i]
		valueNode := mapping.Content[i+1]

		sources = append(sources, Source{
			Key:    SourceKey(keyNode.Value),
			config: valueNode,
		})
	}

	return sources, nil
}
