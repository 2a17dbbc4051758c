package trigger

import (
	"context"
	"fmt"
	"time"
)

// MockConfig configures the synthetic trigger used to exercise the pipeline
// without network dependencies.
type MockConfig struct {
	Repetitions int            `yaml:"repetitions" json:"repetitions"`
	Payload     map[string]any `yaml:"payload" json:"payload"`
}

type MockTrigger struct {
	config MockConfig
}

func NewMockTrigger(config MockConfig) *MockTrigger {
	return &MockTrigger{config: config}
}

// Run returns Repetitions copies (default 1) of the configured payload, or an
// empty batch when no payload is configured.
func (t *MockTrigger) Run(ctx context.Context) ([]Item, error) {
	if t.config.Payload == nil {
		return []Item{}, nil
	}

	item, err := itemFromPayload(t.config.Payload)
	if err != nil {
		return nil, fmt.Errorf("mock trigger: %w", err)
	}

	repetitions := t.config.Repetitions
	if repetitions <= 0 {
		repetitions = 1
	}

	items := make([]Item, repetitions)
	for i := range items {
		items[i] = item
	}

	return items, nil
}

func itemFromPayload(payload map[string]any) (Item, error) {
	item := Item{Fields: make(map[string]any)}

	for name, value := range payload {
		switch name {
		case "key":
			key, ok := value.(string)
			if !ok {
				return Item{}, fmt.Errorf("payload key must be a string, got %T", value)
			}
			item.Key = Key(key)
		case "published":
			published, ok := value.(string)
			if !ok {
				return Item{}, fmt.Errorf("payload published must be a string, got %T", value)
			}
			parsed, err := time.Parse(time.RFC3339, published)
			if err != nil {
				return Item{}, fmt.Errorf("payload published is not a valid timestamp: %w", err)
			}
			item.Published = parsed
		case "media":
			attachments, err := attachmentsFromPayload(value)
			if err != nil {
				return Item{}, err
			}
			item.Media = attachments
		default:
			item.Fields[name] = value
		}
	}

	if item.Key == "" {
		return Item{}, fmt.Errorf("payload is missing required field key")
	}

	return item, nil
}

func attachmentsFromPayload(value any) ([]Attachment, error) {
	entries, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("payload media must be a list, got %T", value)
	}

	attachments := make([]Attachment, 0, len(entries))
	for _, entry := range entries {
		fields, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("payload media entry must be a mapping, got %T", entry)
		}

		var attachment Attachment
		if url, ok := fields["url"].(string); ok {
			attachment.URL = url
		}
		if alt, ok := fields["alt"].(string); ok {
			attachment.Alt = alt
		}
		attachments = append(attachments, attachment)
	}

	return attachments, nil
}
