package trigger

import (
	"testing"
)

func TestParseConfig_JSONInput(t *testing.T) {
	input := `{"rss": {"url": "https://example.org/feed.xml"}, "mock": {"repetitions": 2}}`

	sources, err := ParseConfig([]byte(input))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(sources) != 2 {
		t.Fatalf("Expected 2 sources, got %d", len(sources))
	}
	if sources[0].Key != SourceRSS {
		t.Errorf("Expected first source 'rss', got %q", sources[0].Key)
	}
	if sources[1].Key != SourceMock {
		t.Errorf("Expected second source 'mock', got %q", sources[1].Key)
	}
}

func TestParseConfig_PreservesConfigurationOrder(t *testing.T) {
	input := `{"mock": {}, "activitypub": {"host": "example.org"}, "rss": {}}`

	sources, err := ParseConfig([]byte(input))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := []SourceKey{SourceMock, SourceActivityPub, SourceRSS}
	for i, key := range expected {
		if sources[i].Key != key {
			t.Errorf("Source %d: expected %q, got %q", i, key, sources[i].Key)
		}
	}
}

func TestParseConfig_YAMLInput(t *testing.T) {
	input := "rss:\n  url: https://example.org/feed.xml\n"

	sources, err := ParseConfig([]byte(input))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(sources) != 1 {
		t.Fatalf("Expected 1 source, got %d", len(sources))
	}

	var config struct {
		URL string `yaml:"url"`
	}
	if err := sources[0].Decode(&config); err != nil {
		t.Fatalf("Failed to decode source config: %v", err)
	}
	if config.URL != "https://example.org/feed.xml" {
		t.Errorf("Expected decoded URL, got %q", config.URL)
	}
}

func TestParseConfig_EmptyInput(t *testing.T) {
	if _, err := ParseConfig([]byte("")); err == nil {
		t.Error("Expected error for empty configuration")
	}
}

func TestParseConfig_NonMappingInput(t *testing.T) {
	if _, err := ParseConfig([]byte(`["rss"]`)); err == nil {
		t.Error("Expected error for non-mapping configuration")
	}
}
