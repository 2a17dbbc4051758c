package rss

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Test Feed</title>
    <link>https://example.org</link>
    <description>A test feed</description>
    <item>
      <guid>guid-1</guid>
      <title>First</title>
      <link>https://example.org/first</link>
      <description>First item</description>
      <pubDate>Mon, 01 Jan 2024 10:00:00 GMT</pubDate>
      <category>news</category>
    </item>
    <item>
      <title>Second</title>
      <link>https://example.org/second</link>
      <description>Second item, no guid</description>
      <pubDate>Mon, 01 Jan 2024 11:00:00 GMT</pubDate>
    </item>
    <item>
      <title>Third</title>
      <description>Third item, no guid and no link</description>
    </item>
    <item>
      <guid>guid-4</guid>
      <title>With enclosure</title>
      <link>https://example.org/enclosure</link>
      <enclosure url="https://example.org/media/episode.mp3" length="1024" type="audio/mpeg"/>
      <pubDate>Mon, 01 Jan 2024 12:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

func newFeedServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestTrigger_EmptyURL(t *testing.T) {
	feed := NewTrigger(Config{}, http.DefaultClient, "actionslaw-test")

	items, err := feed.Run(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("Expected empty batch without a URL, got %d items", len(items))
	}
}

func TestTrigger_ParsesFeed(t *testing.T) {
	server := newFeedServer(t, testFeed)
	feed := NewTrigger(Config{URL: server.URL}, server.Client(), "actionslaw-test")

	items, err := feed.Run(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(items) != 4 {
		t.Fatalf("Expected 4 items, got %d", len(items))
	}

	first := items[0]
	if first.Fields["title"] != "First" {
		t.Errorf("Expected title 'First', got %v", first.Fields["title"])
	}
	if first.Fields["link"] != "https://example.org/first" {
		t.Errorf("Expected link field, got %v", first.Fields["link"])
	}
	if first.Fields["contentSnippet"] != "First item" {
		t.Errorf("Expected contentSnippet field, got %v", first.Fields["contentSnippet"])
	}
	if first.Published.IsZero() {
		t.Error("Expected published timestamp to be parsed")
	}
	if first.Fields["isoDate"] != "2024-01-01T10:00:00Z" {
		t.Errorf("Expected isoDate field, got %v", first.Fields["isoDate"])
	}
}

func TestTrigger_KeyDerivation(t *testing.T) {
	server := newFeedServer(t, testFeed)
	feed := NewTrigger(Config{URL: server.URL}, server.Client(), "actionslaw-test")

	items, err := feed.Run(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// guid wins over link
	if items[0].Key != "guid-1" {
		t.Errorf("Expected guid as key, got %q", items[0].Key)
	}

	// link when no guid
	if items[1].Key != "https://example.org/second" {
		t.Errorf("Expected link as key, got %q", items[1].Key)
	}

	// content hash as last resort: stable, hex-encoded
	if len(items[2].Key) != 64 {
		t.Errorf("Expected sha256 content-hash key, got %q", items[2].Key)
	}

	again, err := feed.Run(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error on second run: %v", err)
	}
	if again[2].Key != items[2].Key {
		t.Errorf("Content-hash key must be stable across runs: %q != %q", again[2].Key, items[2].Key)
	}
}

func TestTrigger_EnclosureBecomesMedia(t *testing.T) {
	server := newFeedServer(t, testFeed)
	feed := NewTrigger(Config{URL: server.URL}, server.Client(), "actionslaw-test")

	items, err := feed.Run(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	withEnclosure := items[3]
	if len(withEnclosure.Media) != 1 {
		t.Fatalf("Expected one media attachment, got %d", len(withEnclosure.Media))
	}
	if withEnclosure.Media[0].URL != "https://example.org/media/episode.mp3" {
		t.Errorf("Unexpected enclosure URL: %q", withEnclosure.Media[0].URL)
	}
}

func TestTrigger_FetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	feed := NewTrigger(Config{URL: server.URL}, server.Client(), "actionslaw-test")

	if _, err := feed.Run(context.Background()); err == nil {
		t.Error("Expected fetch error to propagate")
	}
}

func TestTrigger_MalformedFeed(t *testing.T) {
	server := newFeedServer(t, "this is not a feed")
	feed := NewTrigger(Config{URL: server.URL}, server.Client(), "actionslaw-test")

	if _, err := feed.Run(context.Background()); err == nil {
		t.Error("Expected parse error to propagate")
	}
}
