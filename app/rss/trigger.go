package rss

import (
	"bytes"
	"cmp"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/actionslaw/actionslaw-go/app/trigger"
)

// Config configures the feed trigger. An empty URL yields an empty batch
// rather than an error so a source can be wired but dormant.
type Config struct {
	URL            string `yaml:"url" json:"url"`
	ExtractContent bool   `yaml:"extractContent" json:"extractContent"`
}

type Trigger struct {
	config       Config
	httpClient   *http.Client
	gofeedParser *gofeed.Parser
	extractor    *ContentExtractor
	userAgent    string
}

func NewTrigger(config Config, httpClient *http.Client, userAgent string) *Trigger {
	return &Trigger{
		config:       config,
		httpClient:   httpClient,
		gofeedParser: gofeed.NewParser(),
		extractor:    NewContentExtractor(),
		userAgent:    userAgent,
	}
}

func (t *Trigger) Run(ctx context.Context) ([]trigger.Item, error) {
	if t.config.URL == "" {
		return []trigger.Item{}, nil
	}

	data, err := t.fetch(ctx, t.config.URL)
	if err != nil {
		return nil, fmt.Errorf("rss trigger: failed to fetch feed %s: %w", t.config.URL, err)
	}

	feed, err := t.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("rss trigger: failed to parse feed %s: %w", t.config.URL, err)
	}

	slog.Debug("Feed fetched", "url", t.config.URL, "title", feed.Title, "items", len(feed.Items))

	items := make([]trigger.Item, 0, len(feed.Items))
	for _, feedItem := range feed.Items {
		item := t.normalizeItem(feedItem)

		if t.config.ExtractContent && feedItem.Link != "" {
			if content, err := t.extractContent(ctx, feedItem.Link); err != nil {
				slog.Warn("Content extraction failed, keeping feed description", "link", feedItem.Link, "error", err)
			} else {
				item.Fields["content"] = content
			}
		}

		items = append(items, item)
	}

	return items, nil
}

func (t *Trigger) normalizeItem(item *gofeed.Item) trigger.Item {
	fields := map[string]any{}

	if item.Title != "" {
		fields["title"] = item.Title
	}
	if item.Link != "" {
		fields["link"] = item.Link
	}
	if item.GUID != "" {
		fields["guid"] = item.GUID
	}
	if item.Description != "" {
		fields["contentSnippet"] = item.Description
	}
	if item.Content != "" {
		fields["content"] = item.Content
	}
	if item.Published != "" {
		fields["pubDate"] = item.Published
	}
	if creator := t.extractCreator(item); creator != "" {
		fields["creator"] = creator
	}
	if len(item.Categories) > 0 {
		fields["categories"] = item.Categories
	}

	var published time.Time
	if item.PublishedParsed != nil {
		published = *item.PublishedParsed
		fields["isoDate"] = published.UTC().Format(time.RFC3339)
	}

	var media []trigger.Attachment
	for _, enclosure := range item.Enclosures {
		if enclosure != nil && enclosure.URL != "" {
			media = append(media, trigger.Attachment{URL: enclosure.URL})
		}
	}

	return trigger.Item{
		Key:       t.deriveKey(item),
		Published: published,
		Media:     media,
		Fields:    fields,
	}
}

// deriveKey picks a stable identity for the item: the feed-provided guid, the
// item link, or a content hash as last resort.
func (t *Trigger) deriveKey(item *gofeed.Item) trigger.Key {
	if key := cmp.Or(item.GUID, item.Link); key != "" {
		return trigger.Key(key)
	}

	content := fmt.Sprintf("%s|%s|%s|%s",
		item.Title,
		item.Description,
		item.Published,
		item.Content)

	hash := sha256.Sum256([]byte(content))
	return trigger.Key(hex.EncodeToString(hash[:]))
}

func (t *Trigger) extractCreator(item *gofeed.Item) string {
	if len(item.Authors) > 0 && item.Authors[0] != nil {
		return cmp.Or(item.Authors[0].Name, item.Authors[0].Email)
	}
	if item.Author != nil {
		return cmp.Or(item.Author.Name, item.Author.Email)
	}
	return ""
}

func (t *Trigger) extractContent(ctx context.Context, link string) (string, error) {
	data, err := t.fetch(ctx, link)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}

	return t.extractor.Run(data, link)
}

func (t *Trigger) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
