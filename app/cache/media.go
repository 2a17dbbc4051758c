package cache

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/actionslaw/actionslaw-go/app/trigger"
)

// Media downloads an item's attachments into a scratch folder namespaced by
// the item key, writes alt-text sidecars, persists the folder in the blob
// store under the key, and clears the scratch copy.
type Media struct {
	store      Store
	httpClient *http.Client
	folder     string
	userAgent  string
}

func NewMedia(store Store, httpClient *http.Client, folder string, userAgent string) *Media {
	return &Media{
		store:      store,
		httpClient: httpClient,
		folder:     folder,
		userAgent:  userAgent,
	}
}

// Cache persists all attachments for a key, or nothing: a single download
// failure aborts the whole operation. Failures here never affect the dedup
// ledger.
func (m *Media) Cache(ctx context.Context, key trigger.Key, media []trigger.Attachment) error {
	if len(media) == 0 {
		return nil
	}

	scratch := filepath.Join(m.folder, sanitizeKey(string(key)))
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return fmt.Errorf("failed to create media folder %s: %w", scratch, err)
	}
	defer os.RemoveAll(scratch)

	files := make(map[string][]byte, len(media)*2)
	for _, attachment := range media {
		name, err := fileName(attachment.URL)
		if err != nil {
			return fmt.Errorf("invalid media URL %s: %w", attachment.URL, err)
		}

		data, err := m.download(ctx, attachment.URL)
		if err != nil {
			return fmt.Errorf("failed to download media %s: %w", attachment.URL, err)
		}

		if err := os.WriteFile(filepath.Join(scratch, name), data, 0o644); err != nil {
			return fmt.Errorf("failed to write media file %s: %w", name, err)
		}
		files[name] = data

		if attachment.Alt != "" {
			altName := name + ".alt.txt"
			if err := os.WriteFile(filepath.Join(scratch, altName), []byte(attachment.Alt), 0o644); err != nil {
				return fmt.Errorf("failed to write alt text %s: %w", altName, err)
			}
			files[altName] = []byte(attachment.Alt)
		}
	}

	slog.Info("Caching media", "key", key, "files", len(files))

	if err := m.store.Put(ctx, string(key), files); err != nil {
		return fmt.Errorf("failed to persist media for key %s: %w", key, err)
	}

	return nil
}

func (m *Media) download(ctx context.Context, mediaURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", mediaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", m.userAgent)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	return io.ReadAll(resp.Body)
}

func fileName(mediaURL string) (string, error) {
	parsed, err := url.Parse(mediaURL)
	if err != nil {
		return "", err
	}

	name := path.Base(parsed.Path)
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("no file name in path %q", parsed.Path)
	}

	return name, nil
}

// sanitizeKey maps an arbitrary key (usually a URI) to a folder name.
func sanitizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, key)
}
