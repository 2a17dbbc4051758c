package cache

import (
	"context"
	"errors"
	"log/slog"

	"github.com/actionslaw/actionslaw-go/app/trigger"
)

// triggerMarker is the blob name recorded for every emitted key. Its presence
// is what IsCached probes; the content is incidental.
const triggerMarker = "actionslaw.cache.json"

// TriggerCache is the dedup ledger: a key saved in one run is reported cached
// in every later run until the store is reset. Keys are only ever added.
type TriggerCache struct {
	store Store
}

func NewTriggerCache(store Store) *TriggerCache {
	return &TriggerCache{store: store}
}

func (c *TriggerCache) IsCached(ctx context.Context, key trigger.Key) (bool, error) {
	slog.Debug("Checking trigger cache", "key", key)
	return c.store.Has(ctx, string(key))
}

// Save records each key in the ledger. Writes are individually idempotent and
// order-independent; a failed key is logged, skipped, and does not stop the
// others.
func (c *TriggerCache) Save(ctx context.Context, keys []trigger.Key) error {
	var errs []error
	for _, key := range keys {
		slog.Debug("Caching trigger", "key", key)

		err := c.store.Put(ctx, string(key), map[string][]byte{
			triggerMarker: []byte(key),
		})
		if err != nil {
			slog.Error("Failed to cache trigger key", "key", key, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
