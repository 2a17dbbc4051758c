package action

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/actionslaw/actionslaw-go/app/cache"
	"github.com/actionslaw/actionslaw-go/app/cfg"
	"github.com/actionslaw/actionslaw-go/app/trigger"
)

// Action orchestrates one invocation: it fans out to the configured triggers,
// filters the merged batch through the dedup ledger, sorts it, and hands media
// caching off to tracked background tasks.
type Action struct {
	cfg          *cfg.Cfg
	httpClient   *http.Client
	triggerCache *cache.TriggerCache
	media        *cache.Media

	mediaTasks sync.WaitGroup
}

func New(c *cfg.Cfg, store cache.Store) *Action {
	httpClient := &http.Client{
		Timeout: time.Duration(c.Timeout) * time.Second,
	}

	return &Action{
		cfg:          c,
		httpClient:   httpClient,
		triggerCache: cache.NewTriggerCache(store),
		media:        cache.NewMedia(store, httpClient, c.MediaDir, c.UserAgent),
	}
}

// Run executes all configured triggers concurrently, fail-fast, and returns
// the deduplicated batch in ascending published order. Media caching for the
// survivors is launched in the background; Wait drains it.
func (a *Action) Run(ctx context.Context) ([]trigger.Item, error) {
	sources, err := trigger.ParseConfig([]byte(a.cfg.On))
	if err != nil {
		return nil, err
	}

	// Resolve every source before any I/O so an unrecognized key aborts the
	// whole run up front.
	triggers := make([]trigger.Trigger, len(sources))
	keys := make([]trigger.SourceKey, len(sources))
	for i, source := range sources {
		resolved, err := a.newTrigger(source)
		if err != nil {
			return nil, err
		}
		triggers[i] = resolved
		keys[i] = source.Key
	}

	slog.Info("Running triggers", "sources", keys)

	results := make([][]trigger.Item, len(triggers))
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range triggers {
		g.Go(func() error {
			items, err := t.Run(gctx)
			if err != nil {
				return err
			}
			results[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := []trigger.Item{}
	for _, result := range results {
		items = append(items, result...)
	}

	survivors, err := a.filterCached(ctx, items)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(survivors, func(i, j int) bool {
		return survivors[i].Published.Before(survivors[j].Published)
	})

	for _, item := range survivors {
		if len(item.Media) == 0 {
			continue
		}

		a.mediaTasks.Add(1)
		go func(item trigger.Item) {
			defer a.mediaTasks.Done()
			if err := a.media.Cache(context.WithoutCancel(ctx), item.Key, item.Media); err != nil {
				slog.Error("Media caching failed", "key", item.Key, "error", err)
			}
		}(item)
	}

	slog.Info("Triggering items", "total", len(items), "new", len(survivors))

	return survivors, nil
}

// filterCached drops items whose keys are already in the ledger, probing all
// keys concurrently. With caching disabled every item passes through.
func (a *Action) filterCached(ctx context.Context, items []trigger.Item) ([]trigger.Item, error) {
	if !a.cfg.Cache {
		return items, nil
	}

	cached := make([]bool, len(items))
	g, gctx := errgroup.WithContext(ctx)
	for i, item := range items {
		g.Go(func() error {
			isCached, err := a.triggerCache.IsCached(gctx, item.Key)
			if err != nil {
				return fmt.Errorf("failed to check cache for key %s: %w", item.Key, err)
			}
			cached[i] = isCached
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	survivors := make([]trigger.Item, 0, len(items))
	for i, item := range items {
		if !cached[i] {
			survivors = append(survivors, item)
		}
	}

	return survivors, nil
}

// SaveCache appends the emitted keys to the dedup ledger. No-op with caching
// disabled.
func (a *Action) SaveCache(ctx context.Context, items []trigger.Item) error {
	if !a.cfg.Cache {
		return nil
	}

	keys := make([]trigger.Key, 0, len(items))
	for _, item := range items {
		keys = append(keys, item.Key)
	}

	return a.triggerCache.Save(ctx, keys)
}

// Wait blocks until all background media-cache tasks have finished.
func (a *Action) Wait() {
	a.mediaTasks.Wait()
}
