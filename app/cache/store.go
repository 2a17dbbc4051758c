package cache

import "context"

// Store is an opaque blob store addressed by string key. Put is idempotent and
// order-independent; Has is an existence probe only.
type Store interface {
	Has(ctx context.Context, key string) (bool, error)
	Put(ctx context.Context, key string, files map[string][]byte) error
}
