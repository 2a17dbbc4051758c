package trigger

import (
	"context"
	"encoding/json"
	"time"
)

// Key is the stable identity of an item. Equal logical content must map to an
// equal Key across runs: it is used both for emission identity and for dedup
// ledger lookups.
type Key string

type Attachment struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// Item is the normalized unit of content every trigger produces. Fields holds
// the source-specific payload (message, title, replyto, feed metadata) that is
// flattened onto the serialized object next to key and published.
type Item struct {
	Key       Key
	Published time.Time
	Media     []Attachment
	Fields    map[string]any
}

func (i Item) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(i.Fields)+3)
	for k, v := range i.Fields {
		out[k] = v
	}
	out["key"] = i.Key
	out["published"] = i.Published.UTC().Format(time.RFC3339)
	if len(i.Media) > 0 {
		out["media"] = i.Media
	}
	return json.Marshal(out)
}

type Trigger interface {
	Run(ctx context.Context) ([]Item, error)
}
