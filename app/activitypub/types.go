package activitypub

import (
	"encoding/json"
	"time"
)

// Activity is one entry of an account's outbox page. Only Create activities
// wrapping a Note object are surfaced by the trigger; everything else is
// carried through parsing and filtered out later.
type Activity struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Published time.Time `json:"published"`
	Object    Object    `json:"object"`
}

// Object is the wrapped note. InReplyToAccountID is an optional extension
// carried by some servers; when absent, reply ownership is derived from the
// outbox index (see classifier.go).
type Object struct {
	ID                 string             `json:"id"`
	Type               string             `json:"type"`
	Content            string             `json:"content"`
	ContentMap         map[string]string  `json:"contentMap"`
	InReplyTo          string             `json:"inReplyTo"`
	InReplyToAccountID string             `json:"inReplyToAccountId"`
	AttributedTo       string             `json:"attributedTo"`
	Attachment         []ObjectAttachment `json:"attachment"`
}

type ObjectAttachment struct {
	Type string `json:"type"`
	URL  string `json:"url"`
	Name string `json:"name"`
}

// UnmarshalJSON tolerates activities whose object is a bare IRI string
// (Announce entries); those keep a zero Object and never pass the Note filter.
func (a *Activity) UnmarshalJSON(data []byte) error {
	type activity struct {
		ID        string          `json:"id"`
		Type      string          `json:"type"`
		Published time.Time       `json:"published"`
		Object    json.RawMessage `json:"object"`
	}

	var raw activity
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	a.ID = raw.ID
	a.Type = raw.Type
	a.Published = raw.Published

	if len(raw.Object) > 0 && raw.Object[0] == '{' {
		if err := json.Unmarshal(raw.Object, &a.Object); err != nil {
			return err
		}
	}

	return nil
}

// BodyHTML returns the note's rendered HTML body, preferring the plain
// content field over the language-keyed content map.
func (o Object) BodyHTML() string {
	if o.Content != "" {
		return o.Content
	}
	if body, ok := o.ContentMap["en"]; ok {
		return body
	}
	for _, body := range o.ContentMap {
		return body
	}
	return ""
}

type Actor struct {
	ID     string `json:"id"`
	Outbox string `json:"outbox"`
}

type outboxPage struct {
	OrderedItems []Activity `json:"orderedItems"`
}
