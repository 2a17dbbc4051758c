package activitypub

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/k3a/html2text"

	"github.com/actionslaw/actionslaw-go/app/trigger"
)

// Minutes is a cutoff window size.
type Minutes int

const (
	defaultCutoff   Minutes = 30
	defaultProtocol         = "https"
)

// Config configures the ActivityPub trigger. The account is resolved either
// directly by id or by webfinger discovery of user@host.
type Config struct {
	Host                   string  `yaml:"host" json:"host"`
	ID                     string  `yaml:"id" json:"id"`
	User                   string  `yaml:"user" json:"user"`
	Cutoff                 Minutes `yaml:"cutoff" json:"cutoff"`
	Protocol               string  `yaml:"protocol" json:"protocol"`
	RemoveTrailingHashtags bool    `yaml:"removeTrailingHashtags" json:"removeTrailingHashtags"`
}

type Trigger struct {
	config Config
	client *Client
	now    func() time.Time
}

func NewTrigger(config Config, httpClient *http.Client, userAgent string) *Trigger {
	return &Trigger{
		config: config,
		client: NewClient(httpClient, userAgent),
		now:    time.Now,
	}
}

func (t *Trigger) Run(ctx context.Context) ([]trigger.Item, error) {
	if t.config.Host == "" || (t.config.ID == "" && t.config.User == "") {
		return nil, fmt.Errorf("activitypub trigger: required config for user [%s%s] or host [%s] missing",
			t.config.ID, t.config.User, t.config.Host)
	}

	protocol := t.config.Protocol
	if protocol == "" {
		protocol = defaultProtocol
	}

	account := t.config.ID
	if account == "" {
		account = t.config.User
	}
	slog.Info("Retrieving activitypub notes", "account", fmt.Sprintf("@%s@%s", account, t.config.Host))

	actorURI := fmt.Sprintf("%s://%s/users/%s", protocol, t.config.Host, t.config.ID)
	if t.config.ID == "" {
		discovered, err := t.client.Discover(ctx, protocol, t.config.Host, t.config.User)
		if err != nil {
			return nil, fmt.Errorf("activitypub trigger: %w", err)
		}
		actorURI = discovered
	}

	actor, err := t.client.Actor(ctx, actorURI)
	if err != nil {
		return nil, fmt.Errorf("activitypub trigger: %w", err)
	}

	activities, err := t.client.Outbox(ctx, actor.Outbox)
	if err != nil {
		return nil, fmt.Errorf("activitypub trigger: %w", err)
	}

	accountID := actor.ID
	if accountID == "" {
		accountID = actorURI
	}

	cutoffPeriod := t.config.Cutoff
	if cutoffPeriod <= 0 {
		cutoffPeriod = defaultCutoff
	}
	cutoff := t.now().Add(-time.Duration(cutoffPeriod) * time.Minute)

	index := NewIndex(activities)

	items := make([]trigger.Item, 0, len(activities))
	for _, activity := range activities {
		if activity.Type != "Create" || activity.Object.Type != "Note" {
			continue
		}
		if activity.Object.BodyHTML() == "" {
			continue
		}
		if !activity.Published.After(cutoff) {
			continue
		}
		if !IsDirectOnly(activity, accountID, index) {
			slog.Debug("Discarding indirect reply", "id", activity.ID, "replyto", activity.Object.InReplyTo)
			continue
		}

		items = append(items, t.toItem(activity))
	}

	slog.Debug("Outbox processed", "account", accountID, "activities", len(activities), "notes", len(items))

	return items, nil
}

func (t *Trigger) toItem(activity Activity) trigger.Item {
	text := strings.TrimSpace(html2text.HTML2TextWithOptions(activity.Object.BodyHTML(),
		html2text.WithLinksInnerText(),
		html2text.WithUnixLineBreaks()))

	tags := []string{}
	if t.config.RemoveTrailingHashtags {
		var extracted []string
		text, extracted = SplitTrailingHashtags(text)
		tags = append(tags, extracted...)
	}

	fields := map[string]any{
		"uri":     activity.ID,
		"message": text,
		"tags":    tags,
	}
	if activity.Object.InReplyTo != "" {
		fields["replyto"] = activity.Object.InReplyTo
	}

	var media []trigger.Attachment
	for _, attachment := range activity.Object.Attachment {
		if attachment.URL == "" {
			continue
		}
		media = append(media, trigger.Attachment{
			URL: attachment.URL,
			Alt: attachment.Name,
		})
	}

	// Key on the note id so a follow-up's replyto matches its parent's key.
	return trigger.Item{
		Key:       trigger.Key(cmp.Or(activity.Object.ID, activity.ID)),
		Published: activity.Published,
		Media:     media,
		Fields:    fields,
	}
}
