package action

import (
	"fmt"

	"github.com/actionslaw/actionslaw-go/app/activitypub"
	"github.com/actionslaw/actionslaw-go/app/rss"
	"github.com/actionslaw/actionslaw-go/app/trigger"
)

// newTrigger resolves a source key against the closed set of trigger
// implementations. The switch is exhaustive over trigger.SourceKey values.
func (a *Action) newTrigger(source trigger.Source) (trigger.Trigger, error) {
	switch source.Key {
	case trigger.SourceRSS:
		var config rss.Config
		if err := source.Decode(&config); err != nil {
			return nil, err
		}
		return rss.NewTrigger(config, a.httpClient, a.cfg.UserAgent), nil

	case trigger.SourceActivityPub:
		var config activitypub.Config
		if err := source.Decode(&config); err != nil {
			return nil, err
		}
		return activitypub.NewTrigger(config, a.httpClient, a.cfg.UserAgent), nil

	case trigger.SourceMock:
		var config trigger.MockConfig
		if err := source.Decode(&config); err != nil {
			return nil, err
		}
		return trigger.NewMockTrigger(config), nil

	default:
		return nil, fmt.Errorf("no trigger found for key %q", source.Key)
	}
}
