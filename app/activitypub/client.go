package activitypub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const activityMediaType = "application/activity+json"

// Client fetches webfinger, actor, and outbox documents from a single remote
// instance.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

func NewClient(httpClient *http.Client, userAgent string) *Client {
	return &Client{
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

// Discover resolves an account handle to its actor URI via webfinger.
func (c *Client) Discover(ctx context.Context, protocol, host, user string) (string, error) {
	uri := fmt.Sprintf("%s://%s/.well-known/webfinger?resource=%s",
		protocol, host, url.QueryEscape(fmt.Sprintf("acct:%s@%s", user, host)))

	var account struct {
		Links []struct {
			Rel  string `json:"rel"`
			Href string `json:"href"`
		} `json:"links"`
	}

	if err := c.get(ctx, uri, "application/jrd+json", &account); err != nil {
		return "", fmt.Errorf("webfinger lookup for @%s@%s failed: %w", user, host, err)
	}

	for _, link := range account.Links {
		if link.Rel == "self" && link.Href != "" {
			return link.Href, nil
		}
	}

	return "", fmt.Errorf("no user found for [@%s@%s]", user, host)
}

// Actor fetches the actor document for the given URI.
func (c *Client) Actor(ctx context.Context, uri string) (*Actor, error) {
	var actor Actor
	if err := c.get(ctx, uri, activityMediaType, &actor); err != nil {
		return nil, fmt.Errorf("failed to fetch actor %s: %w", uri, err)
	}

	if actor.Outbox == "" {
		return nil, fmt.Errorf("actor %s has no outbox", uri)
	}

	return &actor, nil
}

// Outbox fetches the first page of an actor's outbox.
func (c *Client) Outbox(ctx context.Context, outboxURL string) ([]Activity, error) {
	var page outboxPage
	if err := c.get(ctx, outboxURL+"?page=true", activityMediaType, &page); err != nil {
		return nil, fmt.Errorf("failed to fetch outbox %s: %w", outboxURL, err)
	}

	return page.OrderedItems, nil
}

func (c *Client) get(ctx context.Context, uri, accept string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", uri, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", accept)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err := errorField(body); err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

// errorField surfaces remote errors delivered in a 200 body.
func errorField(body []byte) error {
	var remote struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &remote); err != nil {
		return nil
	}
	if remote.Error != "" {
		return fmt.Errorf("remote error: %s", remote.Error)
	}
	return nil
}
