// Package ingest turns desktop activity events into categorized, deduplicated
// time entries. Events come from a local ActivityWatch instance (window
// watcher buckets); they are filtered for billable focus time, merged across
// short gaps, bound to matters, and persisted.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the local ActivityWatch API endpoint.
const DefaultBaseURL = "http://127.0.0.1:5600/api/0"

// windowBucketPrefix selects window-watcher buckets; AFK and other watcher
// buckets are not billable activity.
const windowBucketPrefix = "aw-watcher-window_"

// Event is one raw ActivityWatch event.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Duration  float64   `json:"duration"` // seconds
	Data      EventData `json:"data"`
}

// EventData carries the window metadata ActivityWatch attaches to an event.
type EventData struct {
	Title string `json:"title"`
	App   string `json:"app"`
	URL   string `json:"url"`
}

// Bucket is an ActivityWatch event bucket.
type Bucket struct {
	ID string `json:"id"`
}

// Client talks to the ActivityWatch REST API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a client for the given base URL ("" for the default).
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("activitywatch request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("activitywatch error %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding activitywatch response: %w", err)
	}
	return nil
}

// WindowBuckets lists the IDs of window-watcher buckets. The buckets
// endpoint returns a map keyed by bucket ID.
func (c *Client) WindowBuckets(ctx context.Context) ([]string, error) {
	var raw map[string]json.RawMessage
	if err := c.get(ctx, c.BaseURL+"/buckets", &raw); err != nil {
		return nil, err
	}
	var ids []string
	for id := range raw {
		if len(id) >= len(windowBucketPrefix) && id[:len(windowBucketPrefix)] == windowBucketPrefix {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Events fetches a bucket's events in [start, end].
func (c *Client) Events(ctx context.Context, bucketID string, start, end time.Time) ([]Event, error) {
	endpoint := fmt.Sprintf("%s/buckets/%s/events?start=%s&end=%s",
		c.BaseURL,
		url.PathEscape(bucketID),
		url.QueryEscape(start.Format(time.RFC3339)),
		url.QueryEscape(end.Format(time.RFC3339)),
	)
	var events []Event
	if err := c.get(ctx, endpoint, &events); err != nil {
		return nil, err
	}
	return events, nil
}
