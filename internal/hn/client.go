package hn

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://hacker-news.firebaseio.com/v0"

	userAgent = "hkrnws/1.0 (Hacker News reader; github.com/pders01/hkrnws)"
	timeout   = 10 * time.Second

	// The Firebase API has no documented quota; stay polite anyway.
	requestsPerSecond = 10
	requestBurst      = 10
)

// ErrNotFound is returned when the API answers with a JSON null,
// which is how it reports deleted or unknown items.
var ErrNotFound = errors.New("item not found")

type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

func NewClient() *Client {
	return NewClientWithBaseURL(defaultBaseURL)
}

// NewClientWithBaseURL exists so tests can point the client at a local server.
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
	}
}

// SetTimeout overrides the default per-request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.client.Timeout = d
	}
}

// TopStoryIDs returns the current top-story IDs in rank order.
func (c *Client) TopStoryIDs(ctx context.Context) ([]int, error) {
	var ids []int
	if err := c.getJSON(ctx, c.baseURL+"/topstories.json", &ids); err != nil {
		return nil, fmt.Errorf("fetching top stories: %w", err)
	}
	return ids, nil
}

// Story retrieves a single item by ID.
func (c *Client) Story(ctx context.Context, id int) (*Story, error) {
	var story *Story
	if err := c.getJSON(ctx, fmt.Sprintf("%s/item/%d.json", c.baseURL, id), &story); err != nil {
		return nil, fmt.Errorf("fetching item %d: %w", id, err)
	}
	if story == nil {
		return nil, fmt.Errorf("item %d: %w", id, ErrNotFound)
	}
	story.ID = id
	return story, nil
}

func (c *Client) getJSON(ctx context.Context, url string, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	return nil
}
