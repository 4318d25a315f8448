package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/grocerylist/internal/metrics"
	"github.com/dukerupert/grocerylist/internal/model"
)

// DefaultURL is a public todo feed whose titles double as item names.
const DefaultURL = "https://jsonplaceholder.typicode.com/todos"

// ErrNetwork wraps every failure to fetch or decode the remote list.
var ErrNetwork = errors.New("fetch remote list")

// Config holds feed client settings.
type Config struct {
	URL     string
	Timeout time.Duration
}

// Todo is one record of the remote feed.
type Todo struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Client fetches the remote list. It makes exactly one request per call and
// never retries.
type Client struct {
	client  *http.Client
	baseURL string
}

// NewClient creates a Client, applying defaults for empty config fields.
func NewClient(cfg Config) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.URL,
	}
}

// Fetch downloads and decodes the remote list.
func (c *Client) Fetch(ctx context.Context) (todos []Todo, err error) {
	defer func() { metrics.Observe(metrics.FeedFetch, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: remote returned status %d", ErrNetwork, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&todos); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrNetwork, err)
	}
	return todos, nil
}

// ToRecords maps feed records to import records: title becomes the name and
// completed becomes bought.
func ToRecords(todos []Todo) []model.ImportRecord {
	records := make([]model.ImportRecord, 0, len(todos))
	for _, t := range todos {
		records = append(records, model.ImportRecord{
			Name:   strings.TrimSpace(t.Title),
			Bought: t.Completed,
		})
	}
	return records
}
