// Package websearch queries an external search webhook for answers that
// the local knowledge base cannot cover.
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Source is a single citation returned by the search backend.
type Source struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Result is the outcome of an online search. An empty Answer means the
// search produced nothing usable.
type Result struct {
	Answer  string
	Sources []Source
}

// Config holds the webhook endpoint settings.
type Config struct {
	// URL is the webhook endpoint. The question is passed as a query
	// parameter.
	URL string

	// Timeout bounds a single search round trip.
	Timeout time.Duration
}

// Client calls the search webhook. Failures are logged and reported as an
// empty Result so the caller can fall through to generation.
type Client struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type searchResponse struct {
	Response string   `json:"response"`
	Sources  []Source `json:"sources"`
}

// Search asks the webhook to answer the question. It never returns an
// error: any failure degrades to an empty Result.
func (c *Client) Search(ctx context.Context, question string) Result {
	if c.cfg.URL == "" {
		return Result{}
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s?question=%s", c.cfg.URL, url.QueryEscape(question))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.logger.Warn("online search request build failed", "error", err)
		return Result{}
	}

	start := time.Now()

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("online search unreachable", "error", err)
		return Result{}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("online search returned non-OK status", "status", resp.StatusCode)
		return Result{}
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		c.logger.Warn("online search response undecodable", "error", err)
		return Result{}
	}

	c.logger.Debug("online search completed",
		"duration", time.Since(start),
		"sources", len(body.Sources),
	)

	return Result{
		Answer:  strings.TrimSpace(body.Response),
		Sources: body.Sources,
	}
}
