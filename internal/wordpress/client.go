// Package wordpress is a thin client for the WordPress REST API the site's
// editorial content lives in.
package wordpress

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/Yukoval-Dakia/stone/internal/config"
	"github.com/Yukoval-Dakia/stone/internal/domain"
)

const apiPrefix = "/wp-json/wp/v2"

// Upstream bodies kept for diagnostics are capped; error pages can be huge.
const maxErrorBody = 4 << 10

// RenderedField is how the WP API wraps every rendered string.
type RenderedField struct {
	Rendered string `json:"rendered"`
}

// Document is one page or post as returned by the upstream API.
type Document struct {
	ID      int           `json:"id"`
	Slug    string        `json:"slug"`
	Date    string        `json:"date"`
	Link    string        `json:"link"`
	Title   RenderedField `json:"title"`
	Content RenderedField `json:"content"`
	Excerpt RenderedField `json:"excerpt"`
}

type Client struct {
	base string
	http *http.Client
	log  *zap.Logger
}

func NewClient(cfg *config.WordPressConfig, log *zap.Logger) *Client {
	return &Client{
		base: cfg.BaseURL,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}
}

// PageBySlug looks a page up by its slug. The API returns a filtered list;
// an empty list means the page does not exist.
func (c *Client) PageBySlug(ctx context.Context, slug string) (*Document, error) {
	var pages []Document
	if err := c.get(ctx, "/pages?slug="+url.QueryEscape(slug), &pages); err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("page %q: %w", slug, domain.ErrNotFound)
	}
	return &pages[0], nil
}

// RecentPosts returns the latest posts, newest first.
func (c *Client) RecentPosts(ctx context.Context) ([]Document, error) {
	var posts []Document
	if err := c.get(ctx, "/posts?per_page=10", &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) PostByID(ctx context.Context, id int) (*Document, error) {
	var post Document
	if err := c.get(ctx, "/posts/"+strconv.Itoa(id), &post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+apiPrefix+path, nil)
	if err != nil {
		return &domain.UpstreamError{Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("WordPress request failed", zap.String("path", path), zap.Error(err))
		return &domain.UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.log.Error("WordPress returned error status",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return &domain.UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &domain.UpstreamError{Status: resp.StatusCode, Err: err}
	}
	return nil
}
