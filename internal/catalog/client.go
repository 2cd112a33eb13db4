// Package catalog is the HTTP client for the catalog service the detail
// site reads majors from.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/stemsi/majorcatalog/internal/model"
)

var (
	// ErrNotFound means the catalog answered 404 for the requested major.
	ErrNotFound = errors.New("catalog: major not found")
	// ErrUnavailable covers transport errors, non-404 failures and bodies
	// that cannot be decoded.
	ErrUnavailable = errors.New("catalog: unavailable")
)

// StatusError is returned for any non-2xx catalog response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog: %s returned status %d", e.URL, e.StatusCode)
}

// Unwrap maps the status onto ErrNotFound or ErrUnavailable.
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return ErrUnavailable
}

// Options configures a Client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
}

// Client reads majors from the catalog API.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient creates a catalog client from explicit options.
func NewClient(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		http:    hc,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
	}
}

// GetMajor fetches GET /api/majors/{id}.
func (c *Client) GetMajor(ctx context.Context, id string) (*model.Major, error) {
	endpoint := c.baseURL + "/api/majors/" + url.PathEscape(id)

	var major model.Major
	if err := c.getJSON(ctx, endpoint, &major); err != nil {
		return nil, err
	}
	if major.MajorID == "" {
		return nil, fmt.Errorf("empty record from %s: %w", endpoint, ErrNotFound)
	}
	return &major, nil
}

// ListMajors fetches GET /api/majors?subject=&page=&page_size=.
func (c *Client) ListMajors(ctx context.Context, filter model.MajorFilter) (*model.MajorPage, error) {
	endpoint := fmt.Sprintf("%s/api/majors?subject=%s&page=%d&page_size=%d",
		c.baseURL, url.QueryEscape(filter.SubjectID), filter.Page, filter.PageSize)

	var page model.MajorPage
	if err := c.getJSON(ctx, endpoint, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", endpoint, errors.Join(ErrUnavailable, err))
	}
	defer func() {
		_, _ = io.Copy(io.Discard, res.Body)
		_ = res.Body.Close()
	}()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &StatusError{StatusCode: res.StatusCode, URL: endpoint}
	}

	if err := json.NewDecoder(res.Body).Decode(dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", endpoint, errors.Join(ErrUnavailable, err))
	}
	return nil
}
