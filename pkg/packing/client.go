package packing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/binpack3d/packview/pkg/cache"
	"github.com/binpack3d/packview/pkg/config"
	"github.com/binpack3d/packview/pkg/document"
	"github.com/binpack3d/packview/pkg/errors"
	"github.com/binpack3d/packview/pkg/httputil"
	"github.com/binpack3d/packview/pkg/observability"
)

// PackPath is the pack endpoint, relative to the service base URL.
const PackPath = "/api/v1/packing/pack"

// ContainerSpec describes the container to pack into.
type ContainerSpec struct {
	Width     float32 `json:"width"`
	Height    float32 `json:"height"`
	Depth     float32 `json:"depth"`
	MaxWeight float32 `json:"max_weight,omitempty"`
	Name      string  `json:"name,omitempty"`
}

// ItemSpec describes one item type to pack.
type ItemSpec struct {
	ID        string  `json:"id"`
	Name      string  `json:"name,omitempty"`
	Width     float32 `json:"width"`
	Height    float32 `json:"height"`
	Depth     float32 `json:"depth"`
	Weight    float32 `json:"weight,omitempty"`
	Quantity  int     `json:"quantity,omitempty"`
	CanRotate *bool   `json:"can_rotate,omitempty"`
	Color     string  `json:"color,omitempty"`
}

// Request is the payload sent to the pack endpoint.
type Request struct {
	Container ContainerSpec `json:"bin_config"`
	Items     []ItemSpec    `json:"items"`
	Algorithm string        `json:"algorithm,omitempty"`
}

// Validate checks the request before it is sent.
func (r Request) Validate() error {
	if r.Container.Width <= 0 || r.Container.Height <= 0 || r.Container.Depth <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "container dimensions must be positive")
	}
	if len(r.Items) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "at least one item is required")
	}
	seen := make(map[string]bool, len(r.Items))
	for _, it := range r.Items {
		if err := errors.ValidateItemID(it.ID); err != nil {
			return err
		}
		if seen[it.ID] {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate item id %q", it.ID)
		}
		seen[it.ID] = true
		if it.Width <= 0 || it.Height <= 0 || it.Depth <= 0 {
			return errors.New(errors.ErrCodeInvalidInput, "item %q dimensions must be positive", it.ID)
		}
	}
	return nil
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithCache enables response caching through the given backend and keyer.
func WithCache(backend cache.Cache, keyer cache.Keyer) Option {
	return func(c *Client) {
		c.cache = backend
		c.keyer = keyer
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// Client calls the packing service and converts its placement results into
// viewer documents. Methods are safe for concurrent use.
type Client struct {
	http    *http.Client
	baseURL string
	cache   cache.Cache
	keyer   cache.Keyer
	logger  *log.Logger
}

// NewClient creates a packing-service client from the given configuration.
// Caching is disabled unless [WithCache] is supplied.
func NewClient(cfg config.PackingConfig, opts ...Option) (*Client, error) {
	if err := errors.ValidateURL(cfg.ServiceURL); err != nil {
		return nil, err
	}
	c := &Client{
		http:    &http.Client{Timeout: cfg.Timeout()},
		baseURL: strings.TrimSuffix(cfg.ServiceURL, "/"),
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Pack submits a packing request and returns the resulting document.
//
// Responses are cached by request payload hash; if refresh is true the cache
// is bypassed and the service is always called. Transient failures retry with
// exponential backoff. The returned document carries the fingerprint of its
// wire form, so submitting it to an engine twice never triggers a rebuild.
func (c *Client) Pack(ctx context.Context, req Request, refresh bool) (*document.Document, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode packing request")
	}

	var key string
	if c.cache != nil {
		key = c.keyer.PackKey(cache.Hash(payload))
		if !refresh {
			if data, ok, _ := c.cache.Get(ctx, key); ok {
				observability.Cache().OnCacheHit(ctx, "pack")
				c.logger.Debug("packing response served from cache", "key", key)
				return document.Decode(data)
			}
			observability.Cache().OnCacheMiss(ctx, "pack")
		}
	}

	var res result
	err = httputil.RetryWithBackoff(ctx, func() error {
		return c.post(ctx, PackPath, payload, &res)
	})
	if err != nil {
		return nil, err
	}
	if !res.Statistics.Success {
		msg := res.Statistics.Error
		if msg == "" {
			msg = "packing calculation failed"
		}
		return nil, errors.New(errors.ErrCodeInvalidDocument, "%s", msg)
	}

	docJSON, err := res.documentJSON(req.Container)
	if err != nil {
		return nil, err
	}
	doc, err := document.Decode(docJSON)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, key, docJSON, cache.TTLPack); err != nil {
			c.logger.Warn("failed to cache packing response", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "pack", len(docJSON))
		}
	}
	return doc, nil
}

func (c *Client) post(ctx context.Context, path string, payload []byte, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "build packing request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	host := req.URL.Host
	observability.HTTP().OnRequest(ctx, http.MethodPost, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, http.MethodPost, host, path, err)
		if urlErr, ok := err.(*url.Error); ok && urlErr.Timeout() {
			return &httputil.RetryableError{Err: errors.Wrap(errors.ErrCodeTimeout, err, "packing service timed out")}
		}
		return &httputil.RetryableError{Err: errors.Wrap(errors.ErrCodeNetwork, err, "packing service unreachable")}
	}
	defer resp.Body.Close()
	observability.HTTP().OnResponse(ctx, http.MethodPost, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidDocument, err, "decode packing response")
	}
	return nil
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "pack endpoint not found")
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		return &httputil.RetryableError{Err: &errors.RateLimitedError{
			RetryAfter: retryAfter,
			Message:    "packing service rate limited",
		}}
	case resp.StatusCode >= 500:
		return &httputil.RetryableError{
			Err: errors.New(errors.ErrCodeNetwork, "packing service returned status %d", resp.StatusCode),
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "%s", errorDetail(resp))
	}
}

// errorDetail extracts the service's error message from a non-2xx body.
func errorDetail(resp *http.Response) string {
	var body struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		if body.Detail != "" {
			return body.Detail
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return fmt.Sprintf("packing service returned status %d", resp.StatusCode)
}
