// Package remote is the HTTP client for the users API.
//
// Client implements listing.Collection. Every failure is classified as a
// *listing.NetworkError (no response) or a *listing.ServerError (non-2xx).
package remote

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
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/abelbrown/userdesk/internal/listing"
	"github.com/abelbrown/userdesk/internal/logging"
	"github.com/abelbrown/userdesk/internal/user"
)

const (
	// DefaultBaseURL is where the users API listens in a local setup.
	DefaultBaseURL = "http://localhost:8090"

	// DefaultTimeout bounds every request, including reading the body.
	DefaultTimeout = 10 * time.Second

	// maxErrorBody caps how much of an error response becomes the message.
	maxErrorBody = 512

	// dateLayout is how created-at bounds travel in the query string.
	dateLayout = "2006-01-02"
)

// Client talks to {base}/api/users.
type Client struct {
	base    *url.URL
	client  *http.Client
	limiter *rate.Limiter
	log     *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.client.Timeout = d }
}

// WithRateLimit throttles requests to rps with the given burst. A
// non-positive rps disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// New returns a client for the API at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		base:    base,
		client:  &http.Client{Timeout: DefaultTimeout},
		limiter: rate.NewLimiter(rate.Inf, 0),
		log:     logging.WithPrefix("remote"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// pageResponse is the list endpoint's envelope.
type pageResponse struct {
	Content       []user.User `json:"content"`
	TotalElements int64       `json:"totalElements"`
}

// ListUsers fetches one page of users matching filter.
func (c *Client) ListUsers(ctx context.Context, filter listing.Filter, page listing.PageRequest) (listing.ResultPage, error) {
	const op = "list users"

	u := c.endpoint("api", "users")
	u.RawQuery = listQuery(filter, page).Encode()

	var body pageResponse
	if err := c.do(ctx, op, http.MethodGet, u, nil, &body); err != nil {
		return listing.ResultPage{}, err
	}
	return listing.ResultPage{Items: body.Content, TotalCount: body.TotalElements}, nil
}

// SetActive sets the active flag of one user.
func (c *Client) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	payload := struct {
		Active bool `json:"active"`
	}{active}
	return c.do(ctx, "set active", http.MethodPut, c.endpoint("api", "users", id.String(), "active"), payload, nil)
}

// UpdateUser replaces the editable fields of one user.
func (c *Client) UpdateUser(ctx context.Context, id uuid.UUID, fields user.Fields) error {
	return c.do(ctx, "update user", http.MethodPut, c.endpoint("api", "users", id.String()), fields, nil)
}

// DeleteUser removes one user.
func (c *Client) DeleteUser(ctx context.Context, id uuid.UUID) error {
	return c.do(ctx, "delete user", http.MethodDelete, c.endpoint("api", "users", id.String()), nil, nil)
}

// listQuery maps a filter and page onto the list endpoint's parameters.
// Empty text, StatusAll and nil dates are omitted.
func listQuery(filter listing.Filter, page listing.PageRequest) url.Values {
	q := url.Values{}
	q.Set("pageNumber", strconv.Itoa(page.Index))
	q.Set("limit", strconv.Itoa(page.Size))
	if s := strings.TrimSpace(filter.ID); s != "" {
		q.Set("id", s)
	}
	if s := strings.TrimSpace(filter.Name); s != "" {
		q.Set("name", s)
	}
	if active, ok := filter.Status.Active(); ok {
		q.Set("active", strconv.FormatBool(active))
	}
	if filter.CreatedFrom != nil {
		q.Set("createdAtFrom", filter.CreatedFrom.Format(dateLayout))
	}
	if filter.CreatedTo != nil {
		q.Set("createdAtTo", filter.CreatedTo.Format(dateLayout))
	}
	return q
}

func (c *Client) endpoint(segments ...string) *url.URL {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.Join(segments, "/")
	return &u
}

// do sends one request. in, when non-nil, is sent as JSON; out, when
// non-nil, receives the decoded 2xx body.
func (c *Client) do(ctx context.Context, op, method string, u *url.URL, in, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return &listing.NetworkError{Op: op, Err: fmt.Errorf("rate limiter: %w", err)}
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.debug("request failed", "op", op, "method", method, "url", u.String(), "err", err)
		return &listing.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.debug("request done", "op", op, "method", method, "url", u.String(),
		"status", resp.StatusCode, "dur", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &listing.ServerError{Op: op, StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		// A 2xx with an unreadable body: the connection broke or the
		// server is not the users API.
		return &listing.NetworkError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) debug(msg string, keyvals ...any) {
	if c.log != nil {
		c.log.Debug(msg, keyvals...)
	}
}

// errorMessage extracts a readable message from an error body. JSON error
// envelopes contribute their "message" (or "error") field; anything else is
// used as trimmed text.
func errorMessage(raw []byte) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &envelope) == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	return strings.TrimSpace(string(raw))
}
