// Package analytics relays report and badge queries to the analytics service.
package analytics

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
)

// ErrUpstream is returned when the analytics service answers with a non-2xx status.
var ErrUpstream = errors.New("analytics service error")

// Client calls the analytics HTTP API.
type Client struct {
	baseURL string
	timeout time.Duration
}

// NewClient builds a client for baseURL (no trailing slash).
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{baseURL: baseURL, timeout: timeout}
}

// Get fetches path and returns the JSON body verbatim.
func (c *Client) Get(path string, query url.Values) (json.RawMessage, error) {
	return c.do(fiber.Get(c.url(path, query)))
}

// Post posts an empty body to path and returns the JSON body verbatim.
func (c *Client) Post(path string, query url.Values) (json.RawMessage, error) {
	return c.do(fiber.Post(c.url(path, query)))
}

func (c *Client) url(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) do(agent *fiber.Agent) (json.RawMessage, error) {
	status, body, errs := agent.Timeout(c.timeout).Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("call analytics service: %w", errors.Join(errs...))
	}
	if status < fiber.StatusOK || status >= fiber.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, status)
	}
	if len(body) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: response is not JSON", ErrUpstream)
	}
	return json.RawMessage(body), nil
}
