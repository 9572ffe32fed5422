// Package client implements the HTTP client eventctl uses to talk to a
// running eventd daemon.
package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/matheus3301/eventd/internal/catalog"
	"github.com/matheus3301/eventd/internal/event"
	"github.com/matheus3301/eventd/internal/schema"
	"github.com/matheus3301/eventd/internal/transport/httpdto"
)

// APIError is an error answer from the daemon.
type APIError struct {
	Status int
	Code   string
	Msg    string
	Fields []schema.FieldError
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Msg, e.Code)
}

// Client talks to the eventd HTTP API.
type Client struct {
	base string
	http *http.Client
}

// New returns a client for the daemon at base, e.g. "http://127.0.0.1:8080".
func New(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{},
	}
}

// Send dispatches kind with an optional raw JSON payload and returns
// the accepted envelope. A nil payload sends the kind bare.
func (c *Client) Send(ctx context.Context, kind string, payload []byte) (event.Envelope, error) {
	resp, err := c.post(ctx, "/v1/events/"+url.PathEscape(kind), payload)
	if err != nil {
		return event.Envelope{}, err
	}
	return decode[event.Envelope](resp)
}

// Check validates kind and payload without dispatching anything.
func (c *Client) Check(ctx context.Context, kind string, payload []byte) error {
	resp, err := c.post(ctx, "/v1/events/"+url.PathEscape(kind)+"/check", payload)
	if err != nil {
		return err
	}
	_, err = decode[map[string]any](resp)
	return err
}

// Catalog fetches the daemon's event catalog.
func (c *Client) Catalog(ctx context.Context) (catalog.File, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/v1/catalog", nil)
	if err != nil {
		return catalog.File{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return catalog.File{}, err
	}
	return decode[catalog.File](resp)
}

// Tail follows the live event stream, invoking fn for every envelope
// until ctx is canceled or the daemon closes the stream.
func (c *Client) Tail(ctx context.Context, prefix string, fn func(event.Envelope)) error {
	u := c.base + "/v1/stream"
	if prefix != "" {
		u += "?prefix=" + url.QueryEscape(prefix)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stream: unexpected status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		data, ok := strings.CutPrefix(scanner.Text(), "data:")
		if !ok {
			continue
		}
		var evt event.Envelope
		if err := json.Unmarshal([]byte(strings.TrimSpace(data)), &evt); err != nil {
			return fmt.Errorf("decoding stream envelope: %w", err)
		}
		fn(evt)
	}
	if ctx.Err() != nil {
		return nil
	}
	return scanner.Err()
}

func (c *Client) post(ctx context.Context, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.http.Do(req)
}

// decode unwraps a response envelope, converting daemon failures into
// *APIError.
func decode[T any](resp *http.Response) (T, error) {
	defer func() { _ = resp.Body.Close() }()
	var zero T
	var out httpdto.Response[T]
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return zero, fmt.Errorf("decoding daemon response: %w", err)
	}
	if !out.Success {
		return zero, &APIError{Status: resp.StatusCode, Code: out.Code, Msg: out.Error, Fields: out.Fields}
	}
	return out.Data, nil
}
