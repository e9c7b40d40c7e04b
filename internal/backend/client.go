package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ariefcatur/go-merchant-orders/internal/orders"
)

// StatusError is a non-2xx answer from the marketplace backend.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: http %d", e.Code)
	}
	return fmt.Sprintf("backend: http %d: %s", e.Code, e.Message)
}

type Client struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	HTTP    *http.Client
}

type statusReq struct {
	Action string `json:"action"`
	Reason string `json:"reason,omitempty"`
}

func (c *Client) FetchBacklog(ctx context.Context) ([]orders.Order, error) {
	var out []orders.Order
	if err := c.do(ctx, http.MethodGet, "/merchant/orders/pending", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Accept(ctx context.Context, orderID string) (orders.Order, error) {
	var o orders.Order
	err := c.do(ctx, http.MethodPost, "/merchant/orders/"+url.PathEscape(orderID)+"/status",
		statusReq{Action: string(orders.ActionAccept)}, &o)
	return o, err
}

func (c *Client) Reject(ctx context.Context, orderID, reason string) error {
	return c.do(ctx, http.MethodPost, "/merchant/orders/"+url.PathEscape(orderID)+"/status",
		statusReq{Action: string(orders.ActionReject), Reason: reason}, nil)
}

func (c *Client) Pack(ctx context.Context, orderID string) (orders.Order, error) {
	var o orders.Order
	err := c.do(ctx, http.MethodPost, "/merchant/orders/"+url.PathEscape(orderID)+"/pack", nil, &o)
	return o, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(c.BaseURL, "/")+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("backend: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("backend: read %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Message: errorMessage(raw)}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	return decode(raw, out)
}

// backend kadang bungkus hasil di {"data": ...}
func decode(raw []byte, out any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var wrapped map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &wrapped); err == nil {
			if data, ok := wrapped["data"]; ok {
				trimmed = data
			}
		}
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("backend: decode response: %w", err)
	}
	return nil
}

func errorMessage(raw []byte) string {
	var e struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &e); err == nil {
		if e.Message != "" {
			return e.Message
		}
		if e.Error != "" {
			return e.Error
		}
	}
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
