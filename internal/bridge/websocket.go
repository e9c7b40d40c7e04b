package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/ariefcatur/go-merchant-orders/internal/orders"
	"github.com/gorilla/websocket"
)

// WebSocket dials the socket server; frames are JSON envelopes.
type WebSocket struct {
	URL      string
	Secret   []byte
	TokenTTL time.Duration
	Dialer   *websocket.Dialer
}

func (w *WebSocket) Dial(ctx context.Context, id Identity) (Conn, error) {
	u, err := url.Parse(w.URL)
	if err != nil {
		return nil, fmt.Errorf("bridge: socket url: %w", err)
	}
	q := u.Query()
	q.Set("merchant_id", id.MerchantID)
	q.Set("role", id.Role)
	u.RawQuery = q.Encode()

	h := http.Header{}
	if len(w.Secret) > 0 {
		ttl := w.TokenTTL
		if ttl <= 0 {
			ttl = 12 * time.Hour
		}
		tok, err := SignToken(w.Secret, id, ttl, time.Now())
		if err != nil {
			return nil, err
		}
		h.Set("Authorization", "Bearer "+tok)
	}

	d := w.Dialer
	if d == nil {
		d = websocket.DefaultDialer
	}
	c, resp, err := d.DialContext(ctx, u.String(), h)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("bridge: dial %s: %w (status %d)", u.Host, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("bridge: dial %s: %w", u.Host, err)
	}
	c.SetReadLimit(1 << 20)
	return &wsConn{c: c}, nil
}

type wsConn struct{ c *websocket.Conn }

func (w *wsConn) Receive(ctx context.Context) (orders.Envelope, error) {
	for {
		_, msg, err := w.c.ReadMessage()
		if err != nil {
			return orders.Envelope{}, err
		}
		var env orders.Envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			log.Printf("bridge ws: bad frame: %v", err)
			continue
		}
		return env, nil
	}
}

func (w *wsConn) Close() error { return w.c.Close() }
