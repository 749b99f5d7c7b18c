package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"taskflow/internal/events"
)

// Watch streams change events to handle until ctx is cancelled or the server
// closes the feed. A cancelled ctx is not reported as an error.
func (c *Client) Watch(ctx context.Context, handle func(events.Event)) error {
	u, err := url.Parse(c.baseURL + "/api/events")
	if err != nil {
		return fmt.Errorf("parse events url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	if c.token != "" {
		q := u.Query()
		q.Set("token", c.token)
		u.RawQuery = q.Encode()
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(resp.Status)}
		}
		return fmt.Errorf("dial events: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		var e events.Event
		if err := conn.ReadJSON(&e); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				return nil
			}
			return fmt.Errorf("read event: %w", err)
		}
		handle(e)
	}
}
