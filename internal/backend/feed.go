package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vitrinaapp/vitrina-store/internal/domain"
	domainerrors "github.com/vitrinaapp/vitrina-store/internal/errors"
)

const feedCloseTimeout = time.Second

// SubscribeToNotifications opens the live notification feed for userID.
// Each text frame carries the full notification list as a JSON array.
// ctx bounds the dial only; the feed lives until the returned Teardown runs
// or the server closes the connection.
func (c *Client) SubscribeToNotifications(ctx context.Context, userID string, onSnapshot SnapshotFunc) (Teardown, error) {
	if c.feedURL == "" {
		return nil, domainerrors.Internal("notification feed url not configured")
	}
	u, err := url.Parse(c.feedURL)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "parse feed url")
	}
	q := u.Query()
	q.Set("userId", userID)
	u.RawQuery = q.Encode()

	hdr := http.Header{}
	hdr.Set("User-Agent", "Vitrina/1.0")

	conn, _, err := c.dialer.DialContext(ctx, u.String(), hdr)
	if err != nil {
		return nil, domainerrors.BackendRejected(err, "dial notification feed")
	}

	f := &feed{conn: conn, userID: userID, onSnapshot: onSnapshot, client: c}
	go f.readLoop()

	c.logger.Debug("notification feed opened", "user_id", userID)
	return f.teardown, nil
}

type feed struct {
	conn       *websocket.Conn
	userID     string
	onSnapshot SnapshotFunc
	client     *Client

	stopped atomic.Bool
	once    sync.Once
}

func (f *feed) readLoop() {
	for {
		op, data, err := f.conn.ReadMessage()
		if err != nil {
			if !f.stopped.Load() && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				f.client.logger.Warn("notification feed closed",
					"user_id", f.userID,
					"error", err)
			}
			return
		}
		if op != websocket.TextMessage {
			continue
		}

		var list []domain.Notification
		if err := json.Unmarshal(data, &list); err != nil {
			f.client.logger.Warn("notification feed frame rejected",
				"user_id", f.userID,
				"error", err)
			continue
		}
		if f.stopped.Load() {
			return
		}
		if list == nil {
			list = []domain.Notification{}
		}
		f.onSnapshot(list)
	}
}

func (f *feed) teardown() {
	f.once.Do(func() {
		f.stopped.Store(true)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		err := f.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(feedCloseTimeout))
		if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
			f.client.logger.Debug("notification feed close frame failed", "user_id", f.userID, "error", err)
		}
		f.conn.Close()
		f.client.logger.Debug("notification feed torn down", "user_id", f.userID)
	})
}
