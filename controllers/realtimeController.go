package controllers

import (
	"context"
	"strings"
	"time"

	"github.com/Kariqs/goutam-store/accounts"
	"github.com/Kariqs/goutam-store/cart"
	"github.com/Kariqs/goutam-store/ledger"
	"github.com/Kariqs/goutam-store/models"
	"github.com/Kariqs/goutam-store/realtime"
	"github.com/Kariqs/goutam-store/utils"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPingPeriod = 30 * time.Second
)

// feedMessage is what every feed sends. Snapshots carry the full list in
// Data; change events carry one record.
type feedMessage struct {
	Type     string `json:"type"`
	ID       string `json:"id,omitempty"`
	Data     any    `json:"data,omitempty"`
	Message  string `json:"message,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

const (
	msgTypeSnapshot = "snapshot"
	msgTypeResync   = "resync"
)

func writeJSON(conn *websocket.Conn, v any) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(v)
}

// readUntilClosed drains client frames so control messages are handled, and
// returns a channel closed when the client goes away.
func readUntilClosed(conn *websocket.Conn) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return done
}

// stream upgrades the request and forwards sub's events through translate
// until the client leaves. The subscription is released on return. first is
// sent before any event; taking the subscription before building first means
// no change between the two is missed.
func (c *Controller) stream(ctx *gin.Context, feed string, sub *realtime.Subscription, first func() (any, error), translate func(realtime.Event) (feedMessage, bool)) {
	defer sub.Close()

	conn, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		c.log.Warn("websocket upgrade failed", "feed", feed, "error", err)
		return
	}
	defer conn.Close()

	c.metrics.FeedOpened(feed)
	defer c.metrics.FeedClosed(feed)

	closed := readUntilClosed(conn)

	if first != nil {
		data, err := first()
		if err != nil {
			c.log.Error("failed to build feed snapshot", "feed", feed, "error", err)
			c.closeFeed(conn, feed, websocket.CloseInternalServerErr, "snapshot failed")
			return
		}
		if err := writeJSON(conn, feedMessage{Type: msgTypeSnapshot, Data: data}); err != nil {
			c.log.Debug("failed to send snapshot", "feed", feed, "error", err)
			return
		}
	}

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()
	for {
		select {
		case <-closed:
			return
		case evt, ok := <-sub.Events():
			if !ok {
				// Dropped for falling behind; the client reconnects for a new snapshot.
				if err := writeJSON(conn, feedMessage{Type: msgTypeResync}); err != nil {
					c.log.Debug("failed to send resync", "feed", feed, "error", err)
				}
				return
			}
			msg, keep := translate(evt)
			if !keep {
				continue
			}
			if err := writeJSON(conn, msg); err != nil {
				c.log.Debug("feed write failed", "feed", feed, "error", err)
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				c.log.Debug("ping failed", "feed", feed, "error", err)
				return
			}
		}
	}
}

func (c *Controller) closeFeed(conn *websocket.Conn, feed string, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteWait)); err != nil {
		c.log.Debug("failed to send close frame", "feed", feed, "error", err)
	}
}

func passThrough(evt realtime.Event) (feedMessage, bool) {
	return feedMessage{Type: string(evt.Kind), ID: evt.ID, Data: evt.Data}, true
}

// ProductFeed sends the storefront catalogue and then every change to it. A
// product that becomes unavailable is reported as removed.
func (c *Controller) ProductFeed(ctx *gin.Context) {
	sub := c.hub.Subscribe(realtime.TopicProducts)
	snapshot := func() (any, error) {
		products, err := c.store.ListProducts(context.Background())
		if err != nil {
			return nil, err
		}
		visible := make([]models.Product, 0, len(products))
		for _, p := range products {
			if p.Available {
				visible = append(visible, p)
			}
		}
		return visible, nil
	}
	c.stream(ctx, "products", sub, snapshot, func(evt realtime.Event) (feedMessage, bool) {
		if p, ok := evt.Data.(models.Product); ok && !p.Available {
			return feedMessage{Type: string(realtime.KindRemoved), ID: evt.ID}, true
		}
		return passThrough(evt)
	})
}

// AdminProductFeed includes unavailable products.
func (c *Controller) AdminProductFeed(ctx *gin.Context) {
	sub := c.hub.Subscribe(realtime.TopicProducts)
	snapshot := func() (any, error) {
		return c.store.ListProducts(context.Background())
	}
	c.stream(ctx, "admin_products", sub, snapshot, passThrough)
}

// AdminOrderFeed sends all orders newest first, then every new order and
// status change.
func (c *Controller) AdminOrderFeed(ctx *gin.Context) {
	sub := c.hub.Subscribe(realtime.TopicOrders)
	snapshot := func() (any, error) {
		orders, err := c.store.ListOrders(context.Background())
		if err != nil {
			return nil, err
		}
		ledger.SortNewestFirst(orders)
		return nonNilOrders(orders), nil
	}
	c.stream(ctx, "orders", sub, snapshot, passThrough)
}

// UploadFeed reports upload progress. Users see their own uploads; admins
// see every upload.
func (c *Controller) UploadFeed(ctx *gin.Context) {
	me := c.user(ctx)
	prefix := "users/" + me.ID + "/"
	sub := c.hub.Subscribe(realtime.TopicUploads)
	c.stream(ctx, "uploads", sub, nil, func(evt realtime.Event) (feedMessage, bool) {
		p, ok := evt.Data.(utils.UploadProgress)
		if !ok || (!me.IsAdmin() && !strings.HasPrefix(p.Key, prefix)) {
			return feedMessage{}, false
		}
		return feedMessage{Type: "progress", ID: p.Key, Data: p}, true
	})
}

// SessionFeed stays open while the signed-in user's account is enabled. When
// an admin disables the account the client is told to go to the login page
// and the socket is closed. The watch is taken before the upgrade and the
// profile is read again afterwards, so a disable in between still fires.
func (c *Controller) SessionFeed(ctx *gin.Context) {
	me := c.user(ctx)
	watch := accounts.NewProfileWatch(c.hub, me.ID)
	defer watch.Close()

	conn, err := c.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		c.log.Warn("websocket upgrade failed", "feed", "session", "error", err)
		return
	}
	defer conn.Close()

	c.metrics.FeedOpened("session")
	defer c.metrics.FeedClosed("session")

	watchCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	closed := readUntilClosed(conn)
	go func() {
		ping := time.NewTicker(wsPingPeriod)
		defer ping.Stop()
		for {
			select {
			case <-closed:
				cancel()
				return
			case <-watchCtx.Done():
				return
			case <-ping.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
					c.log.Debug("ping failed", "feed", "session", "user_id", me.ID, "error", err)
				}
			}
		}
	}()

	if err := writeJSON(conn, feedMessage{Type: "watching", ID: me.ID}); err != nil {
		c.log.Debug("failed to send watch confirmation", "user_id", me.ID, "error", err)
		return
	}

	current := func(ctx context.Context) (models.UserProfile, error) {
		return c.accounts.CurrentUser(ctx, me.ID)
	}
	fired := watch.Wait(watchCtx, current, func(models.UserProfile) {
		err := writeJSON(conn, feedMessage{
			Type:     cart.NoticeAccountDisabled,
			ID:       me.ID,
			Message:  accounts.ErrAccountDisabled.Error(),
			Redirect: "/login",
		})
		if err != nil {
			c.log.Debug("failed to send disable notice", "user_id", me.ID, "error", err)
		}
	})
	if fired {
		c.log.Info("disabled user notified", "user_id", me.ID)
		c.closeFeed(conn, "session", websocket.ClosePolicyViolation, "account disabled")
	}
}
