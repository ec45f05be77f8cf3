package collab

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 64 * 1024
	sendBuffer = 256
)

// Client is one editor connected to a project session. ReadPump feeds the
// hub, WritePump drains send.
//
// A client whose send buffer overflows has missed operations and its copy of
// the floorplan can no longer be trusted, so it is disconnected and will
// receive a fresh doc.sync when it reconnects.
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	sendMu      sync.Mutex
	closed      bool
	lagging     atomic.Bool
	UserID      string
	DisplayName string
	ProjectID   string
	ClientID    string
}

func NewClient(hub *Hub, conn *websocket.Conn, userID, displayName, projectID, clientID string) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		UserID:      userID,
		DisplayName: displayName,
		ProjectID:   projectID,
		ClientID:    clientID,
	}
}

func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMsgSize)

	for {
		typ, data, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				if !errors.Is(err, context.Canceled) {
					slog.Debug("read error", "error", err, "user", c.UserID, "project", c.ProjectID)
				}
			}
			return
		}
		if typ != websocket.MessageText {
			c.Send(errorMessage("binary frames are not supported"))
			continue
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("invalid message", "error", err, "user", c.UserID)
			c.Send(errorMessage("invalid message"))
			continue
		}

		// Identity comes from the connection, never from the message
		msg.UserID = c.UserID
		msg.ClientID = c.ClientID
		msg.ProjectID = c.ProjectID

		c.hub.handleMessage(c, &msg)
	}
}

func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				// Hub closed the session for this client
				c.conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			if err := c.write(ctx, message); err != nil {
				slog.Debug("write error", "error", err, "user", c.UserID)
				c.conn.Close(websocket.StatusInternalError, "write failed")
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				c.conn.Close(websocket.StatusGoingAway, "ping timeout")
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) write(ctx context.Context, message []byte) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return c.conn.Write(writeCtx, websocket.MessageText, message)
}

// Send queues msg without blocking the hub. Messages sent after the hub has
// closed the client are dropped.
func (c *Client) Send(msg *Message) {
	if c.lagging.Load() {
		return
	}
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err, "type", msg.Type)
		return
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}

	select {
	case c.send <- data:
	default:
		if c.lagging.CompareAndSwap(false, true) {
			slog.Warn("client fell behind, disconnecting", "user", c.UserID, "project", c.ProjectID)
			if c.conn != nil {
				go c.conn.Close(websocket.StatusTryAgainLater, "fell behind, reconnect to resync")
			}
		}
	}
}

// closeSend closes the send buffer once. WritePump flushes what is queued and
// then closes the connection.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
