package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait      = 5 * time.Second
	pongWait       = 15 * time.Second
	pingPeriod     = 5 * time.Second
	maxMessageSize = 64 * 1024

	// invoke frames carry a list id and nothing else; joins should not hang
	// the read loop on a slow visibility query
	joinCheckTimeout = 5 * time.Second

	sendQueueSize = 32
)

// Client is one websocket connection known to the hub. Outbound frames go
// through a buffered queue drained by a single writer goroutine, which gives
// each subscriber FIFO delivery per room.
type Client struct {
	id     string
	hub    *Hub
	conn   *websocket.Conn
	userID string
	send   chan []byte
	done   chan struct{}

	closeOnce sync.Once
	closeErr  error

	// rooms this client is currently in, guarded by hub.mu
	rooms map[string]struct{}

	logger *logrus.Logger
}

// HandleConnection registers an upgraded websocket connection with the hub
// and starts its read and write pumps. It returns immediately.
func (h *Hub) HandleConnection(conn *websocket.Conn, userID string) *Client {
	c := &Client{
		id:     uuid.NewString(),
		hub:    h,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
		rooms:  make(map[string]struct{}),
		logger: h.logger,
	}
	h.register(c)
	h.logger.Infof("Client %s connected (user %s)", c.id, userID)

	go c.writePump()
	go c.readPump()
	return c
}

// enqueue queues an outbound frame. It reports false when the client's queue
// is full; a closed client swallows the frame.
func (c *Client) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return true
	default:
	}
	select {
	case c.send <- data:
		return true
	case <-c.done:
		return true
	default:
		return false
	}
}

// readPump consumes invocation frames until the connection drops, then
// cleans up room memberships.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.close()
		c.logger.Infof("Client %s disconnected", c.id)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.WithError(err).Warnf("Client %s read error", c.id)
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			c.logger.WithError(err).Warnf("Client %s sent a malformed frame", c.id)
			continue
		}
		c.handleInvocation(&frame)
	}
}

// handleInvocation dispatches a client-invoked operation. Blank or malformed
// list ids are ignored, matching the hub contract.
func (c *Client) handleInvocation(frame *Frame) {
	switch frame.Target {
	case InvokeJoinListGroup:
		listID, ok := parseListArg(frame)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), joinCheckTimeout)
		defer cancel()
		c.hub.joinRoom(ctx, c, listID)

	case InvokeLeaveListGroup:
		listID, ok := parseListArg(frame)
		if !ok {
			return
		}
		c.hub.leaveRoom(c, listID)

	default:
		c.logger.Debugf("Client %s invoked unknown target %q", c.id, frame.Target)
	}
}

func parseListArg(frame *Frame) (uuid.UUID, bool) {
	s, ok := firstStringArg(frame)
	if !ok || s == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// writePump is the single writer on the connection. It drains the send queue
// and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.close()
	}()

	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// close tears the connection down once.
func (c *Client) close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			deadline := time.Now().Add(writeWait)
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			c.closeErr = c.conn.Close()
		}
	})
	return c.closeErr
}

func (c *Client) closeAsync() {
	go func() { _ = c.close() }()
}
