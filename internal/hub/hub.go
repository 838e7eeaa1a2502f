// Package hub owns the server side of the live-update protocol: ephemeral
// per-list rooms, membership of connected websocket clients, and fan-out of
// item mutation events. Rooms carry no message log and no replay; a publish
// to an empty room is a no-op.
package hub

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"github.com/sharelist/sharelist/internal/models"
)

// JoinAuthorizer decides whether a user may join a list's room. Satisfied by
// access.Resolver. The check is recomputed on every join, never cached.
type JoinAuthorizer interface {
	CanView(ctx context.Context, userID string, listID uuid.UUID) (bool, error)
}

// Hub tracks rooms and their member connections. All methods are safe for
// concurrent use; rooms are independent and there is no cross-room ordering.
type Hub struct {
	logger  *logrus.Logger
	auth    JoinAuthorizer
	metrics *Metrics

	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{}
	clients map[*Client]struct{}
}

// New creates a hub. auth may be nil, in which case any connection may join
// any room (the original's behavior); passing the access resolver hardens
// joins with a visibility check.
func New(logger *logrus.Logger, auth JoinAuthorizer, metrics *Metrics) *Hub {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Hub{
		logger:  logger,
		auth:    auth,
		metrics: metrics,
		rooms:   make(map[string]map[*Client]struct{}),
		clients: make(map[*Client]struct{}),
	}
}

// Publish sends one event to every connection currently in the room.
// Delivery is fire-and-forget: the frame is queued per subscriber in FIFO
// order, and a subscriber whose queue is full is disconnected rather than
// allowed to stall the publisher.
func (h *Hub) Publish(roomKey, target string, args ...interface{}) {
	data, err := marshalFrame(target, args...)
	if err != nil {
		h.logger.WithError(err).Errorf("Dropping %s publish to %s", target, roomKey)
		return
	}

	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[roomKey]))
	for c := range h.rooms[roomKey] {
		members = append(members, c)
	}
	h.mu.RUnlock()

	if len(members) == 0 {
		return
	}

	h.metrics.EventsPublished.WithLabelValues(target).Inc()
	for _, c := range members {
		if !c.enqueue(data) {
			h.metrics.DroppedDeliveries.Inc()
			h.logger.Warnf("Client %s too slow, dropping connection", c.id)
			c.closeAsync()
		}
	}
}

// ItemAdded implements service.Broadcaster.
func (h *Hub) ItemAdded(listID uuid.UUID, item *models.Item) {
	h.Publish(RoomKey(listID), EventItemAdded, item)
}

// ItemUpdated implements service.Broadcaster.
func (h *Hub) ItemUpdated(listID uuid.UUID, item *models.Item) {
	h.Publish(RoomKey(listID), EventItemUpdated, item)
}

// ItemDeleted implements service.Broadcaster.
func (h *Hub) ItemDeleted(listID, itemID uuid.UUID) {
	h.Publish(RoomKey(listID), EventItemDeleted, itemID)
}

// joinRoom admits a client after the visibility check passes. Rejected or
// malformed joins are logged and ignored; the client is not disconnected.
func (h *Hub) joinRoom(ctx context.Context, c *Client, listID uuid.UUID) {
	if h.auth != nil {
		ok, err := h.auth.CanView(ctx, c.userID, listID)
		if err != nil {
			h.logger.WithError(err).Warnf("Join check failed for client %s", c.id)
			return
		}
		if !ok {
			h.metrics.RejectedJoins.Inc()
			h.logger.Warnf("Client %s (user %s) denied join to list %s", c.id, c.userID, listID)
			return
		}
	}

	key := RoomKey(listID)
	h.mu.Lock()
	room, ok := h.rooms[key]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[key] = room
	}
	room[c] = struct{}{}
	c.rooms[key] = struct{}{}
	h.mu.Unlock()

	h.logger.Debugf("Client %s joined room %s", c.id, key)
}

// leaveRoom drops the client's membership. Leaving a room the client is not
// in is a no-op.
func (h *Hub) leaveRoom(c *Client, listID uuid.UUID) {
	key := RoomKey(listID)
	h.mu.Lock()
	h.removeFromRoom(c, key)
	h.mu.Unlock()

	h.logger.Debugf("Client %s left room %s", c.id, key)
}

// register adds a newly upgraded connection.
func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.metrics.ConnectedClients.Inc()
}

// unregister removes a connection and every room membership it still holds.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	for key := range c.rooms {
		h.removeFromRoom(c, key)
	}
	h.mu.Unlock()
	h.metrics.ConnectedClients.Dec()
}

// removeFromRoom must be called with h.mu held.
func (h *Hub) removeFromRoom(c *Client, key string) {
	if room, ok := h.rooms[key]; ok {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, key)
		}
	}
	delete(c.rooms, key)
}

// RoomSize reports the current member count of a room.
func (h *Hub) RoomSize(roomKey string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomKey])
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown closes every client connection, aggregating close errors.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	var result *multierror.Error
	for _, c := range clients {
		if err := c.close(); err != nil {
			result = multierror.Append(result, err)
		}
		h.unregister(c)
	}
	return result.ErrorOrNil()
}
