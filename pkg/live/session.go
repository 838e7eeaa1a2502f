// Package live is the Go client for the live-update protocol. A Session owns
// one websocket connection and at most one joined room (the list the user is
// currently viewing); a ListView reconciles pushed item events into a local
// copy that converges under duplicate and out-of-order delivery.
package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// State is the connection lifecycle state of a Session.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// ErrClosed is returned by operations on a session after Close.
var ErrClosed = errors.New("live: session closed")

// ErrNotConnected is returned when an operation needs an open connection.
var ErrNotConnected = errors.New("live: not connected")

// Wire names shared with the server. Interop contract; do not rename.
const (
	eventItemAdded   = "ReceiveItemAdded"
	eventItemUpdated = "ReceiveItemUpdated"
	eventItemDeleted = "ReceiveItemDeleted"

	invokeJoinListGroup  = "JoinListGroup"
	invokeLeaveListGroup = "LeaveListGroup"
)

type frame struct {
	Target    string            `json:"target"`
	Arguments []json.RawMessage `json:"arguments"`
}

// Settings are the session timeouts.
type Settings struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
}

// DefaultSettings returns the timeouts used when none are given.
func DefaultSettings() *Settings {
	return &Settings{
		HandshakeTimeout: 5 * time.Second,
		WriteTimeout:     5 * time.Second,
	}
}

// Handler receives the positional arguments of one pushed event.
type Handler func(args []json.RawMessage)

// Session is one viewer's connection to the server. Join/leave operations
// are serialized: a second ViewList call waits for the previous one to
// settle, so a stale leave can never race a newer join. Sessions are created
// explicitly and must be closed by their owner; there is no ambient shared
// connection.
type Session struct {
	url      string
	header   http.Header
	settings *Settings
	logger   *logrus.Logger

	state  *atomic.Int32
	closed *atomic.Bool

	// mu serializes connection writes and room transitions and guards conn
	// and joined.
	mu     sync.Mutex
	conn   *websocket.Conn
	joined string

	handlersMu sync.RWMutex
	handlers   map[string]Handler

	// OnDisconnect, if set before Connect, is called once when the
	// connection drops without an explicit Close. The session does not
	// rejoin on its own: the viewed-list intent belongs to the caller, who
	// must Connect and ViewList again.
	OnDisconnect func(err error)
}

// NewSession creates a session for the given websocket URL and user
// identity. It does not connect.
func NewSession(url, userID string, logger *logrus.Logger, settings *Settings) *Session {
	if settings == nil {
		settings = DefaultSettings()
	}
	header := http.Header{}
	header.Set("X-User-Id", userID)
	return &Session{
		url:      url,
		header:   header,
		settings: settings,
		logger:   logger,
		state:    atomic.NewInt32(int32(StateDisconnected)),
		closed:   atomic.NewBool(false),
		handlers: make(map[string]Handler),
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Joined returns the id of the currently joined list, or "" when none.
func (s *Session) Joined() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.joined
}

// Connect dials the server. On failure the session stays disconnected and
// the error is returned; retrying is the caller's decision.
func (s *Session) Connect(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if !s.state.CAS(int32(StateDisconnected), int32(StateConnecting)) {
		return fmt.Errorf("live: connect in state %s", s.State())
	}

	dialer := websocket.Dialer{HandshakeTimeout: s.settings.HandshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, s.url, s.header)
	if err != nil {
		s.state.Store(int32(StateDisconnected))
		if resp != nil {
			return fmt.Errorf("live: dial failed (status %d): %w", resp.StatusCode, err)
		}
		return fmt.Errorf("live: dial failed: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
	s.state.Store(int32(StateConnected))
	s.logger.Debug("live: connected")

	go s.readLoop(conn)
	return nil
}

// ViewList switches the session to the room of the given list. Passing the
// currently viewed list is a no-op; passing "" leaves the current room
// without joining another. The joined room is updated only after the join
// write settles.
func (s *Session) ViewList(ctx context.Context, listID string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	if s.State() != StateConnected {
		return ErrNotConnected
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.joined == listID {
		return nil
	}

	if s.joined != "" {
		if err := s.invokeLocked(ctx, invokeLeaveListGroup, s.joined); err != nil {
			return fmt.Errorf("live: leave %s: %w", s.joined, err)
		}
		s.joined = ""
	}

	if listID == "" {
		return nil
	}

	if err := s.invokeLocked(ctx, invokeJoinListGroup, listID); err != nil {
		return fmt.Errorf("live: join %s: %w", listID, err)
	}
	s.joined = listID
	return nil
}

// Close leaves the current room best effort and closes the connection. The
// session cannot be reused afterwards.
func (s *Session) Close() error {
	if !s.closed.CAS(false, true) {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		s.state.Store(int32(StateDisconnected))
		return nil
	}

	if s.joined != "" {
		// Leave failures don't block teardown.
		if err := s.invokeLocked(context.Background(), invokeLeaveListGroup, s.joined); err != nil {
			s.logger.WithError(err).Debug("live: leave on close failed")
		}
		s.joined = ""
	}

	deadline := time.Now().Add(s.settings.WriteTimeout)
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	err := s.conn.Close()
	s.conn = nil
	s.state.Store(int32(StateDisconnected))
	return err
}

// OnEvent registers the handler for an event name, replacing any previous
// one. Handlers run on the read loop goroutine.
func (s *Session) OnEvent(target string, h Handler) {
	s.handlersMu.Lock()
	defer s.handlersMu.Unlock()
	if h == nil {
		delete(s.handlers, target)
		return
	}
	s.handlers[target] = h
}

// OffEvent removes the handler for an event name.
func (s *Session) OffEvent(target string) {
	s.OnEvent(target, nil)
}

// invokeLocked writes one invocation frame. Callers hold s.mu.
func (s *Session) invokeLocked(ctx context.Context, target string, listID string) error {
	if s.conn == nil {
		return ErrNotConnected
	}

	arg, err := json.Marshal(listID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(frame{Target: target, Arguments: []json.RawMessage{arg}})
	if err != nil {
		return err
	}

	deadline := time.Now().Add(s.settings.WriteTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := s.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// readLoop dispatches pushed events until the connection drops. On an
// unexpected drop the joined-room state is cleared locally; the server side
// of the membership died with the connection.
func (s *Session) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if s.closed.Load() {
				return
			}
			s.mu.Lock()
			s.joined = ""
			s.conn = nil
			s.mu.Unlock()
			s.state.Store(int32(StateDisconnected))
			s.logger.WithError(err).Debug("live: connection dropped")
			if s.OnDisconnect != nil {
				s.OnDisconnect(err)
			}
			return
		}

		var f frame
		if err := json.Unmarshal(data, &f); err != nil {
			s.logger.WithError(err).Debug("live: malformed frame")
			continue
		}

		s.handlersMu.RLock()
		h := s.handlers[f.Target]
		s.handlersMu.RUnlock()
		if h != nil {
			h(f.Arguments)
		}
	}
}

// BindView attaches the three item event handlers to the session, folding
// events into the view. It returns a detach function; callers must detach
// before binding a view for another list so a stale view never receives the
// new room's events.
func (s *Session) BindView(view *ListView) (detach func()) {
	s.OnEvent(eventItemAdded, func(args []json.RawMessage) {
		var item Item
		if len(args) == 0 || json.Unmarshal(args[0], &item) != nil {
			return
		}
		view.ApplyAdded(item)
	})
	s.OnEvent(eventItemUpdated, func(args []json.RawMessage) {
		var item Item
		if len(args) == 0 || json.Unmarshal(args[0], &item) != nil {
			return
		}
		view.ApplyUpdated(item)
	})
	s.OnEvent(eventItemDeleted, func(args []json.RawMessage) {
		var id string
		if len(args) == 0 || json.Unmarshal(args[0], &id) != nil {
			return
		}
		view.ApplyDeleted(id)
	})

	return func() {
		s.OffEvent(eventItemAdded)
		s.OffEvent(eventItemUpdated)
		s.OffEvent(eventItemDeleted)
	}
}
