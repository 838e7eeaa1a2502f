package api

import (
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Origin is enforced by the fronting proxy along with authentication.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleWebsocket upgrades the connection and hands it to the hub. The
// connection carries no room membership until the client invokes
// JoinListGroup.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		s.logger.WithError(err).Warn("websocket upgrade failed")
		return
	}

	s.hub.HandleConnection(conn, userID)
}
