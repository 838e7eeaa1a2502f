package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/sharelist/sharelist/internal/hub"
	"github.com/sharelist/sharelist/internal/service"
)

// Server provides the HTTP API and the websocket endpoint.
type Server struct {
	svc    *service.Service
	hub    *hub.Hub
	logger *logrus.Logger
	mux    *http.ServeMux
}

// NewServer creates a Server, registers all routes, and returns it.
func NewServer(svc *service.Service, h *hub.Hub, logger *logrus.Logger) *Server {
	s := &Server{svc: svc, hub: h, logger: logger, mux: http.NewServeMux()}
	s.routes()
	return s
}

// Handler returns the http.Handler that can be passed to http.Server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ---------------------------------------------------------------------------
// Routes
// ---------------------------------------------------------------------------

func (s *Server) routes() {
	// API – Lists
	s.mux.HandleFunc("GET /api/lists", s.handleGetLists)
	s.mux.HandleFunc("POST /api/lists", s.handleCreateList)
	s.mux.HandleFunc("GET /api/lists/{id}", s.handleGetList)
	s.mux.HandleFunc("PUT /api/lists/{id}", s.handleRenameList)
	s.mux.HandleFunc("DELETE /api/lists/{id}", s.handleDeleteList)

	// API – Items
	s.mux.HandleFunc("POST /api/items", s.handleAddItem)
	s.mux.HandleFunc("PUT /api/items/{id}", s.handleUpdateItem)
	s.mux.HandleFunc("PUT /api/items/{id}/toggle", s.handleToggleItem)
	s.mux.HandleFunc("DELETE /api/items/{id}", s.handleDeleteItem)

	// API – Shares
	s.mux.HandleFunc("GET /api/shares", s.handleGetSharesForList)
	s.mux.HandleFunc("POST /api/shares", s.handleCreateShare)
	s.mux.HandleFunc("GET /api/shares/{id}", s.handleGetShare)
	s.mux.HandleFunc("DELETE /api/shares/{id}", s.handleRevokeShare)

	// API – Families
	s.mux.HandleFunc("GET /api/families", s.handleGetFamilies)
	s.mux.HandleFunc("POST /api/families", s.handleCreateFamily)
	s.mux.HandleFunc("PUT /api/families/{id}", s.handleRenameFamily)
	s.mux.HandleFunc("DELETE /api/families/{id}", s.handleDeleteFamily)
	s.mux.HandleFunc("GET /api/families/{id}/members", s.handleGetFamilyMembers)
	s.mux.HandleFunc("POST /api/families/{id}/members", s.handleAddFamilyMember)
	s.mux.HandleFunc("DELETE /api/families/{id}/members/{uid}", s.handleRemoveFamilyMember)

	// API – Lookup tables
	s.mux.HandleFunc("GET /api/categories", s.handleGetCategories)
	s.mux.HandleFunc("GET /api/item-names", s.handleGetItemNames)

	// Live updates
	s.mux.HandleFunc("GET /ws", s.handleWebsocket)

	// Operational
	s.mux.Handle("GET /metrics", promhttp.Handler())
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// ---------------------------------------------------------------------------
// JSON helpers
// ---------------------------------------------------------------------------

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			s.logger.WithError(err).Error("failed to encode JSON response")
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps the service error taxonomy onto HTTP statuses.
func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		s.respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrForbidden):
		s.respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInvalidRequest):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrConflict):
		s.respondError(w, http.StatusConflict, err.Error())
	default:
		s.logger.WithError(err).Error("request failed")
		s.respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads the request body into dst and returns an error message on
// failure.  The caller should return immediately when ok == false.
func (s *Server) decodeJSON(r *http.Request, dst any) (ok bool, errMsg string) {
	if r.Body == nil {
		return false, "request body is empty"
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return false, fmt.Sprintf("invalid JSON: %v", err)
	}
	return true, ""
}

// pathID extracts the {id} path value as a UUID.
func pathID(r *http.Request) (uuid.UUID, error) {
	raw := r.PathValue("id")
	if raw == "" {
		return uuid.Nil, fmt.Errorf("missing id in path")
	}
	return uuid.Parse(raw)
}

// userID reads the identity established by the authenticating reverse proxy.
// Identity issuance itself is outside this service. Writes 401 and returns
// false when absent.
func (s *Server) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.Header.Get("X-User-Id")
	if id == "" {
		s.respondError(w, http.StatusUnauthorized, "user identity not found")
		return "", false
	}
	return id, true
}
