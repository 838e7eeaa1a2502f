package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/sharelist/sharelist/internal/service"
)

// shareInput mirrors the web client's share form: exactly one of the two
// target fields may be set.
type shareInput struct {
	ListID              uuid.UUID  `json:"listId"`
	UserIDToShareWith   *string    `json:"userIdToShareWith"`
	FamilyIDToShareWith *uuid.UUID `json:"familyIdToShareWith"`
}

func (s *Server) handleCreateShare(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var input shareInput
	if ok, msg := s.decodeJSON(r, &input); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	if input.ListID == uuid.Nil {
		s.respondError(w, http.StatusBadRequest, "listId is required")
		return
	}

	target := service.ShareTarget{FamilyID: input.FamilyIDToShareWith}
	if input.UserIDToShareWith != nil && *input.UserIDToShareWith != "" {
		target.UserID = input.UserIDToShareWith
	}

	share, err := s.svc.CreateShare(r.Context(), userID, input.ListID, target)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, share)
}

func (s *Server) handleRevokeShare(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid share id")
		return
	}

	if err := s.svc.RevokeShare(r.Context(), userID, id); err != nil {
		s.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetShare(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid share id")
		return
	}

	share, err := s.svc.GetShare(r.Context(), userID, id)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, share)
}

func (s *Server) handleGetSharesForList(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	listID, err := uuid.Parse(r.URL.Query().Get("listId"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "listId query parameter is required")
		return
	}

	shares, err := s.svc.SharesForList(r.Context(), userID, listID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, shares)
}
