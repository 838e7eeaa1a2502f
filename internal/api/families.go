package api

import (
	"net/http"
)

type familyInput struct {
	Name string `json:"name"`
}

type memberInput struct {
	UserIDToAdd string `json:"userIdToAdd"`
}

func (s *Server) handleGetFamilies(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	families, err := s.svc.FamiliesForUser(r.Context(), userID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, families)
}

func (s *Server) handleCreateFamily(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var input familyInput
	if ok, msg := s.decodeJSON(r, &input); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	family, err := s.svc.CreateFamily(r.Context(), userID, input.Name)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, family)
}

func (s *Server) handleRenameFamily(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid family id")
		return
	}

	var input familyInput
	if ok, msg := s.decodeJSON(r, &input); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	family, err := s.svc.RenameFamily(r.Context(), userID, id, input.Name)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, family)
}

func (s *Server) handleDeleteFamily(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid family id")
		return
	}

	if err := s.svc.DeleteFamily(r.Context(), userID, id); err != nil {
		s.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetFamilyMembers(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid family id")
		return
	}

	members, err := s.svc.FamilyMembers(r.Context(), userID, id)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, members)
}

func (s *Server) handleAddFamilyMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid family id")
		return
	}

	var input memberInput
	if ok, msg := s.decodeJSON(r, &input); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	if input.UserIDToAdd == "" {
		s.respondError(w, http.StatusBadRequest, "userIdToAdd is required")
		return
	}

	member, err := s.svc.AddFamilyMember(r.Context(), userID, id, input.UserIDToAdd)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, member)
}

func (s *Server) handleRemoveFamilyMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid family id")
		return
	}

	target := r.PathValue("uid")
	if target == "" {
		s.respondError(w, http.StatusBadRequest, "missing member user id")
		return
	}

	if err := s.svc.RemoveFamilyMember(r.Context(), userID, id, target); err != nil {
		s.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
