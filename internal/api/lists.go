package api

import (
	"net/http"
)

type listInput struct {
	Name string `json:"name"`
}

func (s *Server) handleGetLists(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	lists, err := s.svc.ListsForUser(r.Context(), userID)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, lists)
}

func (s *Server) handleCreateList(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var input listInput
	if ok, msg := s.decodeJSON(r, &input); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	list, err := s.svc.CreateList(r.Context(), userID, input.Name)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, list)
}

func (s *Server) handleGetList(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid list id")
		return
	}

	list, err := s.svc.GetList(r.Context(), userID, id)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleRenameList(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid list id")
		return
	}

	var input listInput
	if ok, msg := s.decodeJSON(r, &input); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	list, err := s.svc.RenameList(r.Context(), userID, id, input.Name)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid list id")
		return
	}

	if err := s.svc.DeleteList(r.Context(), userID, id); err != nil {
		s.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetCategories(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.userID(w, r); !ok {
		return
	}

	cats, err := s.svc.Categories(r.Context())
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, cats)
}

func (s *Server) handleGetItemNames(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	names, err := s.svc.PreviousItemNames(r.Context(), userID, r.URL.Query().Get("prefix"), 20)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, names)
}
