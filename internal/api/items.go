package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/sharelist/sharelist/internal/service"
)

type itemCreateInput struct {
	ShoppingListID uuid.UUID `json:"shoppingListId"`
	Name           string    `json:"name"`
	Quantity       string    `json:"quantity"`
	IsChecked      bool      `json:"isChecked"`
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var input itemCreateInput
	if ok, msg := s.decodeJSON(r, &input); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}
	if input.ShoppingListID == uuid.Nil {
		s.respondError(w, http.StatusBadRequest, "shoppingListId is required")
		return
	}

	item, err := s.svc.AddItem(r.Context(), userID, input.ShoppingListID, service.ItemInput{
		Name:      input.Name,
		Quantity:  input.Quantity,
		IsChecked: input.IsChecked,
	})
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusCreated, item)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var input service.ItemInput
	if ok, msg := s.decodeJSON(r, &input); !ok {
		s.respondError(w, http.StatusBadRequest, msg)
		return
	}

	item, err := s.svc.UpdateItem(r.Context(), userID, id, input)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, item)
}

func (s *Server) handleToggleItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := s.svc.ToggleItem(r.Context(), userID, id)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	id, err := pathID(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := s.svc.DeleteItem(r.Context(), userID, id); err != nil {
		s.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
