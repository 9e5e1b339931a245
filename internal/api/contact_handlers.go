package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/splitledger/splitledger/internal/middleware"
	"github.com/splitledger/splitledger/internal/service"
)

type contactHandlers struct {
	groups *service.GroupService
}

type contactRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

func (h *contactHandlers) create(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	contact, err := h.groups.AddContact(r.Context(), middleware.UserID(r.Context()),
		req.Name, req.Email, req.Phone, req.Relationship)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toContactView(contact))
}

func (h *contactHandlers) list(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.groups.ListContacts(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]contactView, 0, len(contacts))
	for _, c := range contacts {
		views = append(views, toContactView(c))
	}
	writeJSON(w, http.StatusOK, map[string]any{"contacts": views})
}

func (h *contactHandlers) update(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	contact, err := h.groups.UpdateContact(r.Context(), middleware.UserID(r.Context()),
		chi.URLParam(r, "contactID"), req.Name, req.Email, req.Phone, req.Relationship)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toContactView(contact))
}

func (h *contactHandlers) delete(w http.ResponseWriter, r *http.Request) {
	err := h.groups.RemoveContact(r.Context(), middleware.UserID(r.Context()), chi.URLParam(r, "contactID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
