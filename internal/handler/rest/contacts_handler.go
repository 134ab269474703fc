package hrest

import (
	"encoding/json"
	"net/http"

	"easycash/internal/response"

	"github.com/go-chi/chi/v5"
)

func (h *WalletRestHandler) ListContacts(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")
	contacts, err := h.contactsUC.List(r.Context(), phone)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, contacts)
}

type contactJSON struct {
	ContactPhone string  `json:"contact_phone"`
	Nickname     *string `json:"nickname,omitempty"`
}

func (h *WalletRestHandler) AddContact(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")
	var in contactJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.contactsUC.Add(r.Context(), phone, in.ContactPhone, in.Nickname); err != nil {
		response.DomainError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, map[string]string{
		"contact_phone": in.ContactPhone,
	})
}

type nicknameJSON struct {
	Nickname *string `json:"nickname"`
}

func (h *WalletRestHandler) UpdateContactNickname(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")
	contactPhone := chi.URLParam(r, "contactPhone")

	var in nicknameJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.contactsUC.UpdateNickname(r.Context(), phone, contactPhone, in.Nickname); err != nil {
		response.DomainError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{
		"contact_phone": contactPhone,
	})
}

func (h *WalletRestHandler) RemoveContact(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")
	contactPhone := chi.URLParam(r, "contactPhone")

	if err := h.contactsUC.Remove(r.Context(), phone, contactPhone); err != nil {
		response.DomainError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{
		"contact_phone": contactPhone,
	})
}

func (h *WalletRestHandler) SyncContacts(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")
	added, err := h.contactsUC.SyncFromHistory(r.Context(), phone)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]int{"added": added})
}
