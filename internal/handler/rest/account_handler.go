package hrest

import (
	"encoding/json"
	"errors"
	"net/http"

	"easycash/internal/response"
	"easycash/internal/xerrors"
	"easycash/pkg/money"

	"github.com/go-chi/chi/v5"
)

type registerJSON struct {
	Phone    string `json:"phone"`
	Username string `json:"username"`
	PIN      string `json:"pin"`
}

func (h *WalletRestHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in registerJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := h.accountUC.Register(r.Context(), in.Phone, in.Username, in.PIN)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, account)
}

type loginJSON struct {
	Phone string `json:"phone"`
	PIN   string `json:"pin"`
}

type loginResultJSON struct {
	Phone             string `json:"phone,omitempty"`
	Username          string `json:"username,omitempty"`
	AttemptsRemaining int    `json:"attempts_remaining"`
}

func (h *WalletRestHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var in loginJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.pinGuardUC.Authenticate(r.Context(), in.Phone, in.PIN)
	if err != nil {
		if errors.Is(err, xerrors.ErrInvalidPIN) && result != nil {
			response.JSON(w, http.StatusUnauthorized, loginResultJSON{
				AttemptsRemaining: result.AttemptsRemaining,
			})
			return
		}
		response.DomainError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, loginResultJSON{
		Phone:             result.Account.Phone,
		Username:          result.Account.Username,
		AttemptsRemaining: result.AttemptsRemaining,
	})
}

func (h *WalletRestHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")
	account, err := h.accountUC.Get(r.Context(), phone)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, account)
}

func (h *WalletRestHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")
	account, err := h.accountUC.Get(r.Context(), phone)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{
		"phone":   account.Phone,
		"balance": money.Format(account.Balance),
	})
}

type paymentAddressJSON struct {
	PaymentAddress string `json:"payment_address"`
}

func (h *WalletRestHandler) SetPaymentAddress(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")
	var in paymentAddressJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.accountUC.SetPaymentAddress(r.Context(), phone, in.PaymentAddress); err != nil {
		response.DomainError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]string{
		"phone":           phone,
		"payment_address": in.PaymentAddress,
	})
}

func (h *WalletRestHandler) SearchAccounts(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	accounts, err := h.accountUC.Search(r.Context(), term)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, accounts)
}
