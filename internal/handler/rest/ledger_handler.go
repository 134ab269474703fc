package hrest

import (
	"encoding/json"
	"net/http"

	"easycash/internal/domain"
	"easycash/internal/response"
	"easycash/internal/usecase"
	"easycash/internal/xerrors"
	"easycash/pkg/money"
)

type adjustmentJSON struct {
	Phone         string  `json:"phone"`
	PIN           string  `json:"pin"`
	Amount        string  `json:"amount"`
	PaymentMethod *string `json:"payment_method,omitempty"`
}

func (h *WalletRestHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, domain.KindDeposit)
}

func (h *WalletRestHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, domain.KindWithdraw)
}

func (h *WalletRestHandler) adjust(w http.ResponseWriter, r *http.Request, kind domain.Kind) {
	var in adjustmentJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, err := h.pinGuardUC.Authenticate(r.Context(), in.Phone, in.PIN); err != nil {
		response.DomainError(w, err)
		return
	}

	amount, err := money.Parse(in.Amount)
	if err != nil {
		response.DomainError(w, xerrors.ErrInvalidAmount)
		return
	}

	result, err := h.ledgerUC.Adjust(r.Context(), in.Phone, kind, amount, in.PaymentMethod)
	if err != nil {
		response.DomainError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{
		"transaction_id": result.TransactionID,
		"type":           string(kind),
		"amount":         money.Format(amount),
		"new_balance":    money.Format(result.NewBalance),
	})
}

type transferJSON struct {
	Phone      string `json:"phone"`
	PIN        string `json:"pin"`
	Identifier string `json:"identifier"`
	Channel    string `json:"channel"`
	Amount     string `json:"amount"`
}

func (h *WalletRestHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var in transferJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	channel, err := usecase.ParseChannel(in.Channel)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.pinGuardUC.Authenticate(r.Context(), in.Phone, in.PIN); err != nil {
		response.DomainError(w, err)
		return
	}

	amount, err := money.Parse(in.Amount)
	if err != nil {
		response.DomainError(w, xerrors.ErrInvalidAmount)
		return
	}

	outcome, err := h.ledgerUC.Transfer(r.Context(), in.Phone, in.Identifier, channel, amount)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, outcome)
}
