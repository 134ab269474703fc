package hrest

import (
	"net/http"
	"strconv"
	"time"

	"easycash/internal/domain"
	"easycash/internal/response"

	"github.com/go-chi/chi/v5"
)

func parseTransactionFilter(r *http.Request) (domain.TransactionFilter, error) {
	q := r.URL.Query()
	filter := domain.TransactionFilter{Limit: 50}

	if raw := q.Get("type"); raw != "" {
		kind, err := domain.ParseKind(raw)
		if err != nil {
			return filter, err
		}
		filter.Kind = &kind
	}
	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, err
		}
		filter.From = &t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, err
		}
		filter.To = &t
	}
	if raw := q.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			filter.Limit = n
		}
	}
	if raw := q.Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			filter.Offset = n
		}
	}
	return filter, nil
}

func (h *WalletRestHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")

	filter, err := parseTransactionFilter(r)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	transactions, err := h.historyUC.History(r.Context(), phone, filter)
	if err != nil {
		response.DomainError(w, err)
		return
	}

	total, err := h.historyUC.Count(r.Context(), phone)
	if err != nil {
		response.DomainError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{
		"transactions": transactions,
		"total":        total,
	})
}

func (h *WalletRestHandler) TransactionStats(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")
	stats, err := h.historyUC.Stats(r.Context(), phone)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, stats)
}

func (h *WalletRestHandler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")
	transactionID := chi.URLParam(r, "transactionID")

	tx, err := h.historyUC.Receipt(r.Context(), phone, transactionID)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, tx)
}

func (h *WalletRestHandler) CounterpartySummaries(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")

	direction := domain.Direction(r.URL.Query().Get("direction"))
	if direction == "" {
		direction = domain.DirectionSent
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	summaries, err := h.historyUC.CounterpartySummaries(r.Context(), phone, direction, limit)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	response.JSON(w, http.StatusOK, summaries)
}

func (h *WalletRestHandler) AllPeople(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	people, err := h.historyUC.AllPeople(r.Context(), phone, limit)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, people)
}

func (h *WalletRestHandler) PersonHistory(w http.ResponseWriter, r *http.Request) {
	phone := chi.URLParam(r, "phone")
	identifier := chi.URLParam(r, "identifier")

	history, err := h.historyUC.PersonHistory(r.Context(), phone, identifier)
	if err != nil {
		response.DomainError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, history)
}
