package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"easycash/internal/xerrors"
)

type APIResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse{
		Status: "success",
		Data:   data,
	})
}

func Error(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse{
		Status:  "error",
		Message: msg,
	})
}

// statusFor maps domain errors to HTTP status codes. Unknown errors are
// treated as internal.
func statusFor(err error) int {
	switch {
	case errors.Is(err, xerrors.ErrAccountNotFound),
		errors.Is(err, xerrors.ErrTransactionNotFound):
		return http.StatusNotFound
	case errors.Is(err, xerrors.ErrDuplicateAccount),
		errors.Is(err, xerrors.ErrAddressTaken),
		errors.Is(err, xerrors.ErrContactExists):
		return http.StatusConflict
	case errors.Is(err, xerrors.ErrAccountLocked):
		return http.StatusForbidden
	case errors.Is(err, xerrors.ErrInvalidPIN):
		return http.StatusUnauthorized
	case errors.Is(err, xerrors.ErrInvalidAmount),
		errors.Is(err, xerrors.ErrAmountOverLimit),
		errors.Is(err, xerrors.ErrMalformedIdentifier),
		errors.Is(err, xerrors.ErrInvalidPINFormat),
		errors.Is(err, xerrors.ErrSelfTransfer),
		errors.Is(err, xerrors.ErrInsufficientFunds):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// DomainError writes err with the status its domain meaning implies,
// hiding internal error text from the client.
func DomainError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	Error(w, status, msg)
}
