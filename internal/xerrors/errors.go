package xerrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Validation errors are rejected before any mutation and reported to the
// caller verbatim.
var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrAmountOverLimit     = errors.New("amount exceeds transaction limit")
	ErrMalformedIdentifier = errors.New("malformed identifier")
	ErrInvalidPINFormat    = errors.New("PIN must be exactly 6 digits")
	ErrSelfTransfer        = errors.New("cannot send money to yourself")
)

// Ledger
var (
	ErrInsufficientFunds   = errors.New("insufficient balance")
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("transaction not found")
)

// Duplicates are recoverable: the caller picks a different value.
var (
	ErrDuplicateAccount = errors.New("account already exists")
	ErrAddressTaken     = errors.New("payment address already in use")
	ErrContactExists    = errors.New("contact already saved")
)

// Authentication
var (
	ErrInvalidPIN    = errors.New("incorrect PIN")
	ErrAccountLocked = errors.New("account locked, too many attempts")
)

const pgUniqueViolation = "23505"

// IsUniqueViolation reports whether err is a Postgres unique constraint
// violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
