package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account is a balance-holding entity keyed by a stable phone identifier.
// The phone number is immutable once the account exists; the payment
// address is unique and assigned lazily.
type Account struct {
	Phone          string          `json:"phone"`
	Username       string          `json:"username"`
	PINHash        string          `json:"-"`
	Balance        decimal.Decimal `json:"balance"`
	PaymentAddress *string         `json:"payment_address,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// PINAttempt tracks consecutive failed authentication attempts for one
// account. The row exists only while the counter is non-zero.
type PINAttempt struct {
	Phone       string    `json:"phone"`
	Attempts    int       `json:"attempts"`
	LastAttempt time.Time `json:"last_attempt"`
}
