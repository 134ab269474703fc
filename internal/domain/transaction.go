package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Kind classifies a transaction row. Amounts are stored as positive
// magnitudes; the kind implies the sign (deposit/receive credit the
// account, withdraw/send debit it).
type Kind string

const (
	KindDeposit  Kind = "deposit"
	KindWithdraw Kind = "withdraw"
	KindSend     Kind = "send"
	KindReceive  Kind = "receive"
)

// ParseKind validates a raw kind string.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindDeposit, KindWithdraw, KindSend, KindReceive:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown transaction kind %q", s)
}

// Credits reports whether rows of this kind increase the owning account's
// balance.
func (k Kind) Credits() bool {
	return k == KindDeposit || k == KindReceive
}

// Signed returns the amount with the sign this kind implies.
func (k Kind) Signed(amount decimal.Decimal) decimal.Decimal {
	if k.Credits() {
		return amount
	}
	return amount.Neg()
}

// Transaction is one immutable row of the ledger. Rows are append-only:
// never updated or deleted once committed.
//
// A transfer produces two rows with distinct TransactionIDs sharing one
// TransferGroupID: a send row owned by the sender (ReceiverIdentifier set
// to the raw recipient identifier) and, when the recipient resolved to a
// real account, a receive row owned by the recipient (SenderIdentifier set
// to the sender's phone).
type Transaction struct {
	ID                 int64           `json:"id"`
	TransactionID      string          `json:"transaction_id"`
	Phone              string          `json:"phone"`
	Kind               Kind            `json:"type"`
	Amount             decimal.Decimal `json:"amount"`
	BalanceAfter       decimal.Decimal `json:"balance_after"`
	PaymentMethod      *string         `json:"payment_method,omitempty"`
	ReceiverIdentifier *string         `json:"receiver_identifier,omitempty"`
	SenderIdentifier   *string         `json:"sender_identifier,omitempty"`
	TransferGroupID    *string         `json:"transfer_group_id,omitempty"`
	CreatedAt          time.Time       `json:"date_time"`
}

// TransactionFilter narrows history queries.
type TransactionFilter struct {
	Kind   *Kind
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// TransactionStats aggregates one account's ledger by kind.
type TransactionStats struct {
	TotalDeposits     decimal.Decimal `json:"total_deposits"`
	TotalWithdrawals  decimal.Decimal `json:"total_withdrawals"`
	TotalSent         decimal.Decimal `json:"total_sent"`
	TotalReceived     decimal.Decimal `json:"total_received"`
	TotalTransactions int             `json:"total_transactions"`
	NetFlow           decimal.Decimal `json:"net_flow"`
	LatestTransaction *time.Time      `json:"latest_transaction,omitempty"`
}
