package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction of money relative to the account the query runs for.
type Direction string

const (
	DirectionSent     Direction = "sent"
	DirectionReceived Direction = "received"
	DirectionBoth     Direction = "both"
)

// CounterpartySummary is one group of the "who have I transacted with"
// view: all transfers against a single counterparty identifier, with a
// display name attached when the identifier resolves to a live account.
type CounterpartySummary struct {
	Identifier     string          `json:"identifier"`
	Phone          *string         `json:"phone,omitempty"`
	Username       string          `json:"username"`
	PaymentAddress *string         `json:"payment_address,omitempty"`
	Nickname       *string         `json:"nickname,omitempty"`
	Count          int             `json:"transaction_count"`
	Total          decimal.Decimal `json:"total_amount"`
	LastSeen       time.Time       `json:"last_transaction"`
}

// PersonSummary merges both directions for one counterparty in the
// "all people" view.
type PersonSummary struct {
	Identifier      string          `json:"identifier"`
	Phone           *string         `json:"phone,omitempty"`
	Username        string          `json:"username"`
	PaymentAddress  *string         `json:"payment_address,omitempty"`
	SentCount       int             `json:"sent_count"`
	TotalSent       decimal.Decimal `json:"total_sent"`
	ReceivedCount   int             `json:"received_count"`
	TotalReceived   decimal.Decimal `json:"total_received"`
	NetFlow         decimal.Decimal `json:"net_flow"`
	LastInteraction time.Time       `json:"last_interaction"`
	Interaction     Direction       `json:"interaction_type"`
}

// PersonAngle tags which side of the relationship reported a row in a
// per-counterparty timeline.
type PersonAngle string

const (
	AngleSentByMe       PersonAngle = "sent_by_me"
	AngleReceivedByMe   PersonAngle = "received_by_me"
	AngleSentByThem     PersonAngle = "sent_by_them"
	AngleReceivedByThem PersonAngle = "received_by_them"
)

// PersonTransaction is one entry of a per-counterparty timeline.
type PersonTransaction struct {
	TransactionID      string          `json:"transaction_id"`
	Angle              PersonAngle     `json:"transaction_type"`
	Kind               Kind            `json:"type"`
	Amount             decimal.Decimal `json:"amount"`
	MyBalanceAfter     *decimal.Decimal `json:"my_balance_after,omitempty"`
	TheirBalanceAfter  *decimal.Decimal `json:"their_balance_after,omitempty"`
	PaymentMethod      *string         `json:"payment_method,omitempty"`
	CounterpartyName   string          `json:"counterparty_name"`
	TransferGroupID    *string         `json:"transfer_group_id,omitempty"`
	CreatedAt          time.Time       `json:"date_time"`
}

// PersonHistorySummary totals a per-counterparty timeline. Opposite
// parties' self-reported rows of the same transfer must not double count;
// the aggregator dedups by transaction id before computing these figures.
type PersonHistorySummary struct {
	TotalTransactions   int             `json:"total_transactions"`
	TotalSentByMe       decimal.Decimal `json:"total_sent_by_me"`
	TotalReceivedByMe   decimal.Decimal `json:"total_received_by_me"`
	TotalSentByThem     decimal.Decimal `json:"total_sent_by_them"`
	TotalReceivedByThem decimal.Decimal `json:"total_received_by_them"`
	NetBalance          decimal.Decimal `json:"net_balance"`
	SentCount           int             `json:"sent_count"`
	ReceivedCount       int             `json:"received_count"`
}

// CounterpartyInfo describes the other party of a person-history view.
type CounterpartyInfo struct {
	Identifier     string  `json:"identifier"`
	Phone          *string `json:"phone,omitempty"`
	Username       *string `json:"username,omitempty"`
	PaymentAddress *string `json:"payment_address,omitempty"`
	ExistsInSystem bool    `json:"exists_in_system"`
}

// PersonHistory is the full per-counterparty reconstruction.
type PersonHistory struct {
	ContactInfo  CounterpartyInfo     `json:"contact_info"`
	Transactions []PersonTransaction  `json:"transactions"`
	Summary      PersonHistorySummary `json:"summary"`
}
