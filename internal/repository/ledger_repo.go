package repository

import (
	"context"
	"errors"
	"fmt"

	"easycash/internal/domain"
	"easycash/internal/xerrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// LedgerRepository executes balance mutations. Every operation runs inside
// a single database transaction: the balance update and the appended
// transaction rows commit together or not at all.
type LedgerRepository interface {
	Adjust(ctx context.Context, p AdjustParams) (*AdjustResult, error)
	Transfer(ctx context.Context, p TransferParams) (*TransferResult, error)
}

type AdjustParams struct {
	Phone         string
	Kind          domain.Kind // deposit or withdraw
	Amount        decimal.Decimal
	PaymentMethod *string
	TransactionID string
}

type AdjustResult struct {
	TransactionID string          `json:"transaction_id"`
	NewBalance    decimal.Decimal `json:"new_balance"`
}

type TransferParams struct {
	SenderPhone   string
	ReceiverPhone *string // nil when the recipient is external
	RawIdentifier string  // recipient identifier exactly as the caller gave it
	PaymentMethod string
	Amount        decimal.Decimal

	SendTransactionID    string
	ReceiveTransactionID string
	TransferGroupID      string
}

type TransferResult struct {
	TransactionID     string          `json:"transaction_id"`
	TransferGroupID   string          `json:"transfer_group_id"`
	SenderBalance     decimal.Decimal `json:"sender_balance"`
	CounterpartyFound bool            `json:"counterparty_found"`
}

type ledgerRepo struct {
	db *pgxpool.Pool
}

func NewLedgerRepo(db *pgxpool.Pool) LedgerRepository {
	return &ledgerRepo{db: db}
}

// lockBalance reads an account's balance under a row lock held for the
// rest of the transaction.
func lockBalance(ctx context.Context, tx pgx.Tx, phone string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := tx.QueryRow(ctx, `SELECT balance FROM accounts WHERE phone = $1 FOR UPDATE`, phone).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, xerrors.ErrAccountNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to lock balance: %w", err)
	}
	return balance, nil
}

func setBalance(ctx context.Context, tx pgx.Tx, phone string, balance decimal.Decimal) error {
	if _, err := tx.Exec(ctx, `UPDATE accounts SET balance = $1 WHERE phone = $2`, balance, phone); err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	return nil
}

func appendRow(ctx context.Context, tx pgx.Tx, row *domain.Transaction) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO transactions
			(transaction_id, phone, type, amount, balance_after,
			 payment_method, receiver_identifier, sender_identifier, transfer_group_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, row.TransactionID, row.Phone, row.Kind, row.Amount, row.BalanceAfter,
		row.PaymentMethod, row.ReceiverIdentifier, row.SenderIdentifier, row.TransferGroupID)
	if err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}
	return nil
}

// Adjust applies a unilateral deposit or withdrawal and appends the
// matching row.
func (r *ledgerRepo) Adjust(ctx context.Context, p AdjustParams) (*AdjustResult, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	balance, err := lockBalance(ctx, tx, p.Phone)
	if err != nil {
		return nil, err
	}

	var newBalance decimal.Decimal
	if p.Kind.Credits() {
		newBalance = balance.Add(p.Amount)
	} else {
		newBalance = balance.Sub(p.Amount)
		if newBalance.IsNegative() {
			return nil, xerrors.ErrInsufficientFunds
		}
	}

	if err := setBalance(ctx, tx, p.Phone, newBalance); err != nil {
		return nil, err
	}
	if err := appendRow(ctx, tx, &domain.Transaction{
		TransactionID: p.TransactionID,
		Phone:         p.Phone,
		Kind:          p.Kind,
		Amount:        p.Amount,
		BalanceAfter:  newBalance,
		PaymentMethod: p.PaymentMethod,
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit adjustment: %w", err)
	}
	return &AdjustResult{TransactionID: p.TransactionID, NewBalance: newBalance}, nil
}

// Transfer debits the sender and, when the recipient resolved to a real
// account, credits it with a paired receive row. Both account rows are
// locked in phone order so concurrent opposing transfers cannot deadlock.
// If the recipient is external only the sender-side send row is written
// and the money is modeled as having left the system.
func (r *ledgerRepo) Transfer(ctx context.Context, p TransferParams) (*TransferResult, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	internal := p.ReceiverPhone != nil

	var senderBalance, receiverBalance decimal.Decimal
	if internal && *p.ReceiverPhone < p.SenderPhone {
		if receiverBalance, err = lockBalance(ctx, tx, *p.ReceiverPhone); err != nil {
			return nil, err
		}
		if senderBalance, err = lockBalance(ctx, tx, p.SenderPhone); err != nil {
			return nil, err
		}
	} else {
		if senderBalance, err = lockBalance(ctx, tx, p.SenderPhone); err != nil {
			return nil, err
		}
		if internal {
			if receiverBalance, err = lockBalance(ctx, tx, *p.ReceiverPhone); err != nil {
				return nil, err
			}
		}
	}

	newSenderBalance := senderBalance.Sub(p.Amount)
	if newSenderBalance.IsNegative() {
		return nil, xerrors.ErrInsufficientFunds
	}

	if err := setBalance(ctx, tx, p.SenderPhone, newSenderBalance); err != nil {
		return nil, err
	}
	if err := appendRow(ctx, tx, &domain.Transaction{
		TransactionID:      p.SendTransactionID,
		Phone:              p.SenderPhone,
		Kind:               domain.KindSend,
		Amount:             p.Amount,
		BalanceAfter:       newSenderBalance,
		PaymentMethod:      &p.PaymentMethod,
		ReceiverIdentifier: &p.RawIdentifier,
		TransferGroupID:    &p.TransferGroupID,
	}); err != nil {
		return nil, err
	}

	if internal {
		newReceiverBalance := receiverBalance.Add(p.Amount)
		if err := setBalance(ctx, tx, *p.ReceiverPhone, newReceiverBalance); err != nil {
			return nil, err
		}
		if err := appendRow(ctx, tx, &domain.Transaction{
			TransactionID:    p.ReceiveTransactionID,
			Phone:            *p.ReceiverPhone,
			Kind:             domain.KindReceive,
			Amount:           p.Amount,
			BalanceAfter:     newReceiverBalance,
			PaymentMethod:    &p.PaymentMethod,
			SenderIdentifier: &p.SenderPhone,
			TransferGroupID:  &p.TransferGroupID,
		}); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transfer: %w", err)
	}
	return &TransferResult{
		TransactionID:     p.SendTransactionID,
		TransferGroupID:   p.TransferGroupID,
		SenderBalance:     newSenderBalance,
		CounterpartyFound: internal,
	}, nil
}
