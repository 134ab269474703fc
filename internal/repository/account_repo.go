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

type AccountRepository interface {
	GetByPhone(ctx context.Context, phone string) (*domain.Account, error)
	GetByPaymentAddress(ctx context.Context, address string) (*domain.Account, error)
	GetBalance(ctx context.Context, phone string) (decimal.Decimal, error)
	Create(ctx context.Context, account *domain.Account) error
	SetPaymentAddress(ctx context.Context, phone, address string) error
	Search(ctx context.Context, term string, limit int) ([]*domain.Account, error)
}

type accountRepo struct {
	db *pgxpool.Pool
}

func NewAccountRepo(db *pgxpool.Pool) AccountRepository {
	return &accountRepo{db: db}
}

const accountColumns = `phone, username, pin_hash, balance, payment_address, created_at`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(&a.Phone, &a.Username, &a.PINHash, &a.Balance, &a.PaymentAddress, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &a, nil
}

func (r *accountRepo) GetByPhone(ctx context.Context, phone string) (*domain.Account, error) {
	return scanAccount(r.db.QueryRow(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE phone = $1
	`, phone))
}

func (r *accountRepo) GetByPaymentAddress(ctx context.Context, address string) (*domain.Account, error) {
	return scanAccount(r.db.QueryRow(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE payment_address = $1
	`, address))
}

func (r *accountRepo) GetBalance(ctx context.Context, phone string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.QueryRow(ctx, `SELECT balance FROM accounts WHERE phone = $1`, phone).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, xerrors.ErrAccountNotFound
		}
		return decimal.Zero, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

// Create inserts a new account row. The phone is the primary key and the
// payment address carries a unique constraint; both conflicts map to
// typed errors.
func (r *accountRepo) Create(ctx context.Context, account *domain.Account) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO accounts (phone, username, pin_hash, balance, payment_address, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
	`, account.Phone, account.Username, account.PINHash, account.Balance, account.PaymentAddress)
	if err != nil {
		if xerrors.IsUniqueViolation(err) {
			return xerrors.ErrDuplicateAccount
		}
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (r *accountRepo) SetPaymentAddress(ctx context.Context, phone, address string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE accounts SET payment_address = $1 WHERE phone = $2
	`, address, phone)
	if err != nil {
		if xerrors.IsUniqueViolation(err) {
			return xerrors.ErrAddressTaken
		}
		return fmt.Errorf("failed to set payment address: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrAccountNotFound
	}
	return nil
}

// Search matches username, phone or payment address by substring.
func (r *accountRepo) Search(ctx context.Context, term string, limit int) ([]*domain.Account, error) {
	if limit <= 0 || limit > 20 {
		limit = 20
	}
	pattern := "%" + term + "%"
	rows, err := r.db.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE username ILIKE $1 OR phone LIKE $1 OR payment_address ILIKE $1
		LIMIT $2
	`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		var a domain.Account
		if err := rows.Scan(&a.Phone, &a.Username, &a.PINHash, &a.Balance, &a.PaymentAddress, &a.CreatedAt); err != nil {
			return nil, err
		}
		accounts = append(accounts, &a)
	}
	return accounts, rows.Err()
}
