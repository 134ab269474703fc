package repository

import (
	"context"
	"errors"
	"fmt"

	"easycash/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PINAttemptRepository is the only writer of pin_attempts rows. A row is
// created on the first failure, incremented on each subsequent failure and
// deleted on success or explicit reset.
type PINAttemptRepository interface {
	Increment(ctx context.Context, phone string) (int, error)
	Count(ctx context.Context, phone string) (int, error)
	Reset(ctx context.Context, phone string) error
	Get(ctx context.Context, phone string) (*domain.PINAttempt, error)
}

type pinAttemptRepo struct {
	db *pgxpool.Pool
}

func NewPINAttemptRepo(db *pgxpool.Pool) PINAttemptRepository {
	return &pinAttemptRepo{db: db}
}

// Increment upserts the counter atomically and returns the new count.
func (r *pinAttemptRepo) Increment(ctx context.Context, phone string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `
		INSERT INTO pin_attempts (phone, attempts, last_attempt)
		VALUES ($1, 1, now())
		ON CONFLICT (phone)
		DO UPDATE SET attempts = pin_attempts.attempts + 1, last_attempt = now()
		RETURNING attempts
	`, phone).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to record pin attempt: %w", err)
	}
	return count, nil
}

func (r *pinAttemptRepo) Count(ctx context.Context, phone string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT attempts FROM pin_attempts WHERE phone = $1`, phone).Scan(&count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get pin attempts: %w", err)
	}
	return count, nil
}

func (r *pinAttemptRepo) Reset(ctx context.Context, phone string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM pin_attempts WHERE phone = $1`, phone); err != nil {
		return fmt.Errorf("failed to reset pin attempts: %w", err)
	}
	return nil
}

func (r *pinAttemptRepo) Get(ctx context.Context, phone string) (*domain.PINAttempt, error) {
	var a domain.PINAttempt
	err := r.db.QueryRow(ctx, `
		SELECT phone, attempts, last_attempt FROM pin_attempts WHERE phone = $1
	`, phone).Scan(&a.Phone, &a.Attempts, &a.LastAttempt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.PINAttempt{Phone: phone}, nil
		}
		return nil, fmt.Errorf("failed to get pin attempts: %w", err)
	}
	return &a, nil
}
