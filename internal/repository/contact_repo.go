package repository

import (
	"context"
	"fmt"

	"easycash/internal/domain"
	"easycash/internal/xerrors"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ContactRepository interface {
	List(ctx context.Context, userPhone string) ([]*domain.ContactView, error)
	Add(ctx context.Context, userPhone, contactPhone string, nickname *string) error
	UpdateNickname(ctx context.Context, userPhone, contactPhone string, nickname *string) error
	Remove(ctx context.Context, userPhone, contactPhone string) error
	Exists(ctx context.Context, userPhone, contactPhone string) (bool, error)
}

type contactRepo struct {
	db *pgxpool.Pool
}

func NewContactRepo(db *pgxpool.Pool) ContactRepository {
	return &contactRepo{db: db}
}

func (r *contactRepo) List(ctx context.Context, userPhone string) ([]*domain.ContactView, error) {
	rows, err := r.db.Query(ctx, `
		SELECT u.phone, u.username, u.payment_address, c.nickname
		FROM contacts c
		JOIN accounts u ON c.contact_phone = u.phone
		WHERE c.user_phone = $1
		ORDER BY c.created_at DESC
	`, userPhone)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []*domain.ContactView
	for rows.Next() {
		var c domain.ContactView
		if err := rows.Scan(&c.Phone, &c.Username, &c.PaymentAddress, &c.Nickname); err != nil {
			return nil, err
		}
		contacts = append(contacts, &c)
	}
	return contacts, rows.Err()
}

func (r *contactRepo) Add(ctx context.Context, userPhone, contactPhone string, nickname *string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO contacts (user_phone, contact_phone, nickname)
		VALUES ($1, $2, $3)
	`, userPhone, contactPhone, nickname)
	if err != nil {
		if xerrors.IsUniqueViolation(err) {
			return xerrors.ErrContactExists
		}
		return fmt.Errorf("failed to add contact: %w", err)
	}
	return nil
}

func (r *contactRepo) UpdateNickname(ctx context.Context, userPhone, contactPhone string, nickname *string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE contacts SET nickname = $1
		WHERE user_phone = $2 AND contact_phone = $3
	`, nickname, userPhone, contactPhone)
	if err != nil {
		return fmt.Errorf("failed to update nickname: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrAccountNotFound
	}
	return nil
}

func (r *contactRepo) Remove(ctx context.Context, userPhone, contactPhone string) error {
	if _, err := r.db.Exec(ctx, `
		DELETE FROM contacts WHERE user_phone = $1 AND contact_phone = $2
	`, userPhone, contactPhone); err != nil {
		return fmt.Errorf("failed to remove contact: %w", err)
	}
	return nil
}

func (r *contactRepo) Exists(ctx context.Context, userPhone, contactPhone string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM contacts WHERE user_phone = $1 AND contact_phone = $2)
	`, userPhone, contactPhone).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check contact: %w", err)
	}
	return exists, nil
}
