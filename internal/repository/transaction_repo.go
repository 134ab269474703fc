package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"easycash/internal/domain"
	"easycash/internal/xerrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// TransactionRepository is the read side of the ledger. It never mutates
// transaction rows.
type TransactionRepository interface {
	List(ctx context.Context, phone string, filter domain.TransactionFilter) ([]*domain.Transaction, error)
	Count(ctx context.Context, phone string) (int, error)
	GetByTransactionID(ctx context.Context, transactionID string) (*domain.Transaction, error)
	Stats(ctx context.Context, phone string) (*domain.TransactionStats, error)

	Counterparties(ctx context.Context, phone string, direction domain.Direction, limit int) ([]*CounterpartyRow, error)
	AllPeople(ctx context.Context, phone string, limit int) ([]*PersonRow, error)
	PersonAngles(ctx context.Context, mePhone string, myAddress *string, contactPhone, contactIdentifier string) ([]*AngleRow, error)

	CounterpartyPhones(ctx context.Context, phone string) ([]string, error)
}

// CounterpartyRow is one GROUP BY bucket of the sent-to / received-from
// views, before display-name synthesis.
type CounterpartyRow struct {
	Identifier     string
	Phone          *string
	Username       *string
	PaymentAddress *string
	Nickname       *string
	Count          int
	Total          decimal.Decimal
	LastSeen       time.Time
}

// PersonRow is one bucket of the "all people" union.
type PersonRow struct {
	Key            string // resolved phone, falling back to the raw identifier
	Phone          *string
	Username       *string
	PaymentAddress *string
	SentCount      int
	TotalSent      decimal.Decimal
	ReceivedCount  int
	TotalReceived  decimal.Decimal
	LastSeen       time.Time
}

// AngleRow is one row of a per-counterparty timeline, tagged with the
// angle that reported it.
type AngleRow struct {
	TransactionID   string
	Angle           domain.PersonAngle
	Kind            domain.Kind
	Amount          decimal.Decimal
	BalanceAfter    decimal.Decimal
	PaymentMethod   *string
	TransferGroupID *string
	CreatedAt       time.Time
}

type transactionRepo struct {
	db *pgxpool.Pool
}

func NewTransactionRepo(db *pgxpool.Pool) TransactionRepository {
	return &transactionRepo{db: db}
}

const transactionColumns = `id, transaction_id, phone, type, amount, balance_after,
	payment_method, receiver_identifier, sender_identifier, transfer_group_id, created_at`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	err := row.Scan(&t.ID, &t.TransactionID, &t.Phone, &t.Kind, &t.Amount, &t.BalanceAfter,
		&t.PaymentMethod, &t.ReceiverIdentifier, &t.SenderIdentifier, &t.TransferGroupID, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *transactionRepo) List(ctx context.Context, phone string, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE phone = $1`
	args := []any{phone}

	if filter.Kind != nil {
		args = append(args, *filter.Kind)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []*domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (r *transactionRepo) Count(ctx context.Context, phone string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM transactions WHERE phone = $1`, phone).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func (r *transactionRepo) GetByTransactionID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	t, err := scanTransaction(r.db.QueryRow(ctx, `
		SELECT `+transactionColumns+` FROM transactions WHERE transaction_id = $1
	`, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, xerrors.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

func (r *transactionRepo) Stats(ctx context.Context, phone string) (*domain.TransactionStats, error) {
	var s domain.TransactionStats
	err := r.db.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'deposit'),  0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'withdraw'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'send'),     0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'receive'),  0),
			COUNT(*),
			MAX(created_at)
		FROM transactions
		WHERE phone = $1
	`, phone).Scan(&s.TotalDeposits, &s.TotalWithdrawals, &s.TotalSent, &s.TotalReceived,
		&s.TotalTransactions, &s.LatestTransaction)
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction stats: %w", err)
	}
	s.NetFlow = s.TotalDeposits.Sub(s.TotalWithdrawals).Sub(s.TotalSent).Add(s.TotalReceived)
	return &s, nil
}

// Counterparties groups one direction of the transfer log by the raw
// counterparty identifier, attaching the owning account and any saved
// nickname when the identifier resolves.
func (r *transactionRepo) Counterparties(ctx context.Context, phone string, direction domain.Direction, limit int) ([]*CounterpartyRow, error) {
	identifierCol, kind := "receiver_identifier", domain.KindSend
	if direction == domain.DirectionReceived {
		identifierCol, kind = "sender_identifier", domain.KindReceive
	}
	if limit <= 0 {
		limit = 10
	}

	query := fmt.Sprintf(`
		SELECT
			t.%[1]s,
			u.phone,
			u.username,
			u.payment_address,
			c.nickname,
			COUNT(t.id),
			SUM(t.amount),
			MAX(t.created_at)
		FROM transactions t
		LEFT JOIN accounts u
			ON t.%[1]s = u.phone OR t.%[1]s = u.payment_address
		LEFT JOIN contacts c
			ON c.user_phone = $1
			AND (c.contact_phone = u.phone OR (u.phone IS NULL AND c.contact_phone = t.%[1]s))
		WHERE t.phone = $1
			AND t.type = $2
			AND t.%[1]s IS NOT NULL
		GROUP BY t.%[1]s, u.phone, u.username, u.payment_address, c.nickname
		ORDER BY MAX(t.created_at) DESC
		LIMIT $3
	`, identifierCol)

	rows, err := r.db.Query(ctx, query, phone, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to group counterparties: %w", err)
	}
	defer rows.Close()

	var out []*CounterpartyRow
	for rows.Next() {
		var c CounterpartyRow
		if err := rows.Scan(&c.Identifier, &c.Phone, &c.Username, &c.PaymentAddress,
			&c.Nickname, &c.Count, &c.Total, &c.LastSeen); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

// AllPeople unions the sent and received groupings, keyed by the resolved
// account phone with the raw identifier as fallback.
func (r *transactionRepo) AllPeople(ctx context.Context, phone string, limit int) ([]*PersonRow, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.Query(ctx, `
		SELECT
			COALESCE(u.phone, t.identifier),
			u.phone,
			u.username,
			u.payment_address,
			SUM(CASE WHEN t.direction = 'sent' THEN 1 ELSE 0 END),
			COALESCE(SUM(CASE WHEN t.direction = 'sent' THEN t.amount ELSE 0 END), 0),
			SUM(CASE WHEN t.direction = 'received' THEN 1 ELSE 0 END),
			COALESCE(SUM(CASE WHEN t.direction = 'received' THEN t.amount ELSE 0 END), 0),
			MAX(t.created_at)
		FROM (
			SELECT receiver_identifier AS identifier, created_at, amount, 'sent' AS direction
			FROM transactions
			WHERE phone = $1 AND type = 'send' AND receiver_identifier IS NOT NULL
			UNION ALL
			SELECT sender_identifier AS identifier, created_at, amount, 'received' AS direction
			FROM transactions
			WHERE phone = $1 AND type = 'receive' AND sender_identifier IS NOT NULL
		) t
		LEFT JOIN accounts u
			ON t.identifier = u.phone OR t.identifier = u.payment_address
		GROUP BY COALESCE(u.phone, t.identifier), u.phone, u.username, u.payment_address
		ORDER BY MAX(t.created_at) DESC
		LIMIT $2
	`, phone, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to group people: %w", err)
	}
	defer rows.Close()

	var out []*PersonRow
	for rows.Next() {
		var p PersonRow
		if err := rows.Scan(&p.Key, &p.Phone, &p.Username, &p.PaymentAddress,
			&p.SentCount, &p.TotalSent, &p.ReceivedCount, &p.TotalReceived, &p.LastSeen); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// PersonAngles pulls the four angles of one relationship: rows I reported
// (sent/received by me) and rows the counterparty reported (sent/received
// by them). The same logical transfer appears from two angles; the
// aggregator dedups by transfer group before totalling.
func (r *transactionRepo) PersonAngles(ctx context.Context, mePhone string, myAddress *string, contactPhone, contactIdentifier string) ([]*AngleRow, error) {
	var out []*AngleRow

	collect := func(angle domain.PersonAngle, query string, args ...any) error {
		rows, err := r.db.Query(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to query %s angle: %w", angle, err)
		}
		defer rows.Close()
		for rows.Next() {
			a := AngleRow{Angle: angle}
			if err := rows.Scan(&a.TransactionID, &a.Kind, &a.Amount, &a.BalanceAfter,
				&a.PaymentMethod, &a.TransferGroupID, &a.CreatedAt); err != nil {
				return err
			}
			out = append(out, &a)
		}
		return rows.Err()
	}

	const angleColumns = `t.transaction_id, t.type, t.amount, t.balance_after,
		t.payment_method, t.transfer_group_id, t.created_at`

	if err := collect(domain.AngleSentByMe, `
		SELECT `+angleColumns+`
		FROM transactions t
		LEFT JOIN accounts u ON t.receiver_identifier = u.phone OR t.receiver_identifier = u.payment_address
		WHERE t.phone = $1 AND t.type = 'send'
			AND (t.receiver_identifier = $2 OR u.phone = $3)
	`, mePhone, contactIdentifier, contactPhone); err != nil {
		return nil, err
	}

	if err := collect(domain.AngleReceivedByMe, `
		SELECT `+angleColumns+`
		FROM transactions t
		LEFT JOIN accounts u ON t.sender_identifier = u.phone OR t.sender_identifier = u.payment_address
		WHERE t.phone = $1 AND t.type = 'receive'
			AND (t.sender_identifier = $2 OR u.phone = $3)
	`, mePhone, contactIdentifier, contactPhone); err != nil {
		return nil, err
	}

	myIdentifiers := []string{mePhone}
	if myAddress != nil {
		myIdentifiers = append(myIdentifiers, *myAddress)
	}

	if err := collect(domain.AngleSentByThem, `
		SELECT `+angleColumns+`
		FROM transactions t
		WHERE t.phone = $1 AND t.type = 'send'
			AND t.receiver_identifier = ANY($2)
	`, contactPhone, myIdentifiers); err != nil {
		return nil, err
	}

	if err := collect(domain.AngleReceivedByThem, `
		SELECT `+angleColumns+`
		FROM transactions t
		WHERE t.phone = $1 AND t.type = 'receive'
			AND t.sender_identifier = ANY($2)
	`, contactPhone, myIdentifiers); err != nil {
		return nil, err
	}

	return out, nil
}

// CounterpartyPhones lists the distinct registered accounts this account
// has transacted with. Used by the contact sync batch.
func (r *transactionRepo) CounterpartyPhones(ctx context.Context, phone string) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT u.phone
		FROM (
			SELECT receiver_identifier AS identifier
			FROM transactions WHERE phone = $1 AND type = 'send' AND receiver_identifier IS NOT NULL
			UNION
			SELECT sender_identifier AS identifier
			FROM transactions WHERE phone = $1 AND type = 'receive' AND sender_identifier IS NOT NULL
		) t
		JOIN accounts u ON t.identifier = u.phone OR t.identifier = u.payment_address
		WHERE u.phone <> $1
	`, phone)
	if err != nil {
		return nil, fmt.Errorf("failed to list counterparty phones: %w", err)
	}
	defer rows.Close()

	var phones []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		phones = append(phones, p)
	}
	return phones, rows.Err()
}
