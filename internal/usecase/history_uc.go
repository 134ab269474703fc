package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"easycash/internal/domain"
	"easycash/internal/repository"
	"easycash/internal/xerrors"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// HistoryUsecase is the read side over the transaction log: raw history,
// statistics and the counterparty views reconstructed purely from
// transaction rows. It never writes ledger state; summaries are cached
// briefly, accepting eventual visibility of the very latest transaction.
type HistoryUsecase struct {
	txRepo      repository.TransactionRepository
	accountRepo repository.AccountRepository
	redisClient *redis.Client
}

func NewHistoryUsecase(txRepo repository.TransactionRepository, accountRepo repository.AccountRepository, redisClient *redis.Client) *HistoryUsecase {
	return &HistoryUsecase{txRepo: txRepo, accountRepo: accountRepo, redisClient: redisClient}
}

const summaryCacheTTL = time.Minute

func (uc *HistoryUsecase) History(ctx context.Context, phone string, filter domain.TransactionFilter) ([]*domain.Transaction, error) {
	return uc.txRepo.List(ctx, phone, filter)
}

func (uc *HistoryUsecase) Count(ctx context.Context, phone string) (int, error) {
	return uc.txRepo.Count(ctx, phone)
}

// Receipt looks a transaction up by its opaque token. Only the owning
// account may read it.
func (uc *HistoryUsecase) Receipt(ctx context.Context, phone, transactionID string) (*domain.Transaction, error) {
	tx, err := uc.txRepo.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.Phone != phone {
		// Do not confirm the token exists for anyone else.
		return nil, xerrors.ErrTransactionNotFound
	}
	return tx, nil
}

func (uc *HistoryUsecase) Stats(ctx context.Context, phone string) (*domain.TransactionStats, error) {
	cacheKey := "history:stats:" + phone
	if uc.redisClient != nil {
		if val, err := uc.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			var stats domain.TransactionStats
			if jsonErr := json.Unmarshal([]byte(val), &stats); jsonErr == nil {
				return &stats, nil
			}
		}
	}

	stats, err := uc.txRepo.Stats(ctx, phone)
	if err != nil {
		return nil, err
	}

	if uc.redisClient != nil {
		if data, err := json.Marshal(stats); err == nil {
			_ = uc.redisClient.Set(ctx, cacheKey, data, summaryCacheTTL).Err()
		}
	}
	return stats, nil
}

// displayName synthesizes a label for a counterparty identifier: saved
// nickname first, then the live account's username, then a masked phone
// tail or the local part of a payment address.
func displayName(identifier string, username, nickname *string) string {
	if nickname != nil && *nickname != "" {
		return *nickname
	}
	if username != nil && *username != "" {
		return *username
	}
	switch Classify(identifier) {
	case ClassMobile:
		return "User " + identifier[len(identifier)-4:]
	case ClassPaymentAddress:
		return identifier[:strings.Index(identifier, "@")]
	default:
		return identifier
	}
}

// CounterpartySummaries answers "who has this account sent to" (or
// received from), one entry per counterparty identifier.
func (uc *HistoryUsecase) CounterpartySummaries(ctx context.Context, phone string, direction domain.Direction, limit int) ([]*domain.CounterpartySummary, error) {
	if direction != domain.DirectionSent && direction != domain.DirectionReceived {
		return nil, fmt.Errorf("unknown summary direction %q", direction)
	}

	cacheKey := fmt.Sprintf("history:counterparties:%s:%s:%d", phone, direction, limit)
	if uc.redisClient != nil {
		if val, err := uc.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			var cached []*domain.CounterpartySummary
			if jsonErr := json.Unmarshal([]byte(val), &cached); jsonErr == nil {
				return cached, nil
			}
		}
	}

	rows, err := uc.txRepo.Counterparties(ctx, phone, direction, limit)
	if err != nil {
		return nil, err
	}

	summaries := make([]*domain.CounterpartySummary, 0, len(rows))
	for _, row := range rows {
		summaries = append(summaries, &domain.CounterpartySummary{
			Identifier:     row.Identifier,
			Phone:          row.Phone,
			Username:       displayName(row.Identifier, row.Username, row.Nickname),
			PaymentAddress: row.PaymentAddress,
			Nickname:       row.Nickname,
			Count:          row.Count,
			Total:          row.Total,
			LastSeen:       row.LastSeen,
		})
	}

	if uc.redisClient != nil {
		if data, err := json.Marshal(summaries); err == nil {
			_ = uc.redisClient.Set(ctx, cacheKey, data, summaryCacheTTL).Err()
		}
	}
	return summaries, nil
}

// AllPeople merges both directions per counterparty and tags each entry
// sent, received or both.
func (uc *HistoryUsecase) AllPeople(ctx context.Context, phone string, limit int) ([]*domain.PersonSummary, error) {
	rows, err := uc.txRepo.AllPeople(ctx, phone, limit)
	if err != nil {
		return nil, err
	}

	people := make([]*domain.PersonSummary, 0, len(rows))
	for _, row := range rows {
		interaction := domain.DirectionBoth
		switch {
		case row.ReceivedCount == 0:
			interaction = domain.DirectionSent
		case row.SentCount == 0:
			interaction = domain.DirectionReceived
		}
		people = append(people, &domain.PersonSummary{
			Identifier:      row.Key,
			Phone:           row.Phone,
			Username:        displayName(row.Key, row.Username, nil),
			PaymentAddress:  row.PaymentAddress,
			SentCount:       row.SentCount,
			TotalSent:       row.TotalSent,
			ReceivedCount:   row.ReceivedCount,
			TotalReceived:   row.TotalReceived,
			NetFlow:         row.TotalReceived.Sub(row.TotalSent),
			LastInteraction: row.LastSeen,
			Interaction:     interaction,
		})
	}
	return people, nil
}

// resolveCounterparty locates the account behind an arbitrary
// counterparty identifier, shape first.
func (uc *HistoryUsecase) resolveCounterparty(ctx context.Context, identifier string) (*domain.Account, error) {
	var account *domain.Account
	var err error
	switch Classify(identifier) {
	case ClassPaymentAddress:
		account, err = uc.accountRepo.GetByPaymentAddress(ctx, identifier)
	default:
		account, err = uc.accountRepo.GetByPhone(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, xerrors.ErrAccountNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return account, nil
}

// PersonHistory reconstructs the full relationship with one counterparty:
// every transfer between the two parties as one chronological timeline,
// plus totals.
//
// The same logical transfer is reported from two angles (the send row the
// sender owns and the receive row the recipient owns), so rows are
// deduplicated by transfer group, falling back to transaction id for rows
// without one, keeping this account's own row when both sides are present.
// Without that the net-balance figures double count.
func (uc *HistoryUsecase) PersonHistory(ctx context.Context, phone, counterpartyIdentifier string) (*domain.PersonHistory, error) {
	me, err := uc.accountRepo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}

	contact, err := uc.resolveCounterparty(ctx, counterpartyIdentifier)
	if err != nil {
		return nil, err
	}

	contactPhone := counterpartyIdentifier
	info := domain.CounterpartyInfo{Identifier: counterpartyIdentifier}
	if contact != nil {
		contactPhone = contact.Phone
		info.Phone = &contact.Phone
		info.Username = &contact.Username
		info.PaymentAddress = contact.PaymentAddress
		info.ExistsInSystem = true
	}

	rows, err := uc.txRepo.PersonAngles(ctx, phone, me.PaymentAddress, contactPhone, counterpartyIdentifier)
	if err != nil {
		return nil, err
	}

	myAngle := func(a domain.PersonAngle) bool {
		return a == domain.AngleSentByMe || a == domain.AngleReceivedByMe
	}

	// Dedup: one surviving row per logical transfer, own angle preferred.
	survivors := make(map[string]*repository.AngleRow)
	for _, row := range rows {
		key := row.TransactionID
		if row.TransferGroupID != nil {
			key = *row.TransferGroupID
		}
		if prev, ok := survivors[key]; ok {
			if myAngle(prev.Angle) || !myAngle(row.Angle) {
				continue
			}
		}
		survivors[key] = row
	}

	timeline := make([]domain.PersonTransaction, 0, len(survivors))
	summary := domain.PersonHistorySummary{
		TotalSentByMe:       decimal.Zero,
		TotalReceivedByMe:   decimal.Zero,
		TotalSentByThem:     decimal.Zero,
		TotalReceivedByThem: decimal.Zero,
		NetBalance:          decimal.Zero,
	}
	counterpartyName := displayName(counterpartyIdentifier, info.Username, nil)

	for _, row := range survivors {
		entry := domain.PersonTransaction{
			TransactionID:    row.TransactionID,
			Angle:            row.Angle,
			Kind:             row.Kind,
			Amount:           row.Amount,
			PaymentMethod:    row.PaymentMethod,
			CounterpartyName: counterpartyName,
			TransferGroupID:  row.TransferGroupID,
			CreatedAt:        row.CreatedAt,
		}
		balance := row.BalanceAfter
		if myAngle(row.Angle) {
			entry.MyBalanceAfter = &balance
		} else {
			entry.TheirBalanceAfter = &balance
		}
		timeline = append(timeline, entry)

		switch row.Angle {
		case domain.AngleSentByMe:
			summary.TotalSentByMe = summary.TotalSentByMe.Add(row.Amount)
			summary.SentCount++
		case domain.AngleReceivedByMe:
			summary.TotalReceivedByMe = summary.TotalReceivedByMe.Add(row.Amount)
			summary.ReceivedCount++
		case domain.AngleSentByThem:
			summary.TotalSentByThem = summary.TotalSentByThem.Add(row.Amount)
			summary.ReceivedCount++
		case domain.AngleReceivedByThem:
			summary.TotalReceivedByThem = summary.TotalReceivedByThem.Add(row.Amount)
			summary.SentCount++
		}
	}

	sort.Slice(timeline, func(i, j int) bool {
		return timeline[i].CreatedAt.After(timeline[j].CreatedAt)
	})

	summary.TotalTransactions = len(timeline)
	summary.NetBalance = summary.TotalReceivedByMe.Add(summary.TotalSentByThem).
		Sub(summary.TotalSentByMe).Sub(summary.TotalReceivedByThem)

	return &domain.PersonHistory{
		ContactInfo:  info,
		Transactions: timeline,
		Summary:      summary,
	}, nil
}
