package usecase

import (
	"context"
	"fmt"

	"easycash/internal/config"
	"easycash/internal/domain"
	"easycash/internal/repository"
	"easycash/internal/xerrors"
	"easycash/pkg/id"
	"easycash/pkg/money"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// EventPublisher receives committed ledger events for the notification
// layer. Publishing is best effort and never rolls a transaction back.
type EventPublisher interface {
	PublishAdjustment(ctx context.Context, phone string, kind domain.Kind, amount, balanceAfter decimal.Decimal, transactionID string) error
	PublishTransfer(ctx context.Context, senderPhone, rawIdentifier string, amount, senderBalance decimal.Decimal, transactionID string, counterpartyFound bool) error
}

// LedgerUsecase validates and executes balance mutations. All checks run
// before any mutation; the repository provides the atomic boundary.
type LedgerUsecase struct {
	ledgerRepo repository.LedgerRepository
	resolver   *ResolverUsecase
	ids        *id.Generator
	limits     config.Limits
	events     EventPublisher
	logger     *zap.Logger
}

func NewLedgerUsecase(
	ledgerRepo repository.LedgerRepository,
	resolver *ResolverUsecase,
	ids *id.Generator,
	limits config.Limits,
	events EventPublisher,
	logger *zap.Logger,
) *LedgerUsecase {
	return &LedgerUsecase{
		ledgerRepo: ledgerRepo,
		resolver:   resolver,
		ids:        ids,
		limits:     limits,
		events:     events,
		logger:     logger,
	}
}

func (uc *LedgerUsecase) ceiling(kind domain.Kind) decimal.Decimal {
	switch kind {
	case domain.KindDeposit:
		return uc.limits.MaxDeposit
	case domain.KindWithdraw:
		return uc.limits.MaxWithdraw
	default:
		return uc.limits.MaxTransfer
	}
}

// Adjust applies a unilateral deposit or withdrawal.
func (uc *LedgerUsecase) Adjust(ctx context.Context, phone string, kind domain.Kind, amount decimal.Decimal, paymentMethod *string) (*repository.AdjustResult, error) {
	if kind != domain.KindDeposit && kind != domain.KindWithdraw {
		return nil, fmt.Errorf("kind %q is not a unilateral adjustment", kind)
	}
	if err := money.Validate(amount); err != nil {
		return nil, xerrors.ErrInvalidAmount
	}
	if amount.GreaterThan(uc.ceiling(kind)) {
		return nil, xerrors.ErrAmountOverLimit
	}

	result, err := uc.ledgerRepo.Adjust(ctx, repository.AdjustParams{
		Phone:         phone,
		Kind:          kind,
		Amount:        amount,
		PaymentMethod: paymentMethod,
		TransactionID: uc.ids.TransactionID(),
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("balance adjusted",
		zap.String("phone", phone),
		zap.String("kind", string(kind)),
		zap.String("amount", money.Format(amount)),
		zap.String("transaction_id", result.TransactionID))

	if uc.events != nil {
		if err := uc.events.PublishAdjustment(ctx, phone, kind, amount, result.NewBalance, result.TransactionID); err != nil {
			uc.logger.Warn("failed to publish adjustment event", zap.Error(err))
		}
	}
	return result, nil
}

// TransferOutcome is the caller-facing result of a transfer.
type TransferOutcome struct {
	TransactionID     string          `json:"transaction_id"`
	TransferGroupID   string          `json:"transfer_group_id"`
	NewBalance        decimal.Decimal `json:"new_balance"`
	CounterpartyFound bool            `json:"counterparty_found"`
	CounterpartyName  *string         `json:"counterparty_name,omitempty"`
}

// Transfer moves amount from the sender to the recipient named by the raw
// identifier. When the identifier resolves to a registered account the
// debit and credit commit as one unit with a linked send/receive row pair;
// otherwise only the sender-side send row is written and the money leaves
// the system.
func (uc *LedgerUsecase) Transfer(ctx context.Context, senderPhone, rawIdentifier string, channel Channel, amount decimal.Decimal) (*TransferOutcome, error) {
	if err := money.Validate(amount); err != nil {
		return nil, xerrors.ErrInvalidAmount
	}
	if amount.GreaterThan(uc.limits.MaxTransfer) {
		return nil, xerrors.ErrAmountOverLimit
	}

	resolution, err := uc.resolver.Resolve(ctx, rawIdentifier, channel)
	if err != nil {
		return nil, err
	}

	var receiverPhone *string
	var counterpartyName *string
	if resolution.Account != nil {
		if resolution.Account.Phone == senderPhone {
			return nil, xerrors.ErrSelfTransfer
		}
		receiverPhone = &resolution.Account.Phone
		counterpartyName = &resolution.Account.Username
	} else if rawIdentifier == senderPhone {
		return nil, xerrors.ErrSelfTransfer
	}

	result, err := uc.ledgerRepo.Transfer(ctx, repository.TransferParams{
		SenderPhone:          senderPhone,
		ReceiverPhone:        receiverPhone,
		RawIdentifier:        rawIdentifier,
		PaymentMethod:        string(channel),
		Amount:               amount,
		SendTransactionID:    uc.ids.TransactionID(),
		ReceiveTransactionID: uc.ids.TransactionID(),
		TransferGroupID:      uc.ids.TransferGroupID(),
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Info("transfer committed",
		zap.String("sender", senderPhone),
		zap.String("identifier", rawIdentifier),
		zap.String("amount", money.Format(amount)),
		zap.Bool("counterparty_found", result.CounterpartyFound),
		zap.String("transaction_id", result.TransactionID))

	if uc.events != nil {
		if err := uc.events.PublishTransfer(ctx, senderPhone, rawIdentifier, amount, result.SenderBalance, result.TransactionID, result.CounterpartyFound); err != nil {
			uc.logger.Warn("failed to publish transfer event", zap.Error(err))
		}
	}

	return &TransferOutcome{
		TransactionID:     result.TransactionID,
		TransferGroupID:   result.TransferGroupID,
		NewBalance:        result.SenderBalance,
		CounterpartyFound: result.CounterpartyFound,
		CounterpartyName:  counterpartyName,
	}, nil
}
