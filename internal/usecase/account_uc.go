package usecase

import (
	"context"
	"strings"

	"easycash/internal/domain"
	"easycash/internal/repository"
	"easycash/internal/xerrors"
	"easycash/pkg/money"
	"easycash/pkg/pinhash"

	"go.uber.org/zap"
)

const paymentAddressDomain = "easycash"

// AccountUsecase manages account registration and profile state. Balance
// mutation goes through the ledger, never through here.
type AccountUsecase struct {
	accountRepo repository.AccountRepository
	resolver    *ResolverUsecase
	logger      *zap.Logger
}

func NewAccountUsecase(accountRepo repository.AccountRepository, resolver *ResolverUsecase, logger *zap.Logger) *AccountUsecase {
	return &AccountUsecase{accountRepo: accountRepo, resolver: resolver, logger: logger}
}

// Register creates a new account keyed by phone. The username defaults to
// User_<last4> and every account gets a <phone>@easycash payment address
// up front.
func (uc *AccountUsecase) Register(ctx context.Context, phone, username, pin string) (*domain.Account, error) {
	if Classify(phone) != ClassMobile {
		return nil, xerrors.ErrMalformedIdentifier
	}
	if !pinPattern.MatchString(pin) {
		return nil, xerrors.ErrInvalidPINFormat
	}

	username = strings.TrimSpace(username)
	if username == "" {
		username = "User_" + phone[len(phone)-4:]
	}

	hash, err := pinhash.Hash(pin)
	if err != nil {
		return nil, err
	}

	address := phone + "@" + paymentAddressDomain
	account := &domain.Account{
		Phone:          phone,
		Username:       username,
		PINHash:        hash,
		Balance:        money.Zero,
		PaymentAddress: &address,
	}
	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	uc.logger.Info("account registered", zap.String("phone", phone))
	return account, nil
}

func (uc *AccountUsecase) Get(ctx context.Context, phone string) (*domain.Account, error) {
	return uc.accountRepo.GetByPhone(ctx, phone)
}

// SetPaymentAddress assigns a custom payment address. Fails with
// ErrAddressTaken when another account already holds it.
func (uc *AccountUsecase) SetPaymentAddress(ctx context.Context, phone, address string) error {
	if Classify(address) != ClassPaymentAddress {
		return xerrors.ErrMalformedIdentifier
	}

	account, err := uc.accountRepo.GetByPhone(ctx, phone)
	if err != nil {
		return err
	}

	if err := uc.accountRepo.SetPaymentAddress(ctx, phone, address); err != nil {
		return err
	}

	stale := []string{address}
	if account.PaymentAddress != nil {
		stale = append(stale, *account.PaymentAddress)
	}
	uc.resolver.Invalidate(ctx, stale...)

	uc.logger.Info("payment address updated", zap.String("phone", phone))
	return nil
}

func (uc *AccountUsecase) Search(ctx context.Context, term string) ([]*domain.Account, error) {
	term = strings.TrimSpace(term)
	if len(term) < 2 {
		return nil, nil
	}
	return uc.accountRepo.Search(ctx, term, 20)
}
