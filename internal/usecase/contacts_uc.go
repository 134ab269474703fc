package usecase

import (
	"context"
	"errors"

	"easycash/internal/domain"
	"easycash/internal/repository"
	"easycash/internal/xerrors"

	"go.uber.org/zap"
)

// ContactsUsecase manages the saved-contacts list. Contacts are cosmetic:
// they decorate history views with nicknames and never gate a transfer.
type ContactsUsecase struct {
	contactRepo repository.ContactRepository
	accountRepo repository.AccountRepository
	txRepo      repository.TransactionRepository
	logger      *zap.Logger
}

func NewContactsUsecase(
	contactRepo repository.ContactRepository,
	accountRepo repository.AccountRepository,
	txRepo repository.TransactionRepository,
	logger *zap.Logger,
) *ContactsUsecase {
	return &ContactsUsecase{
		contactRepo: contactRepo,
		accountRepo: accountRepo,
		txRepo:      txRepo,
		logger:      logger,
	}
}

func (uc *ContactsUsecase) List(ctx context.Context, userPhone string) ([]*domain.ContactView, error) {
	return uc.contactRepo.List(ctx, userPhone)
}

// Add saves a registered account as a contact. The target must exist and
// must not be the owner.
func (uc *ContactsUsecase) Add(ctx context.Context, userPhone, contactPhone string, nickname *string) error {
	if contactPhone == userPhone {
		return xerrors.ErrSelfTransfer
	}
	if _, err := uc.accountRepo.GetByPhone(ctx, contactPhone); err != nil {
		return err
	}
	return uc.contactRepo.Add(ctx, userPhone, contactPhone, nickname)
}

func (uc *ContactsUsecase) UpdateNickname(ctx context.Context, userPhone, contactPhone string, nickname *string) error {
	return uc.contactRepo.UpdateNickname(ctx, userPhone, contactPhone, nickname)
}

func (uc *ContactsUsecase) Remove(ctx context.Context, userPhone, contactPhone string) error {
	return uc.contactRepo.Remove(ctx, userPhone, contactPhone)
}

// SyncFromHistory back-fills the contact list from the transaction log:
// every registered counterparty this account has transacted with becomes
// a contact, skipping ones already saved. Returns how many were added.
func (uc *ContactsUsecase) SyncFromHistory(ctx context.Context, userPhone string) (int, error) {
	phones, err := uc.txRepo.CounterpartyPhones(ctx, userPhone)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, phone := range phones {
		if phone == userPhone {
			continue
		}
		exists, err := uc.contactRepo.Exists(ctx, userPhone, phone)
		if err != nil {
			return added, err
		}
		if exists {
			continue
		}
		if err := uc.contactRepo.Add(ctx, userPhone, phone, nil); err != nil {
			if errors.Is(err, xerrors.ErrContactExists) {
				continue
			}
			return added, err
		}
		added++
	}

	if added > 0 {
		uc.logger.Info("contacts synced from history",
			zap.String("phone", userPhone), zap.Int("added", added))
	}
	return added, nil
}
