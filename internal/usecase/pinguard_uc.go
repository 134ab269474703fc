package usecase

import (
	"context"
	"regexp"

	"easycash/internal/domain"
	"easycash/internal/repository"
	"easycash/internal/xerrors"
	"easycash/pkg/pinhash"

	"go.uber.org/zap"
)

// MaxPINAttempts is the failure count at which an account locks. Lockout
// is permanent: there is no time-based decay, and once locked even the
// correct PIN is rejected. Only an explicit counter reset (operator
// action) reopens the account.
const MaxPINAttempts = 5

var pinPattern = regexp.MustCompile(`^\d{6}$`)

// PINGuardUsecase is the brute-force gate in front of PIN authentication.
// It owns the per-account attempt counter and never touches balance or
// transaction state.
type PINGuardUsecase struct {
	attemptRepo repository.PINAttemptRepository
	accountRepo repository.AccountRepository
	logger      *zap.Logger
}

func NewPINGuardUsecase(attemptRepo repository.PINAttemptRepository, accountRepo repository.AccountRepository, logger *zap.Logger) *PINGuardUsecase {
	return &PINGuardUsecase{attemptRepo: attemptRepo, accountRepo: accountRepo, logger: logger}
}

// RecordFailure increments the attempt counter and returns the new count.
func (uc *PINGuardUsecase) RecordFailure(ctx context.Context, phone string) (int, error) {
	count, err := uc.attemptRepo.Increment(ctx, phone)
	if err != nil {
		return 0, err
	}
	if count >= MaxPINAttempts {
		uc.logger.Warn("account locked after repeated pin failures",
			zap.String("phone", phone), zap.Int("attempts", count))
	}
	return count, nil
}

// RecordSuccess resets the counter unconditionally, from any state.
func (uc *PINGuardUsecase) RecordSuccess(ctx context.Context, phone string) error {
	return uc.attemptRepo.Reset(ctx, phone)
}

func (uc *PINGuardUsecase) CurrentCount(ctx context.Context, phone string) (int, error) {
	return uc.attemptRepo.Count(ctx, phone)
}

func (uc *PINGuardUsecase) IsLocked(ctx context.Context, phone string) (bool, error) {
	count, err := uc.attemptRepo.Count(ctx, phone)
	if err != nil {
		return false, err
	}
	return count >= MaxPINAttempts, nil
}

// AuthResult reports the outcome of one authentication attempt.
type AuthResult struct {
	Account           *domain.Account
	AttemptsRemaining int
}

// Authenticate verifies a PIN behind the lockout gate. A locked account is
// rejected before the PIN is even compared, so a correct PIN cannot unlock
// it. A failure is counted; a success clears the counter.
func (uc *PINGuardUsecase) Authenticate(ctx context.Context, phone, pin string) (*AuthResult, error) {
	if !pinPattern.MatchString(pin) {
		return nil, xerrors.ErrInvalidPINFormat
	}

	locked, err := uc.IsLocked(ctx, phone)
	if err != nil {
		return nil, err
	}
	if locked {
		return nil, xerrors.ErrAccountLocked
	}

	account, err := uc.accountRepo.GetByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}

	if !pinhash.Check(pin, account.PINHash) {
		count, err := uc.RecordFailure(ctx, phone)
		if err != nil {
			return nil, err
		}
		if count >= MaxPINAttempts {
			return nil, xerrors.ErrAccountLocked
		}
		return &AuthResult{AttemptsRemaining: MaxPINAttempts - count}, xerrors.ErrInvalidPIN
	}

	if err := uc.RecordSuccess(ctx, phone); err != nil {
		return nil, err
	}
	return &AuthResult{Account: account, AttemptsRemaining: MaxPINAttempts}, nil
}
