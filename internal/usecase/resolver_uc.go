package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"easycash/internal/domain"
	"easycash/internal/repository"
	"easycash/internal/xerrors"

	"github.com/redis/go-redis/v9"
)

// Classification is the typed result of identifier shape matching.
type Classification string

const (
	ClassMobile         Classification = "mobile"
	ClassPaymentAddress Classification = "payment_address"
	ClassOpaque         Classification = "opaque"
	ClassMalformed      Classification = "malformed"
)

// Channel is the payment channel the caller claims for an identifier.
type Channel string

const (
	ChannelMobile  Channel = "mobile"
	ChannelUPI     Channel = "upi"
	ChannelContact Channel = "contact"
	ChannelBank    Channel = "bank"
)

// ParseChannel validates a raw channel string.
func ParseChannel(s string) (Channel, error) {
	switch Channel(s) {
	case ChannelMobile, ChannelUPI, ChannelContact, ChannelBank:
		return Channel(s), nil
	}
	return "", fmt.Errorf("unknown payment channel %q", s)
}

var (
	mobilePattern  = regexp.MustCompile(`^[6-9]\d{9}$`)
	addressPattern = regexp.MustCompile(`^[\w.-]+@[\w.-]+$`)
)

// Classify matches raw against the identifier grammar in priority order:
// a 10-digit mobile number starting 6-9, then a local@domain payment
// address, then an opaque reference of at least 3 characters.
func Classify(raw string) Classification {
	switch {
	case mobilePattern.MatchString(raw):
		return ClassMobile
	case addressPattern.MatchString(raw):
		return ClassPaymentAddress
	case len(raw) >= 3:
		return ClassOpaque
	default:
		return ClassMalformed
	}
}

// Resolution is the outcome of routing a raw recipient identifier:
// either a concrete account, or an external sink (recognized shape but no
// registered owner). Malformed identifiers never produce a Resolution.
type Resolution struct {
	Classification Classification
	Account        *domain.Account // nil when external
	External       bool
}

// ResolverUsecase classifies raw recipient strings and locates the owning
// account, if any. It is a pure read path; resolved profiles are cached
// briefly in Redis.
type ResolverUsecase struct {
	accountRepo repository.AccountRepository
	redisClient *redis.Client
}

func NewResolverUsecase(accountRepo repository.AccountRepository, redisClient *redis.Client) *ResolverUsecase {
	return &ResolverUsecase{accountRepo: accountRepo, redisClient: redisClient}
}

const resolverCacheTTL = 5 * time.Minute

// Resolve routes raw according to the claimed channel. A malformed
// identifier for the channel is reported as ErrMalformedIdentifier; a
// well-formed identifier with no registered owner resolves to an external
// sink. The bank channel never resolves internally.
func (uc *ResolverUsecase) Resolve(ctx context.Context, raw string, channel Channel) (*Resolution, error) {
	switch channel {
	case ChannelMobile:
		if !mobilePattern.MatchString(raw) {
			return nil, xerrors.ErrMalformedIdentifier
		}
		return uc.lookup(ctx, ClassMobile, raw, uc.accountRepo.GetByPhone)

	case ChannelUPI:
		if !addressPattern.MatchString(raw) {
			return nil, xerrors.ErrMalformedIdentifier
		}
		return uc.lookup(ctx, ClassPaymentAddress, raw, uc.accountRepo.GetByPaymentAddress)

	case ChannelContact:
		if len(raw) < 3 {
			return nil, xerrors.ErrMalformedIdentifier
		}
		return uc.lookup(ctx, ClassOpaque, raw, uc.accountRepo.GetByPhone)

	case ChannelBank:
		if Classify(raw) == ClassMalformed {
			return nil, xerrors.ErrMalformedIdentifier
		}
		return &Resolution{Classification: ClassOpaque, External: true}, nil

	default:
		return nil, fmt.Errorf("unknown payment channel %q", channel)
	}
}

type lookupFn func(ctx context.Context, identifier string) (*domain.Account, error)

func (uc *ResolverUsecase) lookup(ctx context.Context, class Classification, raw string, fn lookupFn) (*Resolution, error) {
	if account, ok := uc.cached(ctx, raw); ok {
		return &Resolution{Classification: class, Account: account}, nil
	}

	account, err := fn(ctx, raw)
	if err != nil {
		if errors.Is(err, xerrors.ErrAccountNotFound) {
			return &Resolution{Classification: class, External: true}, nil
		}
		return nil, err
	}

	uc.cache(ctx, raw, account)
	return &Resolution{Classification: class, Account: account}, nil
}

func resolverCacheKey(identifier string) string {
	return "resolver:ident:" + identifier
}

func (uc *ResolverUsecase) cached(ctx context.Context, identifier string) (*domain.Account, bool) {
	if uc.redisClient == nil {
		return nil, false
	}
	val, err := uc.redisClient.Get(ctx, resolverCacheKey(identifier)).Result()
	if err != nil {
		return nil, false
	}
	var account domain.Account
	if err := json.Unmarshal([]byte(val), &account); err != nil {
		return nil, false
	}
	return &account, true
}

func (uc *ResolverUsecase) cache(ctx context.Context, identifier string, account *domain.Account) {
	if uc.redisClient == nil {
		return
	}
	if data, err := json.Marshal(account); err == nil {
		_ = uc.redisClient.Set(ctx, resolverCacheKey(identifier), data, resolverCacheTTL).Err()
	}
}

// Invalidate drops any cached resolution for the given identifiers. Called
// when an account's payment address changes.
func (uc *ResolverUsecase) Invalidate(ctx context.Context, identifiers ...string) {
	if uc.redisClient == nil {
		return
	}
	for _, ident := range identifiers {
		_ = uc.redisClient.Del(ctx, resolverCacheKey(ident)).Err()
	}
}
