package usecase

import (
	"context"
	"errors"
	"testing"

	"easycash/internal/domain"
	"easycash/internal/xerrors"
	"easycash/pkg/pinhash"

	"go.uber.org/zap"
)

func newAccountFixture(accounts ...*domain.Account) (*AccountUsecase, *fakeAccountRepo) {
	repo := newFakeAccountRepo(accounts...)
	resolver := NewResolverUsecase(repo, nil)
	return NewAccountUsecase(repo, resolver, zap.NewNop()), repo
}

func TestRegisterDefaults(t *testing.T) {
	uc, _ := newAccountFixture()

	account, err := uc.Register(context.Background(), "9876543210", "", "123456")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if account.Username != "User_3210" {
		t.Errorf("default username = %q, want User_3210", account.Username)
	}
	if account.PaymentAddress == nil || *account.PaymentAddress != "9876543210@easycash" {
		t.Errorf("payment address = %v, want 9876543210@easycash", account.PaymentAddress)
	}
	if !account.Balance.IsZero() {
		t.Errorf("initial balance = %s, want 0", account.Balance)
	}
	if !pinhash.Check("123456", account.PINHash) {
		t.Error("stored hash must verify the original pin")
	}
	if pinhash.Check("654321", account.PINHash) {
		t.Error("stored hash must reject a wrong pin")
	}
}

func TestRegisterValidation(t *testing.T) {
	uc, _ := newAccountFixture(&domain.Account{Phone: "9876543210"})
	ctx := context.Background()

	if _, err := uc.Register(ctx, "12345", "x", "123456"); !errors.Is(err, xerrors.ErrMalformedIdentifier) {
		t.Errorf("bad phone err = %v, want ErrMalformedIdentifier", err)
	}
	if _, err := uc.Register(ctx, "8765432109", "x", "12ab56"); !errors.Is(err, xerrors.ErrInvalidPINFormat) {
		t.Errorf("bad pin err = %v, want ErrInvalidPINFormat", err)
	}
	if _, err := uc.Register(ctx, "9876543210", "x", "123456"); !errors.Is(err, xerrors.ErrDuplicateAccount) {
		t.Errorf("duplicate phone err = %v, want ErrDuplicateAccount", err)
	}
}

func TestSetPaymentAddress(t *testing.T) {
	addr := "old@easycash"
	taken := "bob@easycash"
	alice := &domain.Account{Phone: "9876543210", PaymentAddress: &addr}
	bob := &domain.Account{Phone: "8765432109", PaymentAddress: &taken}
	uc, repo := newAccountFixture(alice, bob)
	ctx := context.Background()

	if err := uc.SetPaymentAddress(ctx, alice.Phone, "alice@easycash"); err != nil {
		t.Fatalf("SetPaymentAddress: %v", err)
	}
	if *repo.accounts[alice.Phone].PaymentAddress != "alice@easycash" {
		t.Fatalf("address not updated: %v", repo.accounts[alice.Phone].PaymentAddress)
	}

	if err := uc.SetPaymentAddress(ctx, alice.Phone, "bob@easycash"); !errors.Is(err, xerrors.ErrAddressTaken) {
		t.Errorf("taken address err = %v, want ErrAddressTaken", err)
	}
	if err := uc.SetPaymentAddress(ctx, alice.Phone, "no-at-sign"); !errors.Is(err, xerrors.ErrMalformedIdentifier) {
		t.Errorf("malformed address err = %v, want ErrMalformedIdentifier", err)
	}
}

func TestSearchRequiresTwoChars(t *testing.T) {
	uc, _ := newAccountFixture(&domain.Account{Phone: "9876543210", Username: "Alice"})

	results, err := uc.Search(context.Background(), "A")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if results != nil {
		t.Fatalf("single-char search returned %d results, want none", len(results))
	}

	results, err = uc.Search(context.Background(), "Ali")
	if err != nil || len(results) != 1 {
		t.Fatalf("Search(Ali) = %d results, %v; want 1, nil", len(results), err)
	}
}
