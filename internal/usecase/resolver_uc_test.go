package usecase

import (
	"context"
	"errors"
	"testing"

	"easycash/internal/domain"
	"easycash/internal/xerrors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		raw  string
		want Classification
	}{
		{"9876543210", ClassMobile},
		{"6000000000", ClassMobile},
		{"1234567890", ClassOpaque}, // leading digit outside 6-9
		{"987654321", ClassOpaque},  // nine digits
		{"alice@easycash", ClassPaymentAddress},
		{"a.b-c@pay.bank", ClassPaymentAddress},
		{"ACC-8876", ClassOpaque},
		{"ab", ClassMalformed},
		{"", ClassMalformed},
	}
	for _, tt := range tests {
		if got := Classify(tt.raw); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestResolveMobileChannel(t *testing.T) {
	bob := &domain.Account{Phone: "9876543210", Username: "Bob"}
	uc := NewResolverUsecase(newFakeAccountRepo(bob), nil)
	ctx := context.Background()

	res, err := uc.Resolve(ctx, "9876543210", ChannelMobile)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.External || res.Account == nil || res.Account.Phone != "9876543210" {
		t.Fatalf("expected internal resolution to bob, got %+v", res)
	}

	res, err = uc.Resolve(ctx, "9999999999", ChannelMobile)
	if err != nil {
		t.Fatalf("Resolve unregistered: %v", err)
	}
	if !res.External || res.Account != nil {
		t.Fatalf("unregistered mobile must resolve external, got %+v", res)
	}

	if _, err := uc.Resolve(ctx, "12345", ChannelMobile); !errors.Is(err, xerrors.ErrMalformedIdentifier) {
		t.Fatalf("short number err = %v, want ErrMalformedIdentifier", err)
	}
}

func TestResolvePaymentAddressChannel(t *testing.T) {
	addr := "bob@easycash"
	bob := &domain.Account{Phone: "9876543210", Username: "Bob", PaymentAddress: &addr}
	uc := NewResolverUsecase(newFakeAccountRepo(bob), nil)
	ctx := context.Background()

	res, err := uc.Resolve(ctx, "bob@easycash", ChannelUPI)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Account == nil || res.Account.Phone != "9876543210" {
		t.Fatalf("expected resolution via address, got %+v", res)
	}

	if _, err := uc.Resolve(ctx, "no-at-sign", ChannelUPI); !errors.Is(err, xerrors.ErrMalformedIdentifier) {
		t.Fatalf("malformed address err = %v, want ErrMalformedIdentifier", err)
	}
}

func TestResolveBankChannelNeverInternal(t *testing.T) {
	addr := "bob@easycash"
	bob := &domain.Account{Phone: "9876543210", Username: "Bob", PaymentAddress: &addr}
	uc := NewResolverUsecase(newFakeAccountRepo(bob), nil)

	res, err := uc.Resolve(context.Background(), "bob@easycash", ChannelBank)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !res.External || res.Account != nil {
		t.Fatalf("bank channel must stay external even for a registered address, got %+v", res)
	}
}

func TestResolveContactChannelMinLength(t *testing.T) {
	uc := NewResolverUsecase(newFakeAccountRepo(), nil)
	if _, err := uc.Resolve(context.Background(), "ab", ChannelContact); !errors.Is(err, xerrors.ErrMalformedIdentifier) {
		t.Fatalf("two-char contact err = %v, want ErrMalformedIdentifier", err)
	}
}

func TestParseChannel(t *testing.T) {
	for _, valid := range []string{"mobile", "upi", "contact", "bank"} {
		if _, err := ParseChannel(valid); err != nil {
			t.Errorf("ParseChannel(%q) unexpected error: %v", valid, err)
		}
	}
	if _, err := ParseChannel("carrier-pigeon"); err == nil {
		t.Error("ParseChannel must reject unknown channels")
	}
}
