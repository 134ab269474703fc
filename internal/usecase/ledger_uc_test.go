package usecase

import (
	"context"
	"errors"
	"testing"

	"easycash/internal/config"
	"easycash/internal/domain"
	"easycash/internal/xerrors"
	"easycash/pkg/id"
	"easycash/pkg/money"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func testLimits() config.Limits {
	return config.Limits{
		MaxDeposit:  decimal.RequireFromString("1000000.00"),
		MaxWithdraw: decimal.RequireFromString("50000.00"),
		MaxTransfer: decimal.RequireFromString("50000.00"),
	}
}

func newLedgerFixture(accounts ...*domain.Account) (*LedgerUsecase, *fakeLedgerRepo, *fakePublisher) {
	ledger := newFakeLedgerRepo()
	for _, a := range accounts {
		ledger.balances[a.Phone] = a.Balance
	}
	resolver := NewResolverUsecase(newFakeAccountRepo(accounts...), nil)
	events := &fakePublisher{}
	uc := NewLedgerUsecase(ledger, resolver, id.NewGenerator(), testLimits(), events, zap.NewNop())
	return uc, ledger, events
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDepositThenWithdraw(t *testing.T) {
	alice := &domain.Account{Phone: "9876543210", Username: "Alice", Balance: decimal.Zero}
	uc, ledger, events := newLedgerFixture(alice)
	ctx := context.Background()

	dep, err := uc.Adjust(ctx, alice.Phone, domain.KindDeposit, amount("500"), nil)
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if money.Format(dep.NewBalance) != "500.00" {
		t.Fatalf("balance after deposit = %s, want 500.00", money.Format(dep.NewBalance))
	}

	wd, err := uc.Adjust(ctx, alice.Phone, domain.KindWithdraw, amount("200"), nil)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if money.Format(wd.NewBalance) != "300.00" {
		t.Fatalf("balance after withdraw = %s, want 300.00", money.Format(wd.NewBalance))
	}

	if len(ledger.rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(ledger.rows))
	}
	last := ledger.rows[1]
	if last.Kind != domain.KindWithdraw || money.Format(last.BalanceAfter) != "300.00" {
		t.Fatalf("withdraw row = %+v", last)
	}
	if !id.ValidTransactionID(last.TransactionID) {
		t.Fatalf("row transaction id %q not a valid token", last.TransactionID)
	}
	if len(events.events) != 2 {
		t.Fatalf("published events = %d, want 2", len(events.events))
	}
}

func TestWithdrawPastZeroFails(t *testing.T) {
	alice := &domain.Account{Phone: "9876543210", Balance: amount("100")}
	uc, ledger, _ := newLedgerFixture(alice)

	_, err := uc.Adjust(context.Background(), alice.Phone, domain.KindWithdraw, amount("100.01"), nil)
	if !errors.Is(err, xerrors.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if len(ledger.rows) != 0 {
		t.Fatal("failed withdrawal must not append a row")
	}
	if !ledger.balances[alice.Phone].Equal(amount("100")) {
		t.Fatalf("balance mutated to %s on failed withdrawal", money.Format(ledger.balances[alice.Phone]))
	}
}

func TestAdjustValidation(t *testing.T) {
	alice := &domain.Account{Phone: "9876543210", Balance: decimal.Zero}
	uc, _, _ := newLedgerFixture(alice)
	ctx := context.Background()

	if _, err := uc.Adjust(ctx, alice.Phone, domain.KindDeposit, amount("-5"), nil); !errors.Is(err, xerrors.ErrInvalidAmount) {
		t.Errorf("negative deposit err = %v, want ErrInvalidAmount", err)
	}
	if _, err := uc.Adjust(ctx, alice.Phone, domain.KindDeposit, amount("10.005"), nil); !errors.Is(err, xerrors.ErrInvalidAmount) {
		t.Errorf("sub-cent deposit err = %v, want ErrInvalidAmount", err)
	}
	if _, err := uc.Adjust(ctx, alice.Phone, domain.KindDeposit, amount("1000000.01"), nil); !errors.Is(err, xerrors.ErrAmountOverLimit) {
		t.Errorf("over-ceiling deposit err = %v, want ErrAmountOverLimit", err)
	}
	if _, err := uc.Adjust(ctx, alice.Phone, domain.KindWithdraw, amount("50000.01"), nil); !errors.Is(err, xerrors.ErrAmountOverLimit) {
		t.Errorf("over-ceiling withdraw err = %v, want ErrAmountOverLimit", err)
	}
	if _, err := uc.Adjust(ctx, alice.Phone, domain.KindSend, amount("10"), nil); err == nil {
		t.Error("send must be rejected as a unilateral adjustment")
	}
}

func TestTransferBetweenRegisteredAccounts(t *testing.T) {
	alice := &domain.Account{Phone: "9876543210", Username: "Alice", Balance: amount("1000")}
	bob := &domain.Account{Phone: "8765432109", Username: "Bob", Balance: decimal.Zero}
	uc, ledger, _ := newLedgerFixture(alice, bob)

	outcome, err := uc.Transfer(context.Background(), alice.Phone, bob.Phone, ChannelMobile, amount("250"))
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if money.Format(outcome.NewBalance) != "750.00" {
		t.Fatalf("sender balance = %s, want 750.00", money.Format(outcome.NewBalance))
	}
	if !outcome.CounterpartyFound {
		t.Fatal("expected counterparty found")
	}
	if outcome.CounterpartyName == nil || *outcome.CounterpartyName != "Bob" {
		t.Fatalf("counterparty name = %v, want Bob", outcome.CounterpartyName)
	}
	if !ledger.balances[bob.Phone].Equal(amount("250")) {
		t.Fatalf("receiver balance = %s, want 250", money.Format(ledger.balances[bob.Phone]))
	}

	if len(ledger.rows) != 2 {
		t.Fatalf("rows = %d, want send/receive pair", len(ledger.rows))
	}
	send, recv := ledger.rows[0], ledger.rows[1]
	if send.Kind != domain.KindSend || recv.Kind != domain.KindReceive {
		t.Fatalf("row kinds = %s/%s", send.Kind, recv.Kind)
	}
	if send.TransactionID == recv.TransactionID {
		t.Fatal("send and receive rows must carry distinct transaction ids")
	}
	if send.TransferGroupID == nil || recv.TransferGroupID == nil || *send.TransferGroupID != *recv.TransferGroupID {
		t.Fatal("send and receive rows must share one transfer group id")
	}
	if *send.TransferGroupID != outcome.TransferGroupID {
		t.Fatal("outcome transfer group id must match the committed rows")
	}
	if send.ReceiverIdentifier == nil || *send.ReceiverIdentifier != bob.Phone {
		t.Fatalf("send row receiver identifier = %v", send.ReceiverIdentifier)
	}
	if recv.SenderIdentifier == nil || *recv.SenderIdentifier != alice.Phone {
		t.Fatalf("receive row sender identifier = %v", recv.SenderIdentifier)
	}
}

func TestTransferToExternalSink(t *testing.T) {
	alice := &domain.Account{Phone: "9876543210", Username: "Alice", Balance: amount("500")}
	uc, ledger, _ := newLedgerFixture(alice)

	outcome, err := uc.Transfer(context.Background(), alice.Phone, "x@bank", ChannelBank, amount("100"))
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if outcome.CounterpartyFound {
		t.Fatal("bank transfer must not find a counterparty")
	}
	if money.Format(outcome.NewBalance) != "400.00" {
		t.Fatalf("sender balance = %s, want 400.00", money.Format(outcome.NewBalance))
	}
	if len(ledger.rows) != 1 {
		t.Fatalf("rows = %d, want single send row", len(ledger.rows))
	}
	if ledger.rows[0].Kind != domain.KindSend {
		t.Fatalf("row kind = %s, want send", ledger.rows[0].Kind)
	}
}

func TestTransferToRegisteredAddressViaBankStaysExternal(t *testing.T) {
	addr := "bob@easycash"
	alice := &domain.Account{Phone: "9876543210", Balance: amount("500")}
	bob := &domain.Account{Phone: "8765432109", Username: "Bob", Balance: decimal.Zero, PaymentAddress: &addr}
	uc, ledger, _ := newLedgerFixture(alice, bob)

	outcome, err := uc.Transfer(context.Background(), alice.Phone, addr, ChannelBank, amount("50"))
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if outcome.CounterpartyFound {
		t.Fatal("bank channel must never credit an internal account")
	}
	if !ledger.balances[bob.Phone].IsZero() {
		t.Fatalf("bob's balance = %s, want 0", money.Format(ledger.balances[bob.Phone]))
	}
}

func TestTransferRejectsSelf(t *testing.T) {
	addr := "alice@easycash"
	alice := &domain.Account{Phone: "9876543210", Balance: amount("500"), PaymentAddress: &addr}
	uc, _, _ := newLedgerFixture(alice)
	ctx := context.Background()

	if _, err := uc.Transfer(ctx, alice.Phone, alice.Phone, ChannelMobile, amount("10")); !errors.Is(err, xerrors.ErrSelfTransfer) {
		t.Fatalf("self transfer by phone err = %v, want ErrSelfTransfer", err)
	}
	if _, err := uc.Transfer(ctx, alice.Phone, addr, ChannelUPI, amount("10")); !errors.Is(err, xerrors.ErrSelfTransfer) {
		t.Fatalf("self transfer by address err = %v, want ErrSelfTransfer", err)
	}
}

func TestTransferValidation(t *testing.T) {
	alice := &domain.Account{Phone: "9876543210", Balance: amount("100000")}
	uc, _, _ := newLedgerFixture(alice)
	ctx := context.Background()

	if _, err := uc.Transfer(ctx, alice.Phone, "8765432109", ChannelMobile, amount("50000.01")); !errors.Is(err, xerrors.ErrAmountOverLimit) {
		t.Errorf("over-ceiling err = %v, want ErrAmountOverLimit", err)
	}
	if _, err := uc.Transfer(ctx, alice.Phone, "8765432109", ChannelMobile, amount("0")); !errors.Is(err, xerrors.ErrInvalidAmount) {
		t.Errorf("zero amount err = %v, want ErrInvalidAmount", err)
	}
	if _, err := uc.Transfer(ctx, alice.Phone, "12", ChannelMobile, amount("10")); !errors.Is(err, xerrors.ErrMalformedIdentifier) {
		t.Errorf("malformed identifier err = %v, want ErrMalformedIdentifier", err)
	}
}

func TestTransferInsufficientFundsLeavesNoRows(t *testing.T) {
	alice := &domain.Account{Phone: "9876543210", Balance: amount("50")}
	bob := &domain.Account{Phone: "8765432109", Balance: decimal.Zero}
	uc, ledger, _ := newLedgerFixture(alice, bob)

	_, err := uc.Transfer(context.Background(), alice.Phone, bob.Phone, ChannelMobile, amount("60"))
	if !errors.Is(err, xerrors.ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if len(ledger.rows) != 0 {
		t.Fatal("failed transfer must not append rows")
	}
}

func TestBalanceEqualsSignedRowSum(t *testing.T) {
	alice := &domain.Account{Phone: "9876543210", Balance: decimal.Zero}
	bob := &domain.Account{Phone: "8765432109", Balance: decimal.Zero}
	uc, ledger, _ := newLedgerFixture(alice, bob)
	ctx := context.Background()

	_, _ = uc.Adjust(ctx, alice.Phone, domain.KindDeposit, amount("1000"), nil)
	_, _ = uc.Transfer(ctx, alice.Phone, bob.Phone, ChannelMobile, amount("250"))
	_, _ = uc.Adjust(ctx, alice.Phone, domain.KindWithdraw, amount("100"), nil)
	_, _ = uc.Transfer(ctx, bob.Phone, "x@bank", ChannelBank, amount("50"))

	for _, phone := range []string{alice.Phone, bob.Phone} {
		sum := decimal.Zero
		for _, row := range ledger.rows {
			if row.Phone == phone {
				sum = sum.Add(row.Kind.Signed(row.Amount))
			}
		}
		if !sum.Equal(ledger.balances[phone]) {
			t.Errorf("balance %s = %s, signed row sum = %s",
				phone, money.Format(ledger.balances[phone]), money.Format(sum))
		}
	}
}
