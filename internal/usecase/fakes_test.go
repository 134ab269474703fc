package usecase

import (
	"context"
	"strings"
	"time"

	"easycash/internal/domain"
	"easycash/internal/repository"
	"easycash/internal/xerrors"

	"github.com/shopspring/decimal"
)

type fakeAccountRepo struct {
	accounts map[string]*domain.Account
}

func newFakeAccountRepo(accounts ...*domain.Account) *fakeAccountRepo {
	r := &fakeAccountRepo{accounts: make(map[string]*domain.Account)}
	for _, a := range accounts {
		r.accounts[a.Phone] = a
	}
	return r
}

func (r *fakeAccountRepo) GetByPhone(_ context.Context, phone string) (*domain.Account, error) {
	if a, ok := r.accounts[phone]; ok {
		return a, nil
	}
	return nil, xerrors.ErrAccountNotFound
}

func (r *fakeAccountRepo) GetByPaymentAddress(_ context.Context, address string) (*domain.Account, error) {
	for _, a := range r.accounts {
		if a.PaymentAddress != nil && *a.PaymentAddress == address {
			return a, nil
		}
	}
	return nil, xerrors.ErrAccountNotFound
}

func (r *fakeAccountRepo) GetBalance(ctx context.Context, phone string) (decimal.Decimal, error) {
	a, err := r.GetByPhone(ctx, phone)
	if err != nil {
		return decimal.Zero, err
	}
	return a.Balance, nil
}

func (r *fakeAccountRepo) Create(_ context.Context, account *domain.Account) error {
	if _, ok := r.accounts[account.Phone]; ok {
		return xerrors.ErrDuplicateAccount
	}
	r.accounts[account.Phone] = account
	return nil
}

func (r *fakeAccountRepo) SetPaymentAddress(_ context.Context, phone, address string) error {
	for _, a := range r.accounts {
		if a.Phone != phone && a.PaymentAddress != nil && *a.PaymentAddress == address {
			return xerrors.ErrAddressTaken
		}
	}
	a, ok := r.accounts[phone]
	if !ok {
		return xerrors.ErrAccountNotFound
	}
	a.PaymentAddress = &address
	return nil
}

func (r *fakeAccountRepo) Search(_ context.Context, term string, limit int) ([]*domain.Account, error) {
	var out []*domain.Account
	for _, a := range r.accounts {
		if strings.Contains(a.Phone, term) || strings.Contains(a.Username, term) {
			out = append(out, a)
		}
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

type fakeAttemptRepo struct {
	counts map[string]int
}

func newFakeAttemptRepo() *fakeAttemptRepo {
	return &fakeAttemptRepo{counts: make(map[string]int)}
}

func (r *fakeAttemptRepo) Increment(_ context.Context, phone string) (int, error) {
	r.counts[phone]++
	return r.counts[phone], nil
}

func (r *fakeAttemptRepo) Count(_ context.Context, phone string) (int, error) {
	return r.counts[phone], nil
}

func (r *fakeAttemptRepo) Reset(_ context.Context, phone string) error {
	delete(r.counts, phone)
	return nil
}

func (r *fakeAttemptRepo) Get(_ context.Context, phone string) (*domain.PINAttempt, error) {
	return &domain.PINAttempt{Phone: phone, Attempts: r.counts[phone]}, nil
}

// fakeLedgerRepo mimics the atomic repository against an in-memory
// balance map and an append-only row slice.
type fakeLedgerRepo struct {
	balances map[string]decimal.Decimal
	rows     []domain.Transaction
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{balances: make(map[string]decimal.Decimal)}
}

func (r *fakeLedgerRepo) append(tx domain.Transaction) {
	tx.ID = int64(len(r.rows) + 1)
	tx.CreatedAt = time.Now()
	r.rows = append(r.rows, tx)
}

func (r *fakeLedgerRepo) Adjust(_ context.Context, p repository.AdjustParams) (*repository.AdjustResult, error) {
	balance, ok := r.balances[p.Phone]
	if !ok {
		return nil, xerrors.ErrAccountNotFound
	}
	newBalance := balance.Add(p.Kind.Signed(p.Amount))
	if newBalance.IsNegative() {
		return nil, xerrors.ErrInsufficientFunds
	}
	r.balances[p.Phone] = newBalance
	r.append(domain.Transaction{
		TransactionID: p.TransactionID,
		Phone:         p.Phone,
		Kind:          p.Kind,
		Amount:        p.Amount,
		BalanceAfter:  newBalance,
		PaymentMethod: p.PaymentMethod,
	})
	return &repository.AdjustResult{TransactionID: p.TransactionID, NewBalance: newBalance}, nil
}

func (r *fakeLedgerRepo) Transfer(_ context.Context, p repository.TransferParams) (*repository.TransferResult, error) {
	senderBalance, ok := r.balances[p.SenderPhone]
	if !ok {
		return nil, xerrors.ErrAccountNotFound
	}
	newSenderBalance := senderBalance.Sub(p.Amount)
	if newSenderBalance.IsNegative() {
		return nil, xerrors.ErrInsufficientFunds
	}
	r.balances[p.SenderPhone] = newSenderBalance

	group := p.TransferGroupID
	method := p.PaymentMethod
	identifier := p.RawIdentifier
	r.append(domain.Transaction{
		TransactionID:      p.SendTransactionID,
		Phone:              p.SenderPhone,
		Kind:               domain.KindSend,
		Amount:             p.Amount,
		BalanceAfter:       newSenderBalance,
		PaymentMethod:      &method,
		ReceiverIdentifier: &identifier,
		TransferGroupID:    &group,
	})

	found := false
	if p.ReceiverPhone != nil {
		receiverBalance, ok := r.balances[*p.ReceiverPhone]
		if !ok {
			return nil, xerrors.ErrAccountNotFound
		}
		newReceiverBalance := receiverBalance.Add(p.Amount)
		r.balances[*p.ReceiverPhone] = newReceiverBalance
		sender := p.SenderPhone
		r.append(domain.Transaction{
			TransactionID:    p.ReceiveTransactionID,
			Phone:            *p.ReceiverPhone,
			Kind:             domain.KindReceive,
			Amount:           p.Amount,
			BalanceAfter:     newReceiverBalance,
			PaymentMethod:    &method,
			SenderIdentifier: &sender,
			TransferGroupID:  &group,
		})
		found = true
	}

	return &repository.TransferResult{
		TransactionID:     p.SendTransactionID,
		TransferGroupID:   p.TransferGroupID,
		SenderBalance:     newSenderBalance,
		CounterpartyFound: found,
	}, nil
}

type fakeTxRepo struct {
	transactions  []*domain.Transaction
	counterparty  []*repository.CounterpartyRow
	people        []*repository.PersonRow
	angles        []*repository.AngleRow
	contactPhones []string
}

func (r *fakeTxRepo) List(_ context.Context, phone string, _ domain.TransactionFilter) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	for _, tx := range r.transactions {
		if tx.Phone == phone {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (r *fakeTxRepo) Count(_ context.Context, phone string) (int, error) {
	n := 0
	for _, tx := range r.transactions {
		if tx.Phone == phone {
			n++
		}
	}
	return n, nil
}

func (r *fakeTxRepo) GetByTransactionID(_ context.Context, transactionID string) (*domain.Transaction, error) {
	for _, tx := range r.transactions {
		if tx.TransactionID == transactionID {
			return tx, nil
		}
	}
	return nil, xerrors.ErrTransactionNotFound
}

func (r *fakeTxRepo) Stats(_ context.Context, phone string) (*domain.TransactionStats, error) {
	stats := &domain.TransactionStats{
		TotalDeposits:    decimal.Zero,
		TotalWithdrawals: decimal.Zero,
		TotalSent:        decimal.Zero,
		TotalReceived:    decimal.Zero,
		NetFlow:          decimal.Zero,
	}
	for _, tx := range r.transactions {
		if tx.Phone != phone {
			continue
		}
		stats.TotalTransactions++
		stats.NetFlow = stats.NetFlow.Add(tx.Kind.Signed(tx.Amount))
		switch tx.Kind {
		case domain.KindDeposit:
			stats.TotalDeposits = stats.TotalDeposits.Add(tx.Amount)
		case domain.KindWithdraw:
			stats.TotalWithdrawals = stats.TotalWithdrawals.Add(tx.Amount)
		case domain.KindSend:
			stats.TotalSent = stats.TotalSent.Add(tx.Amount)
		case domain.KindReceive:
			stats.TotalReceived = stats.TotalReceived.Add(tx.Amount)
		}
	}
	return stats, nil
}

func (r *fakeTxRepo) Counterparties(_ context.Context, _ string, _ domain.Direction, _ int) ([]*repository.CounterpartyRow, error) {
	return r.counterparty, nil
}

func (r *fakeTxRepo) AllPeople(_ context.Context, _ string, _ int) ([]*repository.PersonRow, error) {
	return r.people, nil
}

func (r *fakeTxRepo) PersonAngles(_ context.Context, _ string, _ *string, _, _ string) ([]*repository.AngleRow, error) {
	return r.angles, nil
}

func (r *fakeTxRepo) CounterpartyPhones(_ context.Context, _ string) ([]string, error) {
	return r.contactPhones, nil
}

type fakeContactRepo struct {
	contacts map[string]*string // key user|contact -> nickname
}

func newFakeContactRepo() *fakeContactRepo {
	return &fakeContactRepo{contacts: make(map[string]*string)}
}

func contactKey(userPhone, contactPhone string) string {
	return userPhone + "|" + contactPhone
}

func (r *fakeContactRepo) List(_ context.Context, userPhone string) ([]*domain.ContactView, error) {
	var out []*domain.ContactView
	for key, nickname := range r.contacts {
		parts := strings.SplitN(key, "|", 2)
		if parts[0] != userPhone {
			continue
		}
		out = append(out, &domain.ContactView{Phone: parts[1], Nickname: nickname})
	}
	return out, nil
}

func (r *fakeContactRepo) Add(_ context.Context, userPhone, contactPhone string, nickname *string) error {
	key := contactKey(userPhone, contactPhone)
	if _, ok := r.contacts[key]; ok {
		return xerrors.ErrContactExists
	}
	r.contacts[key] = nickname
	return nil
}

func (r *fakeContactRepo) UpdateNickname(_ context.Context, userPhone, contactPhone string, nickname *string) error {
	key := contactKey(userPhone, contactPhone)
	if _, ok := r.contacts[key]; !ok {
		return xerrors.ErrAccountNotFound
	}
	r.contacts[key] = nickname
	return nil
}

func (r *fakeContactRepo) Remove(_ context.Context, userPhone, contactPhone string) error {
	delete(r.contacts, contactKey(userPhone, contactPhone))
	return nil
}

func (r *fakeContactRepo) Exists(_ context.Context, userPhone, contactPhone string) (bool, error) {
	_, ok := r.contacts[contactKey(userPhone, contactPhone)]
	return ok, nil
}

type publishedEvent struct {
	eventType     string
	phone         string
	transactionID string
}

type fakePublisher struct {
	events []publishedEvent
}

func (p *fakePublisher) PublishAdjustment(_ context.Context, phone string, _ domain.Kind, _, _ decimal.Decimal, transactionID string) error {
	p.events = append(p.events, publishedEvent{eventType: "adjustment", phone: phone, transactionID: transactionID})
	return nil
}

func (p *fakePublisher) PublishTransfer(_ context.Context, senderPhone, _ string, _, _ decimal.Decimal, transactionID string, _ bool) error {
	p.events = append(p.events, publishedEvent{eventType: "transfer", phone: senderPhone, transactionID: transactionID})
	return nil
}
