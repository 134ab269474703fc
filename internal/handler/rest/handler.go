package hrest

import (
	"easycash/internal/usecase"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// WalletRestHandler exposes the wallet over HTTP. Handlers stay thin:
// decode, delegate to a usecase, encode.
type WalletRestHandler struct {
	accountUC  *usecase.AccountUsecase
	pinGuardUC *usecase.PINGuardUsecase
	ledgerUC   *usecase.LedgerUsecase
	historyUC  *usecase.HistoryUsecase
	contactsUC *usecase.ContactsUsecase
	logger     *zap.Logger
}

func NewWalletRestHandler(
	accountUC *usecase.AccountUsecase,
	pinGuardUC *usecase.PINGuardUsecase,
	ledgerUC *usecase.LedgerUsecase,
	historyUC *usecase.HistoryUsecase,
	contactsUC *usecase.ContactsUsecase,
	logger *zap.Logger,
) *WalletRestHandler {
	return &WalletRestHandler{
		accountUC:  accountUC,
		pinGuardUC: pinGuardUC,
		ledgerUC:   ledgerUC,
		historyUC:  historyUC,
		contactsUC: contactsUC,
		logger:     logger,
	}
}

func (h *WalletRestHandler) RegisterRoutes(r chi.Router) {
	r.Post("/accounts", h.Register)
	r.Post("/auth/login", h.Authenticate)

	r.Route("/accounts/{phone}", func(r chi.Router) {
		r.Get("/", h.GetProfile)
		r.Get("/balance", h.GetBalance)
		r.Put("/payment-address", h.SetPaymentAddress)

		r.Get("/transactions", h.ListTransactions)
		r.Get("/transactions/stats", h.TransactionStats)
		r.Get("/transactions/{transactionID}", h.GetReceipt)

		r.Get("/people", h.CounterpartySummaries)
		r.Get("/people/all", h.AllPeople)
		r.Get("/people/{identifier}/history", h.PersonHistory)

		r.Get("/contacts", h.ListContacts)
		r.Post("/contacts", h.AddContact)
		r.Post("/contacts/sync", h.SyncContacts)
		r.Put("/contacts/{contactPhone}", h.UpdateContactNickname)
		r.Delete("/contacts/{contactPhone}", h.RemoveContact)
	})

	r.Get("/accounts-search", h.SearchAccounts)

	r.Post("/transactions/deposit", h.Deposit)
	r.Post("/transactions/withdraw", h.Withdraw)
	r.Post("/transactions/transfer", h.Transfer)
}
