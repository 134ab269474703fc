package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"easycash/internal/config"
	"easycash/internal/db"
	hrest "easycash/internal/handler/rest"
	"easycash/internal/pub"
	"easycash/internal/repository"
	"easycash/internal/router"
	"easycash/internal/usecase"
	"easycash/pkg/id"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Server wires the whole wallet together: database, redis, kafka, the
// usecase graph and the HTTP surface.
type Server struct {
	httpServer *http.Server
	db         *pgxpool.Pool
	redis      *redis.Client
	events     *pub.KafkaPublisher
	logger     *zap.Logger
}

func New(cfg config.AppConfig, logger *zap.Logger) (*Server, error) {
	pool, err := config.ConnectDB(cfg)
	if err != nil {
		return nil, err
	}

	if err := db.ApplyMigrations(context.Background(), pool, "migrations"); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrations failed: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
	})

	events := pub.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)

	accountRepo := repository.NewAccountRepo(pool)
	attemptRepo := repository.NewPINAttemptRepo(pool)
	ledgerRepo := repository.NewLedgerRepo(pool)
	txRepo := repository.NewTransactionRepo(pool)
	contactRepo := repository.NewContactRepo(pool)

	ids := id.NewGenerator()

	resolverUC := usecase.NewResolverUsecase(accountRepo, redisClient)
	accountUC := usecase.NewAccountUsecase(accountRepo, resolverUC, logger)
	pinGuardUC := usecase.NewPINGuardUsecase(attemptRepo, accountRepo, logger)
	ledgerUC := usecase.NewLedgerUsecase(ledgerRepo, resolverUC, ids, cfg.Limits, events, logger)
	historyUC := usecase.NewHistoryUsecase(txRepo, accountRepo, redisClient)
	contactsUC := usecase.NewContactsUsecase(contactRepo, accountRepo, txRepo, logger)

	handler := hrest.NewWalletRestHandler(accountUC, pinGuardUC, ledgerUC, historyUC, contactsUC, logger)

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      router.New(handler),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  30 * time.Second,
		},
		db:     pool,
		redis:  redisClient,
		events: events,
		logger: logger,
	}, nil
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	defer func() {
		_ = s.events.Close()
		_ = s.redis.Close()
		s.db.Close()
	}()
	return s.httpServer.Shutdown(ctx)
}
