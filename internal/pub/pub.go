package pub

import (
	"context"
	"encoding/json"
	"time"

	"easycash/internal/domain"
	"easycash/pkg/money"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TransactionEvent is the message shape emitted to the transaction-events
// topic after every committed ledger mutation.
type TransactionEvent struct {
	EventType         string    `json:"event_type"`
	Phone             string    `json:"phone"`
	Kind              string    `json:"kind,omitempty"`
	Identifier        string    `json:"identifier,omitempty"`
	Amount            string    `json:"amount"`
	BalanceAfter      string    `json:"balance_after"`
	TransactionID     string    `json:"transaction_id"`
	CounterpartyFound bool      `json:"counterparty_found,omitempty"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// KafkaPublisher writes committed ledger events to Kafka. Failures are
// logged and swallowed upstream; the ledger never blocks on delivery.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *zap.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		MaxAttempts:  3,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaPublisher{writer: writer, logger: logger}
}

func (p *KafkaPublisher) publish(ctx context.Context, key string, event TransactionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
	})
}

func (p *KafkaPublisher) PublishAdjustment(ctx context.Context, phone string, kind domain.Kind, amount, balanceAfter decimal.Decimal, transactionID string) error {
	return p.publish(ctx, phone, TransactionEvent{
		EventType:     "adjustment",
		Phone:         phone,
		Kind:          string(kind),
		Amount:        money.Format(amount),
		BalanceAfter:  money.Format(balanceAfter),
		TransactionID: transactionID,
		OccurredAt:    time.Now().UTC(),
	})
}

func (p *KafkaPublisher) PublishTransfer(ctx context.Context, senderPhone, rawIdentifier string, amount, senderBalance decimal.Decimal, transactionID string, counterpartyFound bool) error {
	return p.publish(ctx, senderPhone, TransactionEvent{
		EventType:         "transfer",
		Phone:             senderPhone,
		Identifier:        rawIdentifier,
		Amount:            money.Format(amount),
		BalanceAfter:      money.Format(senderBalance),
		TransactionID:     transactionID,
		CounterpartyFound: counterpartyFound,
		OccurredAt:        time.Now().UTC(),
	})
}

func (p *KafkaPublisher) Close() error {
	if err := p.writer.Close(); err != nil {
		p.logger.Warn("kafka writer close failed", zap.Error(err))
		return err
	}
	return nil
}
