package producer

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/RoyceAzure/lab/bikeshop/internal/domain/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

var (
	// ErrProducerClosed producer 已關閉
	ErrProducerClosed = errors.New("producer is closed")
)

// OrderStatusEvent 訂單狀態變更事件
// 通知服務消費此事件發信，本核心只負責發出事實，不負責投遞
type OrderStatusEvent struct {
	EventID     string            `json:"event_id"`
	OrderID     string            `json:"order_id"`
	ClientID    string            `json:"client_id"`
	ClientEmail string            `json:"client_email"`
	OldStatus   model.OrderStatus `json:"old_status"`
	NewStatus   model.OrderStatus `json:"new_status"`
	OccurredAt  time.Time         `json:"occurred_at"`
}

// OrderEventProducer 發佈訂單狀態變更事件
type OrderEventProducer interface {
	PublishStatusChange(ctx context.Context, event OrderStatusEvent) error
	Close() error
}

type kafkaOrderEventProducer struct {
	writer *kafka.Writer
	closed atomic.Bool
}

// NewOrderEventProducer 創建 Kafka 事件 producer
func NewOrderEventProducer(brokers []string, topic string, logger *zerolog.Logger) OrderEventProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		MaxAttempts:  3,
		BatchTimeout: 100 * time.Millisecond,
		Compression:  kafka.Snappy,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Error().Msgf("kafka producer: "+msg, args...)
		}),
	}

	return &kafkaOrderEventProducer{writer: writer}
}

// PublishStatusChange 同步發送，以訂單ID當 key 保證同一訂單事件有序
func (p *kafkaOrderEventProducer) PublishStatusChange(ctx context.Context, event OrderStatusEvent) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}

	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.OrderID),
		Value: value,
	})
}

func (p *kafkaOrderEventProducer) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.writer.Close()
}
