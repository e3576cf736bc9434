// Package event 把发件箱中的托管事件投递到外部。
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/blues/launchpad/internal/logger"
	"github.com/blues/launchpad/internal/model"
)

// Publisher 事件投递
type Publisher interface {
	Publish(ctx context.Context, event model.EventModel) error
	Close() error
}

// Envelope 对外发布的事件格式
type Envelope struct {
	Id             int64           `json:"id"`
	EventType      model.EventType `json:"event_type"`
	ProjectId      string          `json:"project_id"`
	ContributionId string          `json:"contribution_id,omitempty"`
	Actor          string          `json:"actor"`
	Amount         uint64          `json:"amount"`
	Data           json.RawMessage `json:"data,omitempty"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

// NewEnvelope 由发件箱记录构造事件
func NewEnvelope(event model.EventModel) Envelope {
	env := Envelope{
		Id:             event.Id,
		EventType:      event.EventType,
		ProjectId:      event.ProjectId,
		ContributionId: event.ContributionId,
		Actor:          event.Actor,
		Amount:         event.Amount,
		OccurredAt:     event.CreatedAt,
	}
	if event.Data != "" {
		env.Data = json.RawMessage(event.Data)
	}
	return env
}

// KafkaPublisher 投递到 kafka，同一项目的事件使用相同的分区键
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher 创建 kafka 投递器
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event model.EventModel) error {
	value, err := json.Marshal(NewEnvelope(event))
	if err != nil {
		return fmt.Errorf("encode event %d: %w", event.Id, err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ProjectId),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	})
	if err != nil {
		return fmt.Errorf("write event %d to kafka: %w", event.Id, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher 未启用 kafka 时把事件写入日志
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (LogPublisher) Publish(_ context.Context, event model.EventModel) error {
	value, err := json.Marshal(NewEnvelope(event))
	if err != nil {
		return fmt.Errorf("encode event %d: %w", event.Id, err)
	}
	logger.Info("Escrow event %s", value)
	return nil
}

func (LogPublisher) Close() error {
	return nil
}
