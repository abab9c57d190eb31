package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/wuyan/lifescope/internal/config"
	"github.com/wuyan/lifescope/internal/domain"
)

const recordDateLayout = "2006-01-02"

// BehaviorMessage is the JSON body consumed by the analytics ETL.
type BehaviorMessage struct {
	UserID     int64  `json:"user_id"`
	RecordDate string `json:"record_date"`
	AppName    string `json:"app_name"`
	UsageMins  int    `json:"usage_mins"`
	Category   string `json:"category"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// KafkaPublisher forwards behavior records to the raw-data topic.
type KafkaPublisher struct {
	writer messageWriter
	logger *zap.Logger
}

// NewKafkaPublisher builds a publisher around a kafka-go Writer.
func NewKafkaPublisher(cfg config.KafkaConfig, logger *zap.Logger) *KafkaPublisher {
	writer := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		WriteTimeout:           time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
		AllowAutoTopicCreation: true,
		ErrorLogger: kafkago.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Error("kafka writer", zap.String("detail", fmt.Sprintf(msg, args...)))
		}),
	}
	logger.Info("kafka producer initialized", zap.Strings("brokers", cfg.Brokers), zap.String("topic", cfg.Topic))
	return newKafkaPublisher(writer, logger)
}

func newKafkaPublisher(writer messageWriter, logger *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, logger: logger}
}

// Publish writes all records in a single batch keyed by user id.
func (p *KafkaPublisher) Publish(ctx context.Context, records ...domain.BehaviorRecord) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, 0, len(records))
	for _, record := range records {
		msg, err := BuildMessage(record)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish behavior records: %w", err)
	}
	p.logger.Debug("behavior records published", zap.Int("count", len(msgs)))
	return nil
}

// Close flushes pending writes.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// BuildMessage encodes a record, defaulting a blank category.
func BuildMessage(record domain.BehaviorRecord) (kafkago.Message, error) {
	category := record.Category
	if category == "" {
		category = domain.DefaultBehaviorCategory
	}
	body, err := json.Marshal(BehaviorMessage{
		UserID:     record.UserID,
		RecordDate: record.RecordDate.Format(recordDateLayout),
		AppName:    record.AppName,
		UsageMins:  record.UsageMins,
		Category:   category,
	})
	if err != nil {
		return kafkago.Message{}, err
	}
	return kafkago.Message{
		Key:   []byte(strconv.FormatInt(record.UserID, 10)),
		Value: body,
	}, nil
}
