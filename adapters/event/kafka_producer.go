package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/program-catalog/internal/config"
	"github.com/khoahotran/program-catalog/internal/domain/search"
	"github.com/khoahotran/program-catalog/pkg/logger"
)

const DefaultSearchLogTopic = "search.logs"

// KafkaProducerClient publishes search logs keyed by log id.
type KafkaProducerClient struct {
	SearchLogWriter *kafka.Writer
	logger          logger.Logger
}

func NewKafkaProducerClient(cfg config.Config, log logger.Logger) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}
	topic := cfg.Kafka.SearchLogTopic
	if topic == "" {
		topic = DefaultSearchLogTopic
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	log.Info("Initialize Kafka producer successfully", zap.String("topic", topic))
	return &KafkaProducerClient{SearchLogWriter: writer, logger: log}, nil
}

func (c *KafkaProducerClient) PublishSearchLog(ctx context.Context, l search.Log) error {
	payload, err := json.Marshal(l)
	if err != nil {
		return fmt.Errorf("marshal search log: %w", err)
	}
	err = c.SearchLogWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(l.ID.String()),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("publish search log %s: %w", l.ID, err)
	}
	return nil
}

func (c *KafkaProducerClient) Close() {
	if c.SearchLogWriter != nil {
		if err := c.SearchLogWriter.Close(); err != nil {
			c.logger.Error("Failed to close Kafka producer", err)
			return
		}
	}
	c.logger.Info("Closed Kafka producer")
}
