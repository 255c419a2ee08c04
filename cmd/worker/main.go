package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/program-catalog/adapters/event"
	"github.com/khoahotran/program-catalog/adapters/persistence"
	"github.com/khoahotran/program-catalog/internal/application/usecase/searchlog"
	"github.com/khoahotran/program-catalog/internal/config"
	"github.com/khoahotran/program-catalog/pkg/logger"
)

func main() {
	// Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("cannot load config: " + err.Error())
	}

	appLogger := logger.NewZapLogger(cfg.App.Env)
	defer appLogger.Sync()
	appLogger.Info("Starting Program Catalog Worker...")

	// Database
	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Cannot connect Postgres", err)
	}
	defer dbPool.Close()

	// Worker Use Case
	recordUC := searchlog.NewRecordSearchLogUseCase(persistence.NewPostgresSearchLogRepo(dbPool, appLogger), appLogger)

	topic := cfg.Kafka.SearchLogTopic
	if topic == "" {
		topic = event.DefaultSearchLogTopic
	}

	// Kafka Consumer
	consumer := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Kafka.Brokers,
		Topic:    topic,
		GroupID:  cfg.Kafka.GroupID,
		MinBytes: 10e3,
		MaxBytes: 10e6,
	})
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appLogger.Info("Worker listening", zap.String("topic", topic), zap.String("group_id", cfg.Kafka.GroupID))

	for {
		msg, err := consumer.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				appLogger.Info("Worker stopped")
				return
			}
			appLogger.Error("Failed to read message from Kafka", err)
			continue
		}

		l, err := searchlog.Decode(msg.Value)
		if err != nil {
			appLogger.Warn("Skipping malformed search log", zap.String("key", string(msg.Key)), zap.Error(err))
			commitMessage(ctx, consumer, msg, appLogger)
			continue
		}

		// Left uncommitted on failure so the message is redelivered.
		if err := recordUC.Execute(ctx, l); err != nil {
			appLogger.Error("Failed to record search log", err, zap.String("id", l.ID.String()))
			continue
		}

		commitMessage(ctx, consumer, msg, appLogger)
	}
}

func commitMessage(ctx context.Context, consumer *kafka.Reader, msg kafka.Message, log logger.Logger) {
	if err := consumer.CommitMessages(ctx, msg); err != nil {
		log.Error("Failed to commit message", err, zap.Int64("offset", msg.Offset))
	}
}
