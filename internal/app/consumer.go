package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"breakly/internal/bootstrap"
	"breakly/internal/config"
	"breakly/internal/events"
	"breakly/internal/messaging/kafka/consumer"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer writes leave lifecycle events to the audit log until
// SIGINT/SIGTERM.
func RunConsumer(cfg *config.Config, logger *zap.Logger) error {
	logger = logger.Named("app.consumer")

	if len(cfg.Kafka.Brokers) == 0 {
		return errors.New("kafka.brokers is required")
	}

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        cfg.Kafka.Brokers,
		Topic:          events.LeaveLifecycleTopic,
		GroupID:        cfg.Kafka.ConsumerGroup,
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	audit := bootstrap.NewStdoutAuditLogger(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		consumer.ConsumeLeaveLifecycle(ctx, reader, audit, logger)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()
	<-done

	return nil
}
