package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"dealfeed/internal/config"
	"dealfeed/internal/constants"
	"dealfeed/internal/logger"
	"dealfeed/internal/rank"
)

// KafkaSink publishes the complete feed as a single message per run, for
// downstream consumers that prefer a stream over polling the file.
type KafkaSink struct {
	writer *kafka.Writer
	topic  string
	logger logger.Logger
}

func NewKafkaSink(cfg config.KafkaConfig, log logger.Logger) *KafkaSink {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: constants.KafkaBatchTimeout,
		WriteTimeout: constants.KafkaWriteTimeout,
		Async:        false,
	}
	return &KafkaSink{
		writer: w,
		topic:  cfg.Topic,
		logger: log,
	}
}

func (s *KafkaSink) Write(ctx context.Context, deals []rank.Deal) error {
	if deals == nil {
		deals = []rank.Deal{}
	}

	body, err := json.Marshal(deals)
	if err != nil {
		return fmt.Errorf("failed to marshal feed: %w", err)
	}

	err = s.writer.WriteMessages(ctx,
		kafka.Message{
			Topic: s.topic,
			Key:   []byte("deals"),
			Value: body,
			Time:  time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to write kafka message: %w", err)
	}

	s.logger.InfowCtx(ctx, "Feed published to kafka",
		"topic", s.topic,
		"deals", len(deals),
	)
	return nil
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
