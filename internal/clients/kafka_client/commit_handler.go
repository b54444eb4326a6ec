package kafka_client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

// KafkaCommitHandler commits offsets on the analysis-requests topic. Commits
// happen only after a docket's result has been published, so every log line
// carries the docket id from the message key.
type KafkaCommitHandler struct {
	consumer *kafka.Consumer
	ctx      context.Context
}

func NewCommitHandler(ctx context.Context, consumer *kafka.Consumer) *KafkaCommitHandler {
	return &KafkaCommitHandler{
		consumer: consumer,
		ctx:      ctx,
	}
}

func (ch *KafkaCommitHandler) Commit(msg *kafka.Message) error {
	if ch.consumer == nil {
		return errors.New("[KafkaCommitHandler] Kafka consumer has not been initialized")
	}

	docketID := string(msg.Key)

	for i := 0; i < MAX_RETRIES; i++ {
		select {
		case <-ch.ctx.Done():
			slog.Warn("[KafkaCommitHandler] Context canceled, stopping commit",
				slog.String("docket_id", docketID))
			return ch.ctx.Err()
		default:
			_, err := ch.consumer.CommitMessage(msg)
			if err == nil {
				slog.Info("[KafkaCommitHandler] Committed offset for docket",
					slog.String("docket_id", docketID),
					slog.Int("partition", int(msg.TopicPartition.Partition)),
					slog.Int64("offset", int64(msg.TopicPartition.Offset)))
				return nil
			}

			if kafkaErr, ok := err.(kafka.Error); ok && kafkaErr.Code() == kafka.ErrAllBrokersDown {
				slog.Error("[KafkaCommitHandler] All Kafka brokers are down. Aborting commit",
					slog.String("docket_id", docketID))
				return err
			}

			slog.Warn("[KafkaCommitHandler] Failed to commit offset, retrying...",
				slog.String("docket_id", docketID),
				slog.Int("attempt", i+1),
				slog.Int("partition", int(msg.TopicPartition.Partition)),
				slog.Int64("offset", int64(msg.TopicPartition.Offset)),
				slog.String("error", err.Error()))

			time.Sleep(RETRY_DELAY)
		}
	}

	return fmt.Errorf("[KafkaCommitHandler] committing offset for docket %s failed after %d retries", docketID, MAX_RETRIES)
}
