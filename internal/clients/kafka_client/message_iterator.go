package kafka_client

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

// readPollTimeout bounds each ReadMessage call so the iterator can notice
// context cancellation between polls instead of blocking forever.
const readPollTimeout = time.Second

// KafkaMessageIterator pulls analysis requests off the wire one at a time.
// Messages are keyed by docket id, which the iterator surfaces in its logs.
type KafkaMessageIterator struct {
	consumer *kafka.Consumer
	ctx      context.Context
}

func NewKafkaMessageIterator(ctx context.Context, consumer *kafka.Consumer) *KafkaMessageIterator {
	return &KafkaMessageIterator{
		consumer: consumer,
		ctx:      ctx,
	}
}

// Next blocks until a message arrives, the context is cancelled, or the
// broker has been unreachable for MAX_RETRIES consecutive read failures.
func (it *KafkaMessageIterator) Next() (*kafka.Message, error) {
	if it.consumer == nil {
		return nil, errors.New("[KafkaIterator] Kafka consumer has not been initialized")
	}

	attempts := 0
	for attempts < MAX_RETRIES {
		select {
		case <-it.ctx.Done():
			slog.Warn("[KafkaIterator] Context cancelled, stopping iterator")
			return nil, it.ctx.Err()
		default:
			msg, err := it.consumer.ReadMessage(readPollTimeout)
			if err != nil {
				if kafkaErr, ok := err.(kafka.Error); ok {
					if kafkaErr.Code() == kafka.ErrTimedOut {
						// An idle topic is not a failure; poll again.
						continue
					}
					if kafkaErr.Code() == kafka.ErrAllBrokersDown {
						slog.Error("[KafkaIterator] All Kafka brokers are down. Aborting")
						return nil, err
					}
				}

				attempts++
				slog.Warn("[KafkaIterator] Failed to read message, retrying...",
					slog.Int("attempt", attempts),
					slog.Int("max_retries", MAX_RETRIES),
					slog.String("error", err.Error()))

				time.Sleep(RETRY_DELAY)
				continue
			}

			slog.Debug("[KafkaIterator] Received analysis request",
				slog.String("docket_id", string(msg.Key)),
				slog.Int64("offset", int64(msg.TopicPartition.Offset)))
			return msg, nil
		}
	}
	return nil, errors.New("[KafkaIterator] Failed to read message after retries")
}
