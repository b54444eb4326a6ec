package utils

import (
	"sync"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

var messageMap sync.Map

// TrackMessage remembers the Kafka message that carried a docket request so
// the offset can be committed once the run finishes.
func TrackMessage(docketID string, msg *kafka.Message) {
	messageMap.Store(docketID, msg)
}

func GetMessageForDocket(docketID string) (*kafka.Message, bool) {
	msg, ok := messageMap.Load(docketID)
	if !ok {
		return nil, false
	}
	messageMap.Delete(docketID)
	return msg.(*kafka.Message), true
}
