package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"click-reward-system/models"

	"github.com/segmentio/kafka-go"
)

type captureWriter struct {
	msgs []kafka.Message
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *captureWriter) Close() error { return nil }

func TestKafkaRewardPublisherMessage(t *testing.T) {
	writer := &captureWriter{}
	pub := &KafkaRewardPublisher{writer: writer, topic: "click.rewards.granted"}
	at := time.Date(2026, 3, 1, 4, 5, 6, 0, time.UTC)

	err := pub.PublishReward(context.Background(), models.RewardRecord{
		ID: "r1", UserID: "alice", Source: models.RewardSourceGlobal, Prize: cash(5), WonAtCounterValue: 100, CreatedAt: at,
	})
	if err != nil {
		t.Fatalf("PublishReward: %v", err)
	}
	if len(writer.msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(writer.msgs))
	}
	msg := writer.msgs[0]
	if msg.Topic != "click.rewards.granted" || string(msg.Key) != "alice" {
		t.Fatalf("unexpected topic/key %s/%s", msg.Topic, msg.Key)
	}

	var payload RewardGrantedPayload
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.EventType != RewardGrantedEvent || payload.RewardID != "r1" || payload.WonAtCounterValue != 100 {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if !payload.Prize.Amount.Equal(cash(5).Amount) || !payload.OccurredAt.Equal(at) {
		t.Fatalf("unexpected prize/time in payload %+v", payload)
	}
}

func TestNewKafkaRewardPublisherRequiresBrokers(t *testing.T) {
	if _, err := NewKafkaRewardPublisher(nil, "topic"); err == nil {
		t.Fatalf("expected error without brokers")
	}
	if _, err := NewKafkaRewardPublisher([]string{"localhost:9092"}, ""); err == nil {
		t.Fatalf("expected error without topic")
	}
}
