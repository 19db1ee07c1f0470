package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"click-reward-system/models"

	"github.com/segmentio/kafka-go"
)

const RewardGrantedEvent = "click.reward.granted"

// RewardGrantedPayload is the event body published for every recorded reward.
type RewardGrantedPayload struct {
	EventType         string              `json:"event_type"`
	RewardID          string              `json:"reward_id"`
	UserID            string              `json:"user_id"`
	Source            models.RewardSource `json:"source"`
	Prize             models.Prize        `json:"prize"`
	WonAtCounterValue int64               `json:"won_at_counter_value"`
	ActivityID        *string             `json:"activity_id,omitempty"`
	OccurredAt        time.Time           `json:"occurred_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaRewardPublisher struct {
	writer messageWriter
	topic  string
}

func NewKafkaRewardPublisher(brokers []string, topic string) (*KafkaRewardPublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka reward publisher requires at least one broker")
	}
	if topic == "" {
		return nil, errors.New("kafka reward publisher requires a topic")
	}
	return &KafkaRewardPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
		},
		topic: topic,
	}, nil
}

// PublishReward keys messages by user so one user's rewards stay ordered.
func (p *KafkaRewardPublisher) PublishReward(ctx context.Context, record models.RewardRecord) error {
	payload, err := json.Marshal(RewardGrantedPayload{
		EventType:         RewardGrantedEvent,
		RewardID:          record.ID,
		UserID:            record.UserID,
		Source:            record.Source,
		Prize:             record.Prize,
		WonAtCounterValue: record.WonAtCounterValue,
		ActivityID:        record.ActivityID,
		OccurredAt:        record.CreatedAt.UTC(),
	})
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: p.topic,
		Key:   []byte(record.UserID),
		Value: payload,
		Time:  time.Now().UTC(),
	})
}

func (p *KafkaRewardPublisher) Close() error {
	return p.writer.Close()
}
