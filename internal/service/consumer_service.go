package service

import (
	"context"
	"encoding/json"
	"log"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"paper-brain-be/internal/dto"
	"paper-brain-be/internal/entity"
	"paper-brain-be/internal/repository/contract"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub      *gochannel.GoChannel
	topicName   string
	metricsRepo contract.RequestMetricRepository
}

// NewConsumerService wires the metrics topic to the database. metricsRepo
// may be nil when no database is configured; messages are then dropped.
func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	metricsRepo contract.RequestMetricRepository,
) IConsumerService {
	return &consumerService{
		pubSub:      pubSub,
		topicName:   topicName,
		metricsRepo: metricsRepo,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.RequestMetricMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal metric message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if cs.metricsRepo == nil {
		msg.Ack()
		return
	}

	metric := &entity.RequestMetric{
		SessionId:   payload.SessionId,
		Kind:        payload.Kind,
		Query:       payload.Query,
		Steps:       payload.Steps,
		ResultCount: payload.ResultCount,
		ChunksUsed:  payload.ChunksUsed,
		LatencyMs:   payload.LatencyMs,
		Error:       payload.Error,
		CreatedAt:   payload.Timestamp,
	}

	if err := cs.metricsRepo.Create(ctx, metric); err != nil {
		log.Printf("[ERROR] Failed to persist metric for session %s: %v", payload.SessionId, err)
		msg.Nack() // Nack for retriable errors
		return
	}

	msg.Ack()
}
