package service

import (
	"context"
	"encoding/json"

	"ship-framework-be/internal/dto"
	"ship-framework-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// WorkspaceDelivery pushes raw frames to the live connections of a workspace.
// Implemented by the websocket Hub.
type WorkspaceDelivery interface {
	Send(workspaceID uuid.UUID, data []byte)
}

type IStreamRelayService interface {
	Start(ctx context.Context) error
}

// streamRelayService forwards generation events from the in-process topic to
// websocket clients.
type streamRelayService struct {
	subscriber message.Subscriber
	topic      string
	delivery   WorkspaceDelivery
	logger     logger.ILogger
}

func NewStreamRelayService(subscriber message.Subscriber, delivery WorkspaceDelivery, log logger.ILogger) IStreamRelayService {
	return &streamRelayService{
		subscriber: subscriber,
		topic:      StreamTopic,
		delivery:   delivery,
		logger:     log,
	}
}

func (s *streamRelayService) Start(ctx context.Context) error {
	messages, err := s.subscriber.Subscribe(ctx, s.topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.relay(msg)
		}
	}()
	return nil
}

func (s *streamRelayService) relay(msg *message.Message) {
	defer msg.Ack()

	var evt dto.StreamEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		s.logger.Warn("STREAM", "Dropping malformed stream event", map[string]interface{}{"error": err.Error()})
		return
	}
	s.delivery.Send(evt.WorkspaceID, msg.Payload)
}
