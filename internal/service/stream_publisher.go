package service

import (
	"encoding/json"

	"ship-framework-be/internal/dto"
	"ship-framework-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// StreamTopic is the in-process topic carrying generation events.
const StreamTopic = "ship.stream"

type IStreamPublisher interface {
	Publish(evt dto.StreamEvent)
}

type streamPublisher struct {
	publisher message.Publisher
	topic     string
	logger    logger.ILogger
}

func NewStreamPublisher(publisher message.Publisher, log logger.ILogger) IStreamPublisher {
	return &streamPublisher{publisher: publisher, topic: StreamTopic, logger: log}
}

func (s *streamPublisher) Publish(evt dto.StreamEvent) {
	payload, err := json.Marshal(evt)
	if err != nil {
		s.logger.Error("STREAM", "Failed to marshal stream event", map[string]interface{}{"error": err.Error()})
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("workspace_id", evt.WorkspaceID.String())
	msg.Metadata.Set("type", evt.Type)

	if err := s.publisher.Publish(s.topic, msg); err != nil {
		s.logger.Warn("STREAM", "Failed to publish stream event", map[string]interface{}{
			"type":  evt.Type,
			"error": err.Error(),
		})
	}
}
