package service

import (
	"context"
	"encoding/json"
	"fmt"

	"ship-framework-be/internal/pkg/logger"
	"ship-framework-be/pkg/events"
	pktNats "ship-framework-be/pkg/nats"

	"github.com/google/uuid"
)

// ActivityService relays domain events back to the websocket clients of the
// workspace they concern, so that other open tabs refresh their lists.
type ActivityService struct {
	delivery WorkspaceDelivery
	logger   logger.ILogger
}

func NewActivityService(delivery WorkspaceDelivery, log logger.ILogger) *ActivityService {
	return &ActivityService{delivery: delivery, logger: log}
}

// Start subscribes to every domain event.
func (s *ActivityService) Start(ctx context.Context, sub *pktNats.Subscriber) error {
	if _, err := sub.Subscribe(ctx, ">", "ship-activity-relay", s.HandleEvent); err != nil {
		s.logger.Error("ActivityService", "Failed to start activity subscriber", map[string]interface{}{"error": err.Error()})
		return err
	}
	s.logger.Info("ActivityService", "Activity relay started", nil)
	return nil
}

// HandleEvent pushes one event to its workspace.
func (s *ActivityService) HandleEvent(_ context.Context, event events.Event) error {
	raw, _ := event.Payload()[events.WorkspaceKey].(string)
	workspaceID, err := uuid.Parse(raw)
	if err != nil {
		s.logger.Warn("ActivityService", fmt.Sprintf("Event %s has no workspace", event.EventType()), nil)
		return nil
	}

	frame, err := json.Marshal(map[string]interface{}{
		"type":  "activity",
		"event": event.EventType(),
		"data":  event.Payload(),
	})
	if err != nil {
		return err
	}
	s.delivery.Send(workspaceID, frame)
	return nil
}
