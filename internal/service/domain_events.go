package service

import (
	"context"
	"time"

	"ship-framework-be/internal/pkg/logger"
	"ship-framework-be/pkg/events"

	"github.com/google/uuid"
)

// EventPublisher is the event bus. Implemented by pkg/nats.Publisher.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// DomainEvents publishes workspace events in the background. A nil bus
// turns it into a no-op.
type DomainEvents struct {
	bus    EventPublisher
	logger logger.ILogger
	now    func() time.Time
}

func NewDomainEvents(bus EventPublisher, log logger.ILogger) *DomainEvents {
	return &DomainEvents{bus: bus, logger: log, now: time.Now}
}

func (d *DomainEvents) Emit(workspaceID uuid.UUID, eventType string, data map[string]interface{}) {
	if d == nil || d.bus == nil {
		return
	}
	evt := events.NewWorkspaceEvent(eventType, workspaceID.String(), data, d.now())
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := d.bus.Publish(ctx, evt); err != nil {
			d.logger.Warn("EVENTS", "Failed to publish domain event", map[string]interface{}{
				"type":         eventType,
				"workspace_id": workspaceID,
				"error":        err.Error(),
			})
		}
	}()
}
