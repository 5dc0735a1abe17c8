package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "project.archived").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Domain event types published on the bus.
const (
	ProjectArchived      = "project.archived"
	ProjectStatusUpdated = "project.status_updated"
	TemplateCreated      = "template.created"
	SettingsUpdated      = "settings.updated"
)

// WorkspaceKey is the payload field naming the workspace an event belongs to.
const WorkspaceKey = "workspace_id"

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

// NewWorkspaceEvent builds an event scoped to a workspace.
func NewWorkspaceEvent(eventType, workspaceID string, data map[string]interface{}, at time.Time) BaseEvent {
	payload := make(map[string]interface{}, len(data)+2)
	for k, v := range data {
		payload[k] = v
	}
	payload[WorkspaceKey] = workspaceID
	payload["occurred_at"] = at.UTC().Format(time.RFC3339Nano)
	return BaseEvent{Type: eventType, Data: payload, OccurredAt: at}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
