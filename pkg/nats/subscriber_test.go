package nats

import (
	"testing"

	"ship-framework-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent(t *testing.T) {
	evt, err := decodeEvent(Subject(events.ProjectArchived), []byte(`{"workspace_id":"ws","occurred_at":"2025-01-02T03:04:05Z"}`))
	require.NoError(t, err)

	assert.Equal(t, events.ProjectArchived, evt.EventType())
	assert.Equal(t, "ws", evt.Payload()[events.WorkspaceKey])
	assert.Equal(t, 2025, evt.Timestamp().Year())

	_, err = decodeEvent(Subject("x"), []byte(`not json`))
	assert.Error(t, err)
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "ship.events.settings.updated", Subject(events.SettingsUpdated))
}

func TestMessageID(t *testing.T) {
	a := messageID(Subject(events.ProjectArchived), []byte(`{"project_id":"1"}`))
	assert.Len(t, a, 40)
	assert.Equal(t, a, messageID(Subject(events.ProjectArchived), []byte(`{"project_id":"1"}`)))
	assert.NotEqual(t, a, messageID(Subject(events.ProjectArchived), []byte(`{"project_id":"2"}`)))
	assert.NotEqual(t, a, messageID(Subject(events.TemplateCreated), []byte(`{"project_id":"1"}`)))
}
