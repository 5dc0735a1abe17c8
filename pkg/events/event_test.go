package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewWorkspaceEvent(t *testing.T) {
	at := time.Date(2025, 5, 6, 7, 8, 9, 0, time.UTC)
	data := map[string]interface{}{"project_id": "p1"}

	evt := NewWorkspaceEvent(ProjectArchived, "ws-1", data, at)

	assert.Equal(t, "project.archived", evt.EventType())
	assert.Equal(t, "ws-1", evt.Payload()[WorkspaceKey])
	assert.Equal(t, "p1", evt.Payload()["project_id"])
	assert.Equal(t, "2025-05-06T07:08:09Z", evt.Payload()["occurred_at"])
	assert.Equal(t, at, evt.Timestamp())
	assert.NotContains(t, data, WorkspaceKey, "input map is not modified")
}
