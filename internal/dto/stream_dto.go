package dto

import (
	"ship-framework-be/pkg/ideation"

	"github.com/google/uuid"
)

const (
	StreamBegin = "stream.begin"
	StreamChunk = "stream.chunk"
	StreamEnd   = "stream.end"
	StreamError = "stream.error"
)

// StreamEvent is one step of a generation as pushed to websocket clients.
type StreamEvent struct {
	Type         string              `json:"type"`
	WorkspaceID  uuid.UUID           `json:"workspaceId"`
	SessionToken uint64              `json:"sessionToken"`
	StepIndex    int                 `json:"stepIndex"`
	StepID       ideation.StepID     `json:"stepId"`
	Generation   uint64              `json:"generation"`
	Text         string              `json:"text,omitempty"`
	Citations    []ideation.Citation `json:"citations,omitempty"`
	Error        string              `json:"error,omitempty"`
	ErrorKind    string              `json:"errorKind,omitempty"`
}
