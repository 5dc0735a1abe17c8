package dto

import (
	"ship-framework-be/pkg/ideation"
)

// SessionResponse is the active session of a workspace.
type SessionResponse struct {
	Document       *ideation.StepDocument `json:"document"`
	SessionToken   uint64                 `json:"sessionToken"`
	FocusedStep    int                    `json:"focusedStep"`
	SummaryVisible bool                   `json:"summaryVisible"`
	Saved          bool                   `json:"saved"`
	Saveable       bool                   `json:"saveable"`
}

type UpdateProjectRequest struct {
	ProjectName   string               `json:"projectName" validate:"max=200"`
	ClientProfile UpdateProfileRequest `json:"clientProfile"`
}

type UpdateProfileRequest struct {
	Name    string `json:"name" validate:"max=200"`
	Company string `json:"company" validate:"max=200"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"max=50"`
}

type UpdateStepInputRequest struct {
	Index int    `json:"-"`
	Text  string `json:"text"`
}

type DictateRequest struct {
	Index int    `json:"-"`
	Text  string `json:"text" validate:"required"`
}

type RestoreResponseRequest struct {
	Index        int `json:"-"`
	HistoryIndex int `json:"historyIndex" validate:"min=0"`
}

// HelpResponse acknowledges a started generation. Its chunks arrive on the
// stream websocket tagged with the same session token and generation.
type HelpResponse struct {
	StepIndex    int             `json:"stepIndex"`
	StepID       ideation.StepID `json:"stepId"`
	SessionToken uint64          `json:"sessionToken"`
	Generation   uint64          `json:"generation"`
}

type SaveProjectResponse struct {
	Project *ideation.ArchivedProject `json:"project"`
	Session *SessionResponse          `json:"session"`
}
