package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateWorkspaceResponse struct {
	WorkspaceID uuid.UUID `json:"workspaceId"`
	Token       string    `json:"token"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// WorkspaceStatusResponse tells the client whether AI features are usable and
// when the draft was last auto-saved.
type WorkspaceStatusResponse struct {
	WorkspaceID      uuid.UUID  `json:"workspaceId"`
	Credential       string     `json:"credential"`
	CredentialOK     bool       `json:"credentialOk"`
	Remediation      string     `json:"remediation,omitempty"`
	Provider         string     `json:"provider"`
	AutoSaveInterval string     `json:"autoSaveInterval"`
	LastAutoSaveAt   *time.Time `json:"lastAutoSaveAt,omitempty"`
}
