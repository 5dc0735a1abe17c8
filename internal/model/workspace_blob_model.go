package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// WorkspaceBlob is one persisted value of a workspace, such as its draft
// session or its archive collection.
type WorkspaceBlob struct {
	WorkspaceID uuid.UUID      `gorm:"type:uuid;primaryKey" json:"workspace_id"`
	Key         string         `gorm:"type:varchar(64);primaryKey" json:"key"`
	Value       datatypes.JSON `gorm:"type:jsonb;not null" json:"value"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WorkspaceBlob) TableName() string {
	return "workspace_blobs"
}
