package dto

import (
	"time"

	"ship-framework-be/pkg/ideation"
)

// ArchivedProjectSummary is an entry of the archive list.
type ArchivedProjectSummary struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	ClientName string                 `json:"clientName"`
	SavedAt    time.Time              `json:"savedAt"`
	Status     ideation.ProjectStatus `json:"status"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending success failed"`
}

type CreateTemplateRequest struct {
	Name string `json:"name" validate:"max=200"`
}

type TemplateSummary struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	CreatedAt time.Time         `json:"createdAt"`
	Inputs    map[string]string `json:"inputs"`
}

type ImportResponse struct {
	Projects  int `json:"projects"`
	Templates int `json:"templates"`
}

type BackupResponse struct {
	Key   string `json:"key"`
	Bytes int    `json:"bytes"`
}
