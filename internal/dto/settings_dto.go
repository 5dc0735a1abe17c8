package dto

// UpdateSettingsRequest changes only the fields that are present.
type UpdateSettingsRequest struct {
	Temperature   *float64 `json:"temperature" validate:"omitempty,min=0,max=1"`
	Model         *string  `json:"model" validate:"omitempty,oneof=flash-lite flash pro"`
	DeepReasoning *bool    `json:"deepReasoning"`
	WebGrounding  *bool    `json:"webGrounding"`
}
