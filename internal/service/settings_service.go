package service

import (
	"context"

	"ship-framework-be/internal/dto"
	"ship-framework-be/internal/pkg/logger"
	"ship-framework-be/pkg/events"
	"ship-framework-be/pkg/ideation"

	"github.com/google/uuid"
)

type ISettingsService interface {
	Get(ctx context.Context, workspaceID uuid.UUID) (ideation.Settings, error)
	Update(ctx context.Context, workspaceID uuid.UUID, req *dto.UpdateSettingsRequest) (ideation.Settings, error)
}

type settingsService struct {
	registry *StateRegistry
	events   *DomainEvents
	logger   logger.ILogger
}

func NewSettingsService(registry *StateRegistry, events *DomainEvents, log logger.ILogger) ISettingsService {
	return &settingsService{registry: registry, events: events, logger: log}
}

func (s *settingsService) Get(ctx context.Context, workspaceID uuid.UUID) (ideation.Settings, error) {
	st := s.registry.Get(ctx, workspaceID)
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.settings, nil
}

// Update applies the present fields. Turning one capability on turns the
// other off; asking for both in one request is rejected.
func (s *settingsService) Update(ctx context.Context, workspaceID uuid.UUID, req *dto.UpdateSettingsRequest) (ideation.Settings, error) {
	if req.DeepReasoning != nil && req.WebGrounding != nil && *req.DeepReasoning && *req.WebGrounding {
		return ideation.Settings{}, &ideation.ValidationError{Fields: map[string]string{
			"deepReasoning": "El razonamiento profundo y la búsqueda web no pueden activarse a la vez.",
			"webGrounding":  "El razonamiento profundo y la búsqueda web no pueden activarse a la vez.",
		}}
	}

	st := s.registry.Get(ctx, workspaceID)
	st.mu.Lock()
	defer st.mu.Unlock()

	next := st.settings
	if req.Temperature != nil {
		next.Temperature = *req.Temperature
	}
	if req.Model != nil {
		next.Model = ideation.ParseModel(*req.Model)
	}
	if req.DeepReasoning != nil {
		next.EnableDeepReasoning(*req.DeepReasoning)
	}
	if req.WebGrounding != nil {
		next.EnableWebGrounding(*req.WebGrounding)
	}
	st.settings = next.Normalize()
	s.registry.persistSettings(ctx, st)
	next = st.settings

	s.events.Emit(workspaceID, events.SettingsUpdated, map[string]interface{}{
		"model":          string(next.Model),
		"temperature":    next.Temperature,
		"deep_reasoning": next.DeepReasoning,
		"web_grounding":  next.WebGrounding,
	})
	return next, nil
}
