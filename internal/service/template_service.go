package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ship-framework-be/internal/dto"
	"ship-framework-be/internal/pkg/logger"
	"ship-framework-be/pkg/events"
	"ship-framework-be/pkg/ideation"

	"github.com/google/uuid"
)

type ITemplateService interface {
	List(ctx context.Context, workspaceID uuid.UUID) ([]dto.TemplateSummary, error)
	CreateFromSession(ctx context.Context, workspaceID uuid.UUID, req *dto.CreateTemplateRequest) (*dto.TemplateSummary, error)
	Delete(ctx context.Context, workspaceID uuid.UUID, templateID string) error
}

type templateService struct {
	registry *StateRegistry
	events   *DomainEvents
	logger   logger.ILogger
	now      func() time.Time
}

func NewTemplateService(registry *StateRegistry, events *DomainEvents, log logger.ILogger) ITemplateService {
	return &templateService{registry: registry, events: events, logger: log, now: time.Now}
}

func (s *templateService) List(ctx context.Context, workspaceID uuid.UUID) ([]dto.TemplateSummary, error) {
	st := s.registry.Get(ctx, workspaceID)
	st.mu.Lock()
	defer st.mu.Unlock()

	out := make([]dto.TemplateSummary, 0, len(st.templates))
	for _, t := range st.templates {
		out = append(out, templateSummary(t))
	}
	return out, nil
}

// CreateFromSession keeps the current draft inputs as a template. A blank
// name falls back to the project name.
func (s *templateService) CreateFromSession(ctx context.Context, workspaceID uuid.UUID, req *dto.CreateTemplateRequest) (*dto.TemplateSummary, error) {
	st := s.registry.Get(ctx, workspaceID)
	st.mu.Lock()
	defer st.mu.Unlock()

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = strings.TrimSpace(st.doc.ProjectName)
	}
	if name == "" {
		return nil, &ideation.ValidationError{Fields: map[string]string{"name": ideation.MessageRequired}}
	}

	tpl := addTemplate(ctx, s.registry, st, name, st.doc, s.now())
	s.events.Emit(workspaceID, events.TemplateCreated, map[string]interface{}{
		"template_id": tpl.ID,
		"source":      "session",
	})
	summary := templateSummary(tpl)
	return &summary, nil
}

func (s *templateService) Delete(ctx context.Context, workspaceID uuid.UUID, templateID string) error {
	st := s.registry.Get(ctx, workspaceID)
	st.mu.Lock()
	defer st.mu.Unlock()

	kept := make([]ideation.ProjectTemplate, 0, len(st.templates))
	for _, t := range st.templates {
		if t.ID != templateID {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(st.templates) {
		return fmt.Errorf("template %q: %w", templateID, ideation.ErrNotFound)
	}
	st.templates = kept
	s.registry.persistTemplates(ctx, st)
	return nil
}

// addTemplate appends a template built from doc and persists the collection.
// Callers hold st.mu.
func addTemplate(ctx context.Context, registry *StateRegistry, st *AppState, name string, doc *ideation.StepDocument, now time.Time) ideation.ProjectTemplate {
	tpl := ideation.NewTemplate(name, doc, now)
	tpl.ID = uniqueID(now, func(id string) bool { return findTemplate(st.templates, id) != nil })
	st.templates = append(st.templates, tpl)
	registry.persistTemplates(ctx, st)
	return tpl
}

func templateSummary(t ideation.ProjectTemplate) dto.TemplateSummary {
	inputs := make(map[string]string)
	if t.Document != nil {
		for _, step := range t.Document.Steps {
			inputs[string(step.ID)] = step.DraftInput
		}
	}
	return dto.TemplateSummary{ID: t.ID, Name: t.Name, CreatedAt: t.CreatedAt, Inputs: inputs}
}
