package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ship-framework-be/internal/dto"
	"ship-framework-be/internal/pkg/logger"
	"ship-framework-be/internal/repository/contract"
	"ship-framework-be/pkg/events"
	"ship-framework-be/pkg/ideation"

	"github.com/google/uuid"
)

var ErrBackupDisabled = errors.New("backups are not configured")

type IArchiveService interface {
	List(ctx context.Context, workspaceID uuid.UUID) ([]dto.ArchivedProjectSummary, error)
	Get(ctx context.Context, workspaceID uuid.UUID, projectID string) (*ideation.ArchivedProject, error)
	Delete(ctx context.Context, workspaceID uuid.UUID, projectID string) error
	UpdateStatus(ctx context.Context, workspaceID uuid.UUID, projectID string, req *dto.UpdateStatusRequest) (*ideation.ArchivedProject, error)
	SaveAsTemplate(ctx context.Context, workspaceID uuid.UUID, projectID string, req *dto.CreateTemplateRequest) (*dto.TemplateSummary, error)
	Export(ctx context.Context, workspaceID uuid.UUID) ([]byte, error)
	Import(ctx context.Context, workspaceID uuid.UUID, blob []byte) (*dto.ImportResponse, error)
	Backup(ctx context.Context, workspaceID uuid.UUID) (*dto.BackupResponse, error)
}

type archiveService struct {
	registry *StateRegistry
	events   *DomainEvents
	backups  contract.BackupRepository
	logger   logger.ILogger
	now      func() time.Time
}

// NewArchiveService builds the archive service. backups may be nil, in which
// case Backup reports ErrBackupDisabled.
func NewArchiveService(registry *StateRegistry, events *DomainEvents, backups contract.BackupRepository, log logger.ILogger) IArchiveService {
	return &archiveService{
		registry: registry,
		events:   events,
		backups:  backups,
		logger:   log,
		now:      time.Now,
	}
}

func (s *archiveService) List(ctx context.Context, workspaceID uuid.UUID) ([]dto.ArchivedProjectSummary, error) {
	st := s.registry.Get(ctx, workspaceID)
	st.mu.Lock()
	defer st.mu.Unlock()

	out := make([]dto.ArchivedProjectSummary, 0, len(st.archive))
	for _, p := range st.archive {
		summary := dto.ArchivedProjectSummary{ID: p.ID, Name: p.Name, SavedAt: p.SavedAt, Status: p.Status}
		if p.Document != nil {
			summary.ClientName = p.Document.ClientProfile.Name
		}
		out = append(out, summary)
	}
	return out, nil
}

func (s *archiveService) Get(ctx context.Context, workspaceID uuid.UUID, projectID string) (*ideation.ArchivedProject, error) {
	st := s.registry.Get(ctx, workspaceID)
	st.mu.Lock()
	defer st.mu.Unlock()

	p := findProject(st.archive, projectID)
	if p == nil {
		return nil, projectNotFound(projectID)
	}
	out := *p
	out.Document = p.Document.Clone()
	return &out, nil
}

func (s *archiveService) Delete(ctx context.Context, workspaceID uuid.UUID, projectID string) error {
	st := s.registry.Get(ctx, workspaceID)
	st.mu.Lock()
	defer st.mu.Unlock()

	kept := make([]ideation.ArchivedProject, 0, len(st.archive))
	for _, p := range st.archive {
		if p.ID != projectID {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(st.archive) {
		return projectNotFound(projectID)
	}
	st.archive = kept
	s.registry.persistArchive(ctx, st)
	return nil
}

// UpdateStatus changes the status of a project. It is the only mutation an
// archived project allows.
func (s *archiveService) UpdateStatus(ctx context.Context, workspaceID uuid.UUID, projectID string, req *dto.UpdateStatusRequest) (*ideation.ArchivedProject, error) {
	status, ok := ideation.ParseStatus(req.Status)
	if !ok {
		return nil, &ideation.ValidationError{Fields: map[string]string{"status": "Estado no válido."}}
	}

	st := s.registry.Get(ctx, workspaceID)
	st.mu.Lock()
	defer st.mu.Unlock()

	p := findProject(st.archive, projectID)
	if p == nil {
		return nil, projectNotFound(projectID)
	}
	p.Status = status
	s.registry.persistArchive(ctx, st)

	s.events.Emit(workspaceID, events.ProjectStatusUpdated, map[string]interface{}{
		"project_id": projectID,
		"status":     string(status),
	})
	out := *p
	out.Document = p.Document.Clone()
	return &out, nil
}

// SaveAsTemplate stores the inputs of an archived project as a new template.
// A blank name falls back to the project name.
func (s *archiveService) SaveAsTemplate(ctx context.Context, workspaceID uuid.UUID, projectID string, req *dto.CreateTemplateRequest) (*dto.TemplateSummary, error) {
	st := s.registry.Get(ctx, workspaceID)
	st.mu.Lock()
	defer st.mu.Unlock()

	p := findProject(st.archive, projectID)
	if p == nil {
		return nil, projectNotFound(projectID)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = fmt.Sprintf("Plantilla de %s", p.Name)
	}
	tpl := addTemplate(ctx, s.registry, st, name, p.Document, s.now())

	s.events.Emit(workspaceID, events.TemplateCreated, map[string]interface{}{
		"template_id": tpl.ID,
		"source":      projectID,
	})
	summary := templateSummary(tpl)
	return &summary, nil
}

// Export renders the archive and the templates as one JSON document.
func (s *archiveService) Export(ctx context.Context, workspaceID uuid.UUID) ([]byte, error) {
	st := s.registry.Get(ctx, workspaceID)
	st.mu.Lock()
	dump := &ideation.Dump{
		Version:    ideation.DumpVersion,
		ExportedAt: s.now().UTC(),
		Archive:    append([]ideation.ArchivedProject{}, st.archive...),
		Templates:  append([]ideation.ProjectTemplate{}, st.templates...),
	}
	st.mu.Unlock()

	blob, err := ideation.EncodeDump(dump)
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return blob, nil
}

// Import merges an export into the workspace. Entries are matched by id and
// the imported copy replaces the local one.
func (s *archiveService) Import(ctx context.Context, workspaceID uuid.UUID, blob []byte) (*dto.ImportResponse, error) {
	dump, err := ideation.DecodeDump(s.registry.Definitions(), blob)
	if err != nil {
		return nil, &ideation.ValidationError{Fields: map[string]string{"file": "El archivo no es una exportación válida."}}
	}

	st := s.registry.Get(ctx, workspaceID)
	st.mu.Lock()
	defer st.mu.Unlock()

	st.archive = mergeByID(st.archive, dump.Archive, func(p ideation.ArchivedProject) string { return p.ID })
	st.templates = mergeByID(st.templates, dump.Templates, func(t ideation.ProjectTemplate) string { return t.ID })

	s.registry.persistArchive(ctx, st)
	s.registry.persistTemplates(ctx, st)

	s.logger.Info("ARCHIVE", "Import merged", map[string]interface{}{
		"workspace_id": workspaceID,
		"projects":     len(dump.Archive),
		"templates":    len(dump.Templates),
	})
	return &dto.ImportResponse{Projects: len(dump.Archive), Templates: len(dump.Templates)}, nil
}

// Backup uploads the current export to object storage.
func (s *archiveService) Backup(ctx context.Context, workspaceID uuid.UUID) (*dto.BackupResponse, error) {
	if s.backups == nil {
		return nil, ErrBackupDisabled
	}
	blob, err := s.Export(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("ship-export-%s.json", s.now().UTC().Format("20060102T150405Z"))
	key, err := s.backups.Put(ctx, workspaceID, name, blob)
	if err != nil {
		return nil, fmt.Errorf("upload backup: %w", err)
	}
	return &dto.BackupResponse{Key: key, Bytes: len(blob)}, nil
}

// mergeByID replaces entries of local that share an id with incoming and
// appends the rest of incoming, keeping local order.
func mergeByID[T any](local, incoming []T, id func(T) string) []T {
	index := make(map[string]int, len(incoming))
	for i, item := range incoming {
		if _, dup := index[id(item)]; !dup {
			index[id(item)] = i
		}
	}
	used := make(map[string]bool, len(incoming))
	out := make([]T, 0, len(local)+len(incoming))
	for _, item := range local {
		if i, ok := index[id(item)]; ok {
			out = append(out, incoming[i])
			used[id(item)] = true
			continue
		}
		out = append(out, item)
	}
	for _, item := range incoming {
		if !used[id(item)] {
			out = append(out, item)
			used[id(item)] = true
		}
	}
	return out
}

func projectNotFound(id string) error {
	return fmt.Errorf("project %q: %w", id, ideation.ErrNotFound)
}
