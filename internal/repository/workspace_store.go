package repository

import (
	"context"
	"errors"
	"fmt"

	"ship-framework-be/internal/repository/contract"
	"ship-framework-be/pkg/ideation"

	"github.com/google/uuid"
)

// Storage keys of a workspace. They match the keys used by the browser
// version of the product so exported local storage can be loaded as is.
const (
	KeySession   = "ship-framework-data"
	KeyArchive   = "ship-framework-archive"
	KeyTemplates = "ship-framework-templates"
	KeySettings  = "ship-framework-settings"
)

// ErrDamagedRecord marks a record that was read but could not be decoded.
// Any other load error means storage itself could not be reached.
var ErrDamagedRecord = errors.New("damaged record")

// WorkspaceStore reads and writes the four persisted records of a workspace.
// Load methods report found=false when a key was never written.
type WorkspaceStore struct {
	blobs contract.BlobRepository
	defs  []ideation.Definition
}

func NewWorkspaceStore(blobs contract.BlobRepository, defs []ideation.Definition) *WorkspaceStore {
	return &WorkspaceStore{blobs: blobs, defs: defs}
}

// LoadSession returns the persisted draft, or nil when there is none or the
// blob is not an object.
func (s *WorkspaceStore) LoadSession(ctx context.Context, workspaceID uuid.UUID) (*ideation.PartialDocument, error) {
	blob, err := s.blobs.Get(ctx, workspaceID, KeySession)
	if err != nil || blob == nil {
		return nil, err
	}
	return ideation.DecodePartial(blob), nil
}

func (s *WorkspaceStore) SaveSession(ctx context.Context, workspaceID uuid.UUID, doc *ideation.StepDocument) error {
	blob, err := ideation.EncodeDocument(doc)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.blobs.Put(ctx, workspaceID, KeySession, blob)
}

func (s *WorkspaceStore) ClearSession(ctx context.Context, workspaceID uuid.UUID) error {
	return s.blobs.Delete(ctx, workspaceID, KeySession)
}

func (s *WorkspaceStore) LoadArchive(ctx context.Context, workspaceID uuid.UUID) ([]ideation.ArchivedProject, bool, error) {
	blob, err := s.blobs.Get(ctx, workspaceID, KeyArchive)
	if err != nil || blob == nil {
		return nil, false, err
	}
	projects, err := ideation.DecodeArchive(s.defs, blob)
	if err != nil {
		return nil, true, fmt.Errorf("%w: %v", ErrDamagedRecord, err)
	}
	return projects, true, nil
}

func (s *WorkspaceStore) SaveArchive(ctx context.Context, workspaceID uuid.UUID, projects []ideation.ArchivedProject) error {
	blob, err := ideation.EncodeArchive(projects)
	if err != nil {
		return fmt.Errorf("encode archive: %w", err)
	}
	return s.blobs.Put(ctx, workspaceID, KeyArchive, blob)
}

func (s *WorkspaceStore) LoadTemplates(ctx context.Context, workspaceID uuid.UUID) ([]ideation.ProjectTemplate, bool, error) {
	blob, err := s.blobs.Get(ctx, workspaceID, KeyTemplates)
	if err != nil || blob == nil {
		return nil, false, err
	}
	templates, err := ideation.DecodeTemplates(s.defs, blob)
	if err != nil {
		return nil, true, fmt.Errorf("%w: %v", ErrDamagedRecord, err)
	}
	return templates, true, nil
}

func (s *WorkspaceStore) SaveTemplates(ctx context.Context, workspaceID uuid.UUID, templates []ideation.ProjectTemplate) error {
	blob, err := ideation.EncodeTemplates(templates)
	if err != nil {
		return fmt.Errorf("encode templates: %w", err)
	}
	return s.blobs.Put(ctx, workspaceID, KeyTemplates, blob)
}

// LoadSettings falls back to defaults for an absent or damaged record.
func (s *WorkspaceStore) LoadSettings(ctx context.Context, workspaceID uuid.UUID) (ideation.Settings, bool, error) {
	blob, err := s.blobs.Get(ctx, workspaceID, KeySettings)
	if err != nil || blob == nil {
		return ideation.DefaultSettings(), false, err
	}
	return ideation.DecodeSettings(blob), true, nil
}

func (s *WorkspaceStore) SaveSettings(ctx context.Context, workspaceID uuid.UUID, settings ideation.Settings) error {
	blob, err := ideation.EncodeSettings(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return s.blobs.Put(ctx, workspaceID, KeySettings, blob)
}
