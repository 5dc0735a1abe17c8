package service

import (
	"context"
	"time"

	"ship-framework-be/internal/dto"
	"ship-framework-be/internal/pkg/logger"
	"ship-framework-be/internal/pkg/serverutils"
	"ship-framework-be/pkg/llm"

	"github.com/google/uuid"
)

type IWorkspaceService interface {
	Create(ctx context.Context) (*dto.CreateWorkspaceResponse, error)
	Status(ctx context.Context, workspaceID uuid.UUID) (*dto.WorkspaceStatusResponse, error)
}

type workspaceService struct {
	tokens      *serverutils.TokenIssuer
	credentials *CredentialMonitor
	autosave    IAutoSaveService
	logger      logger.ILogger
	now         func() time.Time
}

func NewWorkspaceService(tokens *serverutils.TokenIssuer, credentials *CredentialMonitor, autosave IAutoSaveService, log logger.ILogger) IWorkspaceService {
	return &workspaceService{
		tokens:      tokens,
		credentials: credentials,
		autosave:    autosave,
		logger:      log,
		now:         time.Now,
	}
}

// Create opens a new workspace. The workspace has no stored records until
// something is written to it.
func (s *workspaceService) Create(ctx context.Context) (*dto.CreateWorkspaceResponse, error) {
	workspaceID := uuid.New()
	token, expiresAt, err := s.tokens.Issue(workspaceID, s.now())
	if err != nil {
		return nil, err
	}
	s.logger.Info("WORKSPACE", "Workspace created", map[string]interface{}{"workspace_id": workspaceID})
	return &dto.CreateWorkspaceResponse{WorkspaceID: workspaceID, Token: token, ExpiresAt: expiresAt}, nil
}

func (s *workspaceService) Status(ctx context.Context, workspaceID uuid.UUID) (*dto.WorkspaceStatusResponse, error) {
	status := s.credentials.Status()
	resp := &dto.WorkspaceStatusResponse{
		WorkspaceID:      workspaceID,
		Credential:       status,
		CredentialOK:     status == "ok",
		Provider:         s.credentials.Provider(),
		AutoSaveInterval: s.autosave.Interval().String(),
	}
	switch llm.Kind(status) {
	case llm.KindMissingCredential:
		resp.Remediation = serverutils.MessageCredentialMissing
	case llm.KindInvalidCredential:
		resp.Remediation = serverutils.MessageCredentialInvalid
	}
	if at, ok := s.autosave.LastRun(); ok {
		resp.LastAutoSaveAt = &at
	}
	return resp, nil
}
