package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ship-framework-be/internal/pkg/serverutils"
	"ship-framework-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspaceCreate(t *testing.T) {
	h := newHarness(t)
	tokens := serverutils.NewTokenIssuer("secret", time.Hour)
	svc := NewWorkspaceService(tokens, h.credentials, NewAutoSaveService(h.registry, time.Minute, h.log), h.log)

	created, err := svc.Create(context.Background())
	require.NoError(t, err)

	parsed, err := tokens.Parse(created.Token)
	require.NoError(t, err)
	assert.Equal(t, created.WorkspaceID, parsed)
	assert.True(t, created.ExpiresAt.After(time.Now()))
}

func TestWorkspaceStatus(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	autosave := NewAutoSaveService(h.registry, 90*time.Second, h.log)
	svc := NewWorkspaceService(serverutils.NewTokenIssuer("secret", time.Hour), h.credentials, autosave, h.log)

	status, err := svc.Status(ctx, h.ws)
	require.NoError(t, err)
	assert.True(t, status.CredentialOK)
	assert.Equal(t, "fake", status.Provider)
	assert.Equal(t, "1m30s", status.AutoSaveInterval)
	assert.Nil(t, status.LastAutoSaveAt)

	missing := llm.Unavailable{Err: llm.NewError(llm.KindMissingCredential, "gemini", errors.New("GOOGLE_GEMINI_API_KEY is empty"))}
	blocked := NewWorkspaceService(
		serverutils.NewTokenIssuer("secret", time.Hour),
		NewCredentialMonitor(llm.Wrap(missing, llm.WithLogging(h.log)), h.log),
		autosave,
		h.log,
	)
	autosave.Flush(ctx)

	status, err = blocked.Status(ctx, h.ws)
	require.NoError(t, err)
	assert.False(t, status.CredentialOK)
	assert.Equal(t, string(llm.KindMissingCredential), status.Credential)
	assert.Equal(t, serverutils.MessageCredentialMissing, status.Remediation)
	assert.NotNil(t, status.LastAutoSaveAt)
}
