package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ship-framework-be/internal/dto"
	"ship-framework-be/pkg/ideation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryBackups struct {
	objects map[string][]byte
	err     error
}

func (m *memoryBackups) Put(_ context.Context, workspaceID uuid.UUID, name string, content []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	key := workspaceID.String() + "/" + name
	m.objects[key] = content
	return key, nil
}

func archiveWithProject(t *testing.T) (*harness, IArchiveService, string) {
	t.Helper()
	h := newHarness(t)
	h.fill(t)
	saved, err := h.session.Save(context.Background(), h.ws)
	require.NoError(t, err)
	return h, NewArchiveService(h.registry, NewDomainEvents(nil, h.log), nil, h.log), saved.Project.ID
}

func TestArchiveListAndStatus(t *testing.T) {
	ctx := context.Background()
	h, svc, id := archiveWithProject(t)

	list, err := svc.List(ctx, h.ws)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Ana", list[0].ClientName)
	assert.Equal(t, ideation.StatusPending, list[0].Status)

	updated, err := svc.UpdateStatus(ctx, h.ws, id, &dto.UpdateStatusRequest{Status: "success"})
	require.NoError(t, err)
	assert.Equal(t, ideation.StatusSuccess, updated.Status)

	stored, _, err := h.store.LoadArchive(ctx, h.ws)
	require.NoError(t, err)
	assert.Equal(t, ideation.StatusSuccess, stored[0].Status)

	_, err = svc.UpdateStatus(ctx, h.ws, id, &dto.UpdateStatusRequest{Status: "archived"})
	var verr *ideation.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = svc.UpdateStatus(ctx, h.ws, "nope", &dto.UpdateStatusRequest{Status: "failed"})
	assert.ErrorIs(t, err, ideation.ErrNotFound)
}

func TestArchiveGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	h, svc, id := archiveWithProject(t)

	p, err := svc.Get(ctx, h.ws, id)
	require.NoError(t, err)
	p.Document.Steps[0].DraftInput = "cambiado"

	again, err := svc.Get(ctx, h.ws, id)
	require.NoError(t, err)
	assert.Equal(t, longInput, again.Document.Steps[0].DraftInput)
}

func TestArchiveDelete(t *testing.T) {
	ctx := context.Background()
	h, svc, id := archiveWithProject(t)

	require.NoError(t, svc.Delete(ctx, h.ws, id))
	assert.ErrorIs(t, svc.Delete(ctx, h.ws, id), ideation.ErrNotFound)

	list, err := svc.List(ctx, h.ws)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestArchiveSaveAsTemplate(t *testing.T) {
	ctx := context.Background()
	h, svc, id := archiveWithProject(t)
	templates := NewTemplateService(h.registry, NewDomainEvents(nil, h.log), h.log)

	before, err := templates.List(ctx, h.ws)
	require.NoError(t, err)

	tpl, err := svc.SaveAsTemplate(ctx, h.ws, id, &dto.CreateTemplateRequest{})
	require.NoError(t, err)
	assert.Equal(t, "Plantilla de Reservas fáciles", tpl.Name)
	assert.Equal(t, longInput, tpl.Inputs[string(ideation.StepProblem)])

	after, err := templates.List(ctx, h.ws)
	require.NoError(t, err)
	assert.Len(t, after, len(before)+1)
}

func TestArchiveExportImport(t *testing.T) {
	ctx := context.Background()
	h, svc, id := archiveWithProject(t)

	blob, err := svc.Export(ctx, h.ws)
	require.NoError(t, err)

	other := uuid.New()
	res, err := svc.Import(ctx, other, blob)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Projects)

	p, err := svc.Get(ctx, other, id)
	require.NoError(t, err)
	assert.Equal(t, "Reservas fáciles", p.Name)

	// importing twice merges by id
	_, err = svc.Import(ctx, other, blob)
	require.NoError(t, err)
	list, _ := svc.List(ctx, other)
	assert.Len(t, list, 1)

	_, err = svc.Import(ctx, other, []byte(`{"nope":`))
	var verr *ideation.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestArchiveBackup(t *testing.T) {
	ctx := context.Background()
	h, svc, _ := archiveWithProject(t)

	_, err := svc.Backup(ctx, h.ws)
	assert.ErrorIs(t, err, ErrBackupDisabled)

	backups := &memoryBackups{objects: map[string][]byte{}}
	withBackups := NewArchiveService(h.registry, NewDomainEvents(nil, h.log), backups, h.log).(*archiveService)
	withBackups.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }

	res, err := withBackups.Backup(ctx, h.ws)
	require.NoError(t, err)
	assert.Equal(t, h.ws.String()+"/ship-export-20250102T030405Z.json", res.Key)
	assert.Equal(t, len(backups.objects[res.Key]), res.Bytes)

	backups.err = errors.New("bucket gone")
	_, err = withBackups.Backup(ctx, h.ws)
	assert.Error(t, err)
}

func TestMergeByID(t *testing.T) {
	type item struct{ id, v string }
	id := func(i item) string { return i.id }

	got := mergeByID(
		[]item{{"a", "old"}, {"b", "old"}},
		[]item{{"b", "new"}, {"c", "new"}, {"c", "dup"}},
		id,
	)
	assert.Equal(t, []item{{"a", "old"}, {"b", "new"}, {"c", "new"}}, got)
}
