package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"ship-framework-be/internal/dto"
	"ship-framework-be/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoSaveFlush(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	svc := NewAutoSaveService(h.registry, time.Minute, h.log)

	pristine := uuid.New()
	h.registry.Get(ctx, pristine)

	_, err := h.session.UpdateStepInput(ctx, h.ws, &dto.UpdateStepInputRequest{Index: 1, Text: "borrador"})
	require.NoError(t, err)

	_, ok := svc.LastRun()
	assert.False(t, ok)

	assert.Equal(t, 1, svc.Flush(ctx))

	blob, err := h.blobs.Get(ctx, pristine, repository.KeySession)
	require.NoError(t, err)
	assert.Nil(t, blob)

	draft, err := h.store.LoadSession(ctx, h.ws)
	require.NoError(t, err)
	require.NotNil(t, draft)
	require.Len(t, draft.Steps, 4)
	require.NotNil(t, draft.Steps[1].DraftInput)
	assert.Equal(t, "borrador", *draft.Steps[1].DraftInput)

	_, ok = svc.LastRun()
	assert.True(t, ok)
}

func TestAutoSaveStopsWithContext(t *testing.T) {
	h := newHarness(t)
	svc := NewAutoSaveService(h.registry, 10*time.Millisecond, h.log)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		_, ok := svc.LastRun()
		return ok
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("auto-save did not stop")
	}
}

func TestAutoSaveKeepsRunningAfterWriteFailure(t *testing.T) {
	h := newHarness(t)
	log := &recordingLogger{}
	svc := NewAutoSaveService(h.registry, 10*time.Millisecond, log)

	bg := context.Background()
	_, err := h.session.UpdateStepInput(bg, h.ws, &dto.UpdateStepInputRequest{Index: 2, Text: "borrador"})
	require.NoError(t, err)
	h.blobs.BreakPuts(repository.KeySession, true)

	ctx, cancel := context.WithCancel(bg)
	done := make(chan struct{})
	go func() {
		svc.Start(ctx)
		close(done)
	}()
	defer func() {
		cancel()
		<-done
	}()

	require.Eventually(t, func() bool {
		return h.blobs.Puts(repository.KeySession) >= 2
	}, time.Second, 5*time.Millisecond)

	draft, err := h.store.LoadSession(bg, h.ws)
	require.NoError(t, err)
	assert.Nil(t, draft)

	failures := 0
	for _, line := range log.Lines() {
		if strings.HasPrefix(line, "AUTOSAVE error:") {
			failures++
		}
	}
	assert.GreaterOrEqual(t, failures, 2)

	h.blobs.BreakPuts(repository.KeySession, false)
	require.Eventually(t, func() bool {
		draft, err := h.store.LoadSession(bg, h.ws)
		return err == nil && draft != nil && draft.Steps[2].DraftInput != nil && *draft.Steps[2].DraftInput == "borrador"
	}, time.Second, 5*time.Millisecond)
}
