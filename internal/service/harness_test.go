package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"ship-framework-be/internal/dto"
	"ship-framework-be/internal/pkg/logger"
	"ship-framework-be/internal/repository"
	"ship-framework-be/internal/repository/contract"
	"ship-framework-be/internal/repository/memory"
	"ship-framework-be/pkg/coach"
	"ship-framework-be/pkg/ideation"
	"ship-framework-be/pkg/ideation/templates"
	"ship-framework-be/pkg/llm/fake"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

const longInput = "Los restaurantes pequeños pierden clientes porque no gestionan bien sus reservas."

type recordingPublisher struct {
	mu     sync.Mutex
	events []dto.StreamEvent
}

func (r *recordingPublisher) Publish(evt dto.StreamEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recordingPublisher) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func (r *recordingPublisher) Last() dto.StreamEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

var errStorage = errors.New("storage unavailable")

// flakyBlobs wraps a blob repository and fails reads or writes of chosen
// keys until they are healed.
type flakyBlobs struct {
	contract.BlobRepository

	mu         sync.Mutex
	brokenGets map[string]bool
	brokenPuts map[string]bool
	puts       map[string]int
}

func newFlakyBlobs(inner contract.BlobRepository) *flakyBlobs {
	return &flakyBlobs{
		BlobRepository: inner,
		brokenGets:     make(map[string]bool),
		brokenPuts:     make(map[string]bool),
		puts:           make(map[string]int),
	}
}

func (f *flakyBlobs) BreakGets(key string, broken bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.brokenGets[key] = broken
}

func (f *flakyBlobs) BreakPuts(key string, broken bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.brokenPuts[key] = broken
}

// Puts returns how many writes of key were attempted.
func (f *flakyBlobs) Puts(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.puts[key]
}

func (f *flakyBlobs) Get(ctx context.Context, workspaceID uuid.UUID, key string) ([]byte, error) {
	f.mu.Lock()
	broken := f.brokenGets[key]
	f.mu.Unlock()
	if broken {
		return nil, errStorage
	}
	return f.BlobRepository.Get(ctx, workspaceID, key)
}

func (f *flakyBlobs) Put(ctx context.Context, workspaceID uuid.UUID, key string, value []byte) error {
	f.mu.Lock()
	f.puts[key]++
	broken := f.brokenPuts[key]
	f.mu.Unlock()
	if broken {
		return errStorage
	}
	return f.BlobRepository.Put(ctx, workspaceID, key, value)
}

// recordingLogger keeps "MODULE level: message" lines.
type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) add(level, module, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, module+" "+level+": "+message)
}

func (l *recordingLogger) Debug(module, message string, _ map[string]interface{}) {
	l.add("debug", module, message)
}

func (l *recordingLogger) Info(module, message string, _ map[string]interface{}) {
	l.add("info", module, message)
}

func (l *recordingLogger) Warn(module, message string, _ map[string]interface{}) {
	l.add("warn", module, message)
}

func (l *recordingLogger) Error(module, message string, _ map[string]interface{}) {
	l.add("error", module, message)
}

func (l *recordingLogger) Sync() error { return nil }

func (l *recordingLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string{}, l.lines...)
}

type harness struct {
	ws          uuid.UUID
	provider    *fake.Provider
	blobs       *flakyBlobs
	store       *repository.WorkspaceStore
	registry    *StateRegistry
	credentials *CredentialMonitor
	stream      *recordingPublisher
	session     *sessionService
	log         logger.ILogger
}

func newHarness(t *testing.T, chunks ...string) *harness {
	t.Helper()
	log := logger.NewNopLogger()
	defs := ideation.Canonical()
	blobs := newFlakyBlobs(memory.NewBlobRepository())
	store := repository.NewWorkspaceStore(blobs, defs)
	registry := NewStateRegistry(store, defs, func() ([]ideation.ProjectTemplate, error) {
		return templates.Preloaded(defs)
	}, log)

	provider := fake.New(chunks...)
	credentials := NewCredentialMonitor(provider, log)
	stream := &recordingPublisher{}
	session := NewSessionService(registry, coach.New(provider), credentials, stream, NewDomainEvents(nil, log), nil, log)

	return &harness{
		ws:          uuid.New(),
		provider:    provider,
		blobs:       blobs,
		store:       store,
		registry:    registry,
		credentials: credentials,
		stream:      stream,
		session:     session.(*sessionService),
		log:         log,
	}
}

func (h *harness) fill(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := h.session.UpdateProject(ctx, h.ws, &dto.UpdateProjectRequest{
		ProjectName:   "Reservas fáciles",
		ClientProfile: dto.UpdateProfileRequest{Name: "Ana", Company: "Cocina SA"},
	})
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, err := h.session.UpdateStepInput(ctx, h.ws, &dto.UpdateStepInputRequest{
			Index: i,
			Text:  longInput + strings.Repeat(" paso", i),
		})
		require.NoError(t, err)
	}
}

// wait blocks until every background stream has finished.
func (h *harness) wait() {
	h.session.inflight.Wait()
}
