package service

import (
	"context"
	"sync"
	"time"

	"ship-framework-be/internal/pkg/logger"

	"github.com/google/uuid"
)

type IAutoSaveService interface {
	// Start runs the periodic save until ctx is done.
	Start(ctx context.Context)
	// Flush writes every non-pristine session now.
	Flush(ctx context.Context) int
	LastRun() (time.Time, bool)
	Interval() time.Duration
}

type autoSaveService struct {
	registry *StateRegistry
	interval time.Duration
	logger   logger.ILogger
	now      func() time.Time

	mu      sync.RWMutex
	lastRun time.Time
}

func NewAutoSaveService(registry *StateRegistry, interval time.Duration, log logger.ILogger) IAutoSaveService {
	return &autoSaveService{registry: registry, interval: interval, logger: log, now: time.Now}
}

func (s *autoSaveService) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("AUTOSAVE", "Auto-save started", map[string]interface{}{"interval": s.interval.String()})
	for {
		select {
		case <-ctx.Done():
			// last chance for drafts typed since the previous tick
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			s.Flush(flushCtx)
			cancel()
			s.logger.Info("AUTOSAVE", "Auto-save stopped", nil)
			return
		case <-ticker.C:
			s.Flush(ctx)
		}
	}
}

// Flush persists every loaded session holding user content and retries
// collection writes that failed earlier. Pristine sessions are skipped so an
// untouched workspace never gets a draft record.
func (s *autoSaveService) Flush(ctx context.Context) int {
	saved := 0
	for _, st := range s.registry.Loaded() {
		if s.saveOne(ctx, st) {
			saved++
		}
	}

	s.mu.Lock()
	s.lastRun = s.now()
	s.mu.Unlock()

	if saved > 0 {
		s.logger.Debug("AUTOSAVE", "Drafts saved", map[string]interface{}{"count": saved})
	}
	return saved
}

func (s *autoSaveService) saveOne(ctx context.Context, st *AppState) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if !s.registry.flushPending(ctx, st) {
		return false
	}
	if st.doc == nil || st.doc.IsPristine() {
		return false
	}
	// Save clears the record under the same lock.
	if err := s.registry.Store().SaveSession(ctx, st.WorkspaceID, st.doc); err != nil {
		s.logFailure(st.WorkspaceID, err)
		return false
	}
	return true
}

func (s *autoSaveService) logFailure(workspaceID uuid.UUID, err error) {
	s.logger.Error("AUTOSAVE", "Failed to save draft", map[string]interface{}{
		"workspace_id": workspaceID,
		"error":        err.Error(),
	})
}

func (s *autoSaveService) LastRun() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRun, !s.lastRun.IsZero()
}

func (s *autoSaveService) Interval() time.Duration {
	return s.interval
}
