package service

import (
	"context"
	"errors"
	"sync"

	"ship-framework-be/internal/pkg/logger"
	"ship-framework-be/internal/repository"
	"ship-framework-be/pkg/ideation"

	"github.com/google/uuid"
)

// AppState is everything a workspace has in memory. The persisted
// collections are loaded on first use and then mirrored to storage on every
// change. All fields are guarded by mu.
//
// A record whose read failed stays "unread": it is read again on the next
// Get and is never written until that read succeeds, so a storage outage
// cannot replace stored data with the in-memory placeholder. A record whose
// write failed stays "dirty" until the next auto-save writes it.
type AppState struct {
	WorkspaceID uuid.UUID

	mu             sync.Mutex
	loaded         bool
	doc            *ideation.StepDocument
	sessionToken   uint64
	focused        int
	summaryVisible bool
	saved          bool
	settings       ideation.Settings
	archive        []ideation.ArchivedProject
	templates      []ideation.ProjectTemplate
	cancels        map[int]streamHandle

	sessionUnread   bool
	settingsUnread  bool
	archiveUnread   bool
	templatesUnread bool
	// placeholder templates shown while the stored ones are unread
	fallbackTemplates []ideation.ProjectTemplate

	settingsDirty  bool
	archiveDirty   bool
	templatesDirty bool
}

// resetSession replaces the document and invalidates every stream started
// against the previous one. Callers hold mu.
func (s *AppState) resetSession(doc *ideation.StepDocument) {
	for idx, h := range s.cancels {
		h.cancel()
		delete(s.cancels, idx)
	}
	s.doc = doc
	s.sessionToken++
	s.focused = 0
	s.summaryVisible = false
}

func (s *AppState) pendingReads() bool {
	return s.sessionUnread || s.settingsUnread || s.archiveUnread || s.templatesUnread
}

// StateRegistry owns the AppState of every workspace seen since start.
type StateRegistry struct {
	mu        sync.Mutex
	states    map[uuid.UUID]*AppState
	store     *repository.WorkspaceStore
	defs      []ideation.Definition
	preloaded func() ([]ideation.ProjectTemplate, error)
	logger    logger.ILogger
}

func NewStateRegistry(
	store *repository.WorkspaceStore,
	defs []ideation.Definition,
	preloaded func() ([]ideation.ProjectTemplate, error),
	log logger.ILogger,
) *StateRegistry {
	return &StateRegistry{
		states:    make(map[uuid.UUID]*AppState),
		store:     store,
		defs:      defs,
		preloaded: preloaded,
		logger:    log,
	}
}

// Get returns the state of workspaceID, loading it from storage on first use
// and retrying any record whose earlier read failed.
func (r *StateRegistry) Get(ctx context.Context, workspaceID uuid.UUID) *AppState {
	r.mu.Lock()
	st, ok := r.states[workspaceID]
	if !ok {
		st = &AppState{WorkspaceID: workspaceID, cancels: make(map[int]streamHandle)}
		r.states[workspaceID] = st
	}
	r.mu.Unlock()

	st.mu.Lock()
	if !st.loaded {
		r.load(ctx, st)
	} else if st.pendingReads() {
		r.readPending(ctx, st)
	}
	st.mu.Unlock()
	return st
}

// Loaded returns every state loaded so far.
func (r *StateRegistry) Loaded() []*AppState {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*AppState, 0, len(r.states))
	for _, st := range r.states {
		out = append(out, st)
	}
	return out
}

func (r *StateRegistry) Definitions() []ideation.Definition {
	return r.defs
}

func (r *StateRegistry) Store() *repository.WorkspaceStore {
	return r.store
}

// load installs defaults and then runs the fixed initialization order:
// settings, archive, templates, draft session. Callers hold st.mu.
func (r *StateRegistry) load(ctx context.Context, st *AppState) {
	details := map[string]interface{}{"workspace_id": st.WorkspaceID}

	st.loaded = true
	st.settings = ideation.DefaultSettings()
	st.archive = []ideation.ArchivedProject{}
	st.fallbackTemplates = r.preloadedTemplates(details)
	st.templates = append([]ideation.ProjectTemplate{}, st.fallbackTemplates...)
	st.doc = ideation.Reconcile(r.defs, nil)
	st.sessionToken = 1
	st.sessionUnread, st.settingsUnread, st.archiveUnread, st.templatesUnread = true, true, true, true

	r.readPending(ctx, st)

	r.logger.Info("STATE", "Workspace state ready", map[string]interface{}{
		"workspace_id": st.WorkspaceID,
		"archive":      len(st.archive),
		"templates":    len(st.templates),
		"pristine":     st.doc.IsPristine(),
		"unread":       st.pendingReads(),
	})
}

// readPending reads every record still marked unread. Callers hold st.mu.
func (r *StateRegistry) readPending(ctx context.Context, st *AppState) {
	if st.settingsUnread {
		r.readSettings(ctx, st)
	}
	if st.archiveUnread {
		r.readArchive(ctx, st)
	}
	if st.templatesUnread {
		r.readTemplates(ctx, st)
	}
	if st.sessionUnread {
		r.readSession(ctx, st)
	}
}

// readSettings adopts the stored settings unless the workspace changed them
// while they were unread, in which case the local copy is written instead.
func (r *StateRegistry) readSettings(ctx context.Context, st *AppState) {
	stored, _, err := r.store.LoadSettings(ctx, st.WorkspaceID)
	if err != nil {
		r.logger.Warn("STATE", "Failed to read settings, will retry", r.details(st, err))
		return
	}
	st.settingsUnread = false
	if st.settingsDirty {
		r.persistSettings(ctx, st)
		return
	}
	st.settings = stored
}

// readArchive merges the stored archive under the projects archived while it
// was unread. A damaged record is replaced by an empty archive.
func (r *StateRegistry) readArchive(ctx context.Context, st *AppState) {
	stored, _, err := r.store.LoadArchive(ctx, st.WorkspaceID)
	if err != nil && !errors.Is(err, repository.ErrDamagedRecord) {
		r.logger.Warn("STATE", "Failed to read archive, will retry", r.details(st, err))
		return
	}
	if err != nil {
		r.logger.Warn("STATE", "Archive record is damaged, starting empty", r.details(st, err))
	}
	st.archiveUnread = false
	added := len(st.archive) > 0
	st.archive = appendMissing(st.archive, stored, func(p ideation.ArchivedProject) string { return p.ID })
	if added || st.archiveDirty {
		r.persistArchive(ctx, st)
	}
}

// readTemplates swaps the placeholder templates for the stored ones and keeps
// the templates created meanwhile. Preloaded templates are persisted on first
// run only; a damaged record shows them without overwriting it.
func (r *StateRegistry) readTemplates(ctx context.Context, st *AppState) {
	stored, found, err := r.store.LoadTemplates(ctx, st.WorkspaceID)
	if err != nil && !errors.Is(err, repository.ErrDamagedRecord) {
		r.logger.Warn("STATE", "Failed to read templates, will retry", r.details(st, err))
		return
	}
	if err != nil {
		r.logger.Warn("STATE", "Templates record is damaged, using preloaded templates", r.details(st, err))
	}

	placeholder := make(map[string]bool, len(st.fallbackTemplates))
	for _, t := range st.fallbackTemplates {
		placeholder[t.ID] = true
	}
	var created []ideation.ProjectTemplate
	for _, t := range st.templates {
		if !placeholder[t.ID] {
			created = append(created, t)
		}
	}

	base := stored
	if err != nil || !found {
		base = st.fallbackTemplates
	}
	st.templatesUnread = false
	st.fallbackTemplates = nil
	st.templates = appendMissing(append([]ideation.ProjectTemplate{}, base...), created, func(t ideation.ProjectTemplate) string { return t.ID })
	if (!found && err == nil) || len(created) > 0 || st.templatesDirty {
		r.persistTemplates(ctx, st)
	}
}

// readSession adopts the stored draft only while the local one is untouched.
func (r *StateRegistry) readSession(ctx context.Context, st *AppState) {
	partial, err := r.store.LoadSession(ctx, st.WorkspaceID)
	if err != nil {
		r.logger.Warn("STATE", "Failed to read draft session, will retry", r.details(st, err))
		return
	}
	st.sessionUnread = false
	if st.doc.IsPristine() {
		st.doc = ideation.Reconcile(r.defs, partial)
	}
}

// persistArchive mirrors st.archive to storage. Callers hold st.mu. Failures
// are logged and left for the next auto-save.
func (r *StateRegistry) persistArchive(ctx context.Context, st *AppState) {
	st.archiveDirty = true
	if st.archiveUnread {
		return
	}
	if err := r.store.SaveArchive(ctx, st.WorkspaceID, st.archive); err != nil {
		r.logger.Error("PERSISTENCE", "Failed to save archive", r.details(st, err))
		return
	}
	st.archiveDirty = false
}

// persistTemplates mirrors st.templates to storage. Callers hold st.mu.
func (r *StateRegistry) persistTemplates(ctx context.Context, st *AppState) {
	st.templatesDirty = true
	if st.templatesUnread {
		return
	}
	if err := r.store.SaveTemplates(ctx, st.WorkspaceID, st.templates); err != nil {
		r.logger.Error("PERSISTENCE", "Failed to save templates", r.details(st, err))
		return
	}
	st.templatesDirty = false
}

// persistSettings mirrors st.settings to storage. Callers hold st.mu.
func (r *StateRegistry) persistSettings(ctx context.Context, st *AppState) {
	st.settingsDirty = true
	if st.settingsUnread {
		return
	}
	if err := r.store.SaveSettings(ctx, st.WorkspaceID, st.settings); err != nil {
		r.logger.Error("PERSISTENCE", "Failed to save settings", r.details(st, err))
		return
	}
	st.settingsDirty = false
}

// flushPending retries reads that failed and writes that failed. It reports
// whether the draft session may be written. Callers hold st.mu.
func (r *StateRegistry) flushPending(ctx context.Context, st *AppState) bool {
	if !st.loaded {
		return false
	}
	if st.pendingReads() {
		r.readPending(ctx, st)
	}
	if st.settingsDirty {
		r.persistSettings(ctx, st)
	}
	if st.archiveDirty {
		r.persistArchive(ctx, st)
	}
	if st.templatesDirty {
		r.persistTemplates(ctx, st)
	}
	return !st.sessionUnread
}

func (r *StateRegistry) preloadedTemplates(details map[string]interface{}) []ideation.ProjectTemplate {
	if r.preloaded == nil {
		return []ideation.ProjectTemplate{}
	}
	templates, err := r.preloaded()
	if err != nil {
		r.logger.Error("STATE", "Failed to parse preloaded templates", withError(details, err))
		return []ideation.ProjectTemplate{}
	}
	return templates
}

func (r *StateRegistry) details(st *AppState, err error) map[string]interface{} {
	return withError(map[string]interface{}{"workspace_id": st.WorkspaceID}, err)
}

// appendMissing appends the entries of src whose id is not in dst yet.
func appendMissing[T any](dst, src []T, id func(T) string) []T {
	seen := make(map[string]bool, len(dst))
	for _, item := range dst {
		seen[id(item)] = true
	}
	for _, item := range src {
		if !seen[id(item)] {
			dst = append(dst, item)
			seen[id(item)] = true
		}
	}
	return dst
}

func withError(details map[string]interface{}, err error) map[string]interface{} {
	out := make(map[string]interface{}, len(details)+1)
	for k, v := range details {
		out[k] = v
	}
	out["error"] = err.Error()
	return out
}
