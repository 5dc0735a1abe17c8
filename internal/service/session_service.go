package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"ship-framework-be/internal/dto"
	"ship-framework-be/internal/pkg/logger"
	"ship-framework-be/internal/pkg/mailer"
	"ship-framework-be/pkg/coach"
	"ship-framework-be/pkg/events"
	"ship-framework-be/pkg/ideation"
	"ship-framework-be/pkg/llm"

	"github.com/google/uuid"
)

type ISessionService interface {
	Get(ctx context.Context, workspaceID uuid.UUID) (*dto.SessionResponse, error)
	StartNew(ctx context.Context, workspaceID uuid.UUID) (*dto.SessionResponse, error)
	StartFromTemplate(ctx context.Context, workspaceID uuid.UUID, templateID string) (*dto.SessionResponse, error)
	UpdateProject(ctx context.Context, workspaceID uuid.UUID, req *dto.UpdateProjectRequest) (*dto.SessionResponse, error)
	UpdateStepInput(ctx context.Context, workspaceID uuid.UUID, req *dto.UpdateStepInputRequest) (*dto.SessionResponse, error)
	Dictate(ctx context.Context, workspaceID uuid.UUID, req *dto.DictateRequest) (*dto.SessionResponse, error)
	MoveFocus(ctx context.Context, workspaceID uuid.UUID, delta int) (*dto.SessionResponse, error)
	RequestHelp(ctx context.Context, workspaceID uuid.UUID, index int) (*dto.HelpResponse, error)
	RestoreResponse(ctx context.Context, workspaceID uuid.UUID, req *dto.RestoreResponseRequest) (*dto.SessionResponse, error)
	ShowSummary(ctx context.Context, workspaceID uuid.UUID) (*dto.SessionResponse, error)
	HideSummary(ctx context.Context, workspaceID uuid.UUID) (*dto.SessionResponse, error)
	Save(ctx context.Context, workspaceID uuid.UUID) (*dto.SaveProjectResponse, error)
}

// streamHandle lets a reset stop the stream feeding a step.
type streamHandle struct {
	generation uint64
	cancel     context.CancelFunc
}

type sessionService struct {
	registry    *StateRegistry
	coach       *coach.Coach
	credentials *CredentialMonitor
	stream      IStreamPublisher
	events      *DomainEvents
	mailer      mailer.IEmailService
	logger      logger.ILogger
	now         func() time.Time

	inflight sync.WaitGroup
}

func NewSessionService(
	registry *StateRegistry,
	coach *coach.Coach,
	credentials *CredentialMonitor,
	stream IStreamPublisher,
	events *DomainEvents,
	mailer mailer.IEmailService,
	log logger.ILogger,
) ISessionService {
	return &sessionService{
		registry:    registry,
		coach:       coach,
		credentials: credentials,
		stream:      stream,
		events:      events,
		mailer:      mailer,
		logger:      log,
		now:         time.Now,
	}
}

func (s *sessionService) Get(ctx context.Context, workspaceID uuid.UUID) (*dto.SessionResponse, error) {
	st := s.registry.Get(ctx, workspaceID)
	st.mu.Lock()
	defer st.mu.Unlock()
	return sessionView(st), nil
}

// StartNew discards the draft, including its persisted copy. Streams still
// running against the old document are cut off.
func (s *sessionService) StartNew(ctx context.Context, workspaceID uuid.UUID) (*dto.SessionResponse, error) {
	st := s.registry.Get(ctx, workspaceID)
	st.mu.Lock()
	defer st.mu.Unlock()

	st.resetSession(ideation.NewDocument(s.registry.Definitions()))
	st.saved = false
	st.sessionUnread = false
	if err := s.registry.Store().ClearSession(ctx, workspaceID); err != nil {
		s.logPersistence("clear session", workspaceID, err)
	}
	return sessionView(st), nil
}

// StartFromTemplate starts a session holding the template inputs only. The
// project name and client profile start blank.
func (s *sessionService) StartFromTemplate(ctx context.Context, workspaceID uuid.UUID, templateID string) (*dto.SessionResponse, error) {
	st := s.registry.Get(ctx, workspaceID)
	st.mu.Lock()
	defer st.mu.Unlock()

	tpl := findTemplate(st.templates, templateID)
	if tpl == nil {
		return nil, fmt.Errorf("template %q: %w", templateID, ideation.ErrNotFound)
	}

	doc := ideation.NewDocument(s.registry.Definitions())
	for i := range doc.Steps {
		if src := tpl.Document.StepByID(doc.Steps[i].ID); src != nil {
			doc.Steps[i].DraftInput = src.DraftInput
		}
	}
	st.resetSession(doc)
	st.saved = false
	st.sessionUnread = false
	if err := s.registry.Store().SaveSession(ctx, workspaceID, doc); err != nil {
		s.logPersistence("save session", workspaceID, err)
	}
	return sessionView(st), nil
}

func (s *sessionService) UpdateProject(ctx context.Context, workspaceID uuid.UUID, req *dto.UpdateProjectRequest) (*dto.SessionResponse, error) {
	st := s.registry.Get(ctx, workspaceID)
	st.mu.Lock()
	defer st.mu.Unlock()

	st.doc.ProjectName = req.ProjectName
	st.doc.ClientProfile = ideation.ClientProfile{
		Name:    req.ClientProfile.Name,
		Company: req.ClientProfile.Company,
		Email:   req.ClientProfile.Email,
		Phone:   req.ClientProfile.Phone,
	}
	st.saved = false
	return sessionView(st), nil
}

func (s *sessionService) UpdateStepInput(ctx context.Context, workspaceID uuid.UUID, req *dto.UpdateStepInputRequest) (*dto.SessionResponse, error) {
	st := s.registry.Get(ctx, workspaceID)
	st.mu.Lock()
	defer st.mu.Unlock()

	step := st.doc.Step(req.Index)
	if step == nil {
		return nil, stepNotFound(req.Index)
	}
	step.DraftInput = req.Text
	st.focused = req.Index
	st.saved = false
	return sessionView(st), nil
}

// Dictate appends text to a step input, separated by a space when the input
// already holds something. Index voice.FocusedStep targets the focused step.
func (s *sessionService) Dictate(ctx context.Context, workspaceID uuid.UUID, req *dto.DictateRequest) (*dto.SessionResponse, error) {
	st := s.registry.Get(ctx, workspaceID)
	st.mu.Lock()
	defer st.mu.Unlock()

	index := req.Index
	if index < 0 {
		index = st.focused
	}
	step := st.doc.Step(index)
	if step == nil {
		return nil, stepNotFound(index)
	}

	text := strings.TrimSpace(req.Text)
	if strings.TrimSpace(step.DraftInput) != "" {
		step.DraftInput = step.DraftInput + " " + text
	} else {
		step.DraftInput = text
	}
	st.focused = index
	st.saved = false
	return sessionView(st), nil
}

func (s *sessionService) MoveFocus(ctx context.Context, workspaceID uuid.UUID, delta int) (*dto.SessionResponse, error) {
	st := s.registry.Get(ctx, workspaceID)
	st.mu.Lock()
	defer st.mu.Unlock()

	focused := st.focused + delta
	if focused < 0 {
		focused = 0
	}
	if last := len(st.doc.Steps) - 1; focused > last {
		focused = last
	}
	st.focused = focused
	return sessionView(st), nil
}

// RequestHelp validates the step input, opens a generation on the step and
// streams the coaching response into it in the background. Every chunk is
// applied only while the session token and the step generation captured here
// are still current.
func (s *sessionService) RequestHelp(ctx context.Context, workspaceID uuid.UUID, index int) (*dto.HelpResponse, error) {
	if err := s.credentials.Err(); err != nil {
		return nil, err
	}

	st := s.registry.Get(ctx, workspaceID)
	st.mu.Lock()

	step := st.doc.Step(index)
	if step == nil {
		st.mu.Unlock()
		return nil, stepNotFound(index)
	}
	if ok, reason := ideation.ValidateStepInput(step.DraftInput); !ok {
		st.mu.Unlock()
		return nil, &ideation.ValidationError{Fields: map[string]string{string(step.ID): reason}}
	}

	previous := strings.TrimSpace(step.CurrentResponse)
	generation, err := step.BeginGeneration(previous)
	if err != nil {
		st.mu.Unlock()
		return nil, err
	}

	req := coach.Request{
		Step:             step.ID,
		Inputs:           st.doc.Inputs(),
		PreviousResponse: previous,
		Settings:         st.settings,
	}
	streamCtx, cancel := context.WithCancel(context.Background())
	st.cancels[index] = streamHandle{generation: generation, cancel: cancel}
	st.focused = index
	st.saved = false

	base := dto.StreamEvent{
		WorkspaceID:  workspaceID,
		SessionToken: st.sessionToken,
		StepIndex:    index,
		StepID:       step.ID,
		Generation:   generation,
	}
	st.mu.Unlock()

	begin := base
	begin.Type = dto.StreamBegin
	s.stream.Publish(begin)

	s.inflight.Add(1)
	go s.consume(streamCtx, st, req, base)

	return &dto.HelpResponse{
		StepIndex:    index,
		StepID:       base.StepID,
		SessionToken: base.SessionToken,
		Generation:   generation,
	}, nil
}

func (s *sessionService) consume(ctx context.Context, st *AppState, req coach.Request, base dto.StreamEvent) {
	defer s.inflight.Done()

	var streamErr error
	for chunk, err := range s.coach.Stream(ctx, req) {
		if err != nil {
			streamErr = err
			break
		}
		if !s.applyChunk(st, base, chunk) {
			break
		}
	}

	st.mu.Lock()
	if st.sessionToken == base.SessionToken {
		if step := st.doc.Step(base.StepIndex); step != nil {
			step.EndGeneration(base.Generation)
		}
		if h, ok := st.cancels[base.StepIndex]; ok && h.generation == base.Generation {
			h.cancel()
			delete(st.cancels, base.StepIndex)
		}
	}
	st.mu.Unlock()

	if streamErr != nil && ctx.Err() == nil {
		s.credentials.Observe(streamErr)
		s.logger.Warn("SESSION", "Coaching stream failed", map[string]interface{}{
			"workspace_id": base.WorkspaceID,
			"step":         base.StepID,
			"kind":         llm.KindOf(streamErr),
			"error":        streamErr.Error(),
		})
		failed := base
		failed.Type = dto.StreamError
		failed.Error = streamErr.Error()
		failed.ErrorKind = string(llm.KindOf(streamErr))
		s.stream.Publish(failed)
	}

	end := base
	end.Type = dto.StreamEnd
	s.stream.Publish(end)
}

// applyChunk folds one chunk into the step. It reports false once the stream
// no longer belongs to the active session or generation.
func (s *sessionService) applyChunk(st *AppState, base dto.StreamEvent, chunk llm.Chunk) bool {
	citations := coach.Citations(chunk.Citations)

	st.mu.Lock()
	if st.sessionToken != base.SessionToken {
		st.mu.Unlock()
		return false
	}
	step := st.doc.Step(base.StepIndex)
	if step == nil || step.AppendChunk(base.Generation, chunk.Text, citations) != nil {
		st.mu.Unlock()
		return false
	}
	st.mu.Unlock()

	evt := base
	evt.Type = dto.StreamChunk
	evt.Text = chunk.Text
	evt.Citations = citations
	s.stream.Publish(evt)
	return true
}

func (s *sessionService) RestoreResponse(ctx context.Context, workspaceID uuid.UUID, req *dto.RestoreResponseRequest) (*dto.SessionResponse, error) {
	st := s.registry.Get(ctx, workspaceID)
	st.mu.Lock()
	defer st.mu.Unlock()

	step := st.doc.Step(req.Index)
	if step == nil {
		return nil, stepNotFound(req.Index)
	}
	if err := step.RestoreHistoryIndex(req.HistoryIndex); err != nil {
		return nil, err
	}
	st.saved = false
	return sessionView(st), nil
}

// ShowSummary opens the summary when every required field is filled. All
// failing fields are reported together.
func (s *sessionService) ShowSummary(ctx context.Context, workspaceID uuid.UUID) (*dto.SessionResponse, error) {
	st := s.registry.Get(ctx, workspaceID)
	st.mu.Lock()
	defer st.mu.Unlock()

	if verr := ideation.ValidateForSummary(st.doc); verr != nil {
		return nil, verr
	}
	st.summaryVisible = true
	return sessionView(st), nil
}

func (s *sessionService) HideSummary(ctx context.Context, workspaceID uuid.UUID) (*dto.SessionResponse, error) {
	st := s.registry.Get(ctx, workspaceID)
	st.mu.Lock()
	defer st.mu.Unlock()

	st.summaryVisible = false
	return sessionView(st), nil
}

// Save archives a snapshot of the session as a pending project, removes the
// persisted draft and starts a fresh session.
func (s *sessionService) Save(ctx context.Context, workspaceID uuid.UUID) (*dto.SaveProjectResponse, error) {
	st := s.registry.Get(ctx, workspaceID)
	st.mu.Lock()
	defer st.mu.Unlock()

	if verr := ideation.ValidateForSummary(st.doc); verr != nil {
		return nil, verr
	}

	now := s.now()
	project := ideation.NewArchivedProject(st.doc, now)
	project.ID = uniqueID(now, func(id string) bool { return findProject(st.archive, id) != nil })
	st.archive = append([]ideation.ArchivedProject{project}, st.archive...)

	s.registry.persistArchive(ctx, st)
	if err := s.registry.Store().ClearSession(ctx, workspaceID); err != nil {
		s.logPersistence("clear session", workspaceID, err)
	}

	st.resetSession(ideation.NewDocument(s.registry.Definitions()))
	st.saved = true
	st.sessionUnread = false

	s.logger.Info("SESSION", "Project archived", map[string]interface{}{
		"workspace_id": workspaceID,
		"project_id":   project.ID,
	})
	s.events.Emit(workspaceID, events.ProjectArchived, map[string]interface{}{
		"project_id": project.ID,
		"name":       project.Name,
	})
	s.mailSummary(workspaceID, project)

	return &dto.SaveProjectResponse{Project: &project, Session: sessionView(st)}, nil
}

func (s *sessionService) mailSummary(workspaceID uuid.UUID, project ideation.ArchivedProject) {
	to := strings.TrimSpace(project.Document.ClientProfile.Email)
	if s.mailer == nil || to == "" {
		return
	}
	go func() {
		if err := s.mailer.SendProjectSummary(to, project); err != nil {
			s.logger.Warn("MAILER", "Failed to send project summary", map[string]interface{}{
				"workspace_id": workspaceID,
				"project_id":   project.ID,
				"error":        err.Error(),
			})
		}
	}()
}

func (s *sessionService) logPersistence(op string, workspaceID uuid.UUID, err error) {
	s.logger.Error("PERSISTENCE", "Failed to "+op, map[string]interface{}{
		"workspace_id": workspaceID,
		"error":        err.Error(),
	})
}

// sessionView snapshots the session. Callers hold st.mu.
func sessionView(st *AppState) *dto.SessionResponse {
	return &dto.SessionResponse{
		Document:       st.doc.Clone(),
		SessionToken:   st.sessionToken,
		FocusedStep:    st.focused,
		SummaryVisible: st.summaryVisible,
		Saved:          st.saved,
		Saveable:       st.doc.IsSaveable(),
	}
}

func stepNotFound(index int) error {
	return fmt.Errorf("step %d: %w", index+1, ideation.ErrNotFound)
}

// uniqueID formats at as an id, moving forward a millisecond at a time until
// the id is free.
func uniqueID(at time.Time, taken func(string) bool) string {
	for {
		id := at.UTC().Format(ideation.IDLayout)
		if !taken(id) {
			return id
		}
		at = at.Add(time.Millisecond)
	}
}

func findProject(projects []ideation.ArchivedProject, id string) *ideation.ArchivedProject {
	for i := range projects {
		if projects[i].ID == id {
			return &projects[i]
		}
	}
	return nil
}

func findTemplate(templates []ideation.ProjectTemplate, id string) *ideation.ProjectTemplate {
	for i := range templates {
		if templates[i].ID == id {
			return &templates[i]
		}
	}
	return nil
}
