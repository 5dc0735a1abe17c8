package service

import (
	"context"

	"ship-framework-be/internal/dto"
	"ship-framework-be/internal/pkg/logger"
	"ship-framework-be/pkg/voice"

	"github.com/google/uuid"
)

// Client actions returned with a voice command. The server cannot switch
// views or produce the PDF, so these are left to the client.
const (
	ActionSwitchView  = "switch_view"
	ActionDownloadPDF = "download_pdf"
)

type IVoiceService interface {
	Command(ctx context.Context, workspaceID uuid.UUID, req *dto.VoiceCommandRequest) (*dto.VoiceCommandResponse, error)
}

type voiceService struct {
	registry *StateRegistry
	session  ISessionService
	logger   logger.ILogger
}

func NewVoiceService(registry *StateRegistry, session ISessionService, log logger.ILogger) IVoiceService {
	return &voiceService{registry: registry, session: session, logger: log}
}

// Command interprets a transcript in the context of the client view and the
// session, and applies it through the same operations the HTTP surface uses.
func (s *voiceService) Command(ctx context.Context, workspaceID uuid.UUID, req *dto.VoiceCommandRequest) (*dto.VoiceCommandResponse, error) {
	view, _ := voice.ParseView(req.View)

	st := s.registry.Get(ctx, workspaceID)
	st.mu.Lock()
	vctx := voice.Context{
		View:           view,
		SummaryVisible: st.summaryVisible,
		Saveable:       st.doc.IsSaveable(),
		StepCount:      len(st.doc.Steps),
	}
	focused := st.focused
	st.mu.Unlock()

	cmd, ok := voice.Interpret(req.Transcript, vctx)
	resp := &dto.VoiceCommandResponse{Recognized: ok, Feedback: voice.Feedback(cmd, ok)}
	if !ok {
		return resp, nil
	}
	resp.Command = &cmd

	s.logger.Debug("VOICE", "Command recognized", map[string]interface{}{
		"workspace_id": workspaceID,
		"kind":         cmd.Kind,
		"view":         view,
	})

	var (
		session *dto.SessionResponse
		err     error
	)
	switch cmd.Kind {
	case voice.KindNextStep:
		session, err = s.session.MoveFocus(ctx, workspaceID, 1)
	case voice.KindPrevStep:
		session, err = s.session.MoveFocus(ctx, workspaceID, -1)
	case voice.KindGetAIHelp:
		index := cmd.StepIndex
		if index == voice.FocusedStep {
			index = focused
		}
		if _, err = s.session.RequestHelp(ctx, workspaceID, index); err == nil {
			session, err = s.session.Get(ctx, workspaceID)
		}
	case voice.KindDictate:
		session, err = s.session.Dictate(ctx, workspaceID, &dto.DictateRequest{Index: voice.FocusedStep, Text: cmd.Value})
	case voice.KindStartNew:
		session, err = s.session.StartNew(ctx, workspaceID)
		resp.ClientAction, resp.View = ActionSwitchView, string(voice.ViewNewProject)
	case voice.KindViewDatabase:
		resp.ClientAction, resp.View = ActionSwitchView, string(voice.ViewDatabase)
	case voice.KindGoBack:
		switch {
		case vctx.SummaryVisible:
			session, err = s.session.HideSummary(ctx, workspaceID)
		case view == voice.ViewViewArchived || view == voice.ViewDatabase:
			resp.ClientAction, resp.View = ActionSwitchView, string(voice.ViewWelcome)
		}
	case voice.KindSaveProject:
		// only the summary screen offers saving
		if vctx.SummaryVisible {
			var saved *dto.SaveProjectResponse
			if saved, err = s.session.Save(ctx, workspaceID); err == nil {
				session = saved.Session
			}
		}
	case voice.KindDownloadPDF:
		resp.ClientAction = ActionDownloadPDF
	}
	if err != nil {
		return nil, err
	}
	resp.Session = session
	return resp, nil
}
