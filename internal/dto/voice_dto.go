package dto

import (
	"ship-framework-be/pkg/voice"
)

type VoiceCommandRequest struct {
	Transcript string `json:"transcript" validate:"required"`
	View       string `json:"view" validate:"required,oneof=welcome new_project database view_archived"`
}

// VoiceCommandResponse reports what the transcript meant and what was done.
// ClientAction names what the client still has to do itself, such as
// switching view or downloading the summary.
type VoiceCommandResponse struct {
	Recognized   bool             `json:"recognized"`
	Command      *voice.Command   `json:"command,omitempty"`
	Feedback     string           `json:"feedback"`
	ClientAction string           `json:"clientAction,omitempty"`
	View         string           `json:"view,omitempty"`
	Session      *SessionResponse `json:"session,omitempty"`
}

type TranscribeResponse struct {
	Text string `json:"text"`
}

type SpeechRequest struct {
	Target string `json:"target" validate:"required,max=100"`
	Text   string `json:"text" validate:"required"`
}
