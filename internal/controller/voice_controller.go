package controller

import (
	"io"

	"ship-framework-be/internal/dto"
	"ship-framework-be/internal/pkg/serverutils"
	"ship-framework-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

const maxAudioSize = 20 << 20

type IVoiceController interface {
	RegisterRoutes(r fiber.Router)
	Command(ctx *fiber.Ctx) error
	Transcribe(ctx *fiber.Ctx) error
	Speak(ctx *fiber.Ctx) error
	StopSpeech(ctx *fiber.Ctx) error
}

type voiceController struct {
	voice  service.IVoiceService
	speech service.ISpeechService
	tokens *serverutils.TokenIssuer
}

func NewVoiceController(voice service.IVoiceService, speech service.ISpeechService, tokens *serverutils.TokenIssuer) IVoiceController {
	return &voiceController{voice: voice, speech: speech, tokens: tokens}
}

func (c *voiceController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/voice/v1")
	h.Use(c.tokens.JwtMiddleware)
	h.Post("/command", c.Command)
	h.Post("/transcribe", c.Transcribe)
	h.Post("/speech", c.Speak)
	h.Delete("/speech", c.StopSpeech)
}

func (c *voiceController) Command(ctx *fiber.Ctx) error {
	workspaceID, err := serverutils.WorkspaceID(ctx)
	if err != nil {
		return err
	}
	var req dto.VoiceCommandRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	res, err := c.voice.Command(ctx.UserContext(), workspaceID, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse(res.Feedback, res))
}

// Transcribe reads the multipart field "audio".
func (c *voiceController) Transcribe(ctx *fiber.Ctx) error {
	fh, err := ctx.FormFile("audio")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Missing audio file")
	}
	if fh.Size > maxAudioSize {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "Audio file is too large")
	}
	f, err := fh.Open()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot read audio file")
	}
	defer f.Close()
	audio, err := io.ReadAll(f)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Cannot read audio file")
	}

	mimeType := fh.Header.Get(fiber.HeaderContentType)
	if mimeType == "" {
		mimeType = "audio/webm"
	}
	text, err := c.speech.Transcribe(ctx.UserContext(), audio, mimeType)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Transcribed", dto.TranscribeResponse{Text: text}))
}

// Speak returns WAV audio for the text.
func (c *voiceController) Speak(ctx *fiber.Ctx) error {
	workspaceID, err := serverutils.WorkspaceID(ctx)
	if err != nil {
		return err
	}
	var req dto.SpeechRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	audio, err := c.speech.Synthesize(ctx.UserContext(), workspaceID, req.Target, req.Text)
	if err != nil {
		return err
	}
	ctx.Set(fiber.HeaderContentType, "audio/wav")
	return ctx.Send(audio)
}

func (c *voiceController) StopSpeech(ctx *fiber.Ctx) error {
	workspaceID, err := serverutils.WorkspaceID(ctx)
	if err != nil {
		return err
	}
	c.speech.Stop(workspaceID)
	return ctx.SendStatus(fiber.StatusNoContent)
}
