package gemini

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"strings"

	"ship-framework-be/pkg/llm"

	"google.golang.org/genai"
)

const (
	providerName = "gemini"

	DefaultModel       = "gemini-2.5-flash"
	DefaultSpeechModel = "gemini-2.5-flash-preview-tts"
	DefaultVoice       = "Kore"

	transcribePrompt = "Transcribe el siguiente audio a texto en español. Devuelve solo la transcripción, sin comentarios."
)

// Provider talks to the Gemini API through the official genai client.
type Provider struct {
	client      *genai.Client
	model       string
	speechModel string
}

var _ llm.LLMProvider = (*Provider)(nil)

// New builds a provider. A blank key is reported as a missing credential
// without contacting the API.
func New(ctx context.Context, apiKey, model string) (*Provider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, llm.NewError(llm.KindMissingCredential, providerName, errors.New("GOOGLE_GEMINI_API_KEY is not set"))
	}
	if model == "" {
		model = DefaultModel
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, llm.NewError(llm.KindTransient, providerName, fmt.Errorf("init genai client: %w", err))
	}
	return &Provider{client: cli, model: model, speechModel: DefaultSpeechModel}, nil
}

func (p *Provider) Name() string { return providerName + ":" + p.model }

func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	o := llm.Apply(opts...)
	resp, err := p.client.Models.GenerateContent(ctx, p.modelFor(o), genai.Text(prompt), generationConfig(o))
	if err != nil {
		return "", classify(err)
	}
	return resp.Text(), nil
}

func (p *Provider) GenerateStream(ctx context.Context, prompt string, opts ...llm.Option) iter.Seq2[llm.Chunk, error] {
	return func(yield func(llm.Chunk, error) bool) {
		o := llm.Apply(opts...)
		for resp, err := range p.client.Models.GenerateContentStream(ctx, p.modelFor(o), genai.Text(prompt), generationConfig(o)) {
			if err != nil {
				yield(llm.Chunk{}, classify(err))
				return
			}
			chunk := llm.Chunk{Text: resp.Text(), Citations: citations(resp)}
			if chunk.Text == "" && len(chunk.Citations) == 0 {
				continue
			}
			if !yield(chunk, nil) {
				return
			}
		}
	}
}

func (p *Provider) Transcribe(ctx context.Context, audio []byte, mimeType string, opts ...llm.Option) (string, error) {
	o := llm.Apply(opts...)
	parts := []*genai.Part{
		genai.NewPartFromText(transcribePrompt),
		genai.NewPartFromBytes(audio, mimeType),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	resp, err := p.client.Models.GenerateContent(ctx, p.modelFor(o), contents, nil)
	if err != nil {
		return "", classify(err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

func (p *Provider) Synthesize(ctx context.Context, text string, opts ...llm.Option) ([]byte, error) {
	o := llm.Apply(opts...)
	voice := o.Voice
	if voice == "" {
		voice = DefaultVoice
	}
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice},
			},
		},
	}
	resp, err := p.client.Models.GenerateContent(ctx, p.speechModel, genai.Text(text), cfg)
	if err != nil {
		return nil, classify(err)
	}
	pcm := inlineAudio(resp)
	if len(pcm) == 0 {
		return nil, llm.NewError(llm.KindTransient, providerName, errors.New("speech response carried no audio"))
	}
	return llm.WrapPCM(pcm, llm.PCMSampleRate, llm.PCMChannels, llm.PCMBitsPerSample), nil
}

func (p *Provider) modelFor(o *llm.Options) string {
	if o.Model != "" {
		return o.Model
	}
	return p.model
}

func generationConfig(o *llm.Options) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(o.Temperature)),
	}
	if o.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(o.MaxTokens)
	}
	// Grounding and extended thinking are never combined.
	switch {
	case o.ThinkingBudget > 0:
		cfg.ThinkingConfig = &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(int32(o.ThinkingBudget))}
	case o.WebGrounding:
		cfg.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}
	return cfg
}

func citations(resp *genai.GenerateContentResponse) []llm.Citation {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	var out []llm.Citation
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		out = append(out, llm.Citation{URL: chunk.Web.URI, Title: chunk.Web.Title})
	}
	return out
}

func inlineAudio(resp *genai.GenerateContentResponse) []byte {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data
		}
	}
	return nil
}

// classify maps API failures onto provider error kinds using the status code
// and structured error details.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
	case errors.As(err, &apiErrPtr) && apiErrPtr != nil:
		apiErr = *apiErrPtr
	default:
		return llm.NewError(llm.KindTransient, providerName, err)
	}

	switch {
	case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
		return llm.NewError(llm.KindInvalidCredential, providerName, err)
	case apiErr.Code == http.StatusBadRequest && hasReason(apiErr.Details, "API_KEY_INVALID"):
		return llm.NewError(llm.KindInvalidCredential, providerName, err)
	case apiErr.Code == http.StatusNotFound:
		return llm.NewError(llm.KindUnsupported, providerName, err)
	default:
		return llm.NewError(llm.KindTransient, providerName, err)
	}
}

func hasReason(details []map[string]any, reason string) bool {
	for _, d := range details {
		if r, ok := d["reason"].(string); ok && r == reason {
			return true
		}
	}
	return false
}
