package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"time"

	"ship-framework-be/pkg/llm"
)

const providerName = "ollama"

type OllamaProvider struct {
	BaseURL   string
	ModelName string
	Client    *http.Client
}

// Ensure OllamaProvider implements LLMProvider
var _ llm.LLMProvider = &OllamaProvider{}

func NewOllamaProvider(baseURL, modelName string) *OllamaProvider {
	return &OllamaProvider{
		BaseURL:   baseURL,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// --- Request/Response structs (Internal to this package) ---

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  *ollamaOptions  `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatResponse struct {
	Model   string        `json:"model"`
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
	Error   string        `json:"error,omitempty"`
}

// --- Interface Implementation ---

func (o *OllamaProvider) Name() string { return providerName + ":" + o.ModelName }

func (o *OllamaProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return llm.Collect(o.GenerateStream(ctx, prompt, opts...))
}

// GenerateStream reads the newline-delimited JSON objects /api/chat emits
// when streaming is on. Each object carries the next slice of the answer.
func (o *OllamaProvider) GenerateStream(ctx context.Context, prompt string, opts ...llm.Option) iter.Seq2[llm.Chunk, error] {
	return func(yield func(llm.Chunk, error) bool) {
		resp, err := o.chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, llm.Apply(opts...))
		if err != nil {
			yield(llm.Chunk{}, err)
			return
		}
		defer resp.Body.Close()

		dec := json.NewDecoder(resp.Body)
		for {
			var part ollamaChatResponse
			if err := dec.Decode(&part); err != nil {
				if errors.Is(err, io.EOF) {
					return
				}
				yield(llm.Chunk{}, llm.NewError(llm.KindTransient, providerName, fmt.Errorf("decode stream: %w", err)))
				return
			}
			if part.Error != "" {
				yield(llm.Chunk{}, llm.NewError(llm.KindTransient, providerName, errors.New(part.Error)))
				return
			}
			if part.Message.Content != "" {
				if !yield(llm.Chunk{Text: part.Message.Content}, nil) {
					return
				}
			}
			if part.Done {
				return
			}
		}
	}
}

func (o *OllamaProvider) Transcribe(context.Context, []byte, string, ...llm.Option) (string, error) {
	return "", llm.NewError(llm.KindUnsupported, providerName, errors.New("audio transcription is not available"))
}

func (o *OllamaProvider) Synthesize(context.Context, string, ...llm.Option) ([]byte, error) {
	return nil, llm.NewError(llm.KindUnsupported, providerName, errors.New("speech synthesis is not available"))
}

func (o *OllamaProvider) chat(ctx context.Context, history []llm.Message, options *llm.Options) (*http.Response, error) {
	// Map generic messages to Ollama messages
	ollamaMessages := make([]ollamaMessage, len(history))
	for i, msg := range history {
		role := msg.Role
		if role == "model" {
			role = "assistant"
		}
		ollamaMessages[i] = ollamaMessage{
			Role:    role,
			Content: msg.Content,
		}
	}

	model := o.ModelName
	if options.Model != "" {
		model = options.Model
	}

	reqPayload := ollamaChatRequest{
		Model:    model,
		Messages: ollamaMessages,
		Stream:   true,
		Options: &ollamaOptions{
			Temperature: options.Temperature,
		},
	}
	if options.MaxTokens > 0 {
		reqPayload.Options.NumPredict = options.MaxTokens
	}

	payloadBytes, err := json.Marshal(reqPayload)
	if err != nil {
		return nil, llm.NewError(llm.KindTransient, providerName, fmt.Errorf("marshal request: %w", err))
	}

	url := o.BaseURL + "/api/chat"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, llm.NewError(llm.KindTransient, providerName, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, llm.NewError(llm.KindTransient, providerName, fmt.Errorf("ollama request failed: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		kind := llm.KindTransient
		if resp.StatusCode == http.StatusNotFound {
			kind = llm.KindUnsupported
		}
		return nil, llm.NewError(kind, providerName, fmt.Errorf("status %d, body: %s", resp.StatusCode, string(bodyBytes)))
	}
	return resp, nil
}
