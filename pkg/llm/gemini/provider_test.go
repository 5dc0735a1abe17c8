package gemini

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"ship-framework-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestNewWithoutKey(t *testing.T) {
	_, err := New(context.Background(), "  ", "")
	assert.Equal(t, llm.KindMissingCredential, llm.KindOf(err))
}

func TestClassify(t *testing.T) {
	invalidKey := genai.APIError{
		Code:    400,
		Status:  "INVALID_ARGUMENT",
		Details: []map[string]any{{"@type": "type.googleapis.com/google.rpc.ErrorInfo", "reason": "API_KEY_INVALID"}},
	}

	tests := []struct {
		name string
		err  error
		want llm.Kind
	}{
		{name: "invalid key", err: invalidKey, want: llm.KindInvalidCredential},
		{name: "wrapped invalid key", err: fmt.Errorf("call: %w", invalidKey), want: llm.KindInvalidCredential},
		{name: "forbidden", err: genai.APIError{Code: 403}, want: llm.KindInvalidCredential},
		{name: "bad request", err: genai.APIError{Code: 400, Status: "INVALID_ARGUMENT"}, want: llm.KindTransient},
		{name: "unknown model", err: genai.APIError{Code: 404}, want: llm.KindUnsupported},
		{name: "quota", err: genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"}, want: llm.KindTransient},
		{name: "network", err: errors.New("connection reset"), want: llm.KindTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, llm.KindOf(classify(tt.err)))
		})
	}
}

func TestClassifyKeepsCancellation(t *testing.T) {
	assert.ErrorIs(t, classify(context.Canceled), context.Canceled)
	assert.Nil(t, classify(nil))
}

func TestGenerationConfig(t *testing.T) {
	cfg := generationConfig(llm.Apply(llm.WithTemperature(0.4), llm.WithWebGrounding(true)))
	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, 0.4, *cfg.Temperature, 1e-6)
	require.Len(t, cfg.Tools, 1)
	assert.NotNil(t, cfg.Tools[0].GoogleSearch)
	assert.Nil(t, cfg.ThinkingConfig)

	cfg = generationConfig(llm.Apply(llm.WithThinkingBudget(32768), llm.WithWebGrounding(true)))
	require.NotNil(t, cfg.ThinkingConfig)
	assert.Equal(t, int32(32768), *cfg.ThinkingConfig.ThinkingBudget)
	assert.Empty(t, cfg.Tools)
}

func TestCitations(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			GroundingMetadata: &genai.GroundingMetadata{
				GroundingChunks: []*genai.GroundingChunk{
					{Web: &genai.GroundingChunkWeb{URI: "https://a.example", Title: "A"}},
					{Web: &genai.GroundingChunkWeb{URI: ""}},
					nil,
				},
			},
		}},
	}

	assert.Equal(t, []llm.Citation{{URL: "https://a.example", Title: "A"}}, citations(resp))
	assert.Nil(t, citations(&genai.GenerateContentResponse{}))
}
