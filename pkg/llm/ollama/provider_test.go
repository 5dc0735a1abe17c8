package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"ship-framework-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateStreamReadsNDJSON(t *testing.T) {
	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/x-ndjson")
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"Hola "},"done":false}
{"message":{"role":"assistant","content":"que tal"},"done":false}
{"message":{"role":"assistant","content":""},"done":true}
`))
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3")
	var chunks []string
	for chunk, err := range p.GenerateStream(context.Background(), "prompt", llm.WithTemperature(0.3)) {
		require.NoError(t, err)
		chunks = append(chunks, chunk.Text)
	}

	assert.Equal(t, []string{"Hola ", "que tal"}, chunks)
	assert.True(t, got.Stream)
	assert.Equal(t, "llama3", got.Model)
	assert.InDelta(t, 0.3, got.Options.Temperature, 1e-9)
}

func TestGenerateClassifiesStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   llm.Kind
	}{
		{name: "missing model", status: http.StatusNotFound, want: llm.KindUnsupported},
		{name: "server error", status: http.StatusInternalServerError, want: llm.KindTransient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer srv.Close()

			_, err := NewOllamaProvider(srv.URL, "m").Generate(context.Background(), "x")
			assert.Equal(t, tt.want, llm.KindOf(err))
		})
	}
}

func TestStreamErrorLine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"message":{"content":"a"}}
{"error":"model crashed"}
`))
	}))
	defer srv.Close()

	text, err := NewOllamaProvider(srv.URL, "m").Generate(context.Background(), "x")
	assert.Equal(t, "a", text)
	assert.Error(t, err)
}

func TestAudioUnsupported(t *testing.T) {
	p := NewOllamaProvider("http://localhost:0", "m")
	_, err := p.Transcribe(context.Background(), nil, "audio/webm")
	assert.Equal(t, llm.KindUnsupported, llm.KindOf(err))
	_, err = p.Synthesize(context.Background(), "hola")
	assert.Equal(t, llm.KindUnsupported, llm.KindOf(err))
}
