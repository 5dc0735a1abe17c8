package llm

import (
	"context"
	"iter"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Citation is a web source attached to grounded output.
type Citation struct {
	URL   string
	Title string
}

// Chunk is one streamed delta. Citations are only set by grounded calls.
type Chunk struct {
	Text      string
	Citations []Citation
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model

	// ThinkingBudget enables extended reasoning when positive.
	ThinkingBudget int
	// WebGrounding lets the model search the web and return citations.
	WebGrounding bool
	// Voice selects the prebuilt voice for speech synthesis.
	Voice string
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithThinkingBudget(tokens int) Option {
	return func(o *Options) {
		o.ThinkingBudget = tokens
	}
}

func WithWebGrounding(on bool) Option {
	return func(o *Options) {
		o.WebGrounding = on
	}
}

func WithVoice(voice string) Option {
	return func(o *Options) {
		o.Voice = voice
	}
}

// Apply resolves options over the defaults shared by every provider.
func Apply(opts ...Option) *Options {
	o := &Options{Temperature: 0.7}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	Name() string

	// Generate sends a single prompt to the model and returns the whole answer
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)

	// GenerateStream yields the answer as it is produced. The sequence is
	// single use; after an error is yielded nothing else follows.
	GenerateStream(ctx context.Context, prompt string, options ...Option) iter.Seq2[Chunk, error]

	// Transcribe converts recorded audio to text.
	Transcribe(ctx context.Context, audio []byte, mimeType string, options ...Option) (string, error)

	// Synthesize renders text as WAV audio.
	Synthesize(ctx context.Context, text string, options ...Option) ([]byte, error)
}

// Collect drains a stream into one string, stopping at the first error.
func Collect(stream iter.Seq2[Chunk, error]) (string, error) {
	var out []byte
	for chunk, err := range stream {
		if err != nil {
			return string(out), err
		}
		out = append(out, chunk.Text...)
	}
	return string(out), nil
}
