package fake

import (
	"context"
	"iter"
	"strings"
	"sync"

	"ship-framework-be/pkg/llm"
)

// Provider is a scripted backend for offline runs and tests. Every stream
// yields the same chunks; failures can be injected per call.
type Provider struct {
	mu         sync.Mutex
	chunks     []string
	citations  []llm.Citation
	transcript string
	calls      int
	prompts    []string
	lastOpts   *llm.Options
	failTimes  int
	failErr    error
	failAfter  int
	afterErr   error
	gate       chan struct{}
}

var _ llm.LLMProvider = (*Provider)(nil)

// New returns a provider that streams chunks in order.
func New(chunks ...string) *Provider {
	return &Provider{
		chunks:     chunks,
		transcript: "transcripción de prueba",
		failAfter:  -1,
	}
}

func (p *Provider) Name() string { return "fake" }

// WithCitations attaches citations to the first chunk of every stream.
func (p *Provider) WithCitations(c ...llm.Citation) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.citations = c
	return p
}

// WithTranscript sets the text returned by Transcribe.
func (p *Provider) WithTranscript(text string) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transcript = text
	return p
}

// FailTimes makes the next n calls fail with err before producing anything.
func (p *Provider) FailTimes(n int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failTimes = n
	p.failErr = err
}

// FailAfter makes every stream fail with err after n chunks.
func (p *Provider) FailAfter(n int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failAfter = n
	p.afterErr = err
}

// Hold makes streams wait before their first chunk until the returned
// function is called.
func (p *Provider) Hold() (release func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	gate := make(chan struct{})
	p.gate = gate
	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

// Calls returns how many provider calls were made.
func (p *Provider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// Prompts returns every prompt received, in order.
func (p *Provider) Prompts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string{}, p.prompts...)
}

// LastOptions returns the resolved options of the latest call.
func (p *Provider) LastOptions() *llm.Options {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastOpts
}

func (p *Provider) begin(prompt string, opts []llm.Option) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.prompts = append(p.prompts, prompt)
	p.lastOpts = llm.Apply(opts...)
	if p.failTimes > 0 {
		p.failTimes--
		return p.failErr
	}
	return nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return llm.Collect(p.GenerateStream(ctx, prompt, opts...))
}

func (p *Provider) GenerateStream(ctx context.Context, prompt string, opts ...llm.Option) iter.Seq2[llm.Chunk, error] {
	return func(yield func(llm.Chunk, error) bool) {
		if err := p.begin(prompt, opts); err != nil {
			yield(llm.Chunk{}, err)
			return
		}

		p.mu.Lock()
		chunks := append([]string{}, p.chunks...)
		citations := append([]llm.Citation{}, p.citations...)
		failAfter, afterErr, gate := p.failAfter, p.afterErr, p.gate
		p.mu.Unlock()

		if gate != nil {
			select {
			case <-gate:
			case <-ctx.Done():
				yield(llm.Chunk{}, ctx.Err())
				return
			}
		}

		for i, text := range chunks {
			if i == failAfter {
				yield(llm.Chunk{}, afterErr)
				return
			}
			if err := ctx.Err(); err != nil {
				yield(llm.Chunk{}, err)
				return
			}
			chunk := llm.Chunk{Text: text}
			if i == 0 {
				chunk.Citations = citations
			}
			if !yield(chunk, nil) {
				return
			}
		}
	}
}

func (p *Provider) Transcribe(ctx context.Context, audio []byte, mimeType string, opts ...llm.Option) (string, error) {
	if err := p.begin(mimeType, opts); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.transcript, nil
}

func (p *Provider) Synthesize(ctx context.Context, text string, opts ...llm.Option) ([]byte, error) {
	if err := p.begin(text, opts); err != nil {
		return nil, err
	}
	pcm := []byte(strings.Repeat(text, 2))
	return llm.WrapPCM(pcm, llm.PCMSampleRate, llm.PCMChannels, llm.PCMBitsPerSample), nil
}
