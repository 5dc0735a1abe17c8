package llm

import (
	"context"
	"iter"
	"time"

	"ship-framework-be/internal/pkg/logger"
)

// Middleware decorates a provider with a cross-cutting concern.
type Middleware func(LLMProvider) LLMProvider

// Wrap applies middlewares in left-to-right order.
// Example: Wrap(inner, A, B) => A(B(inner))
func Wrap(inner LLMProvider, mws ...Middleware) LLMProvider {
	out := inner
	for i := len(mws) - 1; i >= 0; i-- {
		out = mws[i](out)
	}
	return out
}

// Innermost strips every middleware added by Wrap.
func Innermost(p LLMProvider) LLMProvider {
	for {
		w, ok := p.(interface{ Unwrap() LLMProvider })
		if !ok {
			return p
		}
		p = w.Unwrap()
	}
}

// -------- Retry with exponential backoff --------

// Retry repeats transient failures up to maxAttempts with exponential backoff
// starting at baseDelay. Credential and unsupported errors fail at once. A
// stream is only retried while it has not yielded anything, so a consumer
// never sees a chunk twice.
func Retry(maxAttempts int, baseDelay time.Duration) Middleware {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if baseDelay <= 0 {
		baseDelay = 300 * time.Millisecond
	}
	return func(next LLMProvider) LLMProvider {
		return &retrying{next: next, max: maxAttempts, base: baseDelay}
	}
}

type retrying struct {
	next LLMProvider
	max  int
	base time.Duration
}

func (r *retrying) Name() string { return r.next.Name() }

func (r *retrying) Unwrap() LLMProvider { return r.next }

func (r *retrying) Generate(ctx context.Context, prompt string, opts ...Option) (string, error) {
	return retryCall(ctx, r, func() (string, error) { return r.next.Generate(ctx, prompt, opts...) })
}

func (r *retrying) Transcribe(ctx context.Context, audio []byte, mimeType string, opts ...Option) (string, error) {
	return retryCall(ctx, r, func() (string, error) { return r.next.Transcribe(ctx, audio, mimeType, opts...) })
}

func (r *retrying) Synthesize(ctx context.Context, text string, opts ...Option) ([]byte, error) {
	return retryCall(ctx, r, func() ([]byte, error) { return r.next.Synthesize(ctx, text, opts...) })
}

func (r *retrying) GenerateStream(ctx context.Context, prompt string, opts ...Option) iter.Seq2[Chunk, error] {
	return func(yield func(Chunk, error) bool) {
		for i := 0; ; i++ {
			emitted := false
			var failure error
			for chunk, err := range r.next.GenerateStream(ctx, prompt, opts...) {
				if err != nil {
					failure = err
					break
				}
				emitted = true
				if !yield(chunk, nil) {
					return
				}
			}
			if failure == nil {
				return
			}
			if emitted || i+1 >= r.max || !Retryable(failure) || !r.wait(ctx, i) {
				yield(Chunk{}, failure)
				return
			}
		}
	}
}

// wait sleeps before attempt i+1 and reports false when ctx ended first.
func (r *retrying) wait(ctx context.Context, i int) bool {
	t := time.NewTimer(r.base * time.Duration(1<<i))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func retryCall[T any](ctx context.Context, r *retrying, call func() (T, error)) (T, error) {
	var last error
	for i := 0; i < r.max; i++ {
		out, err := call()
		if err == nil {
			return out, nil
		}
		last = err
		if !Retryable(err) || i+1 >= r.max || !r.wait(ctx, i) {
			break
		}
	}
	var zero T
	return zero, last
}

// -------- Logging --------

// WithLogging records each call and its failures on the application logger.
func WithLogging(log logger.ILogger) Middleware {
	return func(next LLMProvider) LLMProvider {
		return &logging{next: next, log: log}
	}
}

type logging struct {
	next LLMProvider
	log  logger.ILogger
}

const logModule = "LLM"

func (l *logging) Name() string { return l.next.Name() }

func (l *logging) Unwrap() LLMProvider { return l.next }

func (l *logging) Generate(ctx context.Context, prompt string, opts ...Option) (string, error) {
	start := time.Now()
	out, err := l.next.Generate(ctx, prompt, opts...)
	l.record("generate", start, len(prompt), err)
	return out, err
}

func (l *logging) GenerateStream(ctx context.Context, prompt string, opts ...Option) iter.Seq2[Chunk, error] {
	return func(yield func(Chunk, error) bool) {
		start := time.Now()
		chunks := 0
		var failure error
		defer func() {
			l.log.Debug(logModule, "Stream finished", map[string]interface{}{
				"provider": l.next.Name(),
				"chunks":   chunks,
				"duration": time.Since(start).String(),
			})
		}()
		for chunk, err := range l.next.GenerateStream(ctx, prompt, opts...) {
			if err != nil {
				failure = err
				l.record("stream", start, len(prompt), failure)
				yield(Chunk{}, err)
				return
			}
			chunks++
			if !yield(chunk, nil) {
				return
			}
		}
	}
}

func (l *logging) Transcribe(ctx context.Context, audio []byte, mimeType string, opts ...Option) (string, error) {
	start := time.Now()
	out, err := l.next.Transcribe(ctx, audio, mimeType, opts...)
	l.record("transcribe", start, len(audio), err)
	return out, err
}

func (l *logging) Synthesize(ctx context.Context, text string, opts ...Option) ([]byte, error) {
	start := time.Now()
	out, err := l.next.Synthesize(ctx, text, opts...)
	l.record("synthesize", start, len(text), err)
	return out, err
}

func (l *logging) record(op string, start time.Time, inputBytes int, err error) {
	details := map[string]interface{}{
		"provider":    l.next.Name(),
		"operation":   op,
		"input_bytes": inputBytes,
		"duration":    time.Since(start).String(),
	}
	if err == nil {
		l.log.Debug(logModule, "Provider call succeeded", details)
		return
	}
	details["error"] = err.Error()
	details["kind"] = string(KindOf(err))
	if IsCredential(err) {
		l.log.Warn(logModule, "Provider rejected credential", details)
		return
	}
	l.log.Error(logModule, "Provider call failed", details)
}
