package llm

import (
	"context"
	"errors"
	"fmt"
	"iter"
)

// Kind classifies provider failures so callers never inspect error text.
type Kind string

const (
	KindMissingCredential Kind = "missing_credential"
	KindInvalidCredential Kind = "invalid_credential"
	KindTransient         Kind = "transient"
	KindUnsupported       Kind = "unsupported"
)

// Error is the only error type providers return.
type Error struct {
	Kind     Kind
	Provider string
	Err      error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a typed provider error.
func NewError(kind Kind, provider string, err error) *Error {
	return &Error{Kind: kind, Provider: provider, Err: err}
}

// KindOf returns the kind of a provider error. Context cancellation and any
// unclassified error count as transient.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindTransient
}

// IsCredential reports whether err means the credential is missing or rejected.
func IsCredential(err error) bool {
	if err == nil {
		return false
	}
	k := KindOf(err)
	return k == KindMissingCredential || k == KindInvalidCredential
}

// Retryable reports whether repeating the call may succeed.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return KindOf(err) == KindTransient
}

// Unavailable is a provider that fails every call with the same error, used
// when no working backend can be built (for example without a credential).
type Unavailable struct {
	Err *Error
}

var _ LLMProvider = Unavailable{}

func (u Unavailable) Name() string { return u.Err.Provider }

func (u Unavailable) Generate(context.Context, string, ...Option) (string, error) {
	return "", u.Err
}

func (u Unavailable) GenerateStream(context.Context, string, ...Option) iter.Seq2[Chunk, error] {
	return func(yield func(Chunk, error) bool) {
		yield(Chunk{}, u.Err)
	}
}

func (u Unavailable) Transcribe(context.Context, []byte, string, ...Option) (string, error) {
	return "", u.Err
}

func (u Unavailable) Synthesize(context.Context, string, ...Option) ([]byte, error) {
	return nil, u.Err
}
