package service

import (
	"errors"
	"sync"

	"ship-framework-be/internal/pkg/logger"
	"ship-framework-be/pkg/llm"
)

// CredentialMonitor remembers whether the AI backend accepted the configured
// key. Once a credential error is seen every AI feature is refused until the
// process is restarted with a working key.
type CredentialMonitor struct {
	mu       sync.RWMutex
	provider string
	err      *llm.Error
	logger   logger.ILogger
}

func NewCredentialMonitor(provider llm.LLMProvider, log logger.ILogger) *CredentialMonitor {
	m := &CredentialMonitor{provider: provider.Name(), logger: log}
	if u, ok := llm.Innermost(provider).(llm.Unavailable); ok {
		m.err = u.Err
	}
	return m
}

// Observe records err when it is a credential error.
func (m *CredentialMonitor) Observe(err error) {
	if !llm.IsCredential(err) {
		return
	}
	var lerr *llm.Error
	if !errors.As(err, &lerr) {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err == nil {
		m.logger.Error("CREDENTIAL", "AI backend rejected the credential", map[string]interface{}{
			"provider": lerr.Provider,
			"kind":     lerr.Kind,
		})
	}
	m.err = lerr
}

// Err returns the credential error blocking AI features, or nil.
func (m *CredentialMonitor) Err() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err == nil {
		return nil
	}
	return m.err
}

// Status is "ok" or the kind of the blocking credential error.
func (m *CredentialMonitor) Status() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err == nil {
		return "ok"
	}
	return string(m.err.Kind)
}

func (m *CredentialMonitor) Provider() string {
	return m.provider
}
