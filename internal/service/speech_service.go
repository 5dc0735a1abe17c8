package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"ship-framework-be/internal/pkg/logger"
	"ship-framework-be/pkg/llm"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

type ISpeechService interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error)
	// Synthesize renders text for a playback target of the workspace. A new
	// target cancels the synthesis in flight for any other target.
	Synthesize(ctx context.Context, workspaceID uuid.UUID, target, text string) ([]byte, error)
	// Stop cancels whatever the workspace is playing.
	Stop(workspaceID uuid.UUID)
}

// playbackSlot is the single playback position of a workspace. Requests for
// the active target share it; each keeps its own cancel.
type playbackSlot struct {
	target  string
	next    uint64
	cancels map[uint64]context.CancelFunc
}

type speechService struct {
	provider    llm.LLMProvider
	credentials *CredentialMonitor
	voice       string
	cache       *lru.Cache[string, []byte]
	logger      logger.ILogger

	mu    sync.Mutex
	slots map[uuid.UUID]*playbackSlot
}

func NewSpeechService(provider llm.LLMProvider, credentials *CredentialMonitor, voice string, cacheSize int, log logger.ILogger) (ISpeechService, error) {
	if cacheSize <= 0 {
		cacheSize = 64
	}
	cache, err := lru.New[string, []byte](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("speech cache: %w", err)
	}
	return &speechService{
		provider:    provider,
		credentials: credentials,
		voice:       voice,
		cache:       cache,
		logger:      log,
		slots:       make(map[uuid.UUID]*playbackSlot),
	}, nil
}

func (s *speechService) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if err := s.credentials.Err(); err != nil {
		return "", err
	}
	text, err := s.provider.Transcribe(ctx, audio, mimeType)
	if err != nil {
		s.credentials.Observe(err)
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (s *speechService) Synthesize(ctx context.Context, workspaceID uuid.UUID, target, text string) ([]byte, error) {
	if err := s.credentials.Err(); err != nil {
		return nil, err
	}

	key := s.cacheKey(text)
	if audio, ok := s.cache.Get(key); ok {
		s.claim(workspaceID, target)
		return audio, nil
	}

	playCtx, release := s.acquire(ctx, workspaceID, target)
	defer release()

	audio, err := s.provider.Synthesize(playCtx, text, llm.WithVoice(s.voice))
	if err != nil {
		s.credentials.Observe(err)
		return nil, err
	}
	s.cache.Add(key, audio)
	return audio, nil
}

func (s *speechService) Stop(workspaceID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slot, ok := s.slots[workspaceID]; ok {
		for _, cancel := range slot.cancels {
			cancel()
		}
		delete(s.slots, workspaceID)
	}
}

// claim moves the slot to target, cancelling other targets, without
// registering a request. Used for cache hits.
func (s *speechService) claim(workspaceID uuid.UUID, target string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slotFor(workspaceID, target)
}

// acquire registers a cancellable request on target. release must be called
// when the request finishes.
func (s *speechService) acquire(ctx context.Context, workspaceID uuid.UUID, target string) (context.Context, func()) {
	playCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	slot := s.slotFor(workspaceID, target)
	id := slot.next
	slot.next++
	slot.cancels[id] = cancel
	s.mu.Unlock()

	return playCtx, func() {
		cancel()
		s.mu.Lock()
		defer s.mu.Unlock()
		if current, ok := s.slots[workspaceID]; ok && current == slot {
			delete(slot.cancels, id)
		}
	}
}

// slotFor returns the slot of the workspace set to target. Callers hold s.mu.
func (s *speechService) slotFor(workspaceID uuid.UUID, target string) *playbackSlot {
	slot, ok := s.slots[workspaceID]
	if ok && slot.target == target {
		return slot
	}
	if ok {
		for _, cancel := range slot.cancels {
			cancel()
		}
		s.logger.Debug("SPEECH", "Playback interrupted", map[string]interface{}{
			"workspace_id": workspaceID,
			"from":         slot.target,
			"to":           target,
		})
	}
	slot = &playbackSlot{target: target, cancels: make(map[uint64]context.CancelFunc)}
	s.slots[workspaceID] = slot
	return slot
}

func (s *speechService) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(s.voice + "\x00" + text))
	return hex.EncodeToString(sum[:])
}
