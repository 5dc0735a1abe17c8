package ideation

import "errors"

var (
	// ErrGenerationInProgress is returned when a step already has an active stream.
	ErrGenerationInProgress = errors.New("a response is already being generated for this step")
	// ErrStaleGeneration is returned when a chunk belongs to a stream that is no
	// longer the active one for the step.
	ErrStaleGeneration = errors.New("generation is no longer active")
	// ErrHistoryIndex is returned when a restore targets a missing history entry.
	ErrHistoryIndex = errors.New("history entry does not exist")
	// ErrNotFound is returned when an archived project or template id is unknown.
	ErrNotFound = errors.New("not found")
)

// BeginGeneration opens a new stream on the step. The previous response is
// pushed to the front of the history unless it would duplicate the head. The
// returned id must accompany every chunk of this stream.
func (s *Step) BeginGeneration(previousResponse string) (uint64, error) {
	if s.IsGenerating {
		return 0, ErrGenerationInProgress
	}
	if previousResponse != "" && (len(s.ResponseHistory) == 0 || s.ResponseHistory[0] != previousResponse) {
		s.ResponseHistory = append([]string{previousResponse}, s.ResponseHistory...)
	}
	s.CurrentResponse = ""
	s.Citations = []Citation{}
	s.IsGenerating = true
	s.generation++
	return s.generation, nil
}

// AppendChunk folds one streamed delta into the step. Text is appended in call
// order and citations are merged by URL, keeping the first title seen.
func (s *Step) AppendChunk(generation uint64, text string, citations []Citation) error {
	if !s.IsGenerating || generation != s.generation {
		return ErrStaleGeneration
	}
	s.CurrentResponse += text
	s.Citations = mergeCitations(s.Citations, citations)
	return nil
}

// EndGeneration closes the stream. Partial output is kept. A stale id is a
// no-op so a late finalizer cannot close a newer stream.
func (s *Step) EndGeneration(generation uint64) {
	if generation != s.generation {
		return
	}
	s.IsGenerating = false
}

// RestoreResponse makes entry the current response. The entry is removed from
// the history first, then the replaced response is pushed to the front.
func (s *Step) RestoreResponse(entry string) error {
	if s.IsGenerating {
		return ErrGenerationInProgress
	}
	old := s.CurrentResponse
	history := make([]string, 0, len(s.ResponseHistory)+1)
	for _, h := range s.ResponseHistory {
		if h != entry {
			history = append(history, h)
		}
	}
	if old != "" && old != entry {
		history = append([]string{old}, history...)
	}
	s.ResponseHistory = history
	s.CurrentResponse = entry
	return nil
}

// RestoreHistoryIndex restores the history entry at index.
func (s *Step) RestoreHistoryIndex(index int) error {
	if index < 0 || index >= len(s.ResponseHistory) {
		return ErrHistoryIndex
	}
	return s.RestoreResponse(s.ResponseHistory[index])
}

func mergeCitations(dst []Citation, src []Citation) []Citation {
	if dst == nil {
		dst = []Citation{}
	}
	for _, c := range src {
		if c.URL == "" || hasCitation(dst, c.URL) {
			continue
		}
		dst = append(dst, c)
	}
	return dst
}

func hasCitation(list []Citation, url string) bool {
	for _, c := range list {
		if c.URL == url {
			return true
		}
	}
	return false
}
