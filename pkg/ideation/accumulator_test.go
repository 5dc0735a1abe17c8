package ideation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStep() *Step {
	doc := NewDocument(Canonical())
	return &doc.Steps[0]
}

func TestChunksConcatenateInOrder(t *testing.T) {
	chunks := []string{"La ", "", "causa ", "raíz ", "es", " clara."}
	s := newStep()

	gen, err := s.BeginGeneration("")
	require.NoError(t, err)
	for _, c := range chunks {
		require.NoError(t, s.AppendChunk(gen, c, nil))
	}
	s.EndGeneration(gen)

	assert.Equal(t, strings.Join(chunks, ""), s.CurrentResponse)
	assert.False(t, s.IsGenerating)
}

func TestBeginRejectsSecondStream(t *testing.T) {
	s := newStep()
	gen, err := s.BeginGeneration("")
	require.NoError(t, err)

	_, err = s.BeginGeneration("")
	assert.ErrorIs(t, err, ErrGenerationInProgress)

	s.EndGeneration(gen)
	_, err = s.BeginGeneration("")
	assert.NoError(t, err)
}

func TestBeginPushesPreviousWithoutHeadDuplicate(t *testing.T) {
	s := newStep()

	gen, _ := s.BeginGeneration("")
	s.EndGeneration(gen)
	assert.Empty(t, s.ResponseHistory)

	gen, _ = s.BeginGeneration("A")
	s.EndGeneration(gen)
	gen, _ = s.BeginGeneration("A")
	s.EndGeneration(gen)
	assert.Equal(t, []string{"A"}, s.ResponseHistory)

	gen, _ = s.BeginGeneration("B")
	s.EndGeneration(gen)
	assert.Equal(t, []string{"B", "A"}, s.ResponseHistory)

	for i := 0; i+1 < len(s.ResponseHistory); i++ {
		assert.NotEqual(t, s.ResponseHistory[i], s.ResponseHistory[i+1])
	}
}

func TestBeginClearsResponseAndCitations(t *testing.T) {
	s := newStep()
	s.CurrentResponse = "old"
	s.Citations = []Citation{{URL: "u"}}

	_, err := s.BeginGeneration(s.CurrentResponse)
	require.NoError(t, err)

	assert.Empty(t, s.CurrentResponse)
	assert.Empty(t, s.Citations)
	assert.True(t, s.IsGenerating)
}

func TestStaleChunksAreRejected(t *testing.T) {
	s := newStep()
	first, _ := s.BeginGeneration("")
	s.EndGeneration(first)
	second, _ := s.BeginGeneration("")

	assert.ErrorIs(t, s.AppendChunk(first, "late", nil), ErrStaleGeneration)
	require.NoError(t, s.AppendChunk(second, "fresh", nil))

	s.EndGeneration(first)
	assert.True(t, s.IsGenerating, "stale finalizer must not close the active stream")

	s.EndGeneration(second)
	assert.Equal(t, "fresh", s.CurrentResponse)
	assert.ErrorIs(t, s.AppendChunk(second, "after end", nil), ErrStaleGeneration)
}

func TestCitationsMergeByURL(t *testing.T) {
	s := newStep()
	gen, _ := s.BeginGeneration("")

	require.NoError(t, s.AppendChunk(gen, "a", []Citation{{URL: "u1", Title: "first"}, {URL: ""}}))
	require.NoError(t, s.AppendChunk(gen, "b", []Citation{{URL: "u1", Title: "second"}, {URL: "u2", Title: "other"}}))

	assert.Equal(t, []Citation{{URL: "u1", Title: "first"}, {URL: "u2", Title: "other"}}, s.Citations)
}

func TestRestoreFilterThenPush(t *testing.T) {
	tests := []struct {
		name        string
		current     string
		history     []string
		entry       string
		wantCurrent string
		wantHistory []string
	}{
		{
			name:        "swap with head",
			current:     "C",
			history:     []string{"B", "A"},
			entry:       "B",
			wantCurrent: "B",
			wantHistory: []string{"C", "A"},
		},
		{
			name:        "restore deeper entry",
			current:     "C",
			history:     []string{"B", "A"},
			entry:       "A",
			wantCurrent: "A",
			wantHistory: []string{"C", "B"},
		},
		{
			name:        "empty current is not pushed",
			current:     "",
			history:     []string{"B", "A"},
			entry:       "A",
			wantCurrent: "A",
			wantHistory: []string{"B"},
		},
		{
			name:        "restore value equal to current",
			current:     "A",
			history:     []string{"A", "B"},
			entry:       "A",
			wantCurrent: "A",
			wantHistory: []string{"B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStep()
			s.CurrentResponse = tt.current
			s.ResponseHistory = tt.history

			require.NoError(t, s.RestoreResponse(tt.entry))

			assert.Equal(t, tt.wantCurrent, s.CurrentResponse)
			assert.Equal(t, tt.wantHistory, s.ResponseHistory)
		})
	}
}

func TestRestoreTwiceNeverDuplicatesCurrent(t *testing.T) {
	histories := [][]string{
		{"X", "Y", "Z"},
		{"Y", "X"},
		{"X", "Y", "X", "Y"},
	}
	for _, h := range histories {
		for _, current := range []string{"", "X", "Y", "W"} {
			s := newStep()
			s.CurrentResponse = current
			s.ResponseHistory = append([]string{}, h...)

			require.NoError(t, s.RestoreResponse("X"))
			require.NoError(t, s.RestoreResponse("Y"))

			assert.Equal(t, "Y", s.CurrentResponse)
			assert.NotContains(t, s.ResponseHistory, "Y")
		}
	}
}

func TestRestoreRejectedWhileGenerating(t *testing.T) {
	s := newStep()
	s.ResponseHistory = []string{"A"}
	_, err := s.BeginGeneration("")
	require.NoError(t, err)

	assert.ErrorIs(t, s.RestoreResponse("A"), ErrGenerationInProgress)
}

func TestRestoreHistoryIndex(t *testing.T) {
	s := newStep()
	s.CurrentResponse = "C"
	s.ResponseHistory = []string{"B", "A"}

	assert.ErrorIs(t, s.RestoreHistoryIndex(2), ErrHistoryIndex)
	assert.ErrorIs(t, s.RestoreHistoryIndex(-1), ErrHistoryIndex)

	require.NoError(t, s.RestoreHistoryIndex(1))
	assert.Equal(t, "A", s.CurrentResponse)
	assert.Equal(t, []string{"C", "B"}, s.ResponseHistory)
}

func TestCoachingRoundTripScenario(t *testing.T) {
	doc := NewDocument(Canonical())
	step := doc.Step(0)
	step.DraftInput = strings.Repeat("a", 60)

	ok, _ := ValidateStepInput(step.DraftInput)
	require.True(t, ok)

	gen, err := step.BeginGeneration(step.CurrentResponse)
	require.NoError(t, err)
	for _, c := range []string{"Hola ", "que ", "tal"} {
		require.NoError(t, step.AppendChunk(gen, c, nil))
	}
	step.EndGeneration(gen)

	assert.Equal(t, "Hola que tal", step.CurrentResponse)
	assert.False(t, step.IsGenerating)
	assert.Len(t, step.ResponseHistory, 0)

	step.DraftInput = strings.Repeat("b", 70)
	gen, err = step.BeginGeneration(step.CurrentResponse)
	require.NoError(t, err)
	step.EndGeneration(gen)

	assert.Equal(t, []string{"Hola que tal"}, step.ResponseHistory)
}
