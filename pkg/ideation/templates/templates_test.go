package templates

import (
	"testing"

	"ship-framework-be/pkg/ideation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreloaded(t *testing.T) {
	got, err := Preloaded(ideation.Canonical())
	require.NoError(t, err)
	require.Len(t, got, 8)

	ids := map[string]bool{}
	for _, tpl := range got {
		assert.False(t, ids[tpl.ID], "duplicate id %s", tpl.ID)
		ids[tpl.ID] = true
		assert.NotEmpty(t, tpl.Name)
		assert.False(t, tpl.CreatedAt.IsZero())
		require.Len(t, tpl.Document.Steps, 4)
		for _, s := range tpl.Document.Steps {
			ok, _ := ideation.ValidateStepInput(s.DraftInput)
			assert.True(t, ok, "%s/%s should be long enough to coach", tpl.ID, s.ID)
			assert.Empty(t, s.CurrentResponse)
		}
	}
	assert.True(t, ids["template-fitness-app"])
}

func TestParseRejectsUnknownStep(t *testing.T) {
	data := []byte(`
- id: t1
  name: uno
  createdAt: 2024-01-01T00:00:00Z
  inputs:
    marketing: "x"
`)
	_, err := parse(ideation.Canonical(), data)
	assert.Error(t, err)
}

func TestParseAcceptsLegacyStepNames(t *testing.T) {
	data := []byte(`
- id: t1
  name: uno
  createdAt: 2024-01-01T00:00:00Z
  inputs:
    solve: "problema"
`)
	got, err := parse(ideation.Canonical(), data)
	require.NoError(t, err)
	assert.Equal(t, "problema", got[0].Document.Steps[0].DraftInput)
}
