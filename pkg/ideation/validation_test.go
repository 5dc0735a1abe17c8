package ideation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStepInput(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantOK bool
	}{
		{name: "empty", input: "", wantOK: false},
		{name: "whitespace", input: strings.Repeat(" ", 80), wantOK: false},
		{name: "49 chars", input: strings.Repeat("x", 49), wantOK: false},
		{name: "49 chars padded", input: "   " + strings.Repeat("x", 49) + "\n\t", wantOK: false},
		{name: "50 chars", input: strings.Repeat("x", 50), wantOK: true},
		{name: "50 accented runes", input: strings.Repeat("ñ", 50), wantOK: true},
		{name: "long", input: strings.Repeat("idea ", 40), wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := ValidateStepInput(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Empty(t, reason)
			} else {
				assert.Equal(t, MessageInputTooShort, reason)
			}
		})
	}
}

func TestValidateForSummaryAggregatesAllFields(t *testing.T) {
	doc := NewDocument(Canonical())
	doc.ClientProfile.Name = "Ana"
	for i := range doc.Steps {
		doc.Steps[i].DraftInput = strings.Repeat("x", 60)
	}
	doc.Steps[2].DraftInput = "corto"

	verr := ValidateForSummary(doc)
	require.NotNil(t, verr)

	assert.Len(t, verr.Fields, 2)
	assert.Contains(t, verr.Fields, FieldProjectName)
	assert.Contains(t, verr.Fields, string(StepImplementation))
	assert.Contains(t, verr.Error(), FieldProjectName)
}

func TestValidateForSummaryPasses(t *testing.T) {
	doc := NewDocument(Canonical())
	doc.ProjectName = "Proyecto"
	doc.ClientProfile.Name = "Ana"
	for i := range doc.Steps {
		doc.Steps[i].DraftInput = strings.Repeat("x", 50)
	}

	assert.Nil(t, ValidateForSummary(doc))
}

func TestValidateForSummaryEmptyDocument(t *testing.T) {
	verr := ValidateForSummary(NewDocument(Canonical()))
	require.NotNil(t, verr)
	assert.Len(t, verr.Fields, 6)
}
