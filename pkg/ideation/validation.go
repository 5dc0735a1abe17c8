package ideation

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// MinInputLength is the minimum number of characters, after trimming, a step
// input needs before coaching can be requested.
const MinInputLength = 50

const (
	MessageInputTooShort = "La entrada es demasiado corta para obtener una retroalimentación de calidad. Por favor, proporciona al menos 50 caracteres."
	MessageRequired      = "Este campo es obligatorio."

	FieldProjectName = "projectName"
	FieldClientName  = "userName"
)

// ValidationError carries every failing field at once, keyed by field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("validation failed: %s", strings.Join(keys, ", "))
}

// ValidateStepInput checks a single step input. The returned reason is empty
// when the input is acceptable.
func ValidateStepInput(text string) (bool, string) {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < MinInputLength {
		return false, MessageInputTooShort
	}
	return true, ""
}

// ValidateForSummary checks everything required to show the summary and
// returns nil when the document passes.
func ValidateForSummary(d *StepDocument) *ValidationError {
	fields := map[string]string{}
	if strings.TrimSpace(d.ProjectName) == "" {
		fields[FieldProjectName] = MessageRequired
	}
	if strings.TrimSpace(d.ClientProfile.Name) == "" {
		fields[FieldClientName] = MessageRequired
	}
	for _, s := range d.Steps {
		if ok, reason := ValidateStepInput(s.DraftInput); !ok {
			fields[string(s.ID)] = reason
		}
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
