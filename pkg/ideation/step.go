package ideation

import "strings"

// StepID identifies one of the four fixed stages of the framework.
type StepID string

const (
	StepProblem        StepID = "problem"
	StepHypothesis     StepID = "hypothesis"
	StepImplementation StepID = "implementation"
	StepReflection     StepID = "reflection"
)

// legacyStepIDs maps the identifiers used by the first version of the product.
var legacyStepIDs = map[string]StepID{
	"solve":       StepProblem,
	"hypothesize": StepHypothesis,
	"implement":   StepImplementation,
	"persevere":   StepReflection,
}

// ParseStepID accepts canonical and legacy identifiers.
func ParseStepID(raw string) (StepID, bool) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	switch StepID(raw) {
	case StepProblem, StepHypothesis, StepImplementation, StepReflection:
		return StepID(raw), true
	}
	if id, ok := legacyStepIDs[raw]; ok {
		return id, true
	}
	return "", false
}

// Citation is a web source returned by a grounded generation.
type Citation struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Step is one stage of a session. Definition fields come from the canonical
// definitions and are never persisted.
type Step struct {
	ID          StepID `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	HelpText    string `json:"helpText"`
	Placeholder string `json:"placeholder"`

	DraftInput      string     `json:"draftInput"`
	CurrentResponse string     `json:"currentResponse"`
	ResponseHistory []string   `json:"responseHistory"`
	IsGenerating    bool       `json:"isGenerating"`
	Citations       []Citation `json:"citations"`

	// generation identifies the stream currently allowed to write into the step.
	generation uint64
}

// Generation returns the id of the current (or last) stream of the step.
func (s *Step) Generation() uint64 { return s.generation }

func (s *Step) clone() Step {
	out := *s
	out.ResponseHistory = append([]string{}, s.ResponseHistory...)
	out.Citations = append([]Citation{}, s.Citations...)
	return out
}

// ClientProfile describes who the project is for. Name is required to save.
type ClientProfile struct {
	Name    string `json:"name"`
	Company string `json:"company"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
}

// StepDocument is the whole in-progress session.
type StepDocument struct {
	ProjectName   string        `json:"projectName"`
	ClientProfile ClientProfile `json:"clientProfile"`
	Steps         []Step        `json:"steps"`
	IsPersisted   bool          `json:"isPersisted"`
}

// NewDocument builds an empty document from the canonical definitions.
func NewDocument(defs []Definition) *StepDocument {
	doc := &StepDocument{Steps: make([]Step, 0, len(defs))}
	for i := range defs {
		doc.Steps = append(doc.Steps, emptyStep(defs[i]))
	}
	return doc
}

func emptyStep(def Definition) Step {
	return Step{
		ID:              def.ID,
		Title:           def.Title,
		Description:     def.Description,
		HelpText:        def.HelpText,
		Placeholder:     def.Placeholder,
		ResponseHistory: []string{},
		Citations:       []Citation{},
	}
}

// Step returns the step at index, or nil when out of range.
func (d *StepDocument) Step(index int) *Step {
	if index < 0 || index >= len(d.Steps) {
		return nil
	}
	return &d.Steps[index]
}

// StepByID returns the step with the given id, or nil.
func (d *StepDocument) StepByID(id StepID) *Step {
	for i := range d.Steps {
		if d.Steps[i].ID == id {
			return &d.Steps[i]
		}
	}
	return nil
}

// Inputs returns the draft input of every step keyed by id.
func (d *StepDocument) Inputs() map[StepID]string {
	out := make(map[StepID]string, len(d.Steps))
	for _, s := range d.Steps {
		out[s.ID] = s.DraftInput
	}
	return out
}

// IsPristine reports whether nothing worth saving has been entered yet.
func (d *StepDocument) IsPristine() bool {
	if strings.TrimSpace(d.ProjectName) != "" || strings.TrimSpace(d.ClientProfile.Name) != "" {
		return false
	}
	for _, s := range d.Steps {
		if strings.TrimSpace(s.DraftInput) != "" || strings.TrimSpace(s.CurrentResponse) != "" {
			return false
		}
	}
	return true
}

// IsSaveable mirrors the condition under which a project may be archived.
func (d *StepDocument) IsSaveable() bool {
	if strings.TrimSpace(d.ProjectName) == "" || strings.TrimSpace(d.ClientProfile.Name) == "" {
		return false
	}
	for _, s := range d.Steps {
		if strings.TrimSpace(s.DraftInput) == "" {
			return false
		}
	}
	return true
}

// Clone returns a deep copy, safe to hand out while the original keeps changing.
func (d *StepDocument) Clone() *StepDocument {
	out := *d
	out.Steps = make([]Step, len(d.Steps))
	for i := range d.Steps {
		out.Steps[i] = d.Steps[i].clone()
	}
	return &out
}

// DraftsOnly returns a copy keeping draft inputs only, as stored in templates.
func (d *StepDocument) DraftsOnly() *StepDocument {
	out := &StepDocument{Steps: make([]Step, len(d.Steps))}
	for i, s := range d.Steps {
		out.Steps[i] = Step{
			ID:              s.ID,
			Title:           s.Title,
			Description:     s.Description,
			HelpText:        s.HelpText,
			Placeholder:     s.Placeholder,
			DraftInput:      s.DraftInput,
			ResponseHistory: []string{},
			Citations:       []Citation{},
		}
	}
	return out
}
