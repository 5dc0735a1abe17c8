package ideation

import (
	"encoding/json"
	"strings"
)

// PartialStep is a persisted step as found in storage. Nil fields were absent
// or could not be decoded.
type PartialStep struct {
	ID              *string    `json:"id,omitempty"`
	DraftInput      *string    `json:"draftInput,omitempty"`
	CurrentResponse *string    `json:"currentResponse,omitempty"`
	ResponseHistory []string   `json:"responseHistory"`
	Citations       []Citation `json:"citations"`
}

// PartialDocument is a persisted session as found in storage.
type PartialDocument struct {
	ProjectName   *string        `json:"projectName,omitempty"`
	ClientProfile *ClientProfile `json:"clientProfile,omitempty"`
	Steps         []PartialStep  `json:"steps"`
}

// Reconcile rebuilds a complete document from canonical definitions and a
// possibly partial persisted record. It never fails: a nil record or one with
// the wrong number of steps yields the canonical empty document, and every
// missing field falls back to its default.
func Reconcile(defs []Definition, partial *PartialDocument) *StepDocument {
	doc := NewDocument(defs)
	if partial == nil || len(partial.Steps) != len(defs) {
		return doc
	}

	if partial.ProjectName != nil {
		doc.ProjectName = *partial.ProjectName
	}
	if partial.ClientProfile != nil {
		doc.ClientProfile = *partial.ClientProfile
	}

	for i := range doc.Steps {
		ps := findPartialStep(partial.Steps, doc.Steps[i].ID)
		if ps == nil {
			continue
		}
		step := &doc.Steps[i]
		if ps.DraftInput != nil {
			step.DraftInput = *ps.DraftInput
		}
		if ps.CurrentResponse != nil {
			step.CurrentResponse = *ps.CurrentResponse
		}
		step.ResponseHistory = normalizeHistory(ps.ResponseHistory, step.CurrentResponse)
		step.Citations = mergeCitations(nil, ps.Citations)
	}
	return doc
}

func findPartialStep(steps []PartialStep, id StepID) *PartialStep {
	for i := range steps {
		if steps[i].ID == nil {
			continue
		}
		if parsed, ok := ParseStepID(*steps[i].ID); ok && parsed == id {
			return &steps[i]
		}
	}
	return nil
}

// normalizeHistory drops blank entries and adjacent duplicates, and never lets
// the head repeat the current response.
func normalizeHistory(history []string, current string) []string {
	out := make([]string, 0, len(history))
	for _, h := range history {
		if strings.TrimSpace(h) == "" {
			continue
		}
		if len(out) > 0 && out[len(out)-1] == h {
			continue
		}
		out = append(out, h)
	}
	for current != "" && len(out) > 0 && out[0] == current {
		out = out[1:]
	}
	return out
}

// AsPartial converts a full document back into the persisted shape.
func (d *StepDocument) AsPartial() *PartialDocument {
	name := d.ProjectName
	profile := d.ClientProfile
	out := &PartialDocument{
		ProjectName:   &name,
		ClientProfile: &profile,
		Steps:         make([]PartialStep, len(d.Steps)),
	}
	for i, s := range d.Steps {
		id := string(s.ID)
		draft := s.DraftInput
		current := s.CurrentResponse
		out.Steps[i] = PartialStep{
			ID:              &id,
			DraftInput:      &draft,
			CurrentResponse: &current,
			ResponseHistory: append([]string{}, s.ResponseHistory...),
			Citations:       append([]Citation{}, s.Citations...),
		}
	}
	return out
}

// DecodePartial reads a persisted session blob field by field. A field that
// has the wrong shape is treated as absent; it does not invalidate its
// siblings. Nil is returned only when the blob is not a JSON object.
func DecodePartial(blob []byte) *PartialDocument {
	fields := decodeObject(blob)
	if fields == nil {
		return nil
	}
	return decodePartialFields(fields)
}

func decodePartialFields(fields map[string]json.RawMessage) *PartialDocument {
	out := &PartialDocument{
		ProjectName: decodeString(fields["projectName"]),
	}
	if raw := firstPresent(fields, "clientProfile", "userProfile"); raw != nil {
		out.ClientProfile = decodeProfile(raw)
	}

	var rawSteps []json.RawMessage
	if raw := firstPresent(fields, "steps", "stepsData", "data"); raw != nil {
		if err := json.Unmarshal(raw, &rawSteps); err != nil {
			rawSteps = nil
		}
	}
	for _, raw := range rawSteps {
		out.Steps = append(out.Steps, decodeStep(raw))
	}
	return out
}

func decodeStep(raw json.RawMessage) PartialStep {
	fields := decodeObject(raw)
	if fields == nil {
		return PartialStep{}
	}
	return PartialStep{
		ID:              decodeString(fields["id"]),
		DraftInput:      decodeString(firstPresent(fields, "draftInput", "userInput")),
		CurrentResponse: decodeString(firstPresent(fields, "currentResponse", "aiResponse")),
		ResponseHistory: decodeStrings(firstPresent(fields, "responseHistory", "aiResponseHistory")),
		Citations:       decodeCitations(firstPresent(fields, "citations", "groundingChunks")),
	}
}

func decodeProfile(raw json.RawMessage) *ClientProfile {
	fields := decodeObject(raw)
	if fields == nil {
		return nil
	}
	p := &ClientProfile{}
	if v := decodeString(fields["name"]); v != nil {
		p.Name = *v
	}
	if v := decodeString(fields["company"]); v != nil {
		p.Company = *v
	}
	if v := decodeString(fields["email"]); v != nil {
		p.Email = *v
	}
	if v := decodeString(fields["phone"]); v != nil {
		p.Phone = *v
	}
	return p
}

// decodeCitations accepts {url,title} entries as well as the grounding chunk
// shape {web:{uri,title}}.
func decodeCitations(raw json.RawMessage) []Citation {
	var items []json.RawMessage
	if raw == nil || json.Unmarshal(raw, &items) != nil {
		return nil
	}
	out := make([]Citation, 0, len(items))
	for _, item := range items {
		fields := decodeObject(item)
		if fields == nil {
			continue
		}
		if web := decodeObject(fields["web"]); web != nil {
			fields = web
		}
		url := decodeString(firstPresent(fields, "url", "uri"))
		if url == nil {
			continue
		}
		c := Citation{URL: *url}
		if title := decodeString(fields["title"]); title != nil {
			c.Title = *title
		}
		out = append(out, c)
	}
	return out
}

func decodeObject(raw json.RawMessage) map[string]json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	return fields
}

func decodeString(raw json.RawMessage) *string {
	if raw == nil {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	return &s
}

// decodeStrings keeps the string elements of an array and skips the rest.
func decodeStrings(raw json.RawMessage) []string {
	var items []json.RawMessage
	if raw == nil || json.Unmarshal(raw, &items) != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := decodeString(item); s != nil {
			out = append(out, *s)
		}
	}
	return out
}

func firstPresent(fields map[string]json.RawMessage, keys ...string) json.RawMessage {
	for _, k := range keys {
		if raw, ok := fields[k]; ok {
			return raw
		}
	}
	return nil
}
