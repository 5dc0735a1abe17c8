package ideation

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// IDLayout formats archive and template ids from their creation time.
const IDLayout = "2006-01-02T15:04:05.000Z"

// DumpVersion is the current version of the export format.
const DumpVersion = 1

// ProjectStatus tracks what became of an archived project.
type ProjectStatus string

const (
	StatusPending ProjectStatus = "pending"
	StatusSuccess ProjectStatus = "success"
	StatusFailed  ProjectStatus = "failed"
)

// ParseStatus validates a status tag.
func ParseStatus(raw string) (ProjectStatus, bool) {
	switch s := ProjectStatus(raw); s {
	case StatusPending, StatusSuccess, StatusFailed:
		return s, true
	}
	return "", false
}

// ArchivedProject is a saved snapshot of a session. Only Status changes after creation.
type ArchivedProject struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	SavedAt  time.Time     `json:"savedAt"`
	Document *StepDocument `json:"document"`
	Status   ProjectStatus `json:"status"`
}

// NewArchivedProject snapshots doc as a pending project.
func NewArchivedProject(doc *StepDocument, now time.Time) ArchivedProject {
	snapshot := doc.Clone()
	snapshot.IsPersisted = true
	for i := range snapshot.Steps {
		snapshot.Steps[i].IsGenerating = false
	}
	return ArchivedProject{
		ID:       now.UTC().Format(IDLayout),
		Name:     snapshot.ProjectName,
		SavedAt:  now.UTC(),
		Document: snapshot,
		Status:   StatusPending,
	}
}

// ProjectTemplate is a reusable starting draft. Its document holds draft inputs only.
type ProjectTemplate struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	CreatedAt time.Time     `json:"createdAt"`
	Document  *StepDocument `json:"document"`
}

// NewTemplate builds a template from doc, dropping every AI output.
func NewTemplate(name string, doc *StepDocument, now time.Time) ProjectTemplate {
	return ProjectTemplate{
		ID:        now.UTC().Format(IDLayout),
		Name:      name,
		CreatedAt: now.UTC(),
		Document:  doc.DraftsOnly(),
	}
}

// Dump is the full export of the archive and template collections.
type Dump struct {
	Version    int               `json:"version"`
	ExportedAt time.Time         `json:"exportedAt"`
	Archive    []ArchivedProject `json:"archive"`
	Templates  []ProjectTemplate `json:"templates"`
}

var errNotCollection = errors.New("blob is not a JSON array")

// DecodeArchive reads a persisted archive collection. Entries are rebuilt
// through Reconcile so that damaged snapshots still load. An error is returned
// only when the blob is not an array at all.
func DecodeArchive(defs []Definition, blob []byte) ([]ArchivedProject, error) {
	items, err := decodeArray(blob)
	if err != nil {
		return nil, fmt.Errorf("decode archive: %w", err)
	}
	out := make([]ArchivedProject, 0, len(items))
	for _, item := range items {
		fields := decodeObject(item)
		if fields == nil {
			continue
		}
		p := ArchivedProject{
			SavedAt:  decodeTime(fields["savedAt"]),
			Document: decodeSnapshot(defs, fields),
			Status:   StatusPending,
		}
		if v := decodeString(fields["id"]); v != nil {
			p.ID = *v
		}
		if v := decodeString(fields["name"]); v != nil {
			p.Name = *v
		}
		if v := decodeString(fields["status"]); v != nil {
			if st, ok := ParseStatus(*v); ok {
				p.Status = st
			}
		}
		if p.ID == "" {
			continue
		}
		if p.Document.ProjectName == "" {
			p.Document.ProjectName = p.Name
		}
		p.Document.IsPersisted = true
		out = append(out, p)
	}
	return out, nil
}

// DecodeTemplates reads a persisted template collection the same way.
func DecodeTemplates(defs []Definition, blob []byte) ([]ProjectTemplate, error) {
	items, err := decodeArray(blob)
	if err != nil {
		return nil, fmt.Errorf("decode templates: %w", err)
	}
	out := make([]ProjectTemplate, 0, len(items))
	for _, item := range items {
		fields := decodeObject(item)
		if fields == nil {
			continue
		}
		t := ProjectTemplate{
			CreatedAt: decodeTime(fields["createdAt"]),
			Document:  decodeSnapshot(defs, fields).DraftsOnly(),
		}
		if v := decodeString(fields["id"]); v != nil {
			t.ID = *v
		}
		if v := decodeString(fields["name"]); v != nil {
			t.Name = *v
		}
		if t.ID == "" {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

// DecodeDump reads an export produced by a previous version of the service.
func DecodeDump(defs []Definition, blob []byte) (*Dump, error) {
	fields := decodeObject(blob)
	if fields == nil {
		return nil, fmt.Errorf("decode dump: %w", errors.New("blob is not a JSON object"))
	}
	d := &Dump{Version: DumpVersion, ExportedAt: decodeTime(fields["exportedAt"])}
	if raw, ok := fields["version"]; ok {
		var v int
		if json.Unmarshal(raw, &v) == nil {
			d.Version = v
		}
	}
	if d.Version > DumpVersion {
		return nil, fmt.Errorf("decode dump: unsupported version %d", d.Version)
	}
	if raw, ok := fields["archive"]; ok {
		archive, err := DecodeArchive(defs, raw)
		if err != nil {
			return nil, fmt.Errorf("decode dump: %w", err)
		}
		d.Archive = archive
	}
	if raw, ok := fields["templates"]; ok {
		templates, err := DecodeTemplates(defs, raw)
		if err != nil {
			return nil, fmt.Errorf("decode dump: %w", err)
		}
		d.Templates = templates
	}
	return d, nil
}

// decodeSnapshot reconciles the document of an archive or template entry. The
// current shape nests it under "document"; older entries keep the steps under
// "data" next to the profile.
func decodeSnapshot(defs []Definition, fields map[string]json.RawMessage) *StepDocument {
	if nested := decodeObject(fields["document"]); nested != nil {
		return Reconcile(defs, decodePartialFields(nested))
	}
	return Reconcile(defs, decodePartialFields(fields))
}

func decodeArray(blob []byte) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(blob, &items); err != nil {
		return nil, errNotCollection
	}
	return items, nil
}

func decodeTime(raw json.RawMessage) time.Time {
	s := decodeString(raw)
	if s == nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, *s)
	if err != nil {
		return time.Time{}
	}
	return t
}
