package ideation

import (
	"encoding/json"
	"time"
)

// Persisted records carry mutable fields only. Definitions are restored from
// the canonical table on decode.

type projectRecord struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	SavedAt  time.Time        `json:"savedAt"`
	Status   ProjectStatus    `json:"status"`
	Document *PartialDocument `json:"document"`
}

type templateRecord struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	CreatedAt time.Time        `json:"createdAt"`
	Document  *PartialDocument `json:"document"`
}

type dumpRecord struct {
	Version    int              `json:"version"`
	ExportedAt time.Time        `json:"exportedAt"`
	Archive    []projectRecord  `json:"archive"`
	Templates  []templateRecord `json:"templates"`
}

// EncodeDocument serializes a session for storage.
func EncodeDocument(d *StepDocument) ([]byte, error) {
	return json.Marshal(d.AsPartial())
}

// EncodeArchive serializes an archive collection for storage.
func EncodeArchive(projects []ArchivedProject) ([]byte, error) {
	return json.Marshal(projectRecords(projects))
}

// EncodeTemplates serializes a template collection for storage.
func EncodeTemplates(templates []ProjectTemplate) ([]byte, error) {
	return json.Marshal(templateRecords(templates))
}

// EncodeSettings serializes settings for storage.
func EncodeSettings(s Settings) ([]byte, error) {
	return json.Marshal(s.Normalize())
}

// EncodeDump serializes a full export. DecodeDump reads it back.
func EncodeDump(d *Dump) ([]byte, error) {
	return json.MarshalIndent(dumpRecord{
		Version:    d.Version,
		ExportedAt: d.ExportedAt,
		Archive:    projectRecords(d.Archive),
		Templates:  templateRecords(d.Templates),
	}, "", "  ")
}

func projectRecords(projects []ArchivedProject) []projectRecord {
	out := make([]projectRecord, 0, len(projects))
	for _, p := range projects {
		out = append(out, projectRecord{
			ID:       p.ID,
			Name:     p.Name,
			SavedAt:  p.SavedAt,
			Status:   p.Status,
			Document: p.Document.AsPartial(),
		})
	}
	return out
}

func templateRecords(templates []ProjectTemplate) []templateRecord {
	out := make([]templateRecord, 0, len(templates))
	for _, t := range templates {
		out = append(out, templateRecord{
			ID:        t.ID,
			Name:      t.Name,
			CreatedAt: t.CreatedAt,
			Document:  t.Document.AsPartial(),
		})
	}
	return out
}
