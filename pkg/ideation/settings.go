package ideation

import (
	"encoding/json"
	"strings"
)

// Model selects the generation model tier.
type Model string

const (
	ModelFlashLite Model = "flash-lite"
	ModelFlash     Model = "flash"
	ModelPro       Model = "pro"
)

var modelIDs = map[Model]string{
	ModelFlashLite: "gemini-2.5-flash-lite",
	ModelFlash:     "gemini-2.5-flash",
	ModelPro:       "gemini-2.5-pro",
}

// ParseModel accepts the short selector or the full model id. Unknown values
// fall back to flash.
func ParseModel(raw string) Model {
	raw = strings.ToLower(strings.TrimSpace(raw))
	for m, id := range modelIDs {
		if raw == string(m) || raw == id {
			return m
		}
	}
	return ModelFlash
}

// ID returns the provider model id for the selector.
func (m Model) ID() string {
	if id, ok := modelIDs[m]; ok {
		return id
	}
	return modelIDs[ModelFlash]
}

// Settings are the workspace-wide generation preferences. DeepReasoning and
// WebGrounding are never both true.
type Settings struct {
	Temperature   float64 `json:"temperature"`
	Model         Model   `json:"model"`
	DeepReasoning bool    `json:"deepReasoning"`
	WebGrounding  bool    `json:"webGrounding"`
}

// DefaultSettings returns the settings used on first run.
func DefaultSettings() Settings {
	return Settings{Temperature: 0.7, Model: ModelFlash}
}

// Normalize clamps the temperature, resolves the model and enforces the
// exclusivity of the capability flags, keeping deep reasoning on conflict.
func (s Settings) Normalize() Settings {
	if s.Temperature < 0 {
		s.Temperature = 0
	}
	if s.Temperature > 1 {
		s.Temperature = 1
	}
	s.Model = ParseModel(string(s.Model))
	if s.DeepReasoning {
		s.WebGrounding = false
	}
	return s
}

// EnableDeepReasoning turns deep reasoning on or off. Turning it on clears web grounding.
func (s *Settings) EnableDeepReasoning(on bool) {
	s.DeepReasoning = on
	if on {
		s.WebGrounding = false
	}
}

// EnableWebGrounding turns web grounding on or off. Turning it on clears deep reasoning.
func (s *Settings) EnableWebGrounding(on bool) {
	s.WebGrounding = on
	if on {
		s.DeepReasoning = false
	}
}

// DecodeSettings reads a persisted settings blob, falling back to defaults for
// anything missing or malformed.
func DecodeSettings(blob []byte) Settings {
	out := DefaultSettings()
	fields := decodeObject(blob)
	if fields == nil {
		return out
	}
	if raw, ok := fields["temperature"]; ok {
		var t float64
		if json.Unmarshal(raw, &t) == nil {
			out.Temperature = t
		}
	}
	if m := decodeString(fields["model"]); m != nil {
		out.Model = Model(*m)
	}
	if raw, ok := firstPresentBool(fields, "webGrounding", "useGoogleSearch"); ok {
		out.WebGrounding = raw
	}
	if raw, ok := firstPresentBool(fields, "deepReasoning", "useThinkingMode"); ok {
		out.DeepReasoning = raw
	}
	return out.Normalize()
}

func firstPresentBool(fields map[string]json.RawMessage, keys ...string) (bool, bool) {
	raw := firstPresent(fields, keys...)
	if raw == nil {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, false
	}
	return b, true
}
