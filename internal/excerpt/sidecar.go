package excerpt

import (
	"encoding/json"
	"math"
	"sort"
	"strings"

	"github.com/goliatone/go-coursepack/content"
	"github.com/goliatone/go-coursepack/internal/validation"
)

// SidecarSuffix is appended to a transcript path, minus its `.md`
// extension, to locate its timestamps index.
const SidecarSuffix = ".timestamps.json"

var sidecarSchema = &validation.LazySchema{
	Name: "timestamps.json",
	Raw: []byte(`{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "array",
	"items": {
		"type": "object",
		"required": ["text", "start"],
		"properties": {
			"text": {"type": "string"},
			"start": {
				"oneOf": [
					{"type": "number", "minimum": 0},
					{"type": "string", "pattern": "^(\\d+:)?\\d{1,2}:\\d{2}$"}
				]
			},
			"end": {
				"oneOf": [
					{"type": "number", "minimum": 0},
					{"type": "string", "pattern": "^(\\d+:)?\\d{1,2}:\\d{2}$"}
				]
			}
		}
	}
}`),
}

type sidecarEntry struct {
	Text  string          `json:"text"`
	Start json.RawMessage `json:"start"`
	End   json.RawMessage `json:"end,omitempty"`
}

// SidecarPath returns the timestamps index path for a transcript file.
func SidecarPath(transcriptPath string) string {
	return strings.TrimSuffix(transcriptPath, ".md") + SidecarSuffix
}

// LoadTranscript returns the transcript for the file at path. A valid
// sidecar index wins; a missing or malformed one falls back to the inline
// lines of body without reporting anything.
func LoadTranscript(files content.FileMap, path, body string) Transcript {
	if raw, ok := files[SidecarPath(path)]; ok {
		if transcript, ok := ParseSidecar([]byte(raw)); ok {
			return transcript
		}
	}
	return ParseTranscript(body)
}

// ParseSidecar decodes a timestamps index: a JSON array of
// `{"text": "...", "start": 90.5}` entries. start and end may also be
// `M:SS` strings. Fractional seconds are floored.
func ParseSidecar(raw []byte) (Transcript, bool) {
	schema, err := sidecarSchema.Get()
	if err != nil {
		return Transcript{}, false
	}
	if _, err := schema.ValidateJSON(raw); err != nil {
		return Transcript{}, false
	}

	var decoded []sidecarEntry
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Transcript{}, false
	}

	entries := make([]Entry, 0, len(decoded))
	for _, item := range decoded {
		start, ok := sidecarSeconds(item.Start)
		if !ok {
			return Transcript{}, false
		}
		end := 0
		if len(item.End) > 0 {
			if end, ok = sidecarSeconds(item.End); !ok {
				return Transcript{}, false
			}
		}
		entries = append(entries, Entry{Start: start, End: end, Text: strings.TrimSpace(item.Text)})
	}
	if len(entries) == 0 {
		return Transcript{}, false
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Start < entries[j].Start })

	return Transcript{Entries: entries, Separator: " ", Sidecar: true}, true
}

func sidecarSeconds(raw json.RawMessage) (int, bool) {
	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		return int(math.Floor(number)), true
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		seconds, err := ParseTimestamp(text)
		return seconds, err == nil
	}
	return 0, false
}
