package validation

import (
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-coursepack/content"
)

const uuidFormatMessage = "must be formatted as 8-4-4-4-12 hex digits"

// IDRecord is a content id declared by a file, either in frontmatter or in
// an `id::` field.
type IDRecord struct {
	File string
	Line int
	ID   string
}

// ValidateUUID reports whether value is a canonical 8-4-4-4-12 hex UUID.
func ValidateUUID(value string) error {
	_, err := parseUUID(value)
	return err
}

// parseUUID accepts only the hyphenated 36 character form; uuid.Parse alone
// would also take the braced, urn and compact encodings.
func parseUUID(value string) (uuid.UUID, error) {
	var parsed uuid.UUID
	err := validation.Validate(value,
		validation.Required,
		validation.RuneLength(36, 36).Error(uuidFormatMessage),
		validation.By(func(any) error {
			id, err := uuid.Parse(value)
			if err != nil {
				return validation.NewError("validation_uuid_format", uuidFormatMessage)
			}
			parsed = id
			return nil
		}),
	)
	return parsed, err
}

// CheckUUIDs validates the format of every id and flags duplicates. Records
// are ordered by file then line; the first occurrence of an id wins and
// every later one is reported against it. Empty ids are ignored.
func CheckUUIDs(records []IDRecord) []content.ContentError {
	sorted := append([]IDRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].File != sorted[j].File {
			return sorted[i].File < sorted[j].File
		}
		return sorted[i].Line < sorted[j].Line
	})

	var out []content.ContentError
	seen := make(map[string]IDRecord, len(sorted))
	for _, record := range sorted {
		id := strings.TrimSpace(record.ID)
		if id == "" {
			continue
		}
		parsed, err := parseUUID(id)
		if err != nil {
			out = append(out, content.NewError(content.KindUUIDFormat, record.File, record.Line,
				fmt.Sprintf("Invalid UUID format: %s", id)).
				WithSuggestion("Use the 8-4-4-4-12 form, e.g. 3f2b9c1e-8d4a-4e6b-9c2d-1a2b3c4d5e6f"))
			continue
		}
		key := parsed.String()
		if first, ok := seen[key]; ok {
			out = append(out, content.NewError(content.KindDuplicateUUID, record.File, record.Line,
				fmt.Sprintf("Duplicate UUID %s, first used in %s", id, location(first.File, first.Line))).
				WithSuggestion("Generate a new id for this file"))
			continue
		}
		seen[key] = record
	}
	return out
}

func location(file string, line int) string {
	if line > 0 {
		return fmt.Sprintf("%s:%d", file, line)
	}
	return file
}
