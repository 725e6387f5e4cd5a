package validation

import (
	"fmt"
	"sort"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-coursepack/content"
)

// SlugRecord is a slug declared in a Module or Course frontmatter.
type SlugRecord struct {
	File string
	Line int
	Slug string
}

// ValidateSlug reports whether value is a normalized slug.
func ValidateSlug(value string) error {
	return validation.Validate(value,
		validation.Required,
		validation.By(func(any) error {
			if !content.IsValidSlug(value) {
				return validation.NewError("validation_slug_format", "must be lowercase words separated by hyphens")
			}
			return nil
		}),
	)
}

// CheckSlugs flags malformed slugs and slugs used by more than one file.
// The first file in path order keeps the slug.
func CheckSlugs(records []SlugRecord) []content.ContentError {
	sorted := append([]SlugRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].File < sorted[j].File })

	var out []content.ContentError
	seen := make(map[string]SlugRecord, len(sorted))
	for _, record := range sorted {
		slug := strings.TrimSpace(record.Slug)
		if slug == "" {
			continue
		}
		if err := ValidateSlug(slug); err != nil {
			entry := content.NewError(content.KindInvalidSlug, record.File, record.Line,
				fmt.Sprintf("Invalid slug '%s': %s", slug, err.Error()))
			if normalized, nerr := content.NormalizeSlug(slug); nerr == nil && normalized != "" {
				entry = entry.WithSuggestion(fmt.Sprintf("Use slug: %s", normalized))
			}
			out = append(out, entry)
			continue
		}
		if first, ok := seen[slug]; ok {
			out = append(out, content.NewError(content.KindDuplicateSlug, record.File, record.Line,
				fmt.Sprintf("Duplicate slug '%s', already used by %s", slug, first.File)).
				WithSuggestion("Choose a unique slug"))
			continue
		}
		seen[slug] = record
	}
	return out
}
