package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/goliatone/go-coursepack/content"
)

// DefaultTypoDistance is the largest edit distance reported as a likely typo.
const DefaultTypoDistance = 2

// SuggestField returns the known key closest to key when it is within
// maxDistance edits. Exact matches and empty input return false.
func SuggestField(key string, known []string, maxDistance int) (string, bool) {
	if maxDistance <= 0 {
		maxDistance = DefaultTypoDistance
	}
	normalized := strings.ToLower(strings.TrimSpace(key))
	if normalized == "" {
		return "", false
	}

	best := ""
	bestDistance := maxDistance + 1
	for _, candidate := range known {
		lower := strings.ToLower(candidate)
		if lower == normalized {
			return "", false
		}
		distance := levenshtein.ComputeDistance(normalized, lower)
		if distance < bestDistance || (distance == bestDistance && candidate < best) {
			best = candidate
			bestDistance = distance
		}
	}
	if best == "" || bestDistance > maxDistance {
		return "", false
	}
	return best, true
}

// FieldTypo reports an unknown `key::` field that looks like a misspelled
// known field. Unknown fields with no close match return false.
func FieldTypo(file string, line int, key string, known []string) (content.ContentError, bool) {
	suggestion, ok := SuggestField(key, known, DefaultTypoDistance)
	if !ok {
		return content.ContentError{}, false
	}
	return content.NewWarning(content.KindTypoWarning, file, line,
		fmt.Sprintf("Unknown field '%s::'", key)).
		WithSuggestion(fmt.Sprintf("Did you mean '%s::'?", suggestion)), true
}

// FrontmatterRecord is the frontmatter of one file, as seen by the vault passes.
type FrontmatterRecord struct {
	File     string
	Keys     []string
	KeyLines map[string]int
	Known    []string
}

// CheckFrontmatterTypos flags frontmatter keys that look like misspelled
// known keys. Records are processed in file order.
func CheckFrontmatterTypos(records []FrontmatterRecord, maxDistance int) []content.ContentError {
	sorted := append([]FrontmatterRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].File < sorted[j].File })

	var out []content.ContentError
	for _, record := range sorted {
		for _, key := range record.Keys {
			suggestion, ok := SuggestField(key, record.Known, maxDistance)
			if !ok {
				continue
			}
			line := record.KeyLines[key]
			out = append(out, content.NewWarning(content.KindTypoWarning, record.File, line,
				fmt.Sprintf("Unknown frontmatter field '%s'", key)).
				WithSuggestion(fmt.Sprintf("Did you mean '%s'?", suggestion)))
		}
	}
	return out
}
