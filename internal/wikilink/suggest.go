package wikilink

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/goliatone/go-coursepack/content"
)

// DefaultSuggestionLimit caps the number of proposed alternatives.
const DefaultSuggestionLimit = 3

type candidate struct {
	path  string
	score int
}

// FindSimilarFiles proposes markdown files close to the missing target: the
// same name in another directory, or a similar name in the same directory.
// Results are ordered by closeness and then by path.
func FindSimilarFiles(target string, files content.FileMap, limit int) []string {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	targetDir := path.Dir(target)
	targetName := normalizeName(path.Base(target))
	if targetName == "" {
		return nil
	}
	threshold := max(2, len(targetName)/3)

	var found []candidate
	for candidatePath := range files {
		if !strings.HasSuffix(strings.ToLower(candidatePath), markdownExt) {
			continue
		}
		name := normalizeName(path.Base(candidatePath))
		sameDir := path.Dir(candidatePath) == targetDir

		switch {
		case name == targetName:
			score := 0
			if !sameDir {
				score = 1
			}
			found = append(found, candidate{path: candidatePath, score: score})
		case sameDir:
			distance := levenshtein.ComputeDistance(targetName, name)
			if distance <= threshold || strings.Contains(name, targetName) || strings.Contains(targetName, name) {
				found = append(found, candidate{path: candidatePath, score: 1 + distance})
			}
		}
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].score != found[j].score {
			return found[i].score < found[j].score
		}
		return found[i].path < found[j].path
	})

	if len(found) > limit {
		found = found[:limit]
	}
	out := make([]string, 0, len(found))
	for _, entry := range found {
		out = append(out, entry.path)
	}
	return out
}

// FormatSuggestion renders candidates as wikilinks relative to the file that
// holds the broken reference.
func FormatSuggestion(candidates []string, referencingPath string) string {
	if len(candidates) == 0 {
		return ""
	}
	fromDir := path.Dir(referencingPath)
	links := make([]string, 0, len(candidates))
	for _, target := range candidates {
		links = append(links, "[["+RelativeLink(fromDir, target)+"]]")
	}
	return fmt.Sprintf("Did you mean: %s?", strings.Join(links, ", "))
}

// RelativeLink returns the link path that reaches target from fromDir,
// without the markdown extension.
func RelativeLink(fromDir, target string) string {
	target = strings.TrimSuffix(target, markdownExt)

	var from []string
	if fromDir != "." && fromDir != "" {
		from = strings.Split(strings.Trim(fromDir, "/"), "/")
	}
	to := strings.Split(target, "/")

	common := 0
	for common < len(from) && common < len(to)-1 && from[common] == to[common] {
		common++
	}

	parts := make([]string, 0, len(from)-common+len(to)-common)
	for range from[common:] {
		parts = append(parts, "..")
	}
	parts = append(parts, to[common:]...)
	return strings.Join(parts, "/")
}

func normalizeName(name string) string {
	name = strings.TrimSuffix(strings.ToLower(name), markdownExt)
	return strings.TrimSpace(name)
}
