package parser

import (
	"path"
	"strings"

	"github.com/goliatone/go-coursepack/content"
	"github.com/goliatone/go-coursepack/internal/markdown"
)

// LearningOutcomeFrontmatterKeys lists the frontmatter keys a Learning Outcome may declare.
var LearningOutcomeFrontmatterKeys = []string{"id", "name", "title", "description", "tags"}

const learningOutcomeMaxLevel = 4

// LearningOutcome is a parsed Learning Outcome file.
type LearningOutcome struct {
	Path   string
	ID     string
	Name   string
	Lenses []LensRef
	Test   *TestBlock
}

// TestBlock is the inline `## Test:` of a Learning Outcome. Its segments
// never need source resolution.
type TestBlock struct {
	Line     int
	Segments []Segment
}

var testSegments = map[content.SegmentType]bool{
	content.SegmentText:     true,
	content.SegmentChat:     true,
	content.SegmentQuestion: true,
}

// ParseLearningOutcome parses a Learning Outcome file. Defects drop the
// affected lens reference or segment and never the whole file.
func ParseLearningOutcome(file, text string) (*LearningOutcome, []content.ContentError) {
	var errs []content.ContentError
	doc := markdown.ParseFrontMatter(text)

	lo := &LearningOutcome{
		Path: file,
		ID:   doc.Field("id"),
		Name: firstNonEmpty(doc.Field("name"), doc.Field("title")),
	}
	if lo.Name == "" {
		lo.Name = strings.TrimSuffix(path.Base(file), ".md")
	}

	_, roots := scan(doc.Body, doc.BodyLine, learningOutcomeMaxLevel)
	for _, b := range flattenRoots(roots, 2) {
		switch {
		case b.level == 2 && b.keyword == "lens":
			if ref, ok := parseLensRef(file, b, &errs); ok {
				lo.Lenses = append(lo.Lenses, ref)
			}
		case b.level == 2 && b.keyword == "test":
			if lo.Test != nil {
				errs = append(errs, content.NewError(content.KindUnknownSectionType, file, b.line,
					"Learning Outcome declares more than one ## Test: section").
					WithSuggestion("Merge the questions into the first ## Test: section"))
				continue
			}
			lo.Test = parseTest(file, b, &errs)
		default:
			errs = append(errs, unknownSection(file, b, "## Lens: or ## Test:"))
		}
	}

	return lo, errs
}

func parseTest(file string, b *block, errs *[]content.ContentError) *TestBlock {
	test := &TestBlock{Line: b.line}
	for _, child := range flattenRoots(b.children, 4) {
		if seg, ok := parseSegment(file, child, testSegments, "A ## Test: may contain #### Text, #### Chat: and #### Question segments", errs); ok {
			test.Segments = append(test.Segments, seg)
		}
	}
	return test
}

// flattenRoots lifts blocks that sit above the expected level (for example a
// stray `#` header) so they are reported instead of silently swallowing the
// headers nested under them.
func flattenRoots(blocks []*block, level int) []*block {
	var out []*block
	for _, b := range blocks {
		if b.level < level {
			out = append(out, b)
			out = append(out, flattenRoots(b.children, level)...)
			continue
		}
		out = append(out, b)
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
