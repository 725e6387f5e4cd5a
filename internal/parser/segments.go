package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-coursepack/content"
	"github.com/goliatone/go-coursepack/internal/validation"
)

// Segment is a parsed segment block. Static segments are complete; excerpt
// segments carry the anchors the flattening engine resolves against the
// owning section's source.
type Segment struct {
	Kind    content.SegmentType
	Line    int
	Static  content.Segment
	Excerpt *ExcerptSpec
}

// ExcerptSpec holds the raw `from::`/`to::` anchors of an excerpt segment.
type ExcerptSpec struct {
	From     string
	FromLine int
	To       string
	ToLine   int
	Optional bool
}

var segmentKeywords = map[string]content.SegmentType{
	"text":            content.SegmentText,
	"chat":            content.SegmentChat,
	"question":        content.SegmentQuestion,
	"article-excerpt": content.SegmentArticleExcerpt,
	"video-excerpt":   content.SegmentVideoExcerpt,
}

var segmentFields = map[content.SegmentType][]string{
	content.SegmentText: {"content", "optional"},
	content.SegmentChat: {"instructions", "hidePreviousContentFromUser", "hidePreviousContentFromTutor", "optional"},
	content.SegmentQuestion: {
		"content", "assessmentInstructions", "maxTime", "maxChars", "enforceVoice", "optional",
	},
	content.SegmentArticleExcerpt: {"from", "to", "optional"},
	content.SegmentVideoExcerpt:   {"from", "to", "optional"},
}

// parseSegment decodes a segment block. allowed restricts the segment types
// valid in the enclosing section; hint explains where a disallowed segment
// belongs. Failures return false and the segment is omitted.
func parseSegment(file string, b *block, allowed map[content.SegmentType]bool, hint string, errs *[]content.ContentError) (Segment, bool) {
	kind, ok := segmentKeywords[b.keyword]
	if !ok {
		*errs = append(*errs, unknownSection(file, b, "#### Text, #### Chat:, #### Question, #### Article-excerpt or #### Video-excerpt"))
		return Segment{}, false
	}
	if !allowed[kind] {
		*errs = append(*errs, content.NewError(content.KindUnknownSectionType, file, b.line,
			fmt.Sprintf("Segment '%s' is not allowed here", b.heading)).WithSuggestion(hint))
		return Segment{}, false
	}

	checkFieldTypos(file, b, segmentFields[kind], errs)
	optional := parseBool(b.value("optional"))
	seg := Segment{Kind: kind, Line: b.line}

	switch kind {
	case content.SegmentText:
		text, ok := requireField(file, b, "content", "Add content:: followed by the text to show", errs)
		if !ok {
			return Segment{}, false
		}
		seg.Static = content.TextSegment{Content: text, Optional: optional}

	case content.SegmentChat:
		seg.Static = content.ChatSegment{
			Title:                        b.title,
			Instructions:                 b.value("instructions"),
			HidePreviousContentFromUser:  parseBool(b.value("hidePreviousContentFromUser")),
			HidePreviousContentFromTutor: parseBool(b.value("hidePreviousContentFromTutor")),
			Optional:                     optional,
		}

	case content.SegmentQuestion:
		text, ok := requireField(file, b, "content", "Add content:: followed by the question text", errs)
		if !ok {
			return Segment{}, false
		}
		question := content.QuestionSegment{
			Content:                text,
			AssessmentInstructions: b.value("assessmentInstructions"),
			MaxTime:                b.value("maxTime"),
			EnforceVoice:           parseBool(b.value("enforceVoice")),
			Optional:               optional,
		}
		if raw, line, ok := b.get("maxChars"); ok && strings.TrimSpace(raw) != "" {
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil || n < 0 {
				*errs = append(*errs, content.NewError(content.KindMissingRequiredField, file, line,
					fmt.Sprintf("maxChars must be a whole number, got '%s'", strings.TrimSpace(raw))).
					WithSuggestion("Use a value such as maxChars:: 500"))
				return Segment{}, false
			}
			question.MaxChars = n
		}
		seg.Static = question

	case content.SegmentArticleExcerpt, content.SegmentVideoExcerpt:
		spec := &ExcerptSpec{Optional: optional}
		if raw, line, ok := b.get("from"); ok {
			spec.From = unquote(strings.TrimSpace(raw))
			spec.FromLine = line
		}
		if raw, line, ok := b.get("to"); ok {
			spec.To = unquote(strings.TrimSpace(raw))
			spec.ToLine = line
		}
		seg.Excerpt = spec
	}

	return seg, true
}

func requireField(file string, b *block, key, suggestion string, errs *[]content.ContentError) (string, bool) {
	value := b.value(key)
	if value == "" {
		*errs = append(*errs, content.NewError(content.KindMissingRequiredField, file, b.line,
			fmt.Sprintf("%s is missing %s:: field", describe(b), key)).WithSuggestion(suggestion))
		return "", false
	}
	return value, true
}

func checkFieldTypos(file string, b *block, known []string, errs *[]content.ContentError) {
	for _, f := range b.fields {
		if containsFold(known, f.key) {
			continue
		}
		if warning, ok := validation.FieldTypo(file, f.line, f.key, known); ok {
			*errs = append(*errs, warning)
		}
	}
}

func unknownSection(file string, b *block, expected string) content.ContentError {
	return content.NewError(content.KindUnknownSectionType, file, b.line,
		fmt.Sprintf("Unknown section type: %s", b.heading)).
		WithSuggestion("Expected " + expected)
}

func describe(b *block) string {
	return strings.Repeat("#", b.level) + " " + b.heading
}

func containsFold(values []string, key string) bool {
	for _, value := range values {
		if strings.EqualFold(value, key) {
			return true
		}
	}
	return false
}
