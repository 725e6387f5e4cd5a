package parser

import (
	"fmt"

	"github.com/goliatone/go-coursepack/content"
	"github.com/goliatone/go-coursepack/internal/markdown"
)

// LensSectionKind discriminates the typed sections of a Lens.
type LensSectionKind string

const (
	LensPage    LensSectionKind = "page"
	LensVideo   LensSectionKind = "video"
	LensArticle LensSectionKind = "article"
)

// LensFrontmatterKeys lists the frontmatter keys a Lens may declare.
var LensFrontmatterKeys = []string{"id", "title", "description", "tags"}

const lensMaxLevel = 4

// Lens is a parsed Lens file.
type Lens struct {
	Path     string
	ID       string
	Sections []LensSection
}

// LensSection is a `### Text:`, `### Video:` or `### Article:` block.
type LensSection struct {
	Kind       LensSectionKind
	Title      string
	Line       int
	Source     string
	SourceLine int
	Segments   []Segment
}

var lensSectionKeywords = map[string]LensSectionKind{
	"text":    LensPage,
	"page":    LensPage,
	"video":   LensVideo,
	"article": LensArticle,
}

var lensSectionSegments = map[LensSectionKind]map[content.SegmentType]bool{
	LensPage: {
		content.SegmentText:     true,
		content.SegmentChat:     true,
		content.SegmentQuestion: true,
	},
	LensVideo: {
		content.SegmentText:         true,
		content.SegmentChat:         true,
		content.SegmentQuestion:     true,
		content.SegmentVideoExcerpt: true,
	},
	LensArticle: {
		content.SegmentText:           true,
		content.SegmentChat:           true,
		content.SegmentQuestion:       true,
		content.SegmentArticleExcerpt: true,
	},
}

var lensSectionHints = map[LensSectionKind]string{
	LensPage:    "Excerpts need a ### Video: or ### Article: section with a source:: link",
	LensVideo:   "Article excerpts belong in a ### Article: section",
	LensArticle: "Video excerpts belong in a ### Video: section",
}

// ParseLens parses a Lens file into its typed sections. A video or article
// section without `source::` is omitted with an error.
func ParseLens(file, text string) (*Lens, []content.ContentError) {
	var errs []content.ContentError
	doc := markdown.ParseFrontMatter(text)

	lens := &Lens{Path: file, ID: doc.Field("id")}

	_, roots := scan(doc.Body, doc.BodyLine, lensMaxLevel)
	for _, b := range flattenRoots(roots, 3) {
		if b.level == 4 {
			errs = append(errs, content.NewError(content.KindUnknownSectionType, file, b.line,
				fmt.Sprintf("Segment '%s' is outside of any lens section", b.heading)).
				WithSuggestion("Place segments under a ### Text:, ### Video: or ### Article: header"))
			continue
		}
		kind, ok := lensSectionKeywords[b.keyword]
		if b.level != 3 || !ok {
			errs = append(errs, unknownSection(file, b, "### Text:, ### Video: or ### Article:"))
			continue
		}
		if section, ok := parseLensSection(file, b, kind, &errs); ok {
			lens.Sections = append(lens.Sections, section)
		}
	}

	return lens, errs
}

func parseLensSection(file string, b *block, kind LensSectionKind, errs *[]content.ContentError) (LensSection, bool) {
	section := LensSection{Kind: kind, Title: b.title, Line: b.line}

	if kind == LensPage {
		checkFieldTypos(file, b, []string{"optional"}, errs)
	} else {
		checkFieldTypos(file, b, []string{"source", "optional"}, errs)
		source, line, ok := b.get("source")
		if !ok || source == "" {
			*errs = append(*errs, content.NewError(content.KindMissingRequiredField, file, b.line,
				fmt.Sprintf("%s is missing source:: field", describe(b))).
				WithSuggestion(sourceHint(kind)))
			return LensSection{}, false
		}
		section.Source = source
		section.SourceLine = line
	}

	for _, child := range b.children {
		if seg, ok := parseSegment(file, child, lensSectionSegments[kind], lensSectionHints[kind], errs); ok {
			section.Segments = append(section.Segments, seg)
		}
	}
	return section, true
}

func sourceHint(kind LensSectionKind) string {
	if kind == LensVideo {
		return "Add source:: [[../video_transcripts/Name]] below the header"
	}
	return "Add source:: [[../articles/Name]] below the header"
}
