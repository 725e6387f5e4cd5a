package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-coursepack/content"
	"github.com/goliatone/go-coursepack/internal/markdown"
	"github.com/goliatone/go-coursepack/internal/wikilink"
)

// ProgressionKind discriminates Course progression entries.
type ProgressionKind string

const (
	ProgressionModule  ProgressionKind = "module"
	ProgressionMeeting ProgressionKind = "meeting"
)

// CourseFrontmatterKeys lists the frontmatter keys a Course may declare.
var CourseFrontmatterKeys = []string{"slug", "title", "id", "description"}

// Course is a parsed Course file: an ordered progression of module and
// meeting entries. Module references are not flattened here.
type Course struct {
	Path        string            `json:"path"`
	Slug        string            `json:"slug"`
	Title       string            `json:"title"`
	Progression []ProgressionItem `json:"progression"`
}

// ProgressionItem is a `# Module: [[path]]` or `# Meeting: N` entry.
type ProgressionItem struct {
	Kind     ProgressionKind `json:"type"`
	Line     int             `json:"-"`
	Link     wikilink.Link   `json:"-"`
	Path     string          `json:"path,omitempty"`
	Number   int             `json:"number,omitempty"`
	Optional bool            `json:"optional,omitempty"`
}

// ParseCourse parses a Course file. Missing slug or title returns nil.
func ParseCourse(file, text string) (*Course, []content.ContentError) {
	var errs []content.ContentError
	doc := markdown.ParseFrontMatter(text)

	course := &Course{
		Path:  file,
		Slug:  doc.Field("slug"),
		Title: doc.Field("title"),
	}
	if course.Slug == "" || course.Title == "" {
		errs = append(errs, content.NewError(content.KindMissingRequiredField, file, 1,
			"Course frontmatter requires slug and title").
			WithSuggestion("Add slug: and title: to the frontmatter"))
		return nil, errs
	}

	_, roots := scan(doc.Body, doc.BodyLine, 1)
	for _, b := range roots {
		switch b.keyword {
		case "module":
			link, err := wikilink.Parse(b.title)
			if err != nil {
				entry := content.NewError(content.KindInvalidWikilink, file, b.line,
					fmt.Sprintf("Module entry needs a wikilink: %s", err.Error()))
				var syntaxErr *wikilink.SyntaxError
				if errors.As(err, &syntaxErr) {
					entry = entry.WithSuggestion(syntaxErr.Suggestion)
				}
				errs = append(errs, entry)
				continue
			}
			checkFieldTypos(file, b, []string{"optional"}, &errs)
			course.Progression = append(course.Progression, ProgressionItem{
				Kind:     ProgressionModule,
				Line:     b.line,
				Link:     link,
				Path:     link.Path,
				Optional: parseBool(b.value("optional")),
			})
		case "meeting":
			number, err := strconv.Atoi(strings.TrimSpace(b.title))
			if err != nil || number < 0 {
				errs = append(errs, content.NewError(content.KindMissingRequiredField, file, b.line,
					fmt.Sprintf("Meeting number must be numeric, got '%s'", b.title)).
					WithSuggestion("Use a header such as # Meeting: 1"))
				continue
			}
			course.Progression = append(course.Progression, ProgressionItem{
				Kind:   ProgressionMeeting,
				Line:   b.line,
				Number: number,
			})
		default:
			errs = append(errs, unknownSection(file, b, "# Module: [[path]] or # Meeting: N"))
		}
	}

	return course, errs
}
