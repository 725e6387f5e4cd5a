package parser

import (
	"fmt"

	"github.com/goliatone/go-coursepack/content"
	"github.com/goliatone/go-coursepack/internal/markdown"
)

// ModuleSectionKind discriminates top-level Module sections.
type ModuleSectionKind string

const (
	ModuleLearningOutcome ModuleSectionKind = "learning-outcome"
	ModulePage            ModuleSectionKind = "page"
	ModuleUncategorized   ModuleSectionKind = "uncategorized"
)

// ModuleFrontmatterKeys lists the frontmatter keys a Module file may declare.
var ModuleFrontmatterKeys = []string{"slug", "title", "id", "tags", "description", "discussion"}

const moduleMaxLevel = 2

// Module is a parsed Module file.
type Module struct {
	Path      string
	Slug      string
	Title     string
	ContentID string
	Sections  []ModuleSection
}

// ModuleSection is one top-level `#` section of a Module.
type ModuleSection struct {
	Kind  ModuleSectionKind
	Title string
	Line  int
	// Source is the raw `source::` wikilink of a learning outcome reference.
	Source     string
	SourceLine int
	Optional   bool
	// ContentID is the `id::` of an inline page.
	ContentID string
	// Segments holds the text of an inline page.
	Segments []Segment
	// Lenses holds the `## Lens:` references of an uncategorized block.
	Lenses []LensRef
}

// LensRef is a `## Lens:` reference with its `source::` wikilink.
type LensRef struct {
	Source     string
	SourceLine int
	Optional   bool
	Line       int
}

var pageSegments = map[content.SegmentType]bool{content.SegmentText: true}

// ParseModule parses a Module file. A missing frontmatter, slug or title
// returns a nil Module together with the errors; every other defect drops
// only the affected section.
func ParseModule(path, text string) (*Module, []content.ContentError) {
	var errs []content.ContentError
	doc := markdown.ParseFrontMatter(text)

	if !doc.HasFrontmatter {
		errs = append(errs, content.NewError(content.KindMissingRequiredField, path, 1,
			"Module file has no frontmatter").
			WithSuggestion("Start the file with a --- block declaring slug: and title:"))
		return nil, errs
	}

	mod := &Module{
		Path:      path,
		Slug:      doc.Field("slug"),
		Title:     doc.Field("title"),
		ContentID: doc.Field("id"),
	}
	if mod.Slug == "" {
		errs = append(errs, content.NewError(content.KindMissingRequiredField, path, 1,
			"Module frontmatter is missing slug").
			WithSuggestion("Add slug: my-module to the frontmatter"))
	}
	if mod.Title == "" {
		errs = append(errs, content.NewError(content.KindMissingRequiredField, path, 1,
			"Module frontmatter is missing title").
			WithSuggestion("Add title: My Module to the frontmatter"))
	}
	if mod.Slug == "" || mod.Title == "" {
		return nil, errs
	}

	_, roots := scan(doc.Body, doc.BodyLine, moduleMaxLevel)
	for _, b := range roots {
		if b.level != 1 {
			errs = append(errs, unknownSection(path, b, "# Learning Outcome:, # Page: or # Uncategorized:"))
			continue
		}
		switch b.keyword {
		case "learning outcome":
			if section, ok := parseLearningOutcomeRef(path, b, &errs); ok {
				mod.Sections = append(mod.Sections, section)
			}
		case "page":
			mod.Sections = append(mod.Sections, parsePage(path, b, &errs))
		case "uncategorized":
			mod.Sections = append(mod.Sections, parseUncategorized(path, b, &errs))
		default:
			errs = append(errs, unknownSection(path, b, "# Learning Outcome:, # Page: or # Uncategorized:"))
		}
	}

	return mod, errs
}

func parseLearningOutcomeRef(path string, b *block, errs *[]content.ContentError) (ModuleSection, bool) {
	checkFieldTypos(path, b, []string{"source", "optional"}, errs)
	for _, child := range b.children {
		*errs = append(*errs, unknownSection(path, child, "a # Learning Outcome: section to hold only source:: and optional:: fields"))
	}

	source, line, ok := b.get("source")
	if !ok || source == "" {
		*errs = append(*errs, content.NewError(content.KindMissingRequiredField, path, b.line,
			fmt.Sprintf("Learning Outcome section '%s' is missing source:: field", b.title)).
			WithSuggestion("Add source:: [[../Learning Outcomes/Name]] below the header"))
		return ModuleSection{}, false
	}

	return ModuleSection{
		Kind:       ModuleLearningOutcome,
		Title:      b.title,
		Line:       b.line,
		Source:     source,
		SourceLine: line,
		Optional:   parseBool(b.value("optional")),
	}, true
}

func parsePage(path string, b *block, errs *[]content.ContentError) ModuleSection {
	checkFieldTypos(path, b, []string{"id", "optional"}, errs)
	section := ModuleSection{
		Kind:      ModulePage,
		Title:     b.title,
		Line:      b.line,
		ContentID: b.value("id"),
		Optional:  parseBool(b.value("optional")),
	}
	for _, child := range b.children {
		if seg, ok := parseSegment(path, child, pageSegments, "A # Page: may only contain ## Text subsections", errs); ok {
			section.Segments = append(section.Segments, seg)
		}
	}
	return section
}

func parseUncategorized(path string, b *block, errs *[]content.ContentError) ModuleSection {
	section := ModuleSection{
		Kind:  ModuleUncategorized,
		Title: b.title,
		Line:  b.line,
	}
	for _, child := range b.children {
		if child.keyword != "lens" {
			*errs = append(*errs, unknownSection(path, child, "## Lens: inside # Uncategorized:"))
			continue
		}
		if ref, ok := parseLensRef(path, child, errs); ok {
			section.Lenses = append(section.Lenses, ref)
		}
	}
	if len(section.Lenses) == 0 {
		*errs = append(*errs, content.NewWarning(content.KindEmptySection, path, b.line,
			"Uncategorized section has no ## Lens: references").
			WithSuggestion("Add a ## Lens: subsection with source:: [[../Lenses/Name]] or remove the section"))
	}
	return section
}

func parseLensRef(path string, b *block, errs *[]content.ContentError) (LensRef, bool) {
	checkFieldTypos(path, b, []string{"source", "optional"}, errs)
	for _, child := range b.children {
		*errs = append(*errs, unknownSection(path, child, "a ## Lens: reference to hold only source:: and optional:: fields"))
	}
	source, line, ok := b.get("source")
	if !ok || source == "" {
		*errs = append(*errs, content.NewError(content.KindMissingRequiredField, path, b.line,
			"Lens reference is missing source:: field").
			WithSuggestion("Add source:: [[../Lenses/Name]] below the ## Lens: header"))
		return LensRef{}, false
	}
	return LensRef{
		Source:     source,
		SourceLine: line,
		Optional:   parseBool(b.value("optional")),
		Line:       b.line,
	}, true
}
