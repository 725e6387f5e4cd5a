package parser

import (
	"strings"
	"testing"

	"github.com/goliatone/go-coursepack/content"
)

func lines(parts ...string) string {
	return strings.Join(parts, "\n")
}

func findKind(errs []content.ContentError, kind content.ErrorKind) *content.ContentError {
	for i := range errs {
		if errs[i].Kind == kind {
			return &errs[i]
		}
	}
	return nil
}

func TestScanMultilineFieldsAndFences(t *testing.T) {
	body := lines(
		"## Text",
		"content:: First line",
		"second line",
		"",
		"```",
		"## Not a header",
		"fake:: not a field",
		"```",
		"##### deep heading kept as text",
		"optional:: true",
	)

	_, roots := scan(body, 10, 2)
	if len(roots) != 1 {
		t.Fatalf("expected one root block, got %d", len(roots))
	}
	b := roots[0]
	if b.line != 10 || b.keyword != "text" {
		t.Fatalf("unexpected block %#v", b)
	}
	value, line, ok := b.get("content")
	if !ok || line != 11 {
		t.Fatalf("expected content on line 11, got %d %v", line, ok)
	}
	for _, want := range []string{"First line\nsecond line", "## Not a header", "fake:: not a field", "##### deep heading"} {
		if !strings.Contains(value, want) {
			t.Fatalf("expected content to contain %q, got %q", want, value)
		}
	}
	if !parseBool(b.value("optional")) {
		t.Fatalf("expected optional flag")
	}
}

func TestParseModule(t *testing.T) {
	source := lines(
		"---",
		"slug: intro",
		"title: Introduction",
		"id: 3f2b9c1e-8d4a-4e6b-9c2d-1a2b3c4d5e6f",
		"---",
		"# Learning Outcome: Basics",
		"source:: [[../Learning Outcomes/Basics]]",
		"optional:: true",
		"",
		"# Page: Welcome",
		"id:: 5b7e0d0a-1111-4222-8333-944455556666",
		"## Text",
		"content:: Hello learners",
		"",
		"# Uncategorized:",
		"## Lens:",
		"source:: [[../Lenses/Extra]]",
		"## Lens:",
		"sorce:: [[../Lenses/Typo]]",
		"",
		"# Glossary: terms",
	)

	mod, errs := ParseModule("modules/intro.md", source)
	if mod == nil {
		t.Fatalf("expected module, got errors %#v", errs)
	}
	if mod.Slug != "intro" || mod.Title != "Introduction" {
		t.Fatalf("unexpected frontmatter %#v", mod)
	}
	if len(mod.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(mod.Sections))
	}

	lo := mod.Sections[0]
	if lo.Kind != ModuleLearningOutcome || lo.Source != "[[../Learning Outcomes/Basics]]" || !lo.Optional {
		t.Fatalf("unexpected learning outcome section %#v", lo)
	}
	if lo.Line != 6 || lo.SourceLine != 7 {
		t.Fatalf("expected header line 6 and source line 7, got %d %d", lo.Line, lo.SourceLine)
	}

	page := mod.Sections[1]
	if page.Kind != ModulePage || page.Title != "Welcome" || len(page.Segments) != 1 {
		t.Fatalf("unexpected page %#v", page)
	}
	if text, ok := page.Segments[0].Static.(content.TextSegment); !ok || text.Content != "Hello learners" {
		t.Fatalf("unexpected page segment %#v", page.Segments[0])
	}

	uncategorized := mod.Sections[2]
	if len(uncategorized.Lenses) != 1 || uncategorized.Lenses[0].Source != "[[../Lenses/Extra]]" {
		t.Fatalf("unexpected lens references %#v", uncategorized.Lenses)
	}

	if findKind(errs, content.KindTypoWarning) == nil {
		t.Fatalf("expected typo warning for sorce::, got %#v", errs)
	}
	missing := findKind(errs, content.KindMissingRequiredField)
	if missing == nil || missing.Line != 18 {
		t.Fatalf("expected missing source on line 18, got %#v", missing)
	}
	unknown := findKind(errs, content.KindUnknownSectionType)
	if unknown == nil || !strings.Contains(unknown.Message, "Unknown section type") || unknown.Line != 21 {
		t.Fatalf("expected unknown section error on line 21, got %#v", unknown)
	}
}

func TestParseModuleRequiresFrontmatter(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		message string
	}{
		{name: "no frontmatter", source: "# Page: Welcome", message: "no frontmatter"},
		{name: "no slug", source: "---\ntitle: Intro\n---\n", message: "missing slug"},
		{name: "no title", source: "---\nslug: intro\n---\n", message: "missing title"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod, errs := ParseModule("modules/intro.md", tt.source)
			if mod != nil {
				t.Fatalf("expected nil module")
			}
			if len(errs) == 0 || !strings.Contains(errs[0].Message, tt.message) {
				t.Fatalf("expected %q error, got %#v", tt.message, errs)
			}
		})
	}
}

func TestParseModuleEmptyUncategorizedWarns(t *testing.T) {
	mod, errs := ParseModule("m.md", "---\nslug: m\ntitle: M\n---\n# Uncategorized:\n")
	if mod == nil {
		t.Fatalf("expected module")
	}
	warning := findKind(errs, content.KindEmptySection)
	if warning == nil || warning.Severity != content.SeverityWarning {
		t.Fatalf("expected empty section warning, got %#v", errs)
	}
}

func TestParseLearningOutcome(t *testing.T) {
	source := lines(
		"---",
		"id: 11111111-2222-4333-8444-555555555555",
		"name: Understand risk",
		"---",
		"## Lens: Video",
		"source:: [[../Lenses/Video Lens]]",
		"## Lens: Article",
		"source:: [[../Lenses/Article Lens]]",
		"optional:: yes",
		"## Test:",
		"#### Question",
		"content:: Why does this matter?",
		"maxChars:: 400",
		"#### Video-excerpt",
		"from:: 0:10",
		"## Test:",
	)

	lo, errs := ParseLearningOutcome("Learning Outcomes/Risk.md", source)
	if lo.ID != "11111111-2222-4333-8444-555555555555" || lo.Name != "Understand risk" {
		t.Fatalf("unexpected learning outcome %#v", lo)
	}
	if len(lo.Lenses) != 2 || lo.Lenses[0].Optional || !lo.Lenses[1].Optional {
		t.Fatalf("unexpected lens references %#v", lo.Lenses)
	}
	if lo.Test == nil || len(lo.Test.Segments) != 1 {
		t.Fatalf("expected test block with one segment, got %#v", lo.Test)
	}
	question, ok := lo.Test.Segments[0].Static.(content.QuestionSegment)
	if !ok || question.MaxChars != 400 {
		t.Fatalf("unexpected question %#v", lo.Test.Segments[0].Static)
	}

	var notAllowed, duplicate bool
	for _, err := range errs {
		if strings.Contains(err.Message, "not allowed here") {
			notAllowed = true
		}
		if strings.Contains(err.Message, "more than one ## Test:") {
			duplicate = true
		}
	}
	if !notAllowed || !duplicate {
		t.Fatalf("expected disallowed segment and duplicate test errors, got %#v", errs)
	}
}

func TestParseLearningOutcomeDefaultsNameToFile(t *testing.T) {
	lo, _ := ParseLearningOutcome("Learning Outcomes/Basics.md", "## Lens:\nsource:: [[x]]")
	if lo.Name != "Basics" {
		t.Fatalf("expected file name fallback, got %q", lo.Name)
	}
}

func TestParseLens(t *testing.T) {
	source := lines(
		"---",
		"id: aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee",
		"---",
		"### Text: Framing",
		"#### Text",
		"content:: Before you watch",
		"#### Chat: Reflect",
		"instructions:: Ask what surprised them",
		"hidePreviousContentFromUser:: true",
		"### Video: Talk",
		"source:: [[../video_transcripts/talk]]",
		"#### Video-excerpt",
		`from:: "1:30"`,
		`to:: "2:00"`,
		"#### Article-excerpt",
		"from:: start",
		"### Article: Missing source",
		"#### Text",
		"content:: dropped",
		"### Podcast: Unsupported",
	)

	lens, errs := ParseLens("Lenses/Talk.md", source)
	if lens.ID != "aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee" {
		t.Fatalf("unexpected id %q", lens.ID)
	}
	if len(lens.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %#v", lens.Sections)
	}

	page := lens.Sections[0]
	if page.Kind != LensPage || page.Title != "Framing" || len(page.Segments) != 2 {
		t.Fatalf("unexpected page section %#v", page)
	}
	chat, ok := page.Segments[1].Static.(content.ChatSegment)
	if !ok || chat.Title != "Reflect" || !chat.HidePreviousContentFromUser {
		t.Fatalf("unexpected chat %#v", page.Segments[1].Static)
	}

	video := lens.Sections[1]
	if video.Kind != LensVideo || video.Source != "[[../video_transcripts/talk]]" || len(video.Segments) != 1 {
		t.Fatalf("unexpected video section %#v", video)
	}
	excerpt := video.Segments[0].Excerpt
	if excerpt == nil || excerpt.From != "1:30" || excerpt.To != "2:00" {
		t.Fatalf("unexpected excerpt %#v", excerpt)
	}

	if findKind(errs, content.KindMissingRequiredField) == nil {
		t.Fatalf("expected missing source error, got %#v", errs)
	}
	unknown := findKind(errs, content.KindUnknownSectionType)
	if unknown == nil {
		t.Fatalf("expected unknown section errors, got %#v", errs)
	}
	var podcast bool
	for _, err := range errs {
		if strings.Contains(err.Message, "Podcast") {
			podcast = true
		}
	}
	if !podcast {
		t.Fatalf("expected unknown Podcast section error, got %#v", errs)
	}
}

func TestParseCourse(t *testing.T) {
	source := lines(
		"---",
		"slug: foundations",
		"title: Foundations",
		"---",
		"# Module: [[../modules/intro]]",
		"# Meeting: 1",
		"# Module: [[../modules/risks|Risks]]",
		"optional:: true",
		"# Meeting: two",
		"# Module: ../modules/missing",
	)

	course, errs := ParseCourse("courses/foundations.md", source)
	if course == nil {
		t.Fatalf("expected course")
	}
	if len(course.Progression) != 3 {
		t.Fatalf("expected 3 progression items, got %#v", course.Progression)
	}
	if course.Progression[0].Path != "../modules/intro" || course.Progression[1].Number != 1 {
		t.Fatalf("unexpected progression %#v", course.Progression)
	}
	if !course.Progression[2].Optional || course.Progression[2].Link.Label != "Risks" {
		t.Fatalf("unexpected optional module %#v", course.Progression[2])
	}
	if len(errs) != 2 {
		t.Fatalf("expected meeting and wikilink errors, got %#v", errs)
	}
	if errs[0].Line != 9 || errs[1].Kind != content.KindInvalidWikilink || errs[1].Suggestion == "" {
		t.Fatalf("unexpected errors %#v", errs)
	}
}
