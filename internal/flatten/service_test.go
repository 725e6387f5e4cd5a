package flatten

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/goliatone/go-coursepack/content"
)

func doc(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func fixtureVault() content.FileMap {
	return content.FileMap{
		"modules/intro.md": doc(
			"---",
			"slug: intro",
			"title: Introduction",
			"id: 3f2b9c1e-8d4a-4e6b-9c2d-1a2b3c4d5e6f",
			"---",
			"# Learning Outcome: Basics",
			"source:: [[../Learning Outcomes/Basics]]",
		),
		"Learning Outcomes/Basics.md": doc(
			"---",
			"id: 11111111-2222-4333-8444-555555555555",
			"name: Understand the basics",
			"---",
			"## Lens: Video",
			"source:: [[../Lenses/Intro Video]]",
			"## Lens: Article",
			"source:: [[../Lenses/Deep Dive]]",
			"optional:: true",
		),
		"Lenses/Intro Video.md": doc(
			"---",
			"id: aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee",
			"---",
			"### Video: Watch",
			"source:: [[../video_transcripts/intro]]",
			"#### Text",
			"content:: Watch this first.",
			"#### Video-excerpt",
			`from:: "1:30"`,
			`to:: "2:00"`,
		),
		"video_transcripts/intro.md": doc(
			"---",
			"title: Intro Video",
			"channel: Test Channel",
			"url: https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			"---",
			"0:00 - Hello and welcome.",
			"1:30 - This is the intervening line.",
			"2:00 - Something later.",
		),
		"Lenses/Deep Dive.md": doc(
			"---",
			"id: bbbbbbbb-cccc-4ddd-8eee-ffffffffffff",
			"---",
			"### Article: Read",
			"source:: [[../articles/deep-dive]]",
			"#### Article-excerpt",
			"from:: The key insight",
			"to:: End of insight.",
		),
		"articles/deep-dive.md": doc(
			"---",
			"title: Deep Dive",
			"author: Jane Doe",
			"source_url: https://example.com/deep-dive",
			"---",
			"Opening paragraph.",
			"",
			"The key insight is that alignment is hard. End of insight.",
		),
	}
}

func TestFlattenVideoAndArticleLens(t *testing.T) {
	result := FlattenModule("modules/intro.md", fixtureVault(), NewVisited(), nil)

	if len(result.Errors) != 0 {
		t.Fatalf("expected no errors, got %#v", result.Errors)
	}
	module := result.Module
	if module == nil || module.Slug != "intro" || module.Title != "Introduction" {
		t.Fatalf("unexpected module %#v", module)
	}
	if module.ContentID != "3f2b9c1e-8d4a-4e6b-9c2d-1a2b3c4d5e6f" {
		t.Fatalf("unexpected content id %q", module.ContentID)
	}
	if len(module.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(module.Sections))
	}

	video := module.Sections[0]
	if video.Type != content.SectionLensVideo || video.Meta.Title != "Intro Video" || video.Meta.Channel != "Test Channel" {
		t.Fatalf("unexpected video section %#v", video)
	}
	if video.VideoID != "dQw4w9WgXcQ" || video.Meta.VideoID != "dQw4w9WgXcQ" {
		t.Fatalf("expected video id from url, got %q", video.VideoID)
	}
	if video.LearningOutcomeID != "11111111-2222-4333-8444-555555555555" || video.LearningOutcomeName != "Understand the basics" {
		t.Fatalf("unexpected learning outcome fields %#v", video)
	}
	if video.ContentID != "aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee" || video.Optional {
		t.Fatalf("unexpected lens fields %#v", video)
	}

	article := module.Sections[1]
	if article.Type != content.SectionLensArticle || article.Meta.Author != "Jane Doe" {
		t.Fatalf("unexpected article section %#v", article)
	}
	if article.Meta.Title != "Deep Dive" || article.Meta.SourceURL != "https://example.com/deep-dive" {
		t.Fatalf("unexpected article meta %#v", article.Meta)
	}
	if !article.Optional {
		t.Fatalf("expected optional lens reference to mark the section optional")
	}
	excerpt, ok := article.Segments[0].(content.ArticleExcerptSegment)
	if !ok || excerpt.Content != "The key insight is that alignment is hard. End of insight." {
		t.Fatalf("unexpected article excerpt %#v", article.Segments[0])
	}
}

func TestFlattenVideoExcerptSeconds(t *testing.T) {
	result := FlattenModule("modules/intro.md", fixtureVault(), NewVisited(), nil)
	segments := result.Module.Sections[0].Segments
	if len(segments) != 2 {
		t.Fatalf("expected text and video segments, got %#v", segments)
	}
	if text, ok := segments[0].(content.TextSegment); !ok || text.Content != "Watch this first." {
		t.Fatalf("unexpected first segment %#v", segments[0])
	}
	video, ok := segments[1].(content.VideoExcerptSegment)
	if !ok {
		t.Fatalf("expected video excerpt, got %T", segments[1])
	}
	if video.From != 90 || video.To != 120 {
		t.Fatalf("expected 90-120, got %d-%d", video.From, video.To)
	}
	if !strings.Contains(video.Transcript, "This is the intervening line.") {
		t.Fatalf("unexpected transcript %q", video.Transcript)
	}
}

func TestFlattenPrefersTimestampSidecar(t *testing.T) {
	files := fixtureVault()
	files["video_transcripts/intro.timestamps.json"] = `[{"text": "indexed", "start": 95}, {"text": "words", "start": 100}]`

	result := FlattenModule("modules/intro.md", files, NewVisited(), nil)
	video := result.Module.Sections[0].Segments[1].(content.VideoExcerptSegment)
	if video.Transcript != "indexed words" {
		t.Fatalf("expected sidecar transcript, got %q", video.Transcript)
	}

	files["video_transcripts/intro.timestamps.json"] = `{broken`
	result = FlattenModule("modules/intro.md", files, NewVisited(), nil)
	if len(result.Errors) != 0 {
		t.Fatalf("expected malformed sidecar to be ignored, got %#v", result.Errors)
	}
	video = result.Module.Sections[0].Segments[1].(content.VideoExcerptSegment)
	if !strings.Contains(video.Transcript, "intervening") {
		t.Fatalf("expected inline fallback, got %q", video.Transcript)
	}
}

func TestFlattenWarnsWhenVideoBoundPassesTranscript(t *testing.T) {
	files := fixtureVault()
	files["Lenses/Intro Video.md"] = strings.Replace(files["Lenses/Intro Video.md"], `to:: "2:00"`, `to:: "9:00"`, 1)

	result := FlattenModule("modules/intro.md", files, NewVisited(), nil)
	video, ok := result.Module.Sections[0].Segments[1].(content.VideoExcerptSegment)
	if !ok || video.To != 540 || !strings.Contains(video.Transcript, "Something later.") {
		t.Fatalf("expected excerpt kept up to the transcript end, got %#v", result.Module.Sections[0].Segments[1])
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected one warning, got %#v", result.Errors)
	}
	warning := result.Errors[0]
	if warning.Severity != content.SeverityWarning || warning.Kind != content.KindTimestampNotFound || warning.Line != 10 {
		t.Fatalf("expected warning on the to:: line, got %#v", warning)
	}
}

func TestFlattenMissingLearningOutcome(t *testing.T) {
	files := content.FileMap{
		"modules/intro.md": doc(
			"---",
			"slug: intro",
			"title: Introduction",
			"---",
			"# Learning Outcome: Missing",
			"source:: [[../Learning Outcomes/Nowhere]]",
		),
	}

	result := FlattenModule("modules/intro.md", files, NewVisited(), nil)
	if result.Module == nil || result.Module.Slug != "intro" {
		t.Fatalf("expected module to survive, got %#v", result.Module)
	}
	if len(result.Module.Sections) != 0 {
		t.Fatalf("expected no sections, got %#v", result.Module.Sections)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0].Message, "not found") {
		t.Fatalf("expected not found error, got %#v", result.Errors)
	}
	if result.Errors[0].Line != 6 || result.Errors[0].Kind != content.KindMissingReference {
		t.Fatalf("expected error on source line, got %#v", result.Errors[0])
	}
}

func TestFlattenMissingAnchorDropsSegment(t *testing.T) {
	files := fixtureVault()
	files["Lenses/Deep Dive.md"] = doc(
		"### Article: Read",
		"source:: [[../articles/deep-dive]]",
		"#### Text",
		"content:: Context first.",
		"#### Article-excerpt",
		"from:: A sentence that does not exist",
		"to:: End of insight.",
	)

	result := FlattenModule("modules/intro.md", files, NewVisited(), nil)
	article := result.Module.Sections[1]
	if len(article.Segments) != 1 {
		t.Fatalf("expected only the text segment, got %#v", article.Segments)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected one error, got %#v", result.Errors)
	}
	err := result.Errors[0]
	if err.Kind != content.KindAnchorNotFound || !strings.Contains(err.Message, "A sentence that does not exist") {
		t.Fatalf("expected error naming the anchor, got %#v", err)
	}
	if err.File != "Lenses/Deep Dive.md" || err.Line != 6 {
		t.Fatalf("expected error on the from:: line, got %#v", err)
	}
}

func TestFlattenUncategorizedLensesStaySeparate(t *testing.T) {
	files := content.FileMap{
		"modules/extra.md": doc(
			"---",
			"slug: extra",
			"title: Extra",
			"---",
			"# Uncategorized:",
			"## Lens:",
			"source:: [[../Lenses/First]]",
			"## Lens:",
			"source:: [[../Lenses/Second]]",
			"optional:: true",
		),
		"Lenses/First.md":  doc("### Text: First", "#### Text", "content:: First lens content"),
		"Lenses/Second.md": doc("### Text: Second", "#### Text", "content:: Second lens content"),
	}

	result := FlattenModule("modules/extra.md", files, NewVisited(), nil)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors %#v", result.Errors)
	}
	sections := result.Module.Sections
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	for i, want := range []string{"First lens content", "Second lens content"} {
		if len(sections[i].Segments) != 1 {
			t.Fatalf("section %d: expected one segment, got %#v", i, sections[i].Segments)
		}
		if text := sections[i].Segments[0].(content.TextSegment); text.Content != want {
			t.Fatalf("section %d: expected %q, got %q", i, want, text.Content)
		}
	}
	if sections[0].Optional || !sections[1].Optional {
		t.Fatalf("unexpected optional flags %v %v", sections[0].Optional, sections[1].Optional)
	}
	if sections[0].Type != content.SectionPage || sections[0].Meta.Title != "First" {
		t.Fatalf("unexpected page lens %#v", sections[0])
	}
}

func TestFlattenPageSection(t *testing.T) {
	files := content.FileMap{
		"modules/welcome.md": doc(
			"---",
			"slug: welcome",
			"title: Welcome",
			"---",
			"# Page: Before we start",
			"id:: 5b7e0d0a-1111-4222-8333-944455556666",
			"## Text",
			"content:: Read this first.",
			"## Text",
			"content:: Then this.",
			"optional:: true",
		),
	}

	result := FlattenModule("modules/welcome.md", files, NewVisited(), nil)
	sections := result.Module.Sections
	if len(sections) != 1 || sections[0].Type != content.SectionPage {
		t.Fatalf("unexpected sections %#v", sections)
	}
	if sections[0].Meta.Title != "Before we start" || sections[0].ContentID != "5b7e0d0a-1111-4222-8333-944455556666" {
		t.Fatalf("unexpected page section %#v", sections[0])
	}
	if len(sections[0].Segments) != 2 || !sections[0].Segments[1].IsOptional() {
		t.Fatalf("unexpected page segments %#v", sections[0].Segments)
	}
}

func TestFlattenCircularReferenceTerminates(t *testing.T) {
	files := content.FileMap{
		"modules/loop.md": doc(
			"---",
			"slug: loop",
			"title: Loop",
			"---",
			"# Learning Outcome: Self",
			"source:: [[loop]]",
			"# Learning Outcome: Lens loop",
			"source:: [[../Learning Outcomes/Loop]]",
		),
		"Learning Outcomes/Loop.md": doc(
			"## Lens: Back to the outcome",
			"source:: [[Loop]]",
			"## Lens: Back to the module",
			"source:: [[../modules/loop]]",
		),
	}

	result := FlattenModule("modules/loop.md", files, NewVisited(), nil)
	if result.Module == nil {
		t.Fatalf("expected module to be returned")
	}
	circular := 0
	for _, err := range result.Errors {
		if strings.Contains(err.Message, "Circular reference") {
			circular++
		}
	}
	if circular != 3 {
		t.Fatalf("expected 3 circular reference errors, got %#v", result.Errors)
	}
	if len(result.Module.Sections) != 0 {
		t.Fatalf("expected no sections, got %#v", result.Module.Sections)
	}
}

func TestFlattenModuleAlreadyVisited(t *testing.T) {
	result := FlattenModule("modules/intro.md", fixtureVault(), NewVisited("modules/intro.md"), nil)
	if result.Module != nil {
		t.Fatalf("expected nil module")
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0].Message, "Circular reference") {
		t.Fatalf("expected circular reference error, got %#v", result.Errors)
	}
}

func TestFlattenSiblingBranchesMayShareFiles(t *testing.T) {
	files := fixtureVault()
	files["modules/intro.md"] = doc(
		"---",
		"slug: intro",
		"title: Introduction",
		"---",
		"# Learning Outcome: Basics",
		"source:: [[../Learning Outcomes/Basics]]",
		"# Learning Outcome: Basics again",
		"source:: [[../Learning Outcomes/Basics]]",
		"optional:: true",
	)

	result := FlattenModule("modules/intro.md", files, NewVisited(), nil)
	if len(result.Errors) != 0 {
		t.Fatalf("expected no errors, got %#v", result.Errors)
	}
	if len(result.Module.Sections) != 4 {
		t.Fatalf("expected 4 sections, got %d", len(result.Module.Sections))
	}
	if !result.Module.Sections[2].Optional || !result.Module.Sections[3].Optional {
		t.Fatalf("expected learning outcome optional flag to propagate")
	}
}

func TestFlattenExcerptSourcesAreNotVisited(t *testing.T) {
	files := fixtureVault()
	files["Lenses/Deep Dive.md"] = doc(
		"### Article: Part one",
		"source:: [[../articles/deep-dive]]",
		"#### Article-excerpt",
		"to:: Opening paragraph.",
		"### Article: Part two",
		"source:: [[../articles/deep-dive]]",
		"#### Article-excerpt",
		"from:: The key insight",
	)

	result := FlattenModule("modules/intro.md", files, NewVisited(), nil)
	if len(result.Errors) != 0 {
		t.Fatalf("expected no errors, got %#v", result.Errors)
	}
	if got := len(result.Module.Sections[1].Segments); got != 2 {
		t.Fatalf("expected both excerpts, got %d", got)
	}
}

func TestFlattenLastLensSectionWins(t *testing.T) {
	files := fixtureVault()
	files["Lenses/Intro Video.md"] = doc(
		"### Video: Watch",
		"source:: [[../video_transcripts/intro]]",
		"#### Video-excerpt",
		"from:: 0:00",
		"to:: 1:30",
		"### Text: Reflect",
		"#### Chat: Discuss",
		"instructions:: Ask what stood out",
	)

	result := FlattenModule("modules/intro.md", files, NewVisited(), nil)
	section := result.Module.Sections[0]
	if section.Type != content.SectionPage || section.Meta.Title != "Reflect" {
		t.Fatalf("expected last lens section to decide type and meta, got %#v", section)
	}
	if section.VideoID != "" {
		t.Fatalf("expected video id to follow the last section, got %q", section.VideoID)
	}
	if len(section.Segments) != 2 {
		t.Fatalf("expected segments of both lens sections, got %#v", section.Segments)
	}
	if _, ok := section.Segments[0].(content.VideoExcerptSegment); !ok {
		t.Fatalf("expected video excerpt first, got %T", section.Segments[0])
	}
}

func TestFlattenTestSection(t *testing.T) {
	files := fixtureVault()
	files["Learning Outcomes/Basics.md"] = doc(
		"---",
		"id: 11111111-2222-4333-8444-555555555555",
		"---",
		"## Lens:",
		"source:: [[../Lenses/Intro Video]]",
		"## Test:",
		"#### Question",
		"content:: What is the key insight?",
		"maxChars:: 300",
	)

	result := FlattenModule("modules/intro.md", files, NewVisited(), nil)
	sections := result.Module.Sections
	if len(sections) != 2 {
		t.Fatalf("expected lens and test sections, got %#v", sections)
	}
	test := sections[1]
	if test.Type != content.SectionTest || test.LearningOutcomeName != "Basics" {
		t.Fatalf("unexpected test section %#v", test)
	}
	question, ok := test.Segments[0].(content.QuestionSegment)
	if !ok || question.MaxChars != 300 {
		t.Fatalf("unexpected question %#v", test.Segments[0])
	}
}

func TestFlattenPartialResolution(t *testing.T) {
	files := fixtureVault()
	files["modules/intro.md"] = doc(
		"---",
		"slug: intro",
		"title: Introduction",
		"---",
		"# Learning Outcome: Basics",
		"source:: [[../Learning Outcomes/Basics]]",
		"# Learning Outcome: Advanced",
		"source:: [[../Learning Outcomes/Advanced]]",
	)

	result := FlattenModule("modules/intro.md", files, NewVisited(), nil)
	if len(result.Module.Sections) != 2 {
		t.Fatalf("expected only the first outcome's sections, got %d", len(result.Module.Sections))
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0].Message, "Learning Outcomes/Advanced") {
		t.Fatalf("expected error naming the missing outcome, got %#v", result.Errors)
	}
}

func TestFlattenMalformedReferencesKeepSiblings(t *testing.T) {
	files := fixtureVault()
	files["modules/intro.md"] = doc(
		"---",
		"slug: intro",
		"title: Introduction",
		"---",
		"# Learning Outcome: Broken",
		"source:: [[../Learning Outcomes/Basics",
		"# Learning Outcome: Escaping",
		"source:: [[../../../x]]",
		"# Learning Outcome: Basics",
		"source:: [[../Learning Outcomes/Basics]]",
	)

	result := FlattenModule("modules/intro.md", files, NewVisited(), nil)
	if result.Module == nil || len(result.Module.Sections) != 2 {
		t.Fatalf("expected the valid sibling's sections, got %#v", result.Module)
	}
	if result.Module.Sections[0].Type != content.SectionLensVideo {
		t.Fatalf("unexpected first section %#v", result.Module.Sections[0])
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected two wikilink errors, got %#v", result.Errors)
	}

	syntax := result.Errors[0]
	if syntax.Kind != content.KindInvalidWikilink || syntax.Line != 6 || syntax.Severity != content.SeverityError {
		t.Fatalf("unexpected syntax error %#v", syntax)
	}
	if syntax.Suggestion != "Did you mean [[../Learning Outcomes/Basics]]?" {
		t.Fatalf("expected corrected link suggestion, got %q", syntax.Suggestion)
	}

	escape := result.Errors[1]
	if escape.Kind != content.KindInvalidWikilink || escape.Line != 8 {
		t.Fatalf("unexpected escape error %#v", escape)
	}
	if !strings.Contains(escape.Suggestion, "outside the content vault") {
		t.Fatalf("expected vault escape suggestion, got %q", escape.Suggestion)
	}
}

func TestFlattenIgnoredTierIsSkipped(t *testing.T) {
	files := fixtureVault()
	files["Lenses/Deep Dive.md"] = doc(
		"### Podcast: not even valid",
		"#### Article-excerpt",
		"from:: nothing",
	)
	tiers := content.TierMap{"Lenses/Deep Dive.md": content.TierIgnored}

	result := FlattenModule("modules/intro.md", files, NewVisited(), tiers)
	if len(result.Errors) != 0 {
		t.Fatalf("expected ignored lens to be skipped silently, got %#v", result.Errors)
	}
	if len(result.Module.Sections) != 1 || result.Module.Sections[0].Type != content.SectionLensVideo {
		t.Fatalf("expected only the video lens, got %#v", result.Module.Sections)
	}
}

func TestFlattenTierViolation(t *testing.T) {
	tiers := content.TierMap{
		"modules/intro.md":      content.TierProduction,
		"Lenses/Intro Video.md": content.TierPreview,
	}

	result := FlattenModule("modules/intro.md", fixtureVault(), NewVisited(), tiers)
	if len(result.Errors) != 1 || result.Errors[0].Kind != content.KindTierViolation {
		t.Fatalf("expected one tier violation, got %#v", result.Errors)
	}
	if result.Errors[0].File != "Learning Outcomes/Basics.md" || result.Errors[0].Line != 6 {
		t.Fatalf("expected violation on the lens reference, got %#v", result.Errors[0])
	}
	if len(result.Module.Sections) != 2 {
		t.Fatalf("expected the preview lens to be kept, got %d sections", len(result.Module.Sections))
	}
}

func TestFlattenInvalidModule(t *testing.T) {
	files := content.FileMap{"modules/bad.md": "# Page: No frontmatter\n"}

	result := FlattenModule("modules/bad.md", files, NewVisited(), nil)
	if result.Module != nil || len(result.Errors) == 0 {
		t.Fatalf("expected nil module with errors, got %#v", result)
	}

	result = FlattenModule("modules/missing.md", files, NewVisited(), nil)
	if result.Module != nil || len(result.Errors) != 1 || result.Errors[0].Kind != content.KindMissingReference {
		t.Fatalf("expected missing module error, got %#v", result)
	}
}

func TestFlattenIsDeterministic(t *testing.T) {
	files := fixtureVault()
	files["modules/intro.md"] += doc(
		"# Learning Outcome: Advanced",
		"source:: [[../Learning Outcomes/Advanced]]",
		"# Glossary:",
	)
	tiers := content.TierMap{"Lenses/Intro Video.md": content.TierPreview}

	first := FlattenModule("modules/intro.md", files, NewVisited(), tiers)
	second := FlattenModule("modules/intro.md", files, NewVisited(), tiers)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical results\nfirst:  %#v\nsecond: %#v", first, second)
	}

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Fatalf("expected identical JSON")
	}
	if !strings.Contains(string(a), `"type":"video-excerpt"`) {
		t.Fatalf("expected tagged segments in JSON, got %s", a)
	}
}

func TestVisitedWithCopies(t *testing.T) {
	root := NewVisited("a")
	left := root.With("b")
	right := root.With("c")

	if root.Has("b") || root.Has("c") {
		t.Fatalf("expected root to be unchanged, got %v", root.Paths())
	}
	if !left.Has("a") || !left.Has("b") || left.Has("c") {
		t.Fatalf("unexpected left branch %v", left.Paths())
	}
	if right.Len() != 2 || !reflect.DeepEqual(right.Paths(), []string{"a", "c"}) {
		t.Fatalf("unexpected right branch %v", right.Paths())
	}
}
