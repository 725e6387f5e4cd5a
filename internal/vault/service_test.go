package vault

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-coursepack/content"
	"github.com/goliatone/go-coursepack/internal/parser"
)

func doc(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func fixtureFiles() content.FileMap {
	return content.FileMap{
		"modules/b-second.md": doc(
			"---",
			"slug: second",
			"title: Second",
			"id: 3f2b9c1e-8d4a-4e6b-9c2d-1a2b3c4d5e6f",
			"---",
			"# Learning Outcome: Basics",
			"source:: [[../Learning Outcomes/Basics]]",
		),
		"modules/a-first.md": doc(
			"---",
			"slug: first",
			"title: First",
			"id: 3f2b9c1e-8d4a-4e6b-9c2d-1a2b3c4d5e6f",
			"tilte: typo",
			"---",
			"# Page: Welcome",
			"id:: not-a-uuid",
			"## Text",
			"content:: Hello",
		),
		"modules/c-copy.md": doc(
			"---",
			"slug: first",
			"title: Copy",
			"---",
			"# Page: Copy",
			"## Text",
			"content:: Copy",
		),
		"Learning Outcomes/Basics.md": doc(
			"## Lens:",
			"source:: [[../Lenses/Intro]]",
		),
		"Lenses/Intro.md": doc(
			"### Text: Intro",
			"#### Text",
			"content:: Intro text",
		),
		"Lenses/Orphan.md": doc(
			"### Podcast: Unsupported",
		),
		"courses/main.md": doc(
			"---",
			"slug: main-course",
			"title: Main",
			"---",
			"# Module: [[../modules/a-first]]",
			"# Meeting: 1",
			"# Module: [[../modules/missing]]",
		),
		"video_transcripts/talk.timestamps.json": "[]",
	}
}

func TestClassify(t *testing.T) {
	tests := map[string]Kind{
		"modules/intro.md":            KindModule,
		"Learning Outcomes/Basics.md": KindLearningOutcome,
		"Lenses/Intro.md":             KindLens,
		"articles/a.md":               KindArticle,
		"video_transcripts/t.md":      KindTranscript,
		"courses/main.md":             KindCourse,
		"video_transcripts/t.json":    KindOther,
		"README.md":                   KindOther,
		"notes/x.md":                  KindOther,
	}
	for input, want := range tests {
		if got := Classify(input); got != want {
			t.Fatalf("Classify(%q) = %s, want %s", input, got, want)
		}
	}
}

func TestBuildIndexSkipsIgnored(t *testing.T) {
	tiers := content.TierMap{"modules/c-copy.md": content.TierIgnored}
	idx := BuildIndex(fixtureFiles(), tiers)
	want := []string{"modules/a-first.md", "modules/b-second.md"}
	if len(idx.Modules) != len(want) {
		t.Fatalf("expected %v, got %v", want, idx.Modules)
	}
	for i := range want {
		if idx.Modules[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, idx.Modules)
		}
	}
	if len(idx.Lenses) != 2 || len(idx.Courses) != 1 {
		t.Fatalf("unexpected index %#v", idx)
	}
}

func TestFlattenAllKeepsPathOrder(t *testing.T) {
	svc := NewService(WithConcurrency(2))
	results, err := svc.FlattenAll(context.Background(), fixtureFiles(), nil)
	if err != nil {
		t.Fatalf("FlattenAll: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, want := range []string{"modules/a-first.md", "modules/b-second.md", "modules/c-copy.md"} {
		if results[i].Path != want {
			t.Fatalf("result %d: expected %s, got %s", i, want, results[i].Path)
		}
	}
	second := results[1].Module
	if second == nil || len(second.Sections) != 1 || second.Sections[0].Meta.Title != "Intro" {
		t.Fatalf("unexpected second module %#v", second)
	}
}

func TestFlattenAllHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewService().FlattenAll(ctx, fixtureFiles(), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestFlattenAllRequiresFiles(t *testing.T) {
	_, err := NewService().FlattenAll(context.Background(), nil, nil)
	if !errors.Is(err, content.ErrFilesRequired) {
		t.Fatalf("expected ErrFilesRequired, got %v", err)
	}
}

func TestValidateReport(t *testing.T) {
	report, err := NewService().Validate(context.Background(), fixtureFiles(), nil)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}

	kinds := map[content.ErrorKind][]content.ContentError{}
	for _, entry := range report.Errors {
		kinds[entry.Kind] = append(kinds[entry.Kind], entry)
	}

	if dup := kinds[content.KindDuplicateUUID]; len(dup) != 1 || dup[0].File != "modules/b-second.md" || dup[0].Line != 4 {
		t.Fatalf("expected duplicate uuid on the second module, got %#v", dup)
	}
	if format := kinds[content.KindUUIDFormat]; len(format) != 1 || format[0].File != "modules/a-first.md" || format[0].Line != 7 {
		t.Fatalf("expected page id format error, got %#v", format)
	}
	if slug := kinds[content.KindDuplicateSlug]; len(slug) != 1 || slug[0].File != "modules/c-copy.md" {
		t.Fatalf("expected duplicate slug on the copy, got %#v", slug)
	}
	if typo := kinds[content.KindTypoWarning]; len(typo) != 1 || typo[0].Line != 5 {
		t.Fatalf("expected frontmatter typo warning, got %#v", typo)
	}
	if unknown := kinds[content.KindUnknownSectionType]; len(unknown) != 1 || unknown[0].File != "Lenses/Orphan.md" {
		t.Fatalf("expected orphan lens to be parsed, got %#v", unknown)
	}
	if missing := kinds[content.KindMissingReference]; len(missing) != 1 || missing[0].File != "courses/main.md" {
		t.Fatalf("expected missing course module, got %#v", missing)
	}

	if report.Warnings != 1 || report.Errored != len(report.Errors)-1 || !report.HasErrors() {
		t.Fatalf("unexpected counts %d errors %d warnings", report.Errored, report.Warnings)
	}
	last := report.Errors[len(report.Errors)-1]
	if last.Severity != content.SeverityWarning {
		t.Fatalf("expected warnings after errors, got %#v", report.Errors)
	}

	if len(report.Courses) != 1 || len(report.Courses[0].Progression) != 2 {
		t.Fatalf("expected course with resolved progression, got %#v", report.Courses)
	}
}

func TestValidateReportsEachDefectOnce(t *testing.T) {
	files := content.FileMap{
		"modules/a.md": doc(
			"---",
			"slug: a",
			"title: A",
			"---",
			"# Learning Outcome: Broken",
			"source:: [[../Learning Outcomes/Broken]]",
		),
		"Learning Outcomes/Broken.md": doc("## Summary:"),
	}

	report, err := NewService().Validate(context.Background(), files, nil)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(report.Errors) != 1 || report.Errors[0].Kind != content.KindUnknownSectionType {
		t.Fatalf("expected a single unknown section error, got %#v", report.Errors)
	}
}

func TestParseCourseResolvesModules(t *testing.T) {
	files := fixtureFiles()
	course, errs := NewService().ParseCourse("courses/main.md", files)
	if course == nil {
		t.Fatalf("expected course, got %#v", errs)
	}
	if course.Slug != "main-course" || len(course.Progression) != 2 {
		t.Fatalf("unexpected course %#v", course)
	}
	first := course.Progression[0]
	if first.Kind != parser.ProgressionModule || first.Path != "modules/a-first.md" {
		t.Fatalf("expected resolved module path, got %#v", first)
	}
	if course.Progression[1].Kind != parser.ProgressionMeeting {
		t.Fatalf("expected meeting entry, got %#v", course.Progression[1])
	}
	if len(errs) != 1 || errs[0].Line != 7 || !strings.Contains(errs[0].Message, "modules/missing") {
		t.Fatalf("expected missing module error, got %#v", errs)
	}

	if _, errs := NewService().ParseCourse("courses/none.md", files); len(errs) != 1 {
		t.Fatalf("expected missing course error, got %#v", errs)
	}
}
