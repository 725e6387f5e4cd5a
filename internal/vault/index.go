package vault

import (
	"path"
	"sort"
	"strings"

	"github.com/goliatone/go-coursepack/content"
)

// Kind is the role of a vault file, derived from its top-level directory.
type Kind string

const (
	KindModule          Kind = "module"
	KindLearningOutcome Kind = "learning-outcome"
	KindLens            Kind = "lens"
	KindArticle         Kind = "article"
	KindTranscript      Kind = "transcript"
	KindCourse          Kind = "course"
	KindOther           Kind = "other"
)

var directoryKinds = map[string]Kind{
	"modules":           KindModule,
	"learning outcomes": KindLearningOutcome,
	"learning_outcomes": KindLearningOutcome,
	"lenses":            KindLens,
	"articles":          KindArticle,
	"video_transcripts": KindTranscript,
	"courses":           KindCourse,
}

// Classify returns the Kind of a markdown file. Files outside the known
// directories and non-markdown files are KindOther.
func Classify(p string) Kind {
	if !strings.EqualFold(path.Ext(p), ".md") {
		return KindOther
	}
	dir, _, found := strings.Cut(strings.TrimPrefix(p, "/"), "/")
	if !found {
		return KindOther
	}
	if kind, ok := directoryKinds[strings.ToLower(dir)]; ok {
		return kind
	}
	return KindOther
}

// Index groups vault paths by Kind, each list sorted.
type Index struct {
	Modules          []string
	LearningOutcomes []string
	Lenses           []string
	Articles         []string
	Transcripts      []string
	Courses          []string
}

// BuildIndex classifies every file. Paths tagged ignored in tiers are left
// out.
func BuildIndex(files content.FileMap, tiers content.TierMap) Index {
	var idx Index
	for p := range files {
		if tiers.Lookup(p) == content.TierIgnored {
			continue
		}
		switch Classify(p) {
		case KindModule:
			idx.Modules = append(idx.Modules, p)
		case KindLearningOutcome:
			idx.LearningOutcomes = append(idx.LearningOutcomes, p)
		case KindLens:
			idx.Lenses = append(idx.Lenses, p)
		case KindArticle:
			idx.Articles = append(idx.Articles, p)
		case KindTranscript:
			idx.Transcripts = append(idx.Transcripts, p)
		case KindCourse:
			idx.Courses = append(idx.Courses, p)
		}
	}
	for _, list := range []*[]string{&idx.Modules, &idx.LearningOutcomes, &idx.Lenses, &idx.Articles, &idx.Transcripts, &idx.Courses} {
		sort.Strings(*list)
	}
	return idx
}
