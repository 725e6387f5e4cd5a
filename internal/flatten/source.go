package flatten

import (
	"github.com/goliatone/go-coursepack/content"
	"github.com/goliatone/go-coursepack/internal/excerpt"
	"github.com/goliatone/go-coursepack/internal/markdown"
	"github.com/goliatone/go-coursepack/internal/parser"
)

// source is the article or transcript behind a video or article LensSection.
type source struct {
	path string
	doc  markdown.Document
}

// source resolves the LensSection's `source::` link. The source is tier and
// cycle checked against the lens branch but never added to it, so the same
// article may back any number of excerpts. nil means excerpts of the section
// are dropped; the reason has already been recorded.
func (r *run) source(lens target, section parser.LensSection, visited Visited) *source {
	edge := "article"
	if section.Kind == parser.LensVideo {
		edge = "video transcript"
	}
	resolved, ok := r.follow(lens.path, lens.tier, section.Source, section.SourceLine, edge, visited)
	if !ok {
		return nil
	}
	return &source{
		path: resolved.path,
		doc:  markdown.ParseFrontMatter(r.files[resolved.path]),
	}
}

func sourceMeta(section parser.LensSection, src *source) (content.SectionType, content.SectionMeta) {
	meta := content.SectionMeta{Title: section.Title}

	if section.Kind == parser.LensVideo {
		if src != nil {
			meta.Title = firstNonEmpty(src.doc.Field("title"), section.Title)
			meta.Channel = src.doc.Field("channel")
			meta.VideoID = excerpt.VideoID(firstNonEmpty(
				src.doc.Field("url"),
				src.doc.Field("video_url"),
				src.doc.Field("source_url"),
			))
		}
		return content.SectionLensVideo, meta
	}

	if src != nil {
		meta.Title = firstNonEmpty(src.doc.Field("title"), section.Title)
		meta.Author = src.doc.Field("author")
		meta.SourceURL = firstNonEmpty(
			src.doc.Field("source_url"),
			src.doc.Field("sourceUrl"),
			src.doc.Field("url"),
		)
	}
	return content.SectionLensArticle, meta
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
