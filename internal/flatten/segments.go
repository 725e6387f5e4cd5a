package flatten

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-coursepack/content"
	"github.com/goliatone/go-coursepack/internal/excerpt"
	"github.com/goliatone/go-coursepack/internal/parser"
)

func staticSegments(segments []parser.Segment) []content.Segment {
	out := make([]content.Segment, 0, len(segments))
	for _, seg := range segments {
		if seg.Static != nil {
			out = append(out, seg.Static)
		}
	}
	return out
}

// segment converts one parsed segment. Excerpts are cut from src; a nil src
// drops them without a further error.
func (r *run) segment(lensPath string, seg parser.Segment, src *source) (content.Segment, bool) {
	if seg.Static != nil {
		return seg.Static, true
	}
	if seg.Excerpt == nil || src == nil {
		return nil, false
	}

	switch seg.Kind {
	case content.SegmentArticleExcerpt:
		return r.articleExcerpt(lensPath, seg, src)
	case content.SegmentVideoExcerpt:
		return r.videoExcerpt(lensPath, seg, src)
	default:
		return nil, false
	}
}

func (r *run) articleExcerpt(lensPath string, seg parser.Segment, src *source) (content.Segment, bool) {
	spec := seg.Excerpt
	result, err := excerpt.ExtractArticle(src.doc.Body, spec.From, spec.To)
	if err != nil {
		line := seg.Line
		var anchorErr *excerpt.AnchorError
		if errors.As(err, &anchorErr) {
			line = anchorLine(spec, anchorErr.Field, seg.Line)
		}
		r.add(content.NewError(content.KindAnchorNotFound, lensPath, line,
			fmt.Sprintf("%s in %s", err.Error(), src.path)).
			WithSuggestion("Copy the anchor text exactly as it appears in the article"))
		return nil, false
	}

	for _, anchor := range result.Ambiguous {
		field := "from"
		if anchor != spec.From {
			field = "to"
		}
		r.add(content.NewWarning(content.KindAmbiguousAnchor, lensPath, anchorLine(spec, field, seg.Line),
			fmt.Sprintf("Anchor text \"%s\" appears more than once in %s; using the first match", anchor, src.path)).
			WithSuggestion("Extend the anchor so it matches a single passage"))
	}

	return content.ArticleExcerptSegment{Content: result.Content, Optional: spec.Optional}, true
}

func (r *run) videoExcerpt(lensPath string, seg parser.Segment, src *source) (content.Segment, bool) {
	spec := seg.Excerpt
	transcript := excerpt.LoadTranscript(r.files, src.path, src.doc.Body)

	result, err := excerpt.ExtractVideo(transcript, spec.From, spec.To)
	if err != nil {
		var tsErr *excerpt.TimestampError
		if errors.As(err, &tsErr) {
			r.add(content.NewError(content.KindTimestampNotFound, lensPath, anchorLine(spec, tsErr.Field, seg.Line), tsErr.Error()).
				WithSuggestion("Use M:SS or H:MM:SS, e.g. from:: 1:30"))
			return nil, false
		}
		r.add(content.NewError(content.KindTimestampNotFound, lensPath, seg.Line,
			fmt.Sprintf("%s in %s", err.Error(), src.path)).
			WithSuggestion("Check the timestamps against the transcript"))
		return nil, false
	}

	if result.PastEnd {
		r.add(content.NewWarning(content.KindTimestampNotFound, lensPath, anchorLine(spec, "to", seg.Line),
			fmt.Sprintf("Timestamp %s is past the last transcript entry in %s", excerpt.FormatTimestamp(result.To), src.path)).
			WithSuggestion("Check the to:: timestamp against the transcript"))
	}

	return content.VideoExcerptSegment{
		From:       result.From,
		To:         result.To,
		Transcript: result.Transcript,
		Optional:   spec.Optional,
	}, true
}

func anchorLine(spec *parser.ExcerptSpec, field string, fallback int) int {
	switch {
	case field == "from" && spec.FromLine > 0:
		return spec.FromLine
	case field == "to" && spec.ToLine > 0:
		return spec.ToLine
	default:
		return fallback
	}
}
