package content

import (
	"encoding/json"
	"strings"
)

// FileMap holds the raw text of every file in a content vault keyed by its
// vault-relative, slash separated path. Callers supply it wholesale and the
// compiler never mutates it.
type FileMap map[string]string

// Has reports whether path exists in the map.
func (f FileMap) Has(path string) bool {
	_, ok := f[path]
	return ok
}

// Tier classifies how mature a piece of content is.
type Tier string

const (
	TierProduction Tier = "production"
	TierPreview    Tier = "preview"
	TierIgnored    Tier = "ignored"
)

// ParseTier maps user input onto a Tier. Unknown values return false.
func ParseTier(value string) (Tier, bool) {
	switch Tier(strings.ToLower(strings.TrimSpace(value))) {
	case TierProduction:
		return TierProduction, true
	case TierPreview:
		return TierPreview, true
	case TierIgnored:
		return TierIgnored, true
	default:
		return "", false
	}
}

// TierMap assigns a Tier per vault path. A nil map disables tier checks.
type TierMap map[string]Tier

// Lookup returns the tier recorded for path. Paths without an entry are
// treated as production content.
func (t TierMap) Lookup(path string) Tier {
	if t == nil {
		return TierProduction
	}
	if tier, ok := t[path]; ok && tier != "" {
		return tier
	}
	return TierProduction
}

// FlattenedModule is the self-contained artifact produced for a Module.
type FlattenedModule struct {
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	ContentID string    `json:"contentId,omitempty"`
	Sections  []Section `json:"sections"`
	Error     string    `json:"error,omitempty"`
}

// SectionType discriminates the renderable Section variants.
type SectionType string

const (
	SectionPage        SectionType = "page"
	SectionLensVideo   SectionType = "lens-video"
	SectionLensArticle SectionType = "lens-article"
	SectionTest        SectionType = "test"
)

// SectionMeta carries metadata copied from the referenced source file.
type SectionMeta struct {
	Title     string `json:"title,omitempty"`
	Author    string `json:"author,omitempty"`
	SourceURL string `json:"sourceUrl,omitempty"`
	Channel   string `json:"channel,omitempty"`
	VideoID   string `json:"videoId,omitempty"`
}

// Section is one flattened, renderable unit of a Module.
type Section struct {
	Type                SectionType `json:"type"`
	Meta                SectionMeta `json:"meta"`
	Segments            []Segment   `json:"segments"`
	Optional            bool        `json:"optional"`
	ContentID           string      `json:"contentId,omitempty"`
	LearningOutcomeID   string      `json:"learningOutcomeId,omitempty"`
	LearningOutcomeName string      `json:"learningOutcomeName,omitempty"`
	VideoID             string      `json:"videoId,omitempty"`
}

// SegmentType discriminates Segment payloads.
type SegmentType string

const (
	SegmentText           SegmentType = "text"
	SegmentChat           SegmentType = "chat"
	SegmentArticleExcerpt SegmentType = "article-excerpt"
	SegmentVideoExcerpt   SegmentType = "video-excerpt"
	SegmentQuestion       SegmentType = "question"
)

// Segment is the closed set of renderable content units. Only the types
// declared in this package implement it.
type Segment interface {
	SegmentType() SegmentType
	IsOptional() bool
	isSegment()
}

// TextSegment renders markdown prose.
type TextSegment struct {
	Content  string `json:"content"`
	Optional bool   `json:"optional,omitempty"`
}

// ChatSegment opens a tutor conversation.
type ChatSegment struct {
	Title                        string `json:"title,omitempty"`
	Instructions                 string `json:"instructions,omitempty"`
	HidePreviousContentFromUser  bool   `json:"hidePreviousContentFromUser,omitempty"`
	HidePreviousContentFromTutor bool   `json:"hidePreviousContentFromTutor,omitempty"`
	Optional                     bool   `json:"optional,omitempty"`
}

// QuestionSegment asks the learner for a free-form answer.
type QuestionSegment struct {
	Content                string `json:"content"`
	AssessmentInstructions string `json:"assessmentInstructions,omitempty"`
	MaxTime                string `json:"maxTime,omitempty"`
	MaxChars               int    `json:"maxChars,omitempty"`
	EnforceVoice           bool   `json:"enforceVoice,omitempty"`
	Optional               bool   `json:"optional,omitempty"`
}

// ArticleExcerptSegment holds text cut out of an article between two anchors.
type ArticleExcerptSegment struct {
	Content  string `json:"content"`
	Optional bool   `json:"optional,omitempty"`
}

// VideoExcerptSegment holds transcript text between two timestamps, in seconds.
type VideoExcerptSegment struct {
	From       int    `json:"from"`
	To         int    `json:"to"`
	Transcript string `json:"transcript"`
	Optional   bool   `json:"optional,omitempty"`
}

func (TextSegment) SegmentType() SegmentType           { return SegmentText }
func (ChatSegment) SegmentType() SegmentType           { return SegmentChat }
func (QuestionSegment) SegmentType() SegmentType       { return SegmentQuestion }
func (ArticleExcerptSegment) SegmentType() SegmentType { return SegmentArticleExcerpt }
func (VideoExcerptSegment) SegmentType() SegmentType   { return SegmentVideoExcerpt }

func (s TextSegment) IsOptional() bool           { return s.Optional }
func (s ChatSegment) IsOptional() bool           { return s.Optional }
func (s QuestionSegment) IsOptional() bool       { return s.Optional }
func (s ArticleExcerptSegment) IsOptional() bool { return s.Optional }
func (s VideoExcerptSegment) IsOptional() bool   { return s.Optional }

func (TextSegment) isSegment()           {}
func (ChatSegment) isSegment()           {}
func (QuestionSegment) isSegment()       {}
func (ArticleExcerptSegment) isSegment() {}
func (VideoExcerptSegment) isSegment()   {}

// MarshalJSON emits the segment with its "type" discriminator.
func (s TextSegment) MarshalJSON() ([]byte, error) {
	type payload TextSegment
	return marshalTagged(SegmentText, payload(s))
}

// MarshalJSON emits the segment with its "type" discriminator.
func (s ChatSegment) MarshalJSON() ([]byte, error) {
	type payload ChatSegment
	return marshalTagged(SegmentChat, payload(s))
}

// MarshalJSON emits the segment with its "type" discriminator.
func (s QuestionSegment) MarshalJSON() ([]byte, error) {
	type payload QuestionSegment
	return marshalTagged(SegmentQuestion, payload(s))
}

// MarshalJSON emits the segment with its "type" discriminator.
func (s ArticleExcerptSegment) MarshalJSON() ([]byte, error) {
	type payload ArticleExcerptSegment
	return marshalTagged(SegmentArticleExcerpt, payload(s))
}

// MarshalJSON emits the segment with its "type" discriminator.
func (s VideoExcerptSegment) MarshalJSON() ([]byte, error) {
	type payload VideoExcerptSegment
	return marshalTagged(SegmentVideoExcerpt, payload(s))
}

func marshalTagged(kind SegmentType, value any) ([]byte, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(encoded, &fields); err != nil {
		return nil, err
	}
	tag, err := json.Marshal(kind)
	if err != nil {
		return nil, err
	}
	fields["type"] = tag
	return json.Marshal(fields)
}
