package excerpt

import (
	"errors"
	"fmt"
	"strings"
)

var ErrAnchorNotFound = errors.New("excerpt: anchor not found")

// AnchorError names an anchor whose text is absent from the article body.
type AnchorError struct {
	Field  string
	Anchor string
}

func (e *AnchorError) Error() string {
	return fmt.Sprintf("Anchor text not found in article (%s::): \"%s\"", e.Field, e.Anchor)
}

func (e *AnchorError) Unwrap() error {
	return ErrAnchorNotFound
}

// ArticleExcerpt is the text between two anchors. Ambiguous lists the
// anchors that occur more than once; the first occurrence is used.
type ArticleExcerpt struct {
	Content   string
	Ambiguous []string
}

// ExtractArticle returns the part of body that starts at the from anchor and
// ends after the to anchor. The to anchor is searched after the end of the
// from anchor, so text shared by both anchors never cuts the excerpt short.
// An empty from starts at the top of the body and an empty to runs to its end.
func ExtractArticle(body, from, to string) (ArticleExcerpt, error) {
	var result ArticleExcerpt

	start, after := 0, 0
	if from != "" {
		idx := strings.Index(body, from)
		if idx < 0 {
			return ArticleExcerpt{}, &AnchorError{Field: "from", Anchor: from}
		}
		if strings.Count(body, from) > 1 {
			result.Ambiguous = append(result.Ambiguous, from)
		}
		start = idx
		after = idx + len(from)
	}

	end := len(body)
	if to != "" {
		rest := body[after:]
		idx := strings.Index(rest, to)
		if idx < 0 {
			return ArticleExcerpt{}, &AnchorError{Field: "to", Anchor: to}
		}
		if strings.Count(rest, to) > 1 {
			result.Ambiguous = append(result.Ambiguous, to)
		}
		end = after + idx + len(to)
	}

	result.Content = strings.TrimSpace(body[start:end])
	return result, nil
}
