package wikilink

import (
	"fmt"

	"github.com/goliatone/go-coursepack/content"
)

// NotFoundError reports a well formed link whose target is not in the vault.
type NotFoundError struct {
	Link       Link
	Target     string
	Suggestion string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Referenced file not found: %s", e.Target)
}

// PathError reports a link that cannot be resolved to a vault path.
type PathError struct {
	Link Link
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("Cannot resolve wikilink %s: %v", e.Link.Raw, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// Resolution is a link located in the file map.
type Resolution struct {
	Link Link
	Path string
}

// Resolve parses raw, resolves it relative to referencingPath and locates the
// target in files. Failures are *SyntaxError, *PathError or *NotFoundError.
func Resolve(raw, referencingPath string, files content.FileMap) (Resolution, error) {
	link, err := Parse(raw)
	if err != nil {
		return Resolution{}, err
	}

	resolved, err := ResolvePath(link.Path, referencingPath)
	if err != nil {
		return Resolution{}, &PathError{Link: link, Err: err}
	}

	found, ok := FindFileWithExtension(resolved, files)
	if !ok {
		candidates := FindSimilarFiles(resolved, files, DefaultSuggestionLimit)
		return Resolution{}, &NotFoundError{
			Link:       link,
			Target:     resolved,
			Suggestion: FormatSuggestion(candidates, referencingPath),
		}
	}

	return Resolution{Link: link, Path: found}, nil
}
