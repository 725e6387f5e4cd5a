package wikilink

import (
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/goliatone/go-coursepack/content"
)

var (
	// ErrEscapesVault is returned when a relative link climbs above the vault root.
	ErrEscapesVault = errors.New("wikilink: path escapes vault root")
	// ErrEmptyPath is returned when a link resolves to nothing.
	ErrEmptyPath = errors.New("wikilink: empty path")
)

var linkPattern = regexp.MustCompile(`(!?)\[\[([^\[\]|]*)(?:\|([^\[\]]*))?\]\]`)

const markdownExt = ".md"

// Link is a parsed `[[path|label]]` or `![[path]]` reference.
type Link struct {
	Raw   string
	Path  string
	Label string
	Embed bool
}

// SyntaxError describes a malformed wikilink together with a corrected form.
type SyntaxError struct {
	Raw        string
	Message    string
	Suggestion string
}

func (e *SyntaxError) Error() string {
	return e.Message
}

// Parse recognises the first wikilink in raw. Malformed brackets and empty
// targets return a *SyntaxError carrying a corrected-path suggestion.
func Parse(raw string) (Link, error) {
	trimmed := strings.TrimSpace(raw)

	match := linkPattern.FindStringSubmatch(trimmed)
	if match == nil {
		return Link{}, malformed(trimmed)
	}

	target := strings.TrimSpace(match[2])
	if target == "" {
		return Link{}, &SyntaxError{
			Raw:        trimmed,
			Message:    fmt.Sprintf("Wikilink has an empty target: %s", trimmed),
			Suggestion: "Add a file path inside the brackets, e.g. [[../Lenses/My Lens]]",
		}
	}

	return Link{
		Raw:   match[0],
		Path:  target,
		Label: strings.TrimSpace(match[3]),
		Embed: match[1] == "!",
	}, nil
}

func malformed(raw string) error {
	if raw == "" {
		return &SyntaxError{
			Raw:        raw,
			Message:    "Expected a wikilink but found an empty value",
			Suggestion: "Use the form [[path/to/file]]",
		}
	}

	embed := strings.HasPrefix(raw, "!")
	body := strings.TrimPrefix(raw, "!")
	body = strings.TrimLeft(body, "[")
	body = strings.TrimRight(body, "]")
	body = strings.TrimSpace(body)

	corrected := "[[" + body + "]]"
	if embed {
		corrected = "!" + corrected
	}

	opens := strings.Contains(raw, "[[")
	closes := strings.Contains(raw, "]]")

	var message string
	switch {
	case opens && !closes:
		message = fmt.Sprintf("Malformed wikilink, missing closing brackets: %s", raw)
	case closes && !opens:
		message = fmt.Sprintf("Malformed wikilink, missing opening brackets: %s", raw)
	case strings.ContainsAny(raw, "[]"):
		message = fmt.Sprintf("Malformed wikilink brackets: %s", raw)
	default:
		message = fmt.Sprintf("Expected a wikilink but found plain text: %s", raw)
	}

	if body == "" {
		return &SyntaxError{Raw: raw, Message: message, Suggestion: "Use the form [[path/to/file]]"}
	}
	return &SyntaxError{
		Raw:        raw,
		Message:    message,
		Suggestion: fmt.Sprintf("Did you mean %s?", corrected),
	}
}

// ResolvePath resolves linkPath against the directory of referencingPath.
// Paths starting with "/" are anchored at the vault root. Fragments after
// "#" are dropped. Climbing above the root returns ErrEscapesVault.
func ResolvePath(linkPath, referencingPath string) (string, error) {
	target := strings.TrimSpace(linkPath)
	if idx := strings.Index(target, "#"); idx >= 0 {
		target = target[:idx]
	}
	target = strings.ReplaceAll(target, "\\", "/")
	if strings.TrimSpace(target) == "" {
		return "", ErrEmptyPath
	}

	var stack []string
	if !strings.HasPrefix(target, "/") {
		if dir := path.Dir(referencingPath); dir != "." && dir != "/" {
			stack = strings.Split(strings.Trim(dir, "/"), "/")
		}
	}

	for _, segment := range strings.Split(target, "/") {
		switch segment {
		case "", ".":
			continue
		case "..":
			if len(stack) == 0 {
				return "", fmt.Errorf("%w: %s", ErrEscapesVault, linkPath)
			}
			stack = stack[:len(stack)-1]
		default:
			stack = append(stack, segment)
		}
	}

	if len(stack) == 0 {
		return "", ErrEmptyPath
	}
	return strings.Join(stack, "/"), nil
}

// FindFileWithExtension looks up p in files, trying the markdown extension
// when the link omits it.
func FindFileWithExtension(p string, files content.FileMap) (string, bool) {
	if _, ok := files[p]; ok {
		return p, true
	}
	if !strings.HasSuffix(strings.ToLower(p), markdownExt) {
		withExt := p + markdownExt
		if _, ok := files[withExt]; ok {
			return withExt, true
		}
	}
	return "", false
}
