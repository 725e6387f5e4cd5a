package content

import (
	"errors"
	"fmt"
	"sort"
	"unicode/utf8"
)

var (
	ErrModulePathRequired = errors.New("content: module path is required")
	ErrFilesRequired      = errors.New("content: file map is required")
)

// MaxFaultLength bounds the text stored in FlattenedModule.Error.
const MaxFaultLength = 1000

// Severity grades a ContentError.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ErrorKind classifies a ContentError.
type ErrorKind string

const (
	KindMissingReference     ErrorKind = "missing-reference"
	KindInvalidWikilink      ErrorKind = "invalid-wikilink"
	KindCircularReference    ErrorKind = "circular-reference"
	KindUnknownSectionType   ErrorKind = "unknown-section-type"
	KindMissingRequiredField ErrorKind = "missing-required-field"
	KindAnchorNotFound       ErrorKind = "anchor-not-found"
	KindTimestampNotFound    ErrorKind = "timestamp-not-found"
	KindTierViolation        ErrorKind = "tier-violation"
	KindUUIDFormat           ErrorKind = "uuid-format"
	KindDuplicateUUID        ErrorKind = "duplicate-uuid"
	KindInvalidSlug          ErrorKind = "invalid-slug"
	KindDuplicateSlug        ErrorKind = "duplicate-slug"
	KindTypoWarning          ErrorKind = "typo"
	KindEmptySection         ErrorKind = "empty-section"
	KindAmbiguousAnchor      ErrorKind = "ambiguous-anchor"
)

// ContentError reports a structural defect in the vault. It is data, not a Go
// error: the compiler records it and omits the affected unit of output.
type ContentError struct {
	File       string    `json:"file"`
	Line       int       `json:"line,omitempty"`
	Message    string    `json:"message"`
	Suggestion string    `json:"suggestion,omitempty"`
	Severity   Severity  `json:"severity"`
	Kind       ErrorKind `json:"kind,omitempty"`
}

// NewError builds an error-severity ContentError.
func NewError(kind ErrorKind, file string, line int, message string) ContentError {
	return ContentError{
		File:     file,
		Line:     line,
		Message:  message,
		Severity: SeverityError,
		Kind:     kind,
	}
}

// NewWarning builds a warning-severity ContentError.
func NewWarning(kind ErrorKind, file string, line int, message string) ContentError {
	return ContentError{
		File:     file,
		Line:     line,
		Message:  message,
		Severity: SeverityWarning,
		Kind:     kind,
	}
}

// WithSuggestion returns a copy carrying the remediation hint.
func (e ContentError) WithSuggestion(suggestion string) ContentError {
	e.Suggestion = suggestion
	return e
}

// IsError reports whether the entry has error severity.
func (e ContentError) IsError() bool {
	return e.Severity != SeverityWarning
}

// String renders "file:line: message".
func (e ContentError) String() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// SortForDisplay returns a copy with errors before warnings, keeping the
// discovery order inside each group.
func SortForDisplay(errs []ContentError) []ContentError {
	out := append([]ContentError(nil), errs...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].IsError() && !out[j].IsError()
	})
	return out
}

// Dedupe drops repeated entries, keeping the first occurrence.
func Dedupe(errs []ContentError) []ContentError {
	if len(errs) == 0 {
		return errs
	}
	seen := make(map[ContentError]struct{}, len(errs))
	out := make([]ContentError, 0, len(errs))
	for _, entry := range errs {
		if _, ok := seen[entry]; ok {
			continue
		}
		seen[entry] = struct{}{}
		out = append(out, entry)
	}
	return out
}

// CountBySeverity returns the number of errors and warnings.
func CountBySeverity(errs []ContentError) (errorsCount, warnings int) {
	for _, entry := range errs {
		if entry.IsError() {
			errorsCount++
			continue
		}
		warnings++
	}
	return errorsCount, warnings
}

// TruncateFault shortens an unexpected fault message to MaxFaultLength runes.
func TruncateFault(message string) string {
	if utf8.RuneCountInString(message) <= MaxFaultLength {
		return message
	}
	runes := []rune(message)
	return string(runes[:MaxFaultLength])
}
