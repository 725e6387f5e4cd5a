package excerpt

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var ErrTimestampNotFound = errors.New("excerpt: no transcript entries in range")

// RangeError reports a timestamp range that selects no transcript entries.
type RangeError struct {
	From string
	To   string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("No transcript text found between %s and %s", e.From, e.To)
}

func (e *RangeError) Unwrap() error {
	return ErrTimestampNotFound
}

// Entry is one timed piece of a transcript. End is zero when unknown.
type Entry struct {
	Start int
	End   int
	Text  string
}

// Transcript is an ordered list of entries together with the separator used
// to join selected entries.
type Transcript struct {
	Entries   []Entry
	Separator string
	// Sidecar is set when the entries came from a timestamps index.
	Sidecar bool
}

// VideoExcerpt is the selected transcript range in whole seconds. PastEnd is
// set when an explicit to bound lies beyond the last transcript timestamp.
type VideoExcerpt struct {
	From       int
	To         int
	Transcript string
	PastEnd    bool
}

var transcriptLine = regexp.MustCompile(`^\s*\[?((?:\d+:)?\d{1,2}:\d{2})\]?\s*(?:[-–—:|]\s*)?(.*)$`)

// ParseTranscript reads inline `M:SS - text` lines. `[M:SS] text` and
// `H:MM:SS text` are accepted too. Untimed lines continue the previous entry.
func ParseTranscript(body string) Transcript {
	var entries []Entry
	for _, line := range strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if match := transcriptLine.FindStringSubmatch(trimmed); match != nil {
			if start, err := ParseTimestamp(match[1]); err == nil {
				entries = append(entries, Entry{Start: start, Text: strings.TrimSpace(match[2])})
				continue
			}
		}
		if len(entries) > 0 {
			last := &entries[len(entries)-1]
			last.Text = strings.TrimSpace(last.Text + " " + trimmed)
		}
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Start < entries[j].Start })
	return Transcript{Entries: entries, Separator: "\n"}
}

// ExtractVideo selects the entries that start in [from, to). Empty bounds
// select from the start and to the end of the transcript.
func ExtractVideo(t Transcript, fromRaw, toRaw string) (VideoExcerpt, error) {
	from := 0
	if strings.TrimSpace(fromRaw) != "" {
		seconds, err := ParseTimestamp(fromRaw)
		if err != nil {
			return VideoExcerpt{}, &TimestampError{Field: "from", Value: fromRaw}
		}
		from = seconds
	}

	end := t.end()
	to := end
	open := true
	if strings.TrimSpace(toRaw) != "" {
		seconds, err := ParseTimestamp(toRaw)
		if err != nil {
			return VideoExcerpt{}, &TimestampError{Field: "to", Value: toRaw}
		}
		to = seconds
		open = false
	}

	var parts []string
	for _, entry := range t.Entries {
		if entry.Start < from {
			continue
		}
		if !open && entry.Start >= to {
			break
		}
		if entry.Text != "" {
			parts = append(parts, entry.Text)
		}
	}

	if len(parts) == 0 || (!open && to <= from) {
		toLabel := "the end"
		if !open {
			toLabel = FormatTimestamp(to)
		}
		return VideoExcerpt{}, &RangeError{From: FormatTimestamp(from), To: toLabel}
	}

	return VideoExcerpt{
		From:       from,
		To:         to,
		Transcript: strings.Join(parts, t.Separator),
		PastEnd:    !open && to > end,
	}, nil
}

func (t Transcript) end() int {
	end := 0
	for _, entry := range t.Entries {
		if entry.End > end {
			end = entry.End
		}
		if entry.Start > end {
			end = entry.Start
		}
	}
	return end
}
