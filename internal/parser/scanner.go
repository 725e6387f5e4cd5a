package parser

import (
	"regexp"
	"strings"
)

var (
	headerPattern = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*$`)
	fieldPattern  = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_-]*)::\s?(.*)$`)
)

// field is a `key:: value` entry. Values continue on following lines until
// the next field or structural header.
type field struct {
	key   string
	value string
	line  int
}

// block is a structural header with the fields and sub-headers below it.
type block struct {
	level    int
	keyword  string
	title    string
	heading  string
	line     int
	fields   []field
	children []*block
}

// get returns the first value for key and its line.
func (b *block) get(key string) (string, int, bool) {
	for _, f := range b.fields {
		if strings.EqualFold(f.key, key) {
			return f.value, f.line, true
		}
	}
	return "", 0, false
}

// value returns the trimmed, unquoted value for key.
func (b *block) value(key string) string {
	raw, _, _ := b.get(key)
	return unquote(strings.TrimSpace(raw))
}

// scan splits body into a header tree. Headers deeper than maxLevel are
// treated as text so prose inside a field may use markdown headings.
// firstLine is the file line number of the first body line.
func scan(body string, firstLine, maxLevel int) (preamble []field, roots []*block) {
	lines := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")

	var (
		stack   []*block
		current *field
		fields  = &preamble
		inFence bool
	)

	flush := func() {
		if current == nil {
			return
		}
		current.value = strings.TrimSpace(current.value)
		*fields = append(*fields, *current)
		current = nil
	}

	for i, line := range lines {
		lineNo := firstLine + i
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
		}

		if !inFence {
			if match := headerPattern.FindStringSubmatch(line); match != nil && len(match[1]) <= maxLevel {
				flush()
				b := newBlock(len(match[1]), match[2], lineNo)
				for len(stack) > 0 && stack[len(stack)-1].level >= b.level {
					stack = stack[:len(stack)-1]
				}
				if len(stack) == 0 {
					roots = append(roots, b)
				} else {
					parent := stack[len(stack)-1]
					parent.children = append(parent.children, b)
				}
				stack = append(stack, b)
				fields = &b.fields
				continue
			}

			if match := fieldPattern.FindStringSubmatch(line); match != nil {
				flush()
				current = &field{key: match[1], value: match[2], line: lineNo}
				continue
			}
		}

		if current != nil {
			current.value += "\n" + line
		}
	}
	flush()

	return preamble, roots
}

func newBlock(level int, heading string, line int) *block {
	keyword, title, hasColon := strings.Cut(heading, ":")
	if !hasColon {
		keyword = heading
		title = ""
	}
	return &block{
		level:   level,
		keyword: strings.ToLower(strings.TrimSpace(keyword)),
		title:   strings.TrimSpace(title),
		heading: strings.TrimSpace(heading),
		line:    line,
	}
}

func unquote(value string) string {
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return value[1 : len(value)-1]
		}
	}
	return value
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "y", "1":
		return true
	default:
		return false
	}
}
