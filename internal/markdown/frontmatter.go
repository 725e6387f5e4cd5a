package markdown

import (
	"strings"

	"github.com/adrg/frontmatter"
)

const frontmatterDelimiter = "---"

// Document is a source file split into its flat frontmatter header and body.
type Document struct {
	// Fields maps each frontmatter key to its scalar value rendered as text.
	Fields map[string]string
	// Keys lists frontmatter keys in declaration order.
	Keys []string
	// KeyLines records the 1-based line of each key.
	KeyLines map[string]int
	// Body is the text following the closing delimiter.
	Body string
	// BodyLine is the 1-based line number of the first body line.
	BodyLine int
	// HasFrontmatter reports whether a delimited header block was found.
	HasFrontmatter bool
}

// Field returns the trimmed value for key, or "" when absent.
func (d Document) Field(key string) string {
	if d.Fields == nil {
		return ""
	}
	return strings.TrimSpace(d.Fields[key])
}

// LineOf returns the line where key was declared, or 1 when unknown.
func (d Document) LineOf(key string) int {
	if line, ok := d.KeyLines[key]; ok {
		return line
	}
	return 1
}

// ParseFrontMatter splits the leading `---` block into flat key/value pairs
// and returns the remaining body. Missing or malformed headers are not
// errors: the whole text becomes the body and Fields stays empty.
func ParseFrontMatter(source string) Document {
	source = strings.TrimPrefix(source, "\ufeff")
	source = strings.ReplaceAll(source, "\r\n", "\n")
	lines := strings.Split(source, "\n")

	doc := Document{
		Fields:   map[string]string{},
		KeyLines: map[string]int{},
		Body:     source,
		BodyLine: 1,
	}

	if len(lines) == 0 || strings.TrimSpace(lines[0]) != frontmatterDelimiter {
		return doc
	}

	closing := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontmatterDelimiter {
			closing = i
			break
		}
	}
	if closing < 0 {
		return doc
	}

	raw := scanHeaderLines(lines[1:closing])
	decoded := decodeYAML(source)

	for _, entry := range raw {
		value := entry.value
		if typed, ok := decoded[entry.key]; ok {
			if scalar, ok := scalarString(typed); ok {
				value = scalar
			}
		}
		if _, seen := doc.Fields[entry.key]; !seen {
			doc.Keys = append(doc.Keys, entry.key)
			doc.KeyLines[entry.key] = entry.index + 2
		}
		doc.Fields[entry.key] = value
	}

	doc.HasFrontmatter = true
	doc.Body = strings.Join(lines[closing+1:], "\n")
	doc.BodyLine = closing + 2
	return doc
}

type headerLine struct {
	key   string
	value string
	index int
}

// scanHeaderLines reads `key: value` pairs, ignoring indented continuation
// lines, comments and list items.
func scanHeaderLines(lines []string) []headerLine {
	out := make([]headerLine, 0, len(lines))
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if line[0] == ' ' || line[0] == '\t' || line[0] == '#' || line[0] == '-' {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		out = append(out, headerLine{key: key, value: unquote(strings.TrimSpace(value)), index: i})
	}
	return out
}

// decodeYAML returns typed values when the header is valid YAML. Invalid
// YAML yields nil so callers fall back to the raw line values.
func decodeYAML(source string) map[string]any {
	var meta map[string]any
	if _, err := frontmatter.Parse(strings.NewReader(source), &meta); err != nil {
		return nil
	}
	return meta
}

// scalarString accepts decoded strings only. Numbers, booleans and dates keep
// their literal header text so values such as `id: 0012` survive unchanged.
func scalarString(value any) (string, bool) {
	typed, ok := value.(string)
	return typed, ok
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
