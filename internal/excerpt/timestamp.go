package excerpt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidTimestamp = errors.New("excerpt: invalid timestamp")

// TimestampError reports a `from::`/`to::` value that is not a timestamp.
type TimestampError struct {
	Field string
	Value string
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf("Invalid timestamp for %s:: '%s'", e.Field, e.Value)
}

func (e *TimestampError) Unwrap() error {
	return ErrInvalidTimestamp
}

// ParseTimestamp converts `M:SS`, `MM:SS` or `H:MM:SS` into seconds.
func ParseTimestamp(value string) (int, error) {
	value = strings.TrimSpace(value)
	parts := strings.Split(value, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, ErrInvalidTimestamp
	}

	total := 0
	for i, part := range parts {
		if part == "" {
			return 0, ErrInvalidTimestamp
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return 0, ErrInvalidTimestamp
		}
		// Every unit after the leading one is bounded by 60.
		if i > 0 && (len(part) != 2 || n >= 60) {
			return 0, ErrInvalidTimestamp
		}
		total = total*60 + n
	}
	return total, nil
}

// FormatTimestamp renders seconds as `M:SS` or `H:MM:SS`.
func FormatTimestamp(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, (seconds/60)%60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
