package validation

import (
	"fmt"
	"strings"
	"time"
)

// isoLayouts are the ISO-8601 shapes accepted from clients, most specific
// first. Layouts without a zone are read as UTC.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	time.DateOnly,
}

// ParseISO8601 parses an ISO-8601 timestamp or calendar date into UTC.
func ParseISO8601(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse %q as ISO-8601", s)
}

// ParseISO8601Ptr parses an optional timestamp; nil and "" both mean absent.
func ParseISO8601Ptr(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	t, err := ParseISO8601(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FormatISO8601 renders t in UTC with microsecond precision, the resolution
// both stores keep.
func FormatISO8601(t time.Time) string {
	return t.UTC().Truncate(time.Microsecond).Format(time.RFC3339Nano)
}

// FormatISO8601Ptr renders an optional timestamp, keeping nil as nil.
func FormatISO8601Ptr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := FormatISO8601(*t)
	return &s
}
