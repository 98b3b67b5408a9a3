package history

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// offsetSuffix matches an explicit zone: trailing Z or a numeric offset.
var offsetSuffix = regexp.MustCompile(`(?:Z|[+-]\d{2}:?\d{2})$`)

var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02T15:04:05-0700",
	"2006-01-02 15:04:05-0700",
}

// ParseUTC parses a backend timestamp as a UTC instant. The wire format
// often omits the zone suffix; those strings are UTC, never host-local.
func ParseUTC(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("history: empty timestamp")
	}

	if !offsetSuffix.MatchString(s) {
		s += "Z"
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("history: unrecognized timestamp %q", s)
}

// FormatEastern renders a UTC instant in the fixed display timezone, in the
// portal's short-date medium-time style.
func FormatEastern(t time.Time) string {
	return t.In(Eastern).Format("1/2/06, 3:04:05 PM")
}

// DisplayTimestamp parses and formats a wire timestamp for display,
// returning "-" for empty values and the raw string when unparseable.
func DisplayTimestamp(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	t, err := ParseUTC(s)
	if err != nil {
		return s
	}
	return FormatEastern(t)
}

// FormatDuration renders whole seconds as h/m/s, dropping leading zero
// units.
func FormatDuration(seconds float64) string {
	s := int(seconds)
	if s < 0 {
		return "-"
	}
	h := s / 3600
	m := (s % 3600) / 60
	sec := s % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, sec)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, sec)
	default:
		return fmt.Sprintf("%ds", sec)
	}
}
