package parse

import (
	"strings"
	"time"
	"unicode"
)

// timestampLayouts are tried in order; the first that parses wins.
// Day-first precedes month-first at every step, so "03/04/2024" is 3 April.
var timestampLayouts = []string{
	"2/1/2006, 15:04:05",
	"1/2/2006, 15:04:05",
	"2/1/06, 15:04:05",
	"1/2/06, 15:04:05",
	"2/1/2006, 15:04",
	"1/2/2006, 15:04",
	"2/1/06, 15:04",
	"1/2/06, 15:04",
	"2/1/2006, 3:04 PM",
	"1/2/2006, 3:04 PM",
	"2/1/06, 3:04 PM",
	"1/2/06, 3:04 PM",
}

// ParseTimestamp parses a raw export timestamp such as "01/02/2024, 09:15:00"
// or "1/2/24, 9:15 PM". Runs of whitespace, including no-break spaces, count
// as one space and the meridiem is case-insensitive. It returns nil when no
// layout matches.
func ParseTimestamp(s string) *time.Time {
	s = normalizeTimestamp(s)
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func normalizeTimestamp(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.Is(unicode.Zs, r)
	})
	return strings.ToUpper(strings.Join(fields, " "))
}
