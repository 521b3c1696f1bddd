package normalizer

import (
	"strconv"
	"strings"
	"time"
)

// Fallback layouts tried when the token does not split into three parts.
var looseDateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"20060102",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseDate parses a free-text date token, resolving day/month/year ordering
// and two-digit-year expansion. Day-first is preferred over month-first
// whenever both are structurally plausible. The result is normalized to
// midday to avoid timezone-boundary rounding. On total failure the current
// date is returned, and the second result reports false.
func ParseDate(token string) (time.Time, bool) {
	return parseDateAt(token, time.Now())
}

func parseDateAt(token string, now time.Time) (time.Time, bool) {
	token = strings.TrimSpace(token)

	parts := strings.FieldsFunc(token, func(r rune) bool {
		return r == '-' || r == '/' || r == '.'
	})
	if len(parts) == 3 {
		first, third := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[2])
		switch {
		case len(third) == 4:
			// day/month/4-digit-year
			if t, ok := buildDate(parts[2], parts[1], parts[0]); ok {
				return t, true
			}
		case len(third) == 2:
			// day/month/2-digit-year, expanded past 2000
			if y, err := strconv.Atoi(third); err == nil {
				if t, ok := buildDate(strconv.Itoa(2000+y), parts[1], parts[0]); ok {
					return t, true
				}
			}
		}
		if len(first) == 4 {
			// year/month/day
			if t, ok := buildDate(parts[0], parts[1], parts[2]); ok {
				return t, true
			}
		}
	}

	for _, layout := range looseDateLayouts {
		if t, err := time.Parse(layout, token); err == nil && t.Year() >= 2000 {
			return atMidday(t), true
		}
	}

	return atMidday(now), false
}

// buildDate assembles a midday date from string parts, accepting only
// day 1-31 and month 1-12. There is no per-month day-count validation.
func buildDate(yearStr, monthStr, dayStr string) (time.Time, bool) {
	year, err := strconv.Atoi(strings.TrimSpace(yearStr))
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(strings.TrimSpace(monthStr))
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(strings.TrimSpace(dayStr))
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 12, 0, 0, 0, time.UTC), true
}

func atMidday(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.UTC)
}
