package scraper

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	isoDateRegex  = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	slashDateRe   = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
	relativeRe    = regexp.MustCompile(`(?i)\b(\d+)\+?\s*(minute|hour|day|week|month)s?\s+ago\b`)
	freeTextDates = []string{
		"Jan 2, 2006",
		"January 2, 2006",
		"2 Jan 2006",
		"2 January 2006",
		"02 Jan 2006",
		"Jan 2 2006",
		"2006/01/02",
		"02-01-2006",
	}
)

// ParsePostedDate turns a scraped date string into a time. It accepts ISO
// dates, dd/mm/yyyy, relative phrases ("3 days ago", "yesterday") and a set
// of free-text formats job boards actually emit. Reports false when the
// string carries no parseable date.
func ParsePostedDate(s string, now time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "N/A") {
		return time.Time{}, false
	}

	//Case 1: ISO "2026-01-27" anywhere in the string (also covers RFC3339)
	if m := isoDateRegex.FindString(s); m != "" {
		if t, err := time.Parse("2006-01-02", m); err == nil {
			return t, true
		}
	}

	//Case 2: dd/mm/yyyy
	if m := slashDateRe.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if month > 12 && day <= 12 {
			//tolerate mm/dd/yyyy exports
			day, month = month, day
		}
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
		}
	}

	//Case 3: relative phrases
	if t, ok := parseRelative(s, now); ok {
		return t, true
	}

	//Case 4: free-text formats
	for _, layout := range freeTextDates {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func parseRelative(s string, now time.Time) (time.Time, bool) {
	lower := strings.ToLower(s)

	switch {
	case strings.Contains(lower, "just now"), strings.Contains(lower, "today"):
		return now.Truncate(24 * time.Hour), true
	case strings.Contains(lower, "yesterday"):
		return now.AddDate(0, 0, -1).Truncate(24 * time.Hour), true
	}

	m := relativeRe.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}

	n, _ := strconv.Atoi(m[1])
	switch strings.ToLower(m[2]) {
	case "minute":
		return now.Add(-time.Duration(n) * time.Minute), true
	case "hour":
		return now.Add(-time.Duration(n) * time.Hour), true
	case "day":
		return now.AddDate(0, 0, -n), true
	case "week":
		return now.AddDate(0, 0, -7*n), true
	case "month":
		return now.AddDate(0, -n, 0), true
	}
	return time.Time{}, false
}
