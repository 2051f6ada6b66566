package dedup

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	nonWordRe   = regexp.MustCompile(`[^a-z0-9]+`)
	seniorRe    = regexp.MustCompile(`(?i)\b(senior|chief|head of|director|lead|principal)\b`)
	orgSuffixRe = regexp.MustCompile(`\b(inc|ltd|llc|gmbh|sa|plc|limited|corp|co)\b`)
)

// normalizeText strips diacritics and lower-cases, so "Société Générale"
// and "Societe Generale" collapse to the same key.
func normalizeText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return strings.ToLower(strings.TrimSpace(result))
}

// NormalizeTitle is the identity form of a job title used for fuzzy
// duplicate matching: diacritic-free, lower-case, punctuation collapsed.
func NormalizeTitle(title string) string {
	s := nonWordRe.ReplaceAllString(normalizeText(title), " ")
	return strings.TrimSpace(s)
}

// NormalizeOrgKey is the unique key for an organization mapping. Corporate
// suffixes are dropped so "Skyline Aviation Ltd" and "Skyline Aviation"
// map together.
func NormalizeOrgKey(rawName string) string {
	s := nonWordRe.ReplaceAllString(normalizeText(rawName), " ")
	s = orgSuffixRe.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// IsSeniorTitle flags titles for the seniority field on the canonical job.
func IsSeniorTitle(title string) bool {
	return seniorRe.MatchString(title)
}

// inferClassification guesses an organization type from its name.
// Best-effort: auto-created mappings stay flagged for review regardless.
func inferClassification(rawName string) string {
	name := normalizeText(rawName)
	switch {
	case strings.Contains(name, "airline"), strings.Contains(name, "airways"),
		strings.Contains(name, "air "), strings.HasSuffix(name, " air"):
		return "airline"
	case strings.Contains(name, "airport"):
		return "airport"
	case strings.Contains(name, "handling"), strings.Contains(name, "ground"):
		return "ground_handler"
	case strings.Contains(name, "charter"), strings.Contains(name, "jet"):
		return "charter"
	case strings.Contains(name, "cargo"), strings.Contains(name, "freight"):
		return "cargo"
	case strings.Contains(name, "recruit"), strings.Contains(name, "staffing"),
		strings.Contains(name, "crew"):
		return "recruiter"
	default:
		return "unknown"
	}
}

// inferCountry takes the last comma-separated segment of the scraped
// location, which job boards almost always render as the country.
func inferCountry(location string) string {
	parts := strings.Split(location, ",")
	if len(parts) == 0 {
		return ""
	}
	return strings.TrimSpace(parts[len(parts)-1])
}
