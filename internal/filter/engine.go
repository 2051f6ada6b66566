package filter

import (
	"fmt"
	"regexp"
	"strings"

	"go-skyscout-automation/internal/config"
)

const (
	MatchTypePhrase  = "phrase_match"
	MatchTypeKeyword = "keyword_match"

	ReasonExcluded       = "excluded_pattern"
	ReasonNoKeywordMatch = "no_keyword_match"
	ReasonBelowThreshold = "below_threshold"

	acceptThreshold  = 1.5
	earlyExitScore   = 4.0
	phraseMultiplier = 2.0
)

// Verdict is the accept/reject decision for one title.
type Verdict struct {
	Accepted          bool     `json:"accepted"`
	Score             float64  `json:"score"`
	MatchType         string   `json:"match_type,omitempty"`
	PrimaryCategory   string   `json:"primary_category,omitempty"`
	MatchedCategories []string `json:"matched_categories,omitempty"`
	MatchedKeywords   []string `json:"matched_keywords,omitempty"`
	RejectionReason   string   `json:"rejection_reason,omitempty"`
}

type keyword struct {
	raw string
	re  *regexp.Regexp
}

type category struct {
	name    string
	weight  float64
	phrases []keyword // multi-word, checked first
	words   []keyword
}

// Engine scores titles against the loaded category -> weight -> keyword
// configuration. Deterministic: same title + same config = same verdict.
type Engine struct {
	categories []category
	exclusions []*regexp.Regexp
	cache      *verdictCache
}

// NewEngine compiles the filter configuration. Malformed exclusion patterns
// are fatal here, before any run starts.
func NewEngine(cfg config.FilterConfig) (*Engine, error) {
	e := &Engine{cache: newVerdictCache(cfg.CacheCapacity)}

	for _, c := range cfg.Categories {
		cat := category{name: c.Name, weight: c.Weight}
		for _, kw := range c.Keywords {
			k := keyword{raw: kw, re: compileKeyword(kw)}
			if strings.ContainsAny(kw, " \t") {
				cat.phrases = append(cat.phrases, k)
			} else {
				cat.words = append(cat.words, k)
			}
		}
		e.categories = append(e.categories, cat)
	}

	for _, pattern := range cfg.Exclusions {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			return nil, fmt.Errorf("exclusion pattern %q: %w", pattern, err)
		}
		e.exclusions = append(e.exclusions, re)
	}

	return e, nil
}

// compileKeyword builds a case-insensitive word-boundary matcher. Phrase
// keywords tolerate any whitespace run between their words.
func compileKeyword(kw string) *regexp.Regexp {
	parts := strings.Fields(kw)
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(`(?i)\b` + strings.Join(quoted, `\s+`) + `\b`)
}

// Classify scores one title. Results are cached by exact lowercase title;
// the cache is invalidated only by ResetCache.
func (e *Engine) Classify(title string) Verdict {
	key := strings.ToLower(title)
	if v, ok := e.cache.get(key); ok {
		return v
	}

	v := e.evaluate(title)
	e.cache.put(key, v)
	return v
}

func (e *Engine) evaluate(title string) Verdict {
	//Exclusion pass: known false-positive patterns win over any score
	for _, re := range e.exclusions {
		if re.MatchString(title) {
			return Verdict{Accepted: false, RejectionReason: ReasonExcluded}
		}
	}

	var (
		score      float64
		catScores  = make(map[string]float64)
		categories []string
		keywords   []string
	)

	record := func(cat string, kw string, pts float64) {
		if _, seen := catScores[cat]; !seen {
			categories = append(categories, cat)
		}
		catScores[cat] += pts
		keywords = append(keywords, kw)
		score += pts
	}

	//Phrase pass: multi-word keywords first, double weight, early exit at 4.0
	for _, cat := range e.categories {
		for _, ph := range cat.phrases {
			if ph.re.MatchString(title) {
				record(cat.name, ph.raw, cat.weight*phraseMultiplier)
				if score >= earlyExitScore {
					return Verdict{
						Accepted:          true,
						Score:             score,
						MatchType:         MatchTypePhrase,
						PrimaryCategory:   e.primaryCategory(catScores),
						MatchedCategories: categories,
						MatchedKeywords:   keywords,
					}
				}
			}
		}
	}

	//Single-word pass
	for _, cat := range e.categories {
		for _, w := range cat.words {
			if w.re.MatchString(title) {
				record(cat.name, w.raw, cat.weight)
			}
		}
	}

	if len(keywords) == 0 {
		return Verdict{Accepted: false, RejectionReason: ReasonNoKeywordMatch}
	}

	if score < acceptThreshold {
		return Verdict{
			Accepted:          false,
			Score:             score,
			MatchedCategories: categories,
			MatchedKeywords:   keywords,
			RejectionReason:   ReasonBelowThreshold,
		}
	}

	return Verdict{
		Accepted:          true,
		Score:             score,
		MatchType:         MatchTypeKeyword,
		PrimaryCategory:   e.primaryCategory(catScores),
		MatchedCategories: categories,
		MatchedKeywords:   keywords,
	}
}

// primaryCategory picks the highest-scoring hit category; ties go to the
// category declared first in the config.
func (e *Engine) primaryCategory(catScores map[string]float64) string {
	best := ""
	bestScore := 0.0
	for _, cat := range e.categories {
		if s, ok := catScores[cat.name]; ok && s > bestScore {
			best = cat.name
			bestScore = s
		}
	}
	return best
}

// ResetCache drops every cached verdict, e.g. after a config reload.
func (e *Engine) ResetCache() {
	e.cache.reset()
}

// CacheStats reports hit/miss counters since the last reset.
func (e *Engine) CacheStats() (hits, misses uint64, size int) {
	return e.cache.stats()
}
