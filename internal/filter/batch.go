package filter

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Score bands for batch reporting.
const (
	bandHigh   = 5.0
	bandMedium = 3.0
)

// BatchStats aggregates verdicts across one batch of titles.
type BatchStats struct {
	Total    int
	Accepted int
	Rejected int

	// Score-band histogram over accepted titles.
	High   int // >= 5.0
	Medium int // >= 3.0
	Low    int // >= 1.5

	CategoryHits map[string]int
	Categories   mapset.Set[string]
	Keywords     mapset.Set[string]
}

// ClassifyBatch runs Classify over a batch and tracks score-band histograms
// and per-category hit counts alongside the individual verdicts.
func (e *Engine) ClassifyBatch(titles []string) ([]Verdict, BatchStats) {
	stats := BatchStats{
		CategoryHits: make(map[string]int),
		Categories:   mapset.NewSet[string](),
		Keywords:     mapset.NewSet[string](),
	}

	verdicts := make([]Verdict, 0, len(titles))
	for _, title := range titles {
		v := e.Classify(title)
		verdicts = append(verdicts, v)

		stats.Total++
		if !v.Accepted {
			stats.Rejected++
			continue
		}
		stats.Accepted++

		switch {
		case v.Score >= bandHigh:
			stats.High++
		case v.Score >= bandMedium:
			stats.Medium++
		default:
			stats.Low++
		}

		for _, cat := range v.MatchedCategories {
			stats.CategoryHits[cat]++
			stats.Categories.Add(cat)
		}
		for _, kw := range v.MatchedKeywords {
			stats.Keywords.Add(kw)
		}
	}

	return verdicts, stats
}
