package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyBatch_HistogramAndCategoryHits(t *testing.T) {
	e := newTestEngine(t)

	titles := []string{
		"Flight Operations Officer",  // phrase, 6.0 -> high band
		"Pilot / Captain",            // words, 4.0 -> medium band
		"Crewing Officer",            // word, 3.0 -> medium band
		"Pilot",                      // word, 2.0 -> low band
		"Software Developer",         // rejected
		"First Officer Jobs | Pilot", // excluded
	}

	verdicts, stats := e.ClassifyBatch(titles)

	assert.Len(t, verdicts, len(titles))
	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 4, stats.Accepted)
	assert.Equal(t, 2, stats.Rejected)

	assert.Equal(t, 1, stats.High)
	assert.Equal(t, 2, stats.Medium)
	assert.Equal(t, 1, stats.Low)

	assert.Equal(t, 2, stats.CategoryHits["Core_Function_Terms_Only"])
	assert.Equal(t, 2, stats.CategoryHits["Flight_Crew"])

	assert.True(t, stats.Categories.Contains("Core_Function_Terms_Only"))
	assert.True(t, stats.Categories.Contains("Flight_Crew"))
	assert.True(t, stats.Keywords.Contains("flight operations officer"))
	assert.True(t, stats.Keywords.Contains("pilot"))
}
