package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-skyscout-automation/internal/config"
)

func testFilterConfig() config.FilterConfig {
	return config.FilterConfig{
		CacheCapacity: 100,
		Categories: []config.Category{
			{
				Name:   "Core_Function_Terms_Only",
				Weight: 3.0,
				Keywords: []string{
					"flight operations officer",
					"flight dispatcher",
					"dispatcher",
					"crewing",
				},
			},
			{
				Name:   "Flight_Crew",
				Weight: 2.0,
				Keywords: []string{
					"first officer",
					"pilot",
					"captain",
				},
			},
			{
				Name:     "Ground_And_Support",
				Weight:   1.0,
				Keywords: []string{"ramp agent", "loadmaster", "refueller"},
			},
		},
		Exclusions: []string{
			`jobs?\s*\|`,
			`\b(marketing|sales|finance)\b`,
		},
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(testFilterConfig())
	require.NoError(t, err)
	return e
}

func TestClassify_PhraseEarlyExit(t *testing.T) {
	e := newTestEngine(t)

	//phrase "flight operations officer" in a weight 3.0 category: 3.0*2 = 6.0
	v := e.Classify("Senior Flight Operations Officer – OCC")

	assert.True(t, v.Accepted)
	assert.Equal(t, MatchTypePhrase, v.MatchType)
	assert.Equal(t, 6.0, v.Score)
	assert.Equal(t, "Core_Function_Terms_Only", v.PrimaryCategory)
	//single-word pass must not have run: "dispatcher" and "crewing" are
	//absent from the title anyway, but the matched set must hold exactly
	//the phrase that triggered the exit
	assert.Equal(t, []string{"flight operations officer"}, v.MatchedKeywords)
}

func TestClassify_SingleWordPassSkippedOnEarlyExit(t *testing.T) {
	e := newTestEngine(t)

	//"flight dispatcher" (phrase, 6.0) triggers the early exit before the
	//single-word pass could also score "dispatcher"
	v := e.Classify("Flight Dispatcher wanted")

	assert.True(t, v.Accepted)
	assert.Equal(t, MatchTypePhrase, v.MatchType)
	assert.Equal(t, 6.0, v.Score)
	assert.NotContains(t, v.MatchedKeywords, "dispatcher")
}

func TestClassify_NoKeywordMatch(t *testing.T) {
	e := newTestEngine(t)

	v := e.Classify("Software Developer")

	assert.False(t, v.Accepted)
	assert.Equal(t, ReasonNoKeywordMatch, v.RejectionReason)
	assert.Zero(t, v.Score)
}

func TestClassify_ExclusionWinsOverKeywordOverlap(t *testing.T) {
	e := newTestEngine(t)

	//"first officer" would score 4.0, but the recruitment-page pattern wins
	v := e.Classify("First Officer Jobs | Pilot Careers")

	assert.False(t, v.Accepted)
	assert.Equal(t, ReasonExcluded, v.RejectionReason)
	assert.Zero(t, v.Score)
	assert.Empty(t, v.MatchedKeywords)
}

func TestClassify_BelowThreshold(t *testing.T) {
	e := newTestEngine(t)

	//single word in a weight 1.0 category: 1.0 < 1.5
	v := e.Classify("Loadmaster")

	assert.False(t, v.Accepted)
	assert.Equal(t, ReasonBelowThreshold, v.RejectionReason)
	assert.Equal(t, 1.0, v.Score)
	assert.Contains(t, v.MatchedKeywords, "loadmaster")
}

func TestClassify_WordPassAccumulates(t *testing.T) {
	e := newTestEngine(t)

	//"pilot" (2.0) + "captain" (2.0) via single-word pass, no phrase hit
	v := e.Classify("Pilot / Captain")

	assert.True(t, v.Accepted)
	assert.Equal(t, MatchTypeKeyword, v.MatchType)
	assert.Equal(t, 4.0, v.Score)
	assert.Equal(t, "Flight_Crew", v.PrimaryCategory)
}

func TestClassify_TieBreaksByDeclarationOrder(t *testing.T) {
	cfg := config.FilterConfig{
		CacheCapacity: 10,
		Categories: []config.Category{
			{Name: "Alpha", Weight: 2.0, Keywords: []string{"dispatch"}},
			{Name: "Beta", Weight: 2.0, Keywords: []string{"rostering"}},
		},
	}
	e, err := NewEngine(cfg)
	require.NoError(t, err)

	v := e.Classify("Dispatch and Rostering Supervisor")

	assert.True(t, v.Accepted)
	//both categories scored 2.0; Alpha is declared first
	assert.Equal(t, "Alpha", v.PrimaryCategory)
}

func TestClassify_CacheServesSecondCall(t *testing.T) {
	e := newTestEngine(t)

	first := e.Classify("Flight Dispatcher")
	second := e.Classify("flight dispatcher") //case-insensitive key

	assert.Equal(t, first, second)

	hits, misses, size := e.CacheStats()
	assert.Equal(t, uint64(1), hits)
	assert.Equal(t, uint64(1), misses)
	assert.Equal(t, 1, size)
}

func TestResetCache(t *testing.T) {
	e := newTestEngine(t)

	e.Classify("Flight Dispatcher")
	e.ResetCache()

	_, _, size := e.CacheStats()
	assert.Zero(t, size)
}

func TestClassify_Deterministic(t *testing.T) {
	e := newTestEngine(t)
	v1 := e.Classify("Crewing Officer")
	e.ResetCache()
	v2 := e.Classify("Crewing Officer")
	assert.Equal(t, v1, v2)
}

func TestNewEngine_BadExclusionPattern(t *testing.T) {
	cfg := testFilterConfig()
	cfg.Exclusions = append(cfg.Exclusions, `([`)
	_, err := NewEngine(cfg)
	assert.Error(t, err)
}

func TestCompileKeyword_WordBoundary(t *testing.T) {
	e := newTestEngine(t)

	//"pilots" should still hit via the \b...s? No: strict boundary means
	//"copilot" must not match "pilot"
	v := e.Classify("Autocopilot Engineer")
	assert.False(t, v.Accepted)
	assert.Equal(t, ReasonNoKeywordMatch, v.RejectionReason)
}
