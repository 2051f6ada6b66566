package scraper

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-skyscout-automation/internal/browser"
)

// fakeSource emits listings from a fixed upstream, honoring the caps the
// way a real source does during pagination.
type fakeSource struct {
	upstream   int
	perPage    int
	failDetail map[string]bool
	detailLog  []string
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) FetchListingPages(_ context.Context, _ *browser.Session, limits Limits) ([]RawListing, error) {
	var out []RawListing
	emitted := 0
	for page := 1; limits.PageAllowed(page); page++ {
		start := (page - 1) * f.perPage
		if start >= f.upstream {
			break
		}
		for i := start; i < start+f.perPage && i < f.upstream; i++ {
			if !limits.JobsAllowed(emitted) {
				return out, nil
			}
			out = append(out, RawListing{
				ExternalID: fmt.Sprintf("%d", i),
				Title:      fmt.Sprintf("Listing %d", i),
				URL:        fmt.Sprintf("https://example.test/job/%d", i),
				Source:     f.Name(),
			})
			emitted++
		}
	}
	return out, nil
}

func (f *fakeSource) FetchDetail(_ context.Context, _ *browser.Session, l *RawListing) error {
	f.detailLog = append(f.detailLog, l.URL)
	if f.failDetail[l.URL] {
		return &TimeoutError{URL: l.URL, Err: fmt.Errorf("deadline exceeded")}
	}
	l.Description = "full description for " + l.ExternalID
	return nil
}

func TestRunSource_JobCapBoundsEmission(t *testing.T) {
	src := &fakeSource{upstream: 100, perPage: 10}

	listings, err := RunSource(context.Background(), src, nil, Limits{JobCap: 7}, 1)
	require.NoError(t, err)
	assert.Len(t, listings, 7)
}

func TestRunSource_PageCapStopsPagination(t *testing.T) {
	src := &fakeSource{upstream: 100, perPage: 10}

	listings, err := RunSource(context.Background(), src, nil, Limits{PageCap: 2}, 1)
	require.NoError(t, err)
	assert.Len(t, listings, 20)
}

func TestRunSource_DetailFailureDegradesOnlyThatListing(t *testing.T) {
	src := &fakeSource{
		upstream: 10,
		perPage:  10,
		failDetail: map[string]bool{
			"https://example.test/job/3": true,
		},
	}

	listings, err := RunSource(context.Background(), src, nil, Limits{}, 1)
	require.NoError(t, err)
	require.Len(t, listings, 10)

	for _, l := range listings {
		if l.ExternalID == "3" {
			assert.Empty(t, l.Description, "failed detail fetch must degrade, not fill")
		} else {
			assert.NotEmpty(t, l.Description)
		}
	}
}

func TestRunSource_CancelledContextStopsScheduling(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := &fakeSource{upstream: 10, perPage: 10}
	// FetchListingPages ignores ctx in the fake; the detail stage must not
	// schedule anything on a dead context.
	listings, err := RunSource(ctx, src, nil, Limits{}, 2)
	assert.Error(t, err)
	assert.Len(t, listings, 10)
	assert.Empty(t, src.detailLog)
}

func TestRegistry(t *testing.T) {
	r := Registry{}
	src := &fakeSource{}
	r.Register(src)

	got, err := r.Get("fake")
	require.NoError(t, err)
	assert.Same(t, Source(src), got)

	_, err = r.Get("nope")
	assert.Error(t, err)

	assert.Equal(t, []string{"fake"}, r.Names())
}
