package scraper

import (
	"context"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/playwright-community/playwright-go"
	"golang.org/x/sync/semaphore"

	"go-skyscout-automation/internal/browser"
)

const defaultDetailBatch = 4

// RunSource drives the three-stage pipeline for one source: paginated
// listing collection (caps enforced in-stage by the source), then detail
// fetches in bounded concurrent batches. Each detail fetch is independently
// fault-tolerant: a failure degrades that one listing, never the batch.
func RunSource(ctx context.Context, src Source, sess *browser.Session, limits Limits, detailBatch int) ([]RawListing, error) {
	listings, err := src.FetchListingPages(ctx, sess, limits)
	if err != nil {
		return nil, err
	}

	// Sources enforce caps during pagination; this clamp only guards a
	// misbehaving implementation.
	if limits.JobCap > 0 && len(listings) > limits.JobCap {
		listings = listings[:limits.JobCap]
	}

	if len(listings) == 0 {
		return listings, nil
	}

	if detailBatch <= 0 {
		detailBatch = defaultDetailBatch
	}

	sem := semaphore.NewWeighted(int64(detailBatch))
	var wg sync.WaitGroup
	var degraded int64

	for i := range listings {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Run cancelled: stop scheduling, keep what finished.
			break
		}
		wg.Add(1)
		go func(l *RawListing) {
			defer wg.Done()
			defer sem.Release(1)
			if err := src.FetchDetail(ctx, sess, l); err != nil {
				atomic.AddInt64(&degraded, 1)
				log.Printf("    ⚠️ Detail fetch degraded for %s: %v", l.URL, err)
			}
		}(&listings[i])
	}
	wg.Wait()

	if n := atomic.LoadInt64(&degraded); n > 0 {
		log.Printf("  📉 %s: %d/%d detail fetches degraded", src.Name(), n, len(listings))
	}

	return listings, ctx.Err()
}

// FetchPageContent opens a fresh page inside the session, navigates with a
// hard timeout and returns the rendered HTML. The page is always closed.
func FetchPageContent(ctx context.Context, sess *browser.Session, url string, timeout time.Duration) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	page, err := sess.Context.NewPage()
	if err != nil {
		return "", &NavigationError{URL: url, Err: err}
	}
	defer page.Close()

	if _, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
	}); err != nil {
		if isTimeout(err) {
			return "", &TimeoutError{URL: url, Err: err}
		}
		return "", &NavigationError{URL: url, Err: err}
	}

	html, err := page.Content()
	if err != nil {
		return "", &ParseError{URL: url, Err: err}
	}
	return html, nil
}

func isTimeout(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "timeout")
}
