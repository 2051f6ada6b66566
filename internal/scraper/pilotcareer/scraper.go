package pilotcareer

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"

	"go-skyscout-automation/internal/browser"
	"go-skyscout-automation/internal/config"
	"go-skyscout-automation/internal/scraper"
)

const baseURL = "https://www.pilotcareercentre.com"

// Categories crawled in order; pagination runs inside each category.
var categorySlugs = []string{
	"pilot-jobs",
	"flight-ops-jobs",
	"dispatch-jobs",
}

type Scraper struct {
	cfg config.SourceConfig
}

func New(cfg config.SourceConfig) *Scraper {
	return &Scraper{cfg: cfg}
}

func (s *Scraper) Name() string {
	return "pilotcareer"
}

func (s *Scraper) timeout() time.Duration {
	return time.Duration(s.cfg.TimeoutMs) * time.Millisecond
}

func (s *Scraper) FetchListingPages(ctx context.Context, sess *browser.Session, limits scraper.Limits) ([]scraper.RawListing, error) {
	var all []scraper.RawListing
	page := sess.Page
	shots := browser.NewBlockCapture("")

	// The page cap spans categories: a capped run must not fetch
	// cap-times-categories pages.
	pagesFetched := 0

	for _, slug := range categorySlugs {
		if !limits.JobsAllowed(len(all)) {
			break
		}

		for pageNum := 1; ; pageNum++ {
			if !limits.JobsAllowed(len(all)) || !limits.PageAllowed(pagesFetched+1) {
				break
			}
			if err := ctx.Err(); err != nil {
				return all, err
			}

			url := fmt.Sprintf("%s/%s?page=%d", baseURL, slug, pageNum)
			log.Printf("  🔍 %s page %d", slug, pageNum)

			if _, err := page.Goto(url, playwright.PageGotoOptions{
				WaitUntil: playwright.WaitUntilStateDomcontentloaded,
				Timeout:   playwright.Float(float64(s.cfg.TimeoutMs)),
			}); err != nil {
				return all, &scraper.NavigationError{URL: url, Err: err}
			}
			pagesFetched++

			if err := s.handleChallenge(ctx, page, shots); err != nil {
				return all, err
			}

			browser.SimulateInteraction(page)
			if err := browser.HumanPause(ctx, s.cfg.Stealth.MinPauseMs, s.cfg.Stealth.MaxPauseMs); err != nil {
				return all, err
			}

			rows, err := page.Locator("tr.job-row, .job-listing-row").All()
			if err != nil {
				log.Printf("    ⚠️ Error getting job rows: %v", err)
				break
			}
			if len(rows) == 0 {
				//end of this category
				break
			}
			log.Printf("    📦 Found %d rows", len(rows))

			for _, row := range rows {
				if !limits.JobsAllowed(len(all)) {
					break
				}

				linkEl := row.Locator("a.job-link, td.position a").First()
				title, _ := linkEl.TextContent()
				href, _ := linkEl.GetAttribute("href")

				org, _ := row.Locator("td.operator, .company").First().TextContent()
				loc, _ := row.Locator("td.base, .location").First().TextContent()
				posted, _ := row.Locator("td.date, .posted").First().TextContent()

				title = strings.TrimSpace(title)
				if title == "" || href == "" {
					continue
				}

				fullURL := href
				if !strings.HasPrefix(fullURL, "http") {
					fullURL = baseURL + href
				}
				//strip tracking params so the URL is a stable identity
				if idx := strings.Index(fullURL, "?"); idx != -1 {
					fullURL = fullURL[:idx]
				}

				all = append(all, scraper.RawListing{
					ExternalID:   strings.TrimPrefix(strings.TrimPrefix(href, "/"), "job/"),
					Title:        title,
					Organization: strings.TrimSpace(org),
					Location:     strings.TrimSpace(loc),
					URL:          fullURL,
					PostedRaw:    strings.TrimSpace(posted),
					Source:       s.Name(),
				})
			}
		}
	}

	//dedup by URL: the same posting appears in multiple categories
	seen := make(map[string]bool, len(all))
	unique := make([]scraper.RawListing, 0, len(all))
	for _, l := range all {
		if !seen[l.URL] {
			seen[l.URL] = true
			unique = append(unique, l)
		}
	}

	return unique, nil
}

func (s *Scraper) FetchDetail(ctx context.Context, sess *browser.Session, l *scraper.RawListing) error {
	html, err := scraper.FetchPageContent(ctx, sess, l.URL, s.timeout())
	if err != nil {
		return err
	}

	desc, err := scraper.ExtractDescription(html)
	l.Description = desc

	if t, raw := scraper.ExtractPostedDate(html, time.Now()); t != nil {
		l.PostedDate = t
		l.PostedRaw = raw
	} else if l.PostedDate == nil && l.PostedRaw != "" {
		if t, ok := scraper.ParsePostedDate(l.PostedRaw, time.Now()); ok {
			l.PostedDate = &t
		}
	}

	return err
}

// handleChallenge waits out an interstitial once, then gives up with a
// screenshot if the wall persists.
func (s *Scraper) handleChallenge(ctx context.Context, page playwright.Page, shots *browser.BlockCapture) error {
	title, _ := page.Title()
	if !strings.Contains(title, "Just a moment") && !strings.Contains(title, "Attention Required") {
		return nil
	}

	log.Println("    🛡️ Challenge detected, waiting it out...")
	if err := browser.HumanPause(ctx, 5000, 8000); err != nil {
		return err
	}

	title, _ = page.Title()
	if strings.Contains(title, "Just a moment") || strings.Contains(title, "Attention Required") {
		shots.Snap(page, "pilotcareer-blocked", "🚨 PilotCareerCentre: challenge persists")
		return &scraper.NavigationError{URL: page.URL(), Err: fmt.Errorf("anti-bot challenge persists")}
	}
	log.Println("    ✅ Challenge cleared")
	return nil
}
