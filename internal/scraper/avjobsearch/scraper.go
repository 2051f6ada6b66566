package avjobsearch

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

const baseURL = "https://www.aviationjobsearch.com"

type Scraper struct {
	cfg config.SourceConfig
}

func New(cfg config.SourceConfig) *Scraper {
	return &Scraper{cfg: cfg}
}

func (s *Scraper) Name() string {
	return "avjobsearch"
}

func (s *Scraper) timeout() time.Duration {
	return time.Duration(s.cfg.TimeoutMs) * time.Millisecond
}

func (s *Scraper) FetchListingPages(ctx context.Context, sess *browser.Session, limits scraper.Limits) ([]scraper.RawListing, error) {
	var all []scraper.RawListing
	page := sess.Page
	shots := browser.NewBlockCapture("")

	//warmup phase
	if s.cfg.Stealth.Warmup {
		log.Println("🏠 Navigating to AviationJobSearch home for warm-up...")
		if _, err := page.Goto(baseURL, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateDomcontentloaded,
			Timeout:   playwright.Float(float64(s.cfg.TimeoutMs)),
		}); err != nil {
			log.Printf("⚠️ Warm-up navigation failed: %v", err)
		}
		if err := browser.HumanPause(ctx, s.cfg.Stealth.MinPauseMs, s.cfg.Stealth.MaxPauseMs); err != nil {
			return all, err
		}
	}

	for pageNum := 1; limits.PageAllowed(pageNum); pageNum++ {
		if !limits.JobsAllowed(len(all)) {
			break
		}
		if err := ctx.Err(); err != nil {
			return all, err
		}

		url := fmt.Sprintf("%s/jobs/flight-operations?page=%d&sort=newest", baseURL, pageNum)
		log.Printf("  🔍 Listing page %d: %s", pageNum, url)

		if _, err := page.Goto(url, playwright.PageGotoOptions{
			WaitUntil: playwright.WaitUntilStateDomcontentloaded,
			Timeout:   playwright.Float(float64(s.cfg.TimeoutMs)),
		}); err != nil {
			return all, &scraper.NavigationError{URL: url, Err: err}
		}

		if blocked(page) {
			shots.Snap(page, "avjobsearch-blocked", "🚨 AviationJobSearch: anti-bot challenge detected")
			return all, &scraper.NavigationError{URL: url, Err: fmt.Errorf("anti-bot challenge persists")}
		}

		//human behavior between pages
		browser.SimulateInteraction(page)
		browser.ScrollToBottom(page)
		if err := browser.HumanPause(ctx, s.cfg.Stealth.MinPauseMs, s.cfg.Stealth.MaxPauseMs); err != nil {
			return all, err
		}

		cards, err := locateWithFallback(
			func() ([]playwright.Locator, error) { return page.Locator(".job-result-card").All() },
			//fallback selector for the legacy layout
			func() ([]playwright.Locator, error) { return page.Locator("article.job-listing").All() },
		)
		if err != nil {
			log.Printf("    ⚠️ Error finding job cards: %v", err)
			continue
		}
		if len(cards) == 0 {
			//no more pages
			break
		}
		log.Printf("    📦 Found %d job cards on page %d", len(cards), pageNum)

		for _, card := range cards {
			if !limits.JobsAllowed(len(all)) {
				break
			}

			titleEl := card.Locator("h2 a, h3.job-title a, a.job-title").First()
			title, _ := titleEl.TextContent()
			href, _ := titleEl.GetAttribute("href")

			orgEl := card.Locator(".company-name, .recruiter-name").First()
			org, _ := orgEl.TextContent()

			locEl := card.Locator(".job-location, .location").First()
			location, _ := locEl.TextContent()

			postedEl := card.Locator(".posted-date, time").First()
			posted, _ := postedEl.TextContent()

			title = strings.TrimSpace(title)
			if title == "" {
				continue
			}

			all = append(all, scraper.RawListing{
				ExternalID:   externalID(href),
				Title:        title,
				Organization: strings.TrimSpace(org),
				Location:     strings.TrimSpace(location),
				URL:          absoluteURL(href),
				PostedRaw:    strings.TrimSpace(posted),
				Source:       s.Name(),
			})
		}
	}

	return dedupeByURL(all), nil
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

func blocked(page playwright.Page) bool {
	title, _ := page.Title()
	for _, marker := range []string{"Attention Required", "Just a moment", "Cloudflare"} {
		if strings.Contains(title, marker) {
			return true
		}
	}
	if count, _ := page.Locator(".captcha, .recaptcha, [data-captcha]").Count(); count > 0 {
		return true
	}
	return false
}

// locateWithFallback tries the primary selector and falls back only when it
// succeeded with zero matches. A primary error always surfaces.
func locateWithFallback(primary, fallback func() ([]playwright.Locator, error)) ([]playwright.Locator, error) {
	cards, err := primary()
	if err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		cards, _ = fallback()
	}
	return cards, nil
}

func externalID(href string) string {
	trimmed := strings.TrimRight(href, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx != -1 {
		return trimmed[idx+1:]
	}
	return trimmed
}

func absoluteURL(href string) string {
	if strings.HasPrefix(href, "http") {
		return href
	}
	return baseURL + href
}

func dedupeByURL(listings []scraper.RawListing) []scraper.RawListing {
	seen := make(map[string]bool, len(listings))
	unique := make([]scraper.RawListing, 0, len(listings))
	for _, l := range listings {
		if !seen[l.URL] {
			seen[l.URL] = true
			unique = append(unique, l)
		}
	}
	return unique
}
