package orchestrator

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"github.com/playwright-community/playwright-go"

	"go-skyscout-automation/internal/browser"
	"go-skyscout-automation/internal/config"
	"go-skyscout-automation/internal/scraper"
)

// BrowserRunner is the production Runner: one stealth session per source
// run, closed on every exit path, then the three-stage scrape pipeline.
type BrowserRunner struct {
	manager     *browser.Manager
	registry    scraper.Registry
	cookiesPath string
}

func NewBrowserRunner(manager *browser.Manager, registry scraper.Registry, cookiesPath string) *BrowserRunner {
	return &BrowserRunner{manager: manager, registry: registry, cookiesPath: cookiesPath}
}

func (r *BrowserRunner) Run(ctx context.Context, source string, limits scraper.Limits, srcCfg config.SourceConfig) ([]scraper.RawListing, error) {
	src, err := r.registry.Get(source)
	if err != nil {
		return nil, err
	}

	cookies := r.loadCookies(source)

	sess, err := r.manager.NewSession(cookies)
	if err != nil {
		// SessionError: the engine itself is unusable, abort this source.
		return nil, err
	}
	defer sess.Close()

	return scraper.RunSource(ctx, src, sess, limits, srcCfg.DetailBatch)
}

func (r *BrowserRunner) loadCookies(source string) []playwright.OptionalCookie {
	path := filepath.Join(r.cookiesPath, "cookies-"+source+".json")
	cookies, err := browser.LoadCookies(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("⚠️ Could not load %s cookies: %v. Continuing.", source, err)
		}
		return nil
	}
	log.Printf("🍪 Loaded %s cookies (%d)", source, len(cookies))
	return cookies
}
