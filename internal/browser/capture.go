package browser

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"
)

// BlockCapture saves full-page screenshots when a source hits an anti-bot
// wall, so a block can be diagnosed after the run instead of re-scraped live.
type BlockCapture struct {
	outputDir string
}

// NewBlockCapture writes under dir; empty means logs/screenshots.
func NewBlockCapture(dir string) *BlockCapture {
	if dir == "" {
		dir = filepath.Join("logs", "screenshots")
	}
	os.MkdirAll(dir, 0755)
	return &BlockCapture{outputDir: dir}
}

// Snap captures the current page state under a source-prefixed filename.
// Capture failures are logged, not fatal: the scrape outcome already stands.
func (c *BlockCapture) Snap(page playwright.Page, source, message string) error {
	stamp := time.Now().Format("2006-01-02_15-04-05")
	path := filepath.Join(c.outputDir, fmt.Sprintf("%s_%s.png", source, stamp))
	log.Printf("📸 %s", message)

	_, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	})
	if err != nil {
		log.Printf("⚠️ Failed to capture screenshot: %v", err)
		return err
	}

	log.Printf("   Screenshot saved: %s", path)
	return nil
}
