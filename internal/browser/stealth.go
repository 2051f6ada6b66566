package browser

import (
	"math/rand"

	"github.com/playwright-community/playwright-go"
)

// SimulateInteraction adds cosmetic pointer and scroll noise so a session
// doesn't look idle between navigations. Best-effort: every failure is
// swallowed, the scrape never degrades because the jiggle failed.
func SimulateInteraction(page playwright.Page) {
	//random position in viewport
	x := float64(rand.Intn(800) + 100) //100-900
	y := float64(rand.Intn(600) + 100) //100-700
	_ = page.Mouse().Move(x, y)

	// Scroll down a bit
	_ = page.Mouse().Wheel(0, float64(rand.Intn(400)+200))

	// Scroll up a tiny bit (human-like correction)
	_ = page.Mouse().Wheel(0, -150)
}

// ScrollToBottom triggers lazy loading on listing pages.
func ScrollToBottom(page playwright.Page) {
	_, _ = page.Evaluate("window.scrollTo(0, document.body.scrollHeight)")
}
