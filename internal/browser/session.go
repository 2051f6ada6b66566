package browser

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Fingerprint pools. One entry per session, picked at random so consecutive
// runs don't present identical clients.
var (
	userAgents = []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	}

	viewports = []playwright.Size{
		{Width: 1920, Height: 1080},
		{Width: 1536, Height: 864},
		{Width: 1440, Height: 900},
		{Width: 1366, Height: 768},
	}

	localeTimezones = []struct {
		Locale   string
		Timezone string
	}{
		{"en-US", "America/New_York"},
		{"en-US", "America/Chicago"},
		{"en-GB", "Europe/London"},
		{"en-IE", "Europe/Dublin"},
	}
)

// stealthScript masks the usual automation fingerprints before any page
// script runs: webdriver flag, empty plugin list, missing chrome runtime.
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3, 4, 5] });
Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });
window.chrome = window.chrome || { runtime: {} };
const origQuery = window.navigator.permissions.query;
window.navigator.permissions.query = (parameters) => (
  parameters.name === 'notifications'
    ? Promise.resolve({ state: Notification.permission })
    : origQuery(parameters)
);
`

// Session is one stealth browser context with a single page. Close is
// idempotent and safe to defer on every acquisition path.
type Session struct {
	Context playwright.BrowserContext
	Page    playwright.Page

	closeOnce sync.Once
	closeErr  error
}

// NewSession builds an anti-detection context: randomized viewport,
// user-agent, locale/timezone, plus the fingerprint-masking init script.
func (m *Manager) NewSession(cookies []playwright.OptionalCookie) (*Session, error) {
	vp := viewports[rand.Intn(len(viewports))]
	lt := localeTimezones[rand.Intn(len(localeTimezones))]

	ctx, err := m.browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport:   &vp,
		UserAgent:  playwright.String(userAgents[rand.Intn(len(userAgents))]),
		Locale:     playwright.String(lt.Locale),
		TimezoneId: playwright.String(lt.Timezone),
	})
	if err != nil {
		return nil, &SessionError{Err: err}
	}

	if err := ctx.AddInitScript(playwright.Script{Content: playwright.String(stealthScript)}); err != nil {
		ctx.Close()
		return nil, &SessionError{Err: err}
	}

	if len(cookies) > 0 {
		if err := ctx.AddCookies(cookies); err != nil {
			ctx.Close()
			return nil, &SessionError{Err: err}
		}
	}

	page, err := ctx.NewPage()
	if err != nil {
		ctx.Close()
		return nil, &SessionError{Err: err}
	}

	return &Session{Context: ctx, Page: page}, nil
}

func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.Context.Close()
	})
	return s.closeErr
}

// HumanPause suspends for a random interval between min and max milliseconds,
// returning early if the run context is cancelled.
func HumanPause(ctx context.Context, minMs, maxMs int) error {
	d := minMs
	if maxMs > minMs {
		d = rand.Intn(maxMs-minMs) + minMs
	}
	select {
	case <-time.After(time.Duration(d) * time.Millisecond):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
