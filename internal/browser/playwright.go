package browser

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// SessionError means the browser engine itself is unusable. It is fatal for
// the whole source run; callers must abort rather than retry per item.
type SessionError struct {
	Err error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("browser session unavailable: %v", e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// Manager owns the playwright driver and the shared chromium instance.
// Sessions (contexts + pages) are created per source via NewSession.
type Manager struct {
	pw      *playwright.Playwright
	browser playwright.Browser
}

func NewManager(headless bool) (*Manager, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, &SessionError{Err: err}
	}

	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--no-first-run",
		},
	})
	if err != nil {
		pw.Stop()
		return nil, &SessionError{Err: err}
	}

	return &Manager{pw: pw, browser: b}, nil
}

func (m *Manager) Close() error {
	if m.browser != nil {
		if err := m.browser.Close(); err != nil {
			return err
		}
	}
	if m.pw != nil {
		return m.pw.Stop()
	}
	return nil
}
