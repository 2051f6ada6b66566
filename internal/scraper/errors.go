package scraper

import "fmt"

// NavigationError: the page could not be reached. Recoverable per item.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation failed for %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// TimeoutError: a navigation or selector wait ran out of time. Recoverable
// per item; the listing degrades, the batch continues.
type TimeoutError struct {
	URL string
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout on %s: %v", e.URL, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// ParseError: the detail page lacks the expected structure. The listing
// keeps whatever best-effort text was extracted.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse failed for %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
