// Define an interface for all scrapers
// Ensure consistency

package scraper

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go-skyscout-automation/internal/browser"
)

// RawListing is an as-scraped posting before classification and dedup.
type RawListing struct {
	ExternalID   string     `json:"external_id"`
	Title        string     `json:"title"`
	Organization string     `json:"organization"`
	Location     string     `json:"location"`
	URL          string     `json:"url"`
	PostedDate   *time.Time `json:"posted_date,omitempty"`
	PostedRaw    string     `json:"posted_raw,omitempty"`
	Description  string     `json:"description,omitempty"`
	Source       string     `json:"source"`
}

// Limits bound one run. Zero means unbounded.
type Limits struct {
	PageCap int
	JobCap  int
}

// PageAllowed reports whether page n (1-based) may still be fetched.
func (l Limits) PageAllowed(n int) bool {
	return l.PageCap <= 0 || n <= l.PageCap
}

// JobsAllowed reports whether another listing may still be collected.
func (l Limits) JobsAllowed(collected int) bool {
	return l.JobCap <= 0 || collected < l.JobCap
}

//Source defines the contract that all site scrapers must implement
type Source interface {
	//Name is the source name (avjobsearch, pilotcareer, ...)
	Name() string

	//FetchListingPages paginates the listing index, enforcing both caps
	//in-stage so no detail fetch is wasted on a listing past the cap
	FetchListingPages(ctx context.Context, sess *browser.Session, limits Limits) ([]RawListing, error)

	//FetchDetail opens the listing's own page and fills in description and
	//posted date. Failures degrade only this listing.
	FetchDetail(ctx context.Context, sess *browser.Session, listing *RawListing) error
}

// Registry maps source names to implementations. Composition over
// inheritance: each site is its own package implementing Source.
type Registry map[string]Source

func (r Registry) Register(s Source) {
	r[s.Name()] = s
}

func (r Registry) Get(name string) (Source, error) {
	s, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("unknown source %q", name)
	}
	return s, nil
}

func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
