package orchestrator

import (
	"context"
	"log"
	"sync"

	"go-skyscout-automation/internal/dedup"
	"go-skyscout-automation/internal/filter"
	"go-skyscout-automation/internal/scraper"
)

// DryRunUpserter stands in for the dedup manager when -dry-run is set:
// accepted listings are collected and logged, nothing touches the store.
type DryRunUpserter struct {
	mu       sync.Mutex
	accepted []scraper.RawListing
}

func NewDryRunUpserter() *DryRunUpserter {
	return &DryRunUpserter{}
}

func (d *DryRunUpserter) Upsert(_ context.Context, raw scraper.RawListing, verdict filter.Verdict) (dedup.Outcome, error) {
	d.mu.Lock()
	d.accepted = append(d.accepted, raw)
	d.mu.Unlock()

	log.Printf("  💡 [dry-run] Would persist: %s - %s (%s, score %.1f)",
		raw.Title, raw.Organization, verdict.PrimaryCategory, verdict.Score)
	return dedup.OutcomeCreated, nil
}

// Accepted returns every listing that would have been persisted.
func (d *DryRunUpserter) Accepted() []scraper.RawListing {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]scraper.RawListing, len(d.accepted))
	copy(out, d.accepted)
	return out
}
