package orchestrator

import (
	"context"
	"fmt"
	"log"

	"go-skyscout-automation/internal/config"
	"go-skyscout-automation/internal/database"
	"go-skyscout-automation/internal/dedup"
	"go-skyscout-automation/internal/filter"
	"go-skyscout-automation/internal/models"
	"go-skyscout-automation/internal/scraper"
)

// Runner executes the scrape pipeline for one source and returns normalized
// raw listings. The production implementation drives a stealth browser
// session; tests swap in fakes.
type Runner interface {
	Run(ctx context.Context, source string, limits scraper.Limits, srcCfg config.SourceConfig) ([]scraper.RawListing, error)
}

// Upserter is the persistence resolution seam. dedup.Manager in real runs,
// a logging stand-in for dry runs.
type Upserter interface {
	Upsert(ctx context.Context, raw scraper.RawListing, verdict filter.Verdict) (dedup.Outcome, error)
}

// Orchestrator drives one or many source runs under caps and records their
// outcomes. Sources run sequentially; each is isolated — a failure in one
// never prevents a sibling from reaching its own terminal state.
type Orchestrator struct {
	cfg      *config.Config
	store    database.Store // nil in dry-run
	engine   *filter.Engine
	upserter Upserter
	runner   Runner
	metrics  *Metrics
	trigger  models.TriggerOrigin
}

func New(cfg *config.Config, store database.Store, engine *filter.Engine, upserter Upserter, runner Runner, metrics *Metrics) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		store:    store,
		engine:   engine,
		upserter: upserter,
		runner:   runner,
		metrics:  metrics,
		trigger:  models.TriggerManual,
	}
}

// SetTrigger marks runs as fired by the external scheduler rather than a
// human invocation.
func (o *Orchestrator) SetTrigger(t models.TriggerOrigin) {
	o.trigger = t
}

// RunAll executes every requested source. Always returns one terminal
// RunRecord per source.
func (o *Orchestrator) RunAll(ctx context.Context, sources []string, params models.RunParams) []*models.RunRecord {
	records := make([]*models.RunRecord, 0, len(sources))
	for _, name := range sources {
		log.Printf("\n▶️ Starting source: %s", name)
		rec := o.runSource(ctx, name, params)
		o.metrics.Record(rec)
		records = append(records, rec)
		log.Printf("⏹️ Source %s finished: %s (found=%d new=%d updated=%d duplicate=%d errors=%d)",
			name, rec.Status, rec.Found, rec.New, rec.Updated, rec.Duplicate, rec.Errors)
	}
	return records
}

// runSource drives one run to a terminal state no matter what the scraper
// does, including panics.
func (o *Orchestrator) runSource(ctx context.Context, name string, params models.RunParams) *models.RunRecord {
	tracker := NewTracker(o.store, name, o.trigger, params)

	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Source %s panicked: %v", name, r)
			_ = tracker.Fail(ctx, fmt.Errorf("panic: %v", r))
		}
	}()

	srcCfg := o.cfg.Source(name)
	if !srcCfg.Enabled {
		_ = tracker.Fail(ctx, fmt.Errorf("source %s is disabled", name))
		return tracker.Run()
	}

	if err := tracker.Start(ctx); err != nil {
		_ = tracker.Fail(ctx, err)
		return tracker.Run()
	}

	limits := o.effectiveLimits(srcCfg, params)

	listings, err := o.runner.Run(ctx, name, limits, srcCfg)
	if err != nil {
		// Unhandled scraper error — this source's run fails atomically.
		_ = tracker.Fail(ctx, err)
		return tracker.Run()
	}

	for _, raw := range listings {
		verdict := o.engine.Classify(raw.Title)
		if !verdict.Accepted {
			log.Printf("  🚫 Rejected (%s): %s", verdict.RejectionReason, raw.Title)
			continue
		}

		outcome, err := o.upserter.Upsert(ctx, raw, verdict)
		if err != nil {
			// Per-record failure: transaction rolled back, run continues.
			log.Printf("  ⚠️ Upsert error for %s: %v", raw.URL, err)
			tracker.RecordOutcome(dedup.OutcomeError)
			continue
		}
		tracker.RecordOutcome(outcome)
		log.Printf("  ✅ [%s] %s - %s (score %.1f)", outcome, raw.Title, raw.Organization, verdict.Score)
	}

	_ = tracker.Complete(ctx)
	return tracker.Run()
}

// effectiveLimits: caller-supplied caps win; the source profile fills in
// whatever the caller left unbounded.
func (o *Orchestrator) effectiveLimits(srcCfg config.SourceConfig, params models.RunParams) scraper.Limits {
	limits := scraper.Limits{PageCap: params.PageCap, JobCap: params.JobCap}
	if limits.PageCap <= 0 {
		limits.PageCap = srcCfg.PageCap
	}
	if limits.JobCap <= 0 {
		limits.JobCap = srcCfg.JobCap
	}
	return limits
}
