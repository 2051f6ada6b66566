package orchestrator

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"go-skyscout-automation/internal/database"
	"go-skyscout-automation/internal/dedup"
	"go-skyscout-automation/internal/models"
)

// ErrTerminalRun is returned on any transition attempted after a run has
// reached COMPLETED or FAILED.
var ErrTerminalRun = fmt.Errorf("run already terminal")

// Tracker enforces the run state machine (PENDING -> RUNNING -> terminal)
// and keeps the counter invariant found = new + updated + duplicate + errors.
// The store may be nil (dry-run); the record is still tracked in memory.
type Tracker struct {
	store   database.Store
	run     *models.RunRecord
	started bool
}

func NewTracker(store database.Store, source string, trigger models.TriggerOrigin, params models.RunParams) *Tracker {
	return &Tracker{
		store: store,
		run: &models.RunRecord{
			ID:      uuid.NewString(),
			Source:  source,
			Status:  models.RunPending,
			Trigger: trigger,
			Params:  params,
		},
	}
}

// Run exposes the record being tracked. Callers must treat it as read-only.
func (t *Tracker) Run() *models.RunRecord {
	return t.run
}

func (t *Tracker) terminal() bool {
	return t.run.Status == models.RunCompleted || t.run.Status == models.RunFailed
}

// Start moves PENDING -> RUNNING and records start time and parameters.
// On a failed insert the record stays PENDING so the state never claims a
// run the store doesn't know about.
func (t *Tracker) Start(ctx context.Context) error {
	if t.run.Status != models.RunPending {
		return fmt.Errorf("cannot start run in state %s", t.run.Status)
	}
	t.run.Status = models.RunRunning
	t.run.StartedAt = time.Now()

	if t.store != nil {
		if err := t.store.InsertRun(ctx, t.run); err != nil {
			t.run.Status = models.RunPending
			t.run.StartedAt = time.Time{}
			return err
		}
	}
	t.started = true
	return nil
}

// RecordOutcome counts one upsert resolution. Found moves in lockstep so
// the invariant holds at every point, not just at the end.
func (t *Tracker) RecordOutcome(outcome dedup.Outcome) {
	if t.terminal() {
		return
	}
	t.run.Found++
	switch outcome {
	case dedup.OutcomeCreated:
		t.run.New++
	case dedup.OutcomeUpdated:
		t.run.Updated++
	case dedup.OutcomeDuplicate:
		t.run.Duplicate++
	default:
		t.run.Errors++
	}
}

// Complete moves RUNNING -> COMPLETED. Exactly one terminal transition
// succeeds; the source profile counters ride on it.
func (t *Tracker) Complete(ctx context.Context) error {
	return t.finish(ctx, models.RunCompleted, "")
}

// Fail moves the run to FAILED with the triggering error.
func (t *Tracker) Fail(ctx context.Context, cause error) error {
	detail := ""
	if cause != nil {
		detail = cause.Error()
	}
	return t.finish(ctx, models.RunFailed, detail)
}

func (t *Tracker) finish(ctx context.Context, status models.RunStatus, detail string) error {
	if t.terminal() {
		return ErrTerminalRun
	}

	now := time.Now()
	t.run.Status = status
	t.run.FinishedAt = &now
	if !t.run.StartedAt.IsZero() {
		t.run.DurationMs = now.Sub(t.run.StartedAt).Milliseconds()
	}
	t.run.ErrorDetail = detail

	if t.store == nil {
		return nil
	}

	// A run that failed before Start has no row yet: insert it so the
	// terminal record is stored either way.
	if !t.started {
		if err := t.store.InsertRun(ctx, t.run); err != nil {
			log.Printf("⚠️ Failed to persist run record %s: %v", t.run.ID, err)
			return nil
		}
	}
	if err := t.store.UpdateRun(ctx, t.run); err != nil {
		log.Printf("⚠️ Failed to persist run record %s: %v", t.run.ID, err)
	}

	// Profile counters track scraper outcomes; a run that never started
	// says nothing about the source.
	if t.started {
		if err := t.store.UpdateSourceProfileCounters(ctx, t.run.Source, status == models.RunCompleted, now); err != nil {
			log.Printf("⚠️ Failed to update source profile for %s: %v", t.run.Source, err)
		}
	}
	return nil
}
