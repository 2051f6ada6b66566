package dedup

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"

	"go-skyscout-automation/internal/database"
	"go-skyscout-automation/internal/filter"
	"go-skyscout-automation/internal/models"
	"go-skyscout-automation/internal/scraper"
)

// Outcome of one upsert resolution.
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeUpdated   Outcome = "updated"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeError     Outcome = "error"
)

const jobStatusActive = "ACTIVE"

// Manager reconciles scraped listings against the canonical store.
// Resolution order: exact URL match, then fuzzy match (same organization,
// same normalized title, posted date within the window), then create.
type Manager struct {
	store      database.Store
	windowDays int
}

func NewManager(store database.Store, fuzzyWindowDays int) *Manager {
	return &Manager{store: store, windowDays: fuzzyWindowDays}
}

// Upsert writes one accepted listing. Everything — URL history touch,
// organization mapping, canonical job write — happens in a single
// transaction; a partial write is never observable.
func (m *Manager) Upsert(ctx context.Context, raw scraper.RawListing, verdict filter.Verdict) (Outcome, error) {
	outcome := OutcomeError

	err := m.store.InTx(ctx, func(tx database.Store) error {
		org, err := m.ensureOrganization(ctx, tx, raw)
		if err != nil {
			return err
		}

		// URL history is touched regardless of the canonical outcome: a
		// source re-emitting the same URL verbatim still counts a sighting.
		payload, _ := json.Marshal(raw)
		if err := tx.TouchURLHistory(ctx, &models.URLHistoryEntry{
			URL:     raw.URL,
			Source:  raw.Source,
			Payload: payload,
		}); err != nil {
			return err
		}

		//1. Exact URL match: refresh mutable fields
		existing, err := tx.GetJobByURL(ctx, raw.URL)
		if err != nil {
			return err
		}
		if existing != nil {
			applyMutable(existing, raw, verdict)
			if err := tx.UpdateJob(ctx, existing); err != nil {
				return err
			}
			outcome = OutcomeUpdated
			return nil
		}

		//2. Fuzzy match: same posting re-surfaced under a new URL
		if raw.PostedDate != nil {
			match, err := tx.FindJobFuzzy(ctx, org.RawName, NormalizeTitle(raw.Title), *raw.PostedDate, m.windowDays)
			if err != nil {
				return err
			}
			if match != nil {
				applyMutable(match, raw, verdict)
				if err := tx.UpdateJob(ctx, match); err != nil {
					return err
				}
				outcome = OutcomeDuplicate
				return nil
			}
		}

		//3. Create
		job := &models.CanonicalJob{
			ID:              uuid.NewString(),
			Title:           raw.Title,
			NormalizedTitle: NormalizeTitle(raw.Title),
			Organization:    org.RawName,
			Country:         org.Country,
			Classification:  org.Classification,
			Status:          jobStatusActive,
			PostedDate:      raw.PostedDate,
			URL:             raw.URL,
			Description:     raw.Description,
			Senior:          IsSeniorTitle(raw.Title),
			Source:          raw.Source,
			Category:        verdict.PrimaryCategory,
			Score:           verdict.Score,
			MatchedKeywords: verdict.MatchedKeywords,
		}
		if err := tx.InsertJob(ctx, job); err != nil {
			return err
		}
		if err := tx.IncrementOrganizationJobs(ctx, org.NormalizedKey); err != nil {
			return err
		}
		outcome = OutcomeCreated
		return nil
	})

	if err != nil {
		return OutcomeError, err
	}
	return outcome, nil
}

// ensureOrganization looks up the mapping for a raw name, auto-creating a
// review-flagged one with best-effort classification/country on first sight.
func (m *Manager) ensureOrganization(ctx context.Context, tx database.Store, raw scraper.RawListing) (*models.OrganizationMapping, error) {
	name := raw.Organization
	if name == "" {
		name = "Unknown"
	}
	key := NormalizeOrgKey(name)

	org, err := tx.GetOrganization(ctx, key)
	if err != nil {
		return nil, err
	}
	if org != nil {
		return org, nil
	}

	org = &models.OrganizationMapping{
		ID:             uuid.NewString(),
		RawName:        name,
		NormalizedKey:  key,
		Classification: inferClassification(name),
		Country:        inferCountry(raw.Location),
		AutoCreated:    true,
		NeedsReview:    true,
	}
	if err := tx.CreateOrganization(ctx, org); err != nil {
		return nil, err
	}
	log.Printf("  🏢 Auto-created organization mapping %q (%s) — flagged for review", name, org.Classification)
	return org, nil
}

// MarkReviewed clears the review flag on an organization mapping.
func (m *Manager) MarkReviewed(ctx context.Context, rawName string) error {
	return m.store.MarkOrganizationReviewed(ctx, NormalizeOrgKey(rawName))
}

func applyMutable(job *models.CanonicalJob, raw scraper.RawListing, verdict filter.Verdict) {
	if raw.Description != "" {
		job.Description = raw.Description
	}
	if raw.PostedDate != nil {
		job.PostedDate = raw.PostedDate
	}
	job.Status = jobStatusActive
	job.Category = verdict.PrimaryCategory
	job.Score = verdict.Score
	job.MatchedKeywords = verdict.MatchedKeywords
}
