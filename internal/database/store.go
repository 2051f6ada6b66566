package database

import (
	"context"
	"fmt"
	"time"

	"go-skyscout-automation/internal/models"
)

// PersistenceError marks a failed write. The record's transaction rolls
// back and the run counts it as an error, then continues.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failed (%s): %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Store is the persistence boundary. The dedup manager and the run tracker
// are its only consumers; everything else stays out of the database.
type Store interface {
	// InTx runs fn against a transaction-scoped Store. All writes for one
	// RawListing go through a single InTx call.
	InTx(ctx context.Context, fn func(tx Store) error) error

	GetJobByURL(ctx context.Context, url string) (*models.CanonicalJob, error)
	FindJobFuzzy(ctx context.Context, organization, normalizedTitle string, posted time.Time, windowDays int) (*models.CanonicalJob, error)
	InsertJob(ctx context.Context, job *models.CanonicalJob) error
	UpdateJob(ctx context.Context, job *models.CanonicalJob) error

	TouchURLHistory(ctx context.Context, entry *models.URLHistoryEntry) error

	GetOrganization(ctx context.Context, normalizedKey string) (*models.OrganizationMapping, error)
	CreateOrganization(ctx context.Context, m *models.OrganizationMapping) error
	IncrementOrganizationJobs(ctx context.Context, normalizedKey string) error
	MarkOrganizationReviewed(ctx context.Context, normalizedKey string) error

	InsertRun(ctx context.Context, run *models.RunRecord) error
	UpdateRun(ctx context.Context, run *models.RunRecord) error

	GetSourceProfile(ctx context.Context, source string) (*models.SourceProfile, error)
	UpdateSourceProfileCounters(ctx context.Context, source string, success bool, at time.Time) error
}
