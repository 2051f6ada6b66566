package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-skyscout-automation/internal/models"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the same
// Repository methods serve pooled and transactional calls.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Repository struct {
	pool *pgxpool.Pool
	q    querier
}

func Connect(ctx context.Context, connString string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	// Connection poolers in transaction mode don't play well with prepared
	// statements, so the statement cache stays off.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &Repository{pool: pool, q: pool}, nil
}

func (r *Repository) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

// InTx runs fn against a tx-scoped Repository. Rollback unless fn returned
// nil and the commit succeeded.
func (r *Repository) InTx(ctx context.Context, fn func(tx Store) error) error {
	pgtx, err := r.pool.Begin(ctx)
	if err != nil {
		return &PersistenceError{Op: "begin", Err: err}
	}

	committed := false
	defer func() {
		if !committed {
			_ = pgtx.Rollback(ctx)
		}
	}()

	if err := fn(&Repository{pool: r.pool, q: pgtx}); err != nil {
		return err
	}

	if err := pgtx.Commit(ctx); err != nil {
		return &PersistenceError{Op: "commit", Err: err}
	}
	committed = true
	return nil
}

// ---------------- CANONICAL JOB OPERATIONS ----------------

const jobColumns = `id, title, normalized_title, organization, country, classification,
	status, posted_date, url, description, senior, source, category, score,
	matched_keywords, last_checked_at, created_at, updated_at`

func scanJob(row pgx.Row) (*models.CanonicalJob, error) {
	var job models.CanonicalJob
	err := row.Scan(
		&job.ID, &job.Title, &job.NormalizedTitle, &job.Organization, &job.Country,
		&job.Classification, &job.Status, &job.PostedDate, &job.URL, &job.Description,
		&job.Senior, &job.Source, &job.Category, &job.Score, &job.MatchedKeywords,
		&job.LastCheckedAt, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// GetJobByURL returns (nil, nil) when the URL is unknown.
func (r *Repository) GetJobByURL(ctx context.Context, url string) (*models.CanonicalJob, error) {
	row := r.q.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE url = $1`, url)
	job, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "get job by url", Err: err}
	}
	return job, nil
}

// FindJobFuzzy resolves a re-posted listing: same organization, same
// normalized title, posted date within the configured window.
func (r *Repository) FindJobFuzzy(ctx context.Context, organization, normalizedTitle string, posted time.Time, windowDays int) (*models.CanonicalJob, error) {
	window := time.Duration(windowDays) * 24 * time.Hour
	row := r.q.QueryRow(ctx, `
		SELECT `+jobColumns+` FROM jobs
		WHERE lower(organization) = lower($1)
		  AND normalized_title = $2
		  AND posted_date BETWEEN $3 AND $4
		ORDER BY posted_date DESC
		LIMIT 1`,
		organization, normalizedTitle, posted.Add(-window), posted.Add(window),
	)
	job, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "find job fuzzy", Err: err}
	}
	return job, nil
}

func (r *Repository) InsertJob(ctx context.Context, job *models.CanonicalJob) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO jobs (id, title, normalized_title, organization, country, classification,
			status, posted_date, url, description, senior, source, category, score,
			matched_keywords, last_checked_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,now(),now(),now())
		RETURNING last_checked_at, created_at, updated_at`,
		job.ID, job.Title, job.NormalizedTitle, job.Organization, job.Country,
		job.Classification, job.Status, job.PostedDate, job.URL, job.Description,
		job.Senior, job.Source, job.Category, job.Score, job.MatchedKeywords,
	).Scan(&job.LastCheckedAt, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return &PersistenceError{Op: "insert job", Err: err}
	}
	return nil
}

func (r *Repository) UpdateJob(ctx context.Context, job *models.CanonicalJob) error {
	_, err := r.q.Exec(ctx, `
		UPDATE jobs SET description = $2, posted_date = $3, status = $4,
			category = $5, score = $6, matched_keywords = $7,
			last_checked_at = now(), updated_at = now()
		WHERE id = $1`,
		job.ID, job.Description, job.PostedDate, job.Status,
		job.Category, job.Score, job.MatchedKeywords,
	)
	if err != nil {
		return &PersistenceError{Op: "update job", Err: err}
	}
	return nil
}

// ---------------- URL HISTORY ----------------

// TouchURLHistory increments times_seen for a known URL or inserts a fresh
// entry. Independent of what happens to the canonical record.
func (r *Repository) TouchURLHistory(ctx context.Context, entry *models.URLHistoryEntry) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO url_history (url, source, first_seen, last_seen, times_seen, payload)
		VALUES ($1, $2, now(), now(), 1, $3)
		ON CONFLICT (url)
		DO UPDATE SET last_seen = now(), times_seen = url_history.times_seen + 1,
			payload = EXCLUDED.payload`,
		entry.URL, entry.Source, entry.Payload,
	)
	if err != nil {
		return &PersistenceError{Op: "touch url history", Err: err}
	}
	return nil
}

// ---------------- ORGANIZATION MAPPINGS ----------------

func (r *Repository) GetOrganization(ctx context.Context, normalizedKey string) (*models.OrganizationMapping, error) {
	var m models.OrganizationMapping
	err := r.q.QueryRow(ctx, `
		SELECT id, raw_name, normalized_key, classification, country,
			auto_created, needs_review, job_count, created_at, updated_at
		FROM organization_mappings WHERE normalized_key = $1`, normalizedKey,
	).Scan(&m.ID, &m.RawName, &m.NormalizedKey, &m.Classification, &m.Country,
		&m.AutoCreated, &m.NeedsReview, &m.JobCount, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "get organization", Err: err}
	}
	return &m, nil
}

func (r *Repository) CreateOrganization(ctx context.Context, m *models.OrganizationMapping) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO organization_mappings
			(id, raw_name, normalized_key, classification, country, auto_created, needs_review, job_count)
		VALUES ($1,$2,$3,$4,$5,$6,$7,0)
		ON CONFLICT (normalized_key) DO UPDATE SET updated_at = now()
		RETURNING created_at, updated_at`,
		m.ID, m.RawName, m.NormalizedKey, m.Classification, m.Country,
		m.AutoCreated, m.NeedsReview,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return &PersistenceError{Op: "create organization", Err: err}
	}
	return nil
}

func (r *Repository) IncrementOrganizationJobs(ctx context.Context, normalizedKey string) error {
	_, err := r.q.Exec(ctx, `
		UPDATE organization_mappings
		SET job_count = job_count + 1, updated_at = now()
		WHERE normalized_key = $1`, normalizedKey)
	if err != nil {
		return &PersistenceError{Op: "increment organization jobs", Err: err}
	}
	return nil
}

func (r *Repository) MarkOrganizationReviewed(ctx context.Context, normalizedKey string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE organization_mappings
		SET needs_review = false, updated_at = now()
		WHERE normalized_key = $1`, normalizedKey)
	if err != nil {
		return &PersistenceError{Op: "mark organization reviewed", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return &PersistenceError{Op: "mark organization reviewed", Err: fmt.Errorf("unknown organization %q", normalizedKey)}
	}
	return nil
}

// ---------------- RUN RECORDS ----------------

func (r *Repository) InsertRun(ctx context.Context, run *models.RunRecord) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO run_records
			(id, source, status, trigger_origin, job_cap, page_cap, dry_run, started_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		run.ID, run.Source, run.Status, run.Trigger,
		run.Params.JobCap, run.Params.PageCap, run.Params.DryRun, run.StartedAt,
	)
	if err != nil {
		return &PersistenceError{Op: "insert run", Err: err}
	}
	return nil
}

func (r *Repository) UpdateRun(ctx context.Context, run *models.RunRecord) error {
	_, err := r.q.Exec(ctx, `
		UPDATE run_records
		SET status = $2, finished_at = $3, duration_ms = $4,
			found = $5, new = $6, updated = $7, duplicate = $8, errors = $9,
			error_detail = $10
		WHERE id = $1`,
		run.ID, run.Status, run.FinishedAt, run.DurationMs,
		run.Found, run.New, run.Updated, run.Duplicate, run.Errors,
		run.ErrorDetail,
	)
	if err != nil {
		return &PersistenceError{Op: "update run", Err: err}
	}
	return nil
}

// ---------------- SOURCE PROFILES ----------------

func (r *Repository) GetSourceProfile(ctx context.Context, source string) (*models.SourceProfile, error) {
	var p models.SourceProfile
	err := r.q.QueryRow(ctx, `
		SELECT source, enabled, page_cap, job_cap, timeout_ms, retries,
			success_count, failure_count, schedule, last_run_at
		FROM source_profiles WHERE source = $1`, source,
	).Scan(&p.Source, &p.Enabled, &p.PageCap, &p.JobCap, &p.TimeoutMs, &p.Retries,
		&p.SuccessCount, &p.FailureCount, &p.Schedule, &p.LastRunAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "get source profile", Err: err}
	}
	return &p, nil
}

// UpdateSourceProfileCounters bumps the rolling success/failure counters.
// Called exactly once per terminal run.
func (r *Repository) UpdateSourceProfileCounters(ctx context.Context, source string, success bool, at time.Time) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO source_profiles (source, enabled, success_count, failure_count, last_run_at)
		VALUES ($1, true, $2, $3, $4)
		ON CONFLICT (source)
		DO UPDATE SET
			success_count = source_profiles.success_count + $2,
			failure_count = source_profiles.failure_count + $3,
			last_run_at = $4`,
		source, boolToCount(success), boolToCount(!success), at,
	)
	if err != nil {
		return &PersistenceError{Op: "update source profile counters", Err: err}
	}
	return nil
}

func boolToCount(b bool) int {
	if b {
		return 1
	}
	return 0
}
