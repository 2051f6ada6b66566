package models

import (
	"time"
)

type RunStatus string

const (
	RunPending   RunStatus = "PENDING"
	RunRunning   RunStatus = "RUNNING"
	RunCompleted RunStatus = "COMPLETED"
	RunFailed    RunStatus = "FAILED"
)

type TriggerOrigin string

const (
	TriggerManual    TriggerOrigin = "MANUAL"
	TriggerScheduled TriggerOrigin = "SCHEDULED"
)

// RunParams are the caller-supplied limits for one run.
// Zero caps mean unbounded.
type RunParams struct {
	JobCap  int  `json:"job_cap"`
	PageCap int  `json:"page_cap"`
	DryRun  bool `json:"dry_run"`
}

// RunRecord is one execution of one source's scraper.
type RunRecord struct {
	ID          string        `json:"id"`
	Source      string        `json:"source"`
	Status      RunStatus     `json:"status"`
	Trigger     TriggerOrigin `json:"trigger"`
	Params      RunParams     `json:"params"`
	StartedAt   time.Time     `json:"started_at"`
	FinishedAt  *time.Time    `json:"finished_at,omitempty"`
	DurationMs  int64         `json:"duration_ms"`
	Found       int           `json:"found"`
	New         int           `json:"new"`
	Updated     int           `json:"updated"`
	Duplicate   int           `json:"duplicate"`
	Errors      int           `json:"errors"`
	ErrorDetail string        `json:"error_detail,omitempty"`
}

// SourceProfile mirrors the source_profiles row for one external site.
type SourceProfile struct {
	Source       string     `json:"source"`
	Enabled      bool       `json:"enabled"`
	PageCap      int        `json:"page_cap"`
	JobCap       int        `json:"job_cap"`
	TimeoutMs    int        `json:"timeout_ms"`
	Retries      int        `json:"retries"`
	SuccessCount int        `json:"success_count"`
	FailureCount int        `json:"failure_count"`
	Schedule     string     `json:"schedule,omitempty"`
	LastRunAt    *time.Time `json:"last_run_at,omitempty"`
}

// URLHistoryEntry is the sole authority for "seen this exact URL before".
type URLHistoryEntry struct {
	URL       string    `json:"url"`
	Source    string    `json:"source"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
	TimesSeen int       `json:"times_seen"`
	Payload   []byte    `json:"payload,omitempty"` // cached normalized listing (JSONB)
}

// CanonicalJob is the durable, deduplicated record exposed downstream.
type CanonicalJob struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	NormalizedTitle string     `json:"normalized_title"`
	Organization    string     `json:"organization"`
	Country         string     `json:"country,omitempty"`
	Classification  string     `json:"classification,omitempty"`
	Status          string     `json:"status"`
	PostedDate      *time.Time `json:"posted_date,omitempty"`
	URL             string     `json:"url"`
	Description     string     `json:"description,omitempty"`
	Senior          bool       `json:"senior"`
	Source          string     `json:"source"`
	Category        string     `json:"category,omitempty"`
	Score           float64    `json:"score"`
	MatchedKeywords []string   `json:"matched_keywords,omitempty"`
	LastCheckedAt   time.Time  `json:"last_checked_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// OrganizationMapping links a raw scraped organization name to its
// normalized key. Auto-created rows stay flagged until someone reviews them.
type OrganizationMapping struct {
	ID             string    `json:"id"`
	RawName        string    `json:"raw_name"`
	NormalizedKey  string    `json:"normalized_key"`
	Classification string    `json:"classification,omitempty"`
	Country        string    `json:"country,omitempty"`
	AutoCreated    bool      `json:"auto_created"`
	NeedsReview    bool      `json:"needs_review"`
	JobCount       int       `json:"job_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
