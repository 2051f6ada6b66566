package dedup

import (
	"context"
	"fmt"
	"time"

	"go-skyscout-automation/internal/database"
	"go-skyscout-automation/internal/models"
)

// fakeStore is an in-memory database.Store with real transaction semantics:
// InTx works on a deep copy and swaps it in only on success, so a failing
// callback leaves no partial writes behind.
type fakeStore struct {
	jobsByURL map[string]*models.CanonicalJob
	orgsByKey map[string]*models.OrganizationMapping
	history   map[string]*models.URLHistoryEntry
	runs      map[string]*models.RunRecord
	profiles  map[string]*models.SourceProfile

	failInsertJob bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		jobsByURL: make(map[string]*models.CanonicalJob),
		orgsByKey: make(map[string]*models.OrganizationMapping),
		history:   make(map[string]*models.URLHistoryEntry),
		runs:      make(map[string]*models.RunRecord),
		profiles:  make(map[string]*models.SourceProfile),
	}
}

func (s *fakeStore) clone() *fakeStore {
	c := newFakeStore()
	c.failInsertJob = s.failInsertJob
	for k, v := range s.jobsByURL {
		job := *v
		c.jobsByURL[k] = &job
	}
	for k, v := range s.orgsByKey {
		org := *v
		c.orgsByKey[k] = &org
	}
	for k, v := range s.history {
		h := *v
		c.history[k] = &h
	}
	for k, v := range s.runs {
		r := *v
		c.runs[k] = &r
	}
	for k, v := range s.profiles {
		p := *v
		c.profiles[k] = &p
	}
	return c
}

func (s *fakeStore) InTx(_ context.Context, fn func(tx database.Store) error) error {
	tx := s.clone()
	if err := fn(tx); err != nil {
		return err
	}
	*s = *tx
	return nil
}

func (s *fakeStore) GetJobByURL(_ context.Context, url string) (*models.CanonicalJob, error) {
	if job, ok := s.jobsByURL[url]; ok {
		copied := *job
		return &copied, nil
	}
	return nil, nil
}

func (s *fakeStore) FindJobFuzzy(_ context.Context, organization, normalizedTitle string, posted time.Time, windowDays int) (*models.CanonicalJob, error) {
	window := time.Duration(windowDays) * 24 * time.Hour
	for _, job := range s.jobsByURL {
		if job.Organization != organization || job.NormalizedTitle != normalizedTitle || job.PostedDate == nil {
			continue
		}
		diff := job.PostedDate.Sub(posted)
		if diff < 0 {
			diff = -diff
		}
		if diff <= window {
			copied := *job
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) InsertJob(_ context.Context, job *models.CanonicalJob) error {
	if s.failInsertJob {
		return &database.PersistenceError{Op: "insert job", Err: fmt.Errorf("forced failure")}
	}
	copied := *job
	s.jobsByURL[job.URL] = &copied
	return nil
}

func (s *fakeStore) UpdateJob(_ context.Context, job *models.CanonicalJob) error {
	for url, existing := range s.jobsByURL {
		if existing.ID == job.ID {
			copied := *job
			s.jobsByURL[url] = &copied
			return nil
		}
	}
	return &database.PersistenceError{Op: "update job", Err: fmt.Errorf("job %s not found", job.ID)}
}

func (s *fakeStore) TouchURLHistory(_ context.Context, entry *models.URLHistoryEntry) error {
	now := time.Now()
	if existing, ok := s.history[entry.URL]; ok {
		existing.TimesSeen++
		existing.LastSeen = now
		existing.Payload = entry.Payload
		return nil
	}
	s.history[entry.URL] = &models.URLHistoryEntry{
		URL:       entry.URL,
		Source:    entry.Source,
		FirstSeen: now,
		LastSeen:  now,
		TimesSeen: 1,
		Payload:   entry.Payload,
	}
	return nil
}

func (s *fakeStore) GetOrganization(_ context.Context, key string) (*models.OrganizationMapping, error) {
	if org, ok := s.orgsByKey[key]; ok {
		copied := *org
		return &copied, nil
	}
	return nil, nil
}

func (s *fakeStore) CreateOrganization(_ context.Context, m *models.OrganizationMapping) error {
	copied := *m
	s.orgsByKey[m.NormalizedKey] = &copied
	return nil
}

func (s *fakeStore) IncrementOrganizationJobs(_ context.Context, key string) error {
	if org, ok := s.orgsByKey[key]; ok {
		org.JobCount++
	}
	return nil
}

func (s *fakeStore) MarkOrganizationReviewed(_ context.Context, key string) error {
	org, ok := s.orgsByKey[key]
	if !ok {
		return &database.PersistenceError{Op: "mark organization reviewed", Err: fmt.Errorf("unknown organization %q", key)}
	}
	org.NeedsReview = false
	return nil
}

func (s *fakeStore) InsertRun(_ context.Context, run *models.RunRecord) error {
	copied := *run
	s.runs[run.ID] = &copied
	return nil
}

func (s *fakeStore) UpdateRun(_ context.Context, run *models.RunRecord) error {
	copied := *run
	s.runs[run.ID] = &copied
	return nil
}

func (s *fakeStore) GetSourceProfile(_ context.Context, source string) (*models.SourceProfile, error) {
	if p, ok := s.profiles[source]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, nil
}

func (s *fakeStore) UpdateSourceProfileCounters(_ context.Context, source string, success bool, at time.Time) error {
	p, ok := s.profiles[source]
	if !ok {
		p = &models.SourceProfile{Source: source, Enabled: true}
		s.profiles[source] = p
	}
	if success {
		p.SuccessCount++
	} else {
		p.FailureCount++
	}
	p.LastRunAt = &at
	return nil
}
