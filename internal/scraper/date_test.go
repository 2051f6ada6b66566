package scraper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParsePostedDate(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		input  string
		want   time.Time
		wantOK bool
	}{
		{
			name:   "ISO date",
			input:  "2026-01-27",
			want:   time.Date(2026, 1, 27, 0, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "RFC3339 timestamp",
			input:  "2026-01-27T08:30:00Z",
			want:   time.Date(2026, 1, 27, 0, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "slash date dd/mm/yyyy",
			input:  "27/01/2026",
			want:   time.Date(2026, 1, 27, 0, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "slash date mm/dd/yyyy tolerated",
			input:  "01/27/2026",
			want:   time.Date(2026, 1, 27, 0, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "relative days",
			input:  "Posted 3 days ago",
			want:   now.AddDate(0, 0, -3),
			wantOK: true,
		},
		{
			name:   "relative weeks",
			input:  "2 weeks ago",
			want:   now.AddDate(0, 0, -14),
			wantOK: true,
		},
		{
			name:   "yesterday",
			input:  "Posted yesterday",
			want:   now.AddDate(0, 0, -1).Truncate(24 * time.Hour),
			wantOK: true,
		},
		{
			name:   "free text month day year",
			input:  "Jan 27, 2026",
			want:   time.Date(2026, 1, 27, 0, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "free text day month year",
			input:  "27 January 2026",
			want:   time.Date(2026, 1, 27, 0, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "empty",
			input:  "",
			wantOK: false,
		},
		{
			name:   "placeholder",
			input:  "N/A",
			wantOK: false,
		},
		{
			name:   "no date at all",
			input:  "Apply now",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePostedDate(tt.input, now)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestLimits(t *testing.T) {
	unbounded := Limits{}
	assert.True(t, unbounded.PageAllowed(999))
	assert.True(t, unbounded.JobsAllowed(999))

	capped := Limits{PageCap: 2, JobCap: 5}
	assert.True(t, capped.PageAllowed(2))
	assert.False(t, capped.PageAllowed(3))
	assert.True(t, capped.JobsAllowed(4))
	assert.False(t, capped.JobsAllowed(5))
}
