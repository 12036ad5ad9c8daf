package scheduler

import (
	"time"

	"reddit_archiver/internal/domain"
)

// tier maps items younger than maxAge to a re-sync interval, in seconds.
type tier struct {
	maxAge   int64
	interval int64
}

var tiers = []tier{
	{maxAge: 2 * 3600, interval: 60},
	{maxAge: 12 * 3600, interval: 1800},
	{maxAge: 48 * 3600, interval: 3600},
	{maxAge: 7 * 86400, interval: 7200},
	{maxAge: 30 * 86400, interval: 86400},
	{maxAge: 180 * 86400, interval: 259200},
}

// ComputeSecondsUntilNextSync returns how long to wait before re-syncing an item of
// the given age. Zero means never re-sync.
func ComputeSecondsUntilNextSync(ageSeconds int64) int64 {
	if ageSeconds < 0 {
		ageSeconds = 0
	}
	for _, t := range tiers {
		if ageSeconds < t.maxAge {
			return t.interval
		}
	}
	return 0
}

// Policy applies the tier table to records.
type Policy struct {
	now func() time.Time
}

func NewPolicy() *Policy {
	return &Policy{now: time.Now}
}

// ComputeAndSetNextSync sets rec.NextSyncAt from the record's age. Only the schedule
// field is touched; the caller persists. Archived records must not be passed in.
func (p *Policy) ComputeAndSetNextSync(rec *domain.ContentRecord) {
	now := p.now().UTC()
	age := int64(now.Sub(rec.CreatedAt) / time.Second)

	interval := ComputeSecondsUntilNextSync(age)
	if interval <= 0 {
		rec.NextSyncAt = nil
		return
	}

	next := now.Add(time.Duration(interval) * time.Second)
	rec.NextSyncAt = &next
}

// IsDue reports whether rec should be re-synced at now.
func IsDue(rec *domain.ContentRecord, now time.Time) bool {
	return rec.NextSyncAt != nil && !rec.NextSyncAt.After(now)
}
