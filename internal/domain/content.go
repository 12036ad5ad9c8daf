package domain

import (
	"encoding/json"
	"time"
)

type ContentRecord struct {
	ID               int64
	ExternalID       ExternalID
	Kind             Kind
	Subreddit        string
	Author           string
	Title            string
	Body             *string
	URL              *string
	Permalink        string
	Score            int
	RawBody          json.RawMessage
	ParentExternalID *ExternalID // link a comment belongs to
	IsArchived       bool
	CreatedAt        time.Time
	NextSyncAt       *time.Time // nil disables re-sync
	SyncedAt         time.Time
}

// PendingEntry is an item known remotely but not yet persisted locally.
type PendingEntry struct {
	ID                   int64
	Group                SourceGroup
	ExternalID           ExternalID
	RawListingJSON       json.RawMessage
	ParentRawListingJSON json.RawMessage
	QueuedAt             time.Time
}

// SyncCursor is the upstream "after" token. Empty means no more pages.
type SyncCursor struct {
	After string
}

func (c SyncCursor) IsEnd() bool {
	return c.After == ""
}

// RateLimitState mirrors the upstream token bucket for one subject.
type RateLimitState struct {
	Subject    string    `json:"subject"`
	Remaining  int       `json:"remaining"`
	Limit      int       `json:"limit"`
	RetryAfter time.Time `json:"retry_after"`
}

type GroupSyncState struct {
	ID           int64     `db:"id"`
	Group        string    `db:"source_group"`
	LastSyncedAt time.Time `db:"last_synced_at"`
	TotalSynced  int64     `db:"total_synced"`
	TotalFailed  int64     `db:"total_failed"`
}
