package domain

import (
	"encoding/json"
	"time"
)

// Sync stages recorded on SyncError.
const (
	StageDecode      = "decode"
	StageResolve     = "resolve_parent"
	StageDenormalize = "denormalize"
	StagePersist     = "persist"
	StageExpand      = "expand"
	StageFetch       = "fetch"
)

// SyncReport holds the outcome of one orchestrator run.
type SyncReport struct {
	RunID     string
	Group     SourceGroup
	Succeeded int
	Failed    int
	Deferred  int // left pending because a batch-level fetch failed
	Errors    []SyncError
	Duration  time.Duration
}

// SyncError carries enough context to retriage a failed item by hand.
type SyncError struct {
	ID            string
	RunID         string
	Group         SourceGroup
	ExternalID    string
	Stage         string
	Err           error
	RawPayload    json.RawMessage
	ParentPayload json.RawMessage
	OccurredAt    time.Time
}

func (e SyncError) Error() string {
	return e.Stage + " " + e.ExternalID + ": " + e.Err.Error()
}

func (e SyncError) Unwrap() error { return e.Err }
