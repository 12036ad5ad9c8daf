package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
	ErrUniqueViolation   = errors.New("unique constraint violation")
	ErrTreeTooDeep       = errors.New("comment tree too deep")
	ErrCursorReused      = errors.New("pagination cursor reused")
	ErrInvalidGroup      = errors.New("invalid source group")
	ErrInvalidExternalID = errors.New("invalid external id")
	ErrNotFound          = errors.New("not found")
)

// TransportError is a network level failure reaching the upstream API.
type TransportError struct {
	Method   string
	Endpoint string
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s %s after %d attempt(s): %v", e.Method, e.Endpoint, e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UpstreamError is a non-2xx response.
type UpstreamError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s %s: status %d: %s", e.Method, e.Endpoint, e.StatusCode, e.Body)
}

// DenormalizationError means the raw payload could not be mapped to a record.
type DenormalizationError struct {
	ExternalID string
	Reason     string
}

func (e *DenormalizationError) Error() string {
	if e.ExternalID == "" {
		return "denormalize: " + e.Reason
	}
	return fmt.Sprintf("denormalize %s: %s", e.ExternalID, e.Reason)
}

// StructuralError is a pending entry that cannot be processed as queued, such as a
// comment whose parent link cannot be resolved.
type StructuralError struct {
	ExternalID string
	Reason     string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural error %s: %s", e.ExternalID, e.Reason)
}
