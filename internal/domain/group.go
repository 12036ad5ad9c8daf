package domain

import "fmt"

// SourceGroup is a user listing that feeds the pending queue.
type SourceGroup string

const (
	GroupSaved     SourceGroup = "saved"
	GroupUpvoted   SourceGroup = "upvoted"
	GroupDownvoted SourceGroup = "downvoted"
	GroupHidden    SourceGroup = "hidden"
	GroupSubmitted SourceGroup = "submitted"
	GroupComments  SourceGroup = "comments"
	GroupGilded    SourceGroup = "gilded"

	// GroupAll is a selector, never stored.
	GroupAll SourceGroup = "all"
)

var allGroups = []SourceGroup{
	GroupSaved,
	GroupUpvoted,
	GroupDownvoted,
	GroupHidden,
	GroupSubmitted,
	GroupComments,
	GroupGilded,
}

// AllGroups returns every concrete group in a stable order.
func AllGroups() []SourceGroup {
	return append([]SourceGroup(nil), allGroups...)
}

// ResolveGroups expands a selector into concrete groups.
func ResolveGroups(selector string) ([]SourceGroup, error) {
	if SourceGroup(selector) == GroupAll {
		return AllGroups(), nil
	}
	for _, g := range allGroups {
		if string(g) == selector {
			return []SourceGroup{g}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidGroup, selector)
}
