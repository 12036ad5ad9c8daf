package domain

import (
	"encoding/json"
	"fmt"
)

// RawItem is the upstream thing envelope: {"kind": "t3", "data": {...}}.
type RawItem struct {
	Kind Kind            `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// ParseRawItem decodes a stored listing payload.
func ParseRawItem(raw []byte) (RawItem, error) {
	var item RawItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return RawItem{}, fmt.Errorf("decode raw item: %w", err)
	}
	if _, err := ParseKind(string(item.Kind)); err != nil {
		return RawItem{}, err
	}
	return item, nil
}

// itemProbe holds the fields the sync core looks at; everything else stays opaque.
type itemProbe struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	LinkID            string   `json:"link_id"`
	ParentID          string   `json:"parent_id"`
	Author            string   `json:"author"`
	Body              string   `json:"body"`
	Selftext          string   `json:"selftext"`
	RemovedByCategory *string  `json:"removed_by_category"`
	Children          []string `json:"children"`
	Count             int      `json:"count"`
}

func (i RawItem) probe() itemProbe {
	var p itemProbe
	_ = json.Unmarshal(i.Data, &p)
	return p
}

// ExternalID returns the item fullname. Placeholders have none.
func (i RawItem) ExternalID() (ExternalID, error) {
	if i.Kind == KindMore {
		return ExternalID{}, fmt.Errorf("%w: placeholder has no fullname", ErrInvalidExternalID)
	}
	p := i.probe()
	if p.Name != "" {
		return ParseExternalID(p.Name)
	}
	if p.ID == "" {
		return ExternalID{}, fmt.Errorf("%w: missing id", ErrInvalidExternalID)
	}
	if _, err := ParseKind(string(i.Kind)); err != nil {
		return ExternalID{}, err
	}
	return NewExternalID(i.Kind, p.ID), nil
}

func (i RawItem) IsPlaceholder() bool {
	return i.Kind == KindMore
}

// Placeholder describes a "more" node.
type Placeholder struct {
	ParentID string
	Children []string
	Count    int
}

func (i RawItem) Placeholder() Placeholder {
	p := i.probe()
	return Placeholder{ParentID: p.ParentID, Children: p.Children, Count: p.Count}
}

// IsRemoved reports whether the upstream payload marks the item deleted or removed.
func (i RawItem) IsRemoved() bool {
	p := i.probe()
	if p.RemovedByCategory != nil && *p.RemovedByCategory != "" {
		return true
	}

	switch i.Kind {
	case KindComment:
		return p.Author == "[deleted]" && (p.Body == "[deleted]" || p.Body == "[removed]")
	case KindLink:
		return p.Author == "[deleted]" && (p.Selftext == "[deleted]" || p.Selftext == "[removed]")
	default:
		return false
	}
}

// ParentLinkID returns the link a comment belongs to.
func (i RawItem) ParentLinkID() (ExternalID, bool) {
	if i.Kind != KindComment {
		return ExternalID{}, false
	}
	id, err := ParseExternalID(i.probe().LinkID)
	if err != nil || id.Kind != KindLink {
		return ExternalID{}, false
	}
	return id, true
}

// Marshal returns the envelope as stored in pending entries and records.
func (i RawItem) Marshal() json.RawMessage {
	b, _ := json.Marshal(i)
	return b
}

// Replies returns the nested reply nodes of a thread comment. Comments from listings
// and morechildren carry an empty string instead of a listing.
func (i RawItem) Replies() ([]RawItem, error) {
	if i.Kind != KindComment {
		return nil, nil
	}

	var probe struct {
		Replies json.RawMessage `json:"replies"`
	}
	if err := json.Unmarshal(i.Data, &probe); err != nil {
		return nil, fmt.Errorf("decode replies: %w", err)
	}
	if len(probe.Replies) == 0 || probe.Replies[0] != '{' {
		return nil, nil
	}

	var listing struct {
		Data struct {
			Children []RawItem `json:"children"`
		} `json:"data"`
	}
	if err := json.Unmarshal(probe.Replies, &listing); err != nil {
		return nil, fmt.Errorf("decode replies: %w", err)
	}
	return listing.Data.Children, nil
}
