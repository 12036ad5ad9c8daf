package domain

import (
	"fmt"
	"strings"
)

// Kind is the upstream "thing" type prefix.
type Kind string

const (
	KindComment   Kind = "t1"
	KindAccount   Kind = "t2"
	KindLink      Kind = "t3"
	KindMessage   Kind = "t4"
	KindSubreddit Kind = "t5"
	KindAward     Kind = "t6"
	KindMore      Kind = "more"
)

// ParseKind accepts only the known prefixes.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindComment, KindAccount, KindLink, KindMessage, KindSubreddit, KindAward, KindMore:
		return k, nil
	default:
		return "", fmt.Errorf("%w: unknown kind %q", ErrInvalidExternalID, s)
	}
}

func (k Kind) String() string {
	switch k {
	case KindComment:
		return "comment"
	case KindAccount:
		return "account"
	case KindLink:
		return "link"
	case KindMessage:
		return "message"
	case KindSubreddit:
		return "subreddit"
	case KindAward:
		return "award"
	case KindMore:
		return "more"
	default:
		return "unknown"
	}
}

// ExternalID identifies an upstream item, e.g. t3_abc123.
type ExternalID struct {
	Kind    Kind
	LocalID string
}

func NewExternalID(kind Kind, localID string) ExternalID {
	return ExternalID{Kind: kind, LocalID: localID}
}

// ParseExternalID parses the "<prefix>_<localId>" form. More placeholders have no
// fullname and are rejected.
func ParseExternalID(s string) (ExternalID, error) {
	prefix, local, ok := strings.Cut(s, "_")
	if !ok || prefix == "" || local == "" {
		return ExternalID{}, fmt.Errorf("%w: %q", ErrInvalidExternalID, s)
	}

	kind, err := ParseKind(prefix)
	if err != nil {
		return ExternalID{}, err
	}
	if kind == KindMore {
		return ExternalID{}, fmt.Errorf("%w: %q", ErrInvalidExternalID, s)
	}

	return ExternalID{Kind: kind, LocalID: local}, nil
}

func (id ExternalID) String() string {
	if id.IsZero() {
		return ""
	}
	return string(id.Kind) + "_" + id.LocalID
}

func (id ExternalID) IsZero() bool {
	return id.Kind == "" && id.LocalID == ""
}

// MarshalText lets ExternalID be used as a JSON string and map key.
func (id ExternalID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ExternalID) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*id = ExternalID{}
		return nil
	}
	parsed, err := ParseExternalID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
