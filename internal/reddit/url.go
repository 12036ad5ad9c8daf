package reddit

import (
	"fmt"
	"net/url"
	"strings"

	"reddit_archiver/internal/domain"
)

// Target is what a Reddit URL points at.
type Target struct {
	Link    domain.ExternalID
	Comment *domain.ExternalID
}

// ParseURL resolves a permalink, short link or bare fullname without calling the API.
func ParseURL(raw string) (Target, error) {
	raw = strings.TrimSpace(raw)
	if id, err := domain.ParseExternalID(raw); err == nil {
		switch id.Kind {
		case domain.KindLink:
			return Target{Link: id}, nil
		default:
			return Target{}, fmt.Errorf("parse url %q: only link fullnames are accepted", raw)
		}
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return Target{}, fmt.Errorf("parse url %q: not a reddit url", raw)
	}

	host := strings.ToLower(strings.TrimPrefix(u.Host, "www."))
	segments := splitPath(u.Path)

	switch {
	case host == "redd.it":
		if len(segments) != 1 {
			return Target{}, fmt.Errorf("parse url %q: unexpected short link", raw)
		}
		return Target{Link: domain.NewExternalID(domain.KindLink, segments[0])}, nil
	case host == "reddit.com" || strings.HasSuffix(host, ".reddit.com"):
		return parsePermalink(raw, segments)
	default:
		return Target{}, fmt.Errorf("parse url %q: unsupported host %q", raw, u.Host)
	}
}

// parsePermalink handles /r/{sub}/comments/{link}/{slug}/{comment} and
// /r/{sub}/comments/{link}/comment/{comment}.
func parsePermalink(raw string, segments []string) (Target, error) {
	idx := -1
	for i, s := range segments {
		if s == "comments" {
			idx = i
			break
		}
	}
	if idx < 0 || idx+1 >= len(segments) {
		return Target{}, fmt.Errorf("parse url %q: no link id in path", raw)
	}

	target := Target{Link: domain.NewExternalID(domain.KindLink, segments[idx+1])}

	rest := segments[idx+2:]
	var commentID string
	switch {
	case len(rest) >= 2 && rest[0] == "comment":
		commentID = rest[1]
	case len(rest) >= 2:
		commentID = rest[1]
	}
	if commentID != "" {
		id := domain.NewExternalID(domain.KindComment, commentID)
		target.Comment = &id
	}

	return target, nil
}

func splitPath(p string) []string {
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
