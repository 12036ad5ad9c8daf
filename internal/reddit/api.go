package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"reddit_archiver/internal/domain"
	"reddit_archiver/internal/pagination"
)

// MaxInfoIDs is the upstream cap for /api/info and /api/morechildren.
const MaxInfoIDs = 100

// Listing fetches one page of the user's listing for group.
func (c *Client) Listing(ctx context.Context, group domain.SourceGroup, cursor domain.SyncCursor) (pagination.Page[domain.RawItem], error) {
	if group == domain.GroupAll {
		return pagination.Page[domain.RawItem]{}, fmt.Errorf("%w: %q is a selector", domain.ErrInvalidGroup, group)
	}

	query := url.Values{}
	if c.pageSize > 0 {
		query.Set("limit", strconv.Itoa(c.pageSize))
	}
	if !cursor.IsEnd() {
		query.Set("after", cursor.After)
	}

	endpoint := fmt.Sprintf("/user/%s/%s", url.PathEscape(c.username), group)
	resp, err := c.Call(ctx, http.MethodGet, endpoint, CallOptions{Query: query})
	if err != nil {
		return pagination.Page[domain.RawItem]{}, err
	}

	listing, err := decodeListing(resp.Body)
	if err != nil {
		return pagination.Page[domain.RawItem]{}, fmt.Errorf("decode listing %s: %w", group, err)
	}

	page := pagination.Page[domain.RawItem]{Items: listing.Data.Children}
	if listing.Data.After != nil {
		page.Next = domain.SyncCursor{After: *listing.Data.After}
	}

	c.logger.Debug("fetched listing page",
		"group", group,
		"items", len(page.Items),
		"after", page.Next.After,
	)

	return page, nil
}

// Info fetches full bodies for at most MaxInfoIDs items.
func (c *Client) Info(ctx context.Context, ids []domain.ExternalID) ([]domain.RawItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > MaxInfoIDs {
		return nil, fmt.Errorf("info: %d ids exceeds limit of %d", len(ids), MaxInfoIDs)
	}

	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id.String()
	}

	resp, err := c.Call(ctx, http.MethodGet, "/api/info", CallOptions{
		Query: url.Values{"id": {strings.Join(names, ",")}},
	})
	if err != nil {
		return nil, err
	}

	listing, err := decodeListing(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode info: %w", err)
	}
	return listing.Data.Children, nil
}

// MoreChildren loads the children referenced by a placeholder. The result is flat and
// may itself contain placeholders.
func (c *Client) MoreChildren(ctx context.Context, linkID domain.ExternalID, children []string) ([]domain.RawItem, error) {
	if len(children) == 0 {
		return nil, nil
	}
	if len(children) > MaxInfoIDs {
		return nil, fmt.Errorf("morechildren: %d ids exceeds limit of %d", len(children), MaxInfoIDs)
	}

	resp, err := c.Call(ctx, http.MethodGet, "/api/morechildren", CallOptions{
		Query: url.Values{
			"api_type": {"json"},
			"link_id":  {linkID.String()},
			"children": {strings.Join(children, ",")},
		},
	})
	if err != nil {
		return nil, err
	}

	var more MoreChildrenResponse
	if err := json.Unmarshal(resp.Body, &more); err != nil {
		return nil, fmt.Errorf("decode morechildren: %w", err)
	}
	if len(more.JSON.Errors) > 0 {
		return nil, &domain.UpstreamError{
			Method:     http.MethodGet,
			Endpoint:   "/api/morechildren",
			StatusCode: resp.StatusCode,
			Body:       fmt.Sprint(more.JSON.Errors),
		}
	}
	return more.JSON.Data.Things, nil
}

// Thread fetches a link and its top level comment nodes. Replies stay nested inside
// each comment.
func (c *Client) Thread(ctx context.Context, linkID domain.ExternalID) (domain.RawItem, []domain.RawItem, error) {
	if linkID.Kind != domain.KindLink {
		return domain.RawItem{}, nil, fmt.Errorf("thread: %s is not a link", linkID)
	}

	endpoint := "/comments/" + url.PathEscape(linkID.LocalID)
	resp, err := c.Call(ctx, http.MethodGet, endpoint, CallOptions{})
	if err != nil {
		return domain.RawItem{}, nil, err
	}

	var thread threadResponse
	if err := json.Unmarshal(resp.Body, &thread); err != nil {
		return domain.RawItem{}, nil, fmt.Errorf("decode thread: %w", err)
	}
	if len(thread) != 2 || len(thread[0].Data.Children) != 1 {
		return domain.RawItem{}, nil, fmt.Errorf("decode thread: unexpected shape for %s", linkID)
	}

	return thread[0].Data.Children[0], thread[1].Data.Children, nil
}
