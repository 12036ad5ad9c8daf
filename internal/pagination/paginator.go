// Package pagination drains cursor based listings.
package pagination

import (
	"context"
	"fmt"

	"reddit_archiver/internal/domain"
)

// Unbounded drains every page.
const Unbounded = -1

// Page is one listing page.
type Page[T any] struct {
	Items []T
	Next  domain.SyncCursor
}

// FetchFunc loads the page that starts at cursor.
type FetchFunc[T any] func(ctx context.Context, cursor domain.SyncCursor) (Page[T], error)

// Drain follows cursors from the first page until the listing ends or maxItems have
// been collected. A negative maxItems means no bound. The result keeps page order.
func Drain[T any](ctx context.Context, fetch FetchFunc[T], maxItems int) ([]T, error) {
	if maxItems == 0 {
		return nil, nil
	}

	var (
		items  []T
		cursor domain.SyncCursor
		seen   = make(map[string]struct{})
	)

	for page := 0; ; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := fetch(ctx, cursor)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", page, err)
		}

		items = append(items, resp.Items...)

		if maxItems > 0 && len(items) >= maxItems {
			return items[:maxItems], nil
		}
		if resp.Next.IsEnd() {
			return items, nil
		}

		if _, ok := seen[resp.Next.After]; ok || resp.Next == cursor {
			return nil, fmt.Errorf("%w: %q", domain.ErrCursorReused, resp.Next.After)
		}
		seen[resp.Next.After] = struct{}{}
		cursor = resp.Next
	}
}
