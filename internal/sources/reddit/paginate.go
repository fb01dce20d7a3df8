package reddit

import "context"

// PageFunc fetches up to size posts starting after the given cursor and
// returns the cursor of the next page, empty when the listing is exhausted.
type PageFunc func(ctx context.Context, size int, after string) ([]Post, string, error)

// Paginate calls page until limit posts are collected or the listing ends.
// A non-positive limit asks for a single full page.
func Paginate(ctx context.Context, limit int, page PageFunc) ([]Post, error) {
	if limit <= 0 {
		limit = MaxPageSize
	}
	out := make([]Post, 0, min(limit, MaxPageSize))
	after := ""
	for len(out) < limit {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		posts, next, err := page(ctx, min(limit-len(out), MaxPageSize), after)
		if err != nil {
			return nil, err
		}
		for _, p := range posts {
			out = append(out, p)
			if len(out) >= limit {
				break
			}
		}
		if next == "" || len(posts) == 0 {
			break
		}
		after = next
	}
	return out, nil
}
