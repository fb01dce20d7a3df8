// Package mock holds fetchers that never touch the network.
package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bakkerme/reddit-link-scraper/internal/sources/reddit"
)

// Fetcher returns canned posts per subreddit and records every request.
// Subreddits without an entry return no posts.
type Fetcher struct {
	Posts map[string][]reddit.Post
	Errs  map[string]error

	mu       sync.Mutex
	requests []reddit.Request
}

func (f *Fetcher) Fetch(ctx context.Context, req reddit.Request) ([]reddit.Post, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := f.Errs[req.Subreddit]; err != nil {
		return nil, err
	}
	posts := f.Posts[req.Subreddit]
	if req.Limit > 0 && len(posts) > req.Limit {
		posts = posts[:req.Limit]
	}
	return append([]reddit.Post(nil), posts...), nil
}

// Requests returns the requests seen so far, in call order.
func (f *Fetcher) Requests() []reddit.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]reddit.Request(nil), f.requests...)
}

// Generator fabricates Limit posts for any subreddit. It backs the "mock" mode
// used for dry runs of a configuration.
type Generator struct {
	Now func() time.Time
}

func (g Generator) Fetch(ctx context.Context, req reddit.Request) ([]reddit.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	limit := req.Limit
	if limit <= 0 {
		limit = reddit.MaxPageSize
	}
	posts := make([]reddit.Post, 0, limit)
	for i := 0; i < limit; i++ {
		id := fmt.Sprintf("mock_%s_%d", req.Subreddit, i)
		posts = append(posts, reddit.Post{
			ID:        id,
			Title:     fmt.Sprintf("[%s] Simulated %s post #%d", req.Subreddit, req.Sort, i),
			Score:     limit - i,
			URL:       "https://example.invalid/" + id,
			Subreddit: req.Subreddit,
			Permalink: fmt.Sprintf("https://www.reddit.com/r/%s/comments/%s/", req.Subreddit, id),
			Author:    "simulated_user",
			CreatedAt: now().UTC(),
		})
	}
	return posts, nil
}
