// Package impl reads subreddit listings from Reddit's public JSON endpoints
// without OAuth. It is slower and more tightly rate limited than the API client.
package impl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bakkerme/reddit-link-scraper/internal/retry"
	"github.com/bakkerme/reddit-link-scraper/internal/sources/reddit"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://www.reddit.com"

type Fetcher struct {
	client    *http.Client
	baseURL   string
	userAgent string
	limiter   *rate.Limiter
	retry     retry.Config
}

// NewFetcher returns a public-endpoint fetcher. Reddit rejects requests without
// a descriptive user agent. An empty baseURL means www.reddit.com.
func NewFetcher(timeout time.Duration, userAgent, baseURL string, retryAttempts int) *Fetcher {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		// Public JSON allows roughly one request every two seconds.
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 1),
		retry:   retry.Config{Attempts: retryAttempts, BaseDelay: 500 * time.Millisecond},
	}
}

// WithLimiter replaces the request limiter.
func (f *Fetcher) WithLimiter(limiter *rate.Limiter) *Fetcher {
	f.limiter = limiter
	return f
}

func (f *Fetcher) Fetch(ctx context.Context, req reddit.Request) ([]reddit.Post, error) {
	if req.Subreddit == "" {
		return nil, fmt.Errorf("subreddit is required")
	}
	return reddit.Paginate(ctx, req.Limit, func(ctx context.Context, size int, after string) ([]reddit.Post, string, error) {
		var (
			posts []reddit.Post
			next  string
		)
		err := retry.Do(ctx, f.retry, func() error {
			var err error
			posts, next, err = f.fetchPage(ctx, req, size, after)
			return err
		})
		return posts, next, err
	})
}

func (f *Fetcher) fetchPage(ctx context.Context, req reddit.Request, size int, after string) ([]reddit.Post, string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, "", retry.Permanent(err)
	}

	endpoint := fmt.Sprintf("%s/r/%s/%s.json", f.baseURL, url.PathEscape(req.Subreddit), url.PathEscape(req.Sort))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, "", retry.Permanent(err)
	}

	query := httpReq.URL.Query()
	query.Set("limit", strconv.Itoa(size))
	query.Set("raw_json", "1")
	if req.TimeFilter != "" && reddit.SupportsTimeFilter(req.Sort) {
		query.Set("t", req.TimeFilter)
	}
	if after != "" {
		query.Set("after", after)
	}
	httpReq.URL.RawQuery = query.Encode()
	httpReq.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		err := fmt.Errorf("reddit fetch failed: %s", resp.Status)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return nil, "", err
		}
		return nil, "", retry.Permanent(err)
	}

	var payload listingResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, "", retry.Permanent(fmt.Errorf("decode reddit response: %w", err))
	}

	posts := make([]reddit.Post, 0, len(payload.Data.Children))
	for _, child := range payload.Data.Children {
		d := child.Data
		post := reddit.Post{
			ID:        d.ID,
			Title:     d.Title,
			Score:     d.Score,
			URL:       d.URL,
			Subreddit: d.Subreddit,
			Permalink: reddit.CanonicalPermalink(d.Permalink),
			Author:    d.Author,
		}
		if d.CreatedUTC > 0 {
			post.CreatedAt = time.Unix(int64(d.CreatedUTC), 0).UTC()
		}
		posts = append(posts, post)
	}
	return posts, payload.Data.After, nil
}

type listingResponse struct {
	Data struct {
		After    string `json:"after"`
		Children []struct {
			Data struct {
				ID         string  `json:"id"`
				Title      string  `json:"title"`
				URL        string  `json:"url"`
				Permalink  string  `json:"permalink"`
				Subreddit  string  `json:"subreddit"`
				Author     string  `json:"author"`
				Score      int     `json:"score"`
				CreatedUTC float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}
