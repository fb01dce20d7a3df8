package reddit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bakkerme/reddit-link-scraper/internal/retry"
	goreddit "github.com/vartanbeno/go-reddit/v2/reddit"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

const (
	defaultOAuthBaseURL = "https://oauth.reddit.com/"
	defaultTokenURL     = "https://www.reddit.com/api/v1/access_token"
)

// Options configures the API fetcher.
type Options struct {
	HTTPTimeout  time.Duration
	UserAgent    string
	ClientID     string
	ClientSecret string
	// Username and Password switch to the script-app password grant when both are set.
	Username      string
	Password      string
	RetryAttempts int
	// RatePerSecond caps listing requests; zero or less disables the limiter.
	RatePerSecond float64
	// BaseURL and TokenURL override the Reddit endpoints.
	BaseURL  string
	TokenURL string
}

// APIFetcher reads listings through the go-reddit client with OAuth credentials.
type APIFetcher struct {
	client  *goreddit.Client
	limiter *rate.Limiter
	retry   retry.Config
	logger  *slog.Logger
}

func NewAPIFetcher(logger *slog.Logger, opts Options) (*APIFetcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.ClientID == "" || opts.ClientSecret == "" {
		return nil, errors.New("reddit client id and secret are required")
	}
	if opts.UserAgent == "" {
		return nil, errors.New("reddit user agent is required")
	}
	if opts.HTTPTimeout <= 0 {
		opts.HTTPTimeout = 10 * time.Second
	}

	var (
		client *goreddit.Client
		err    error
	)
	if opts.Username != "" && opts.Password != "" {
		logger.Info("Using password grant Reddit client", slog.String("clientID", opts.ClientID))
		redditOpts := []goreddit.Opt{
			goreddit.WithHTTPClient(&http.Client{Timeout: opts.HTTPTimeout}),
			goreddit.WithUserAgent(opts.UserAgent),
		}
		if opts.BaseURL != "" {
			redditOpts = append(redditOpts, goreddit.WithBaseURL(opts.BaseURL))
		}
		if opts.TokenURL != "" {
			redditOpts = append(redditOpts, goreddit.WithTokenURL(opts.TokenURL))
		}
		client, err = goreddit.NewClient(goreddit.Credentials{
			ID:       opts.ClientID,
			Secret:   opts.ClientSecret,
			Username: opts.Username,
			Password: opts.Password,
		}, redditOpts...)
	} else {
		logger.Info("Using application-only Reddit client", slog.String("clientID", opts.ClientID))
		baseURL := opts.BaseURL
		if baseURL == "" {
			baseURL = defaultOAuthBaseURL
		}
		client, err = goreddit.NewReadonlyClient(
			goreddit.WithHTTPClient(applicationOnlyClient(opts)),
			goreddit.WithUserAgent(opts.UserAgent),
			goreddit.WithBaseURL(baseURL),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("create reddit client: %w", err)
	}

	limit := rate.Inf
	if opts.RatePerSecond > 0 {
		limit = rate.Limit(opts.RatePerSecond)
	}
	return &APIFetcher{
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		retry:   retry.Config{Attempts: opts.RetryAttempts, BaseDelay: 200 * time.Millisecond},
		logger:  logger,
	}, nil
}

// applicationOnlyClient returns an HTTP client that authenticates with the
// client credentials grant. The token endpoint also wants the user agent.
func applicationOnlyClient(opts Options) *http.Client {
	tokenURL := opts.TokenURL
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}
	cc := clientcredentials.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		TokenURL:     tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	base := &http.Client{
		Timeout:   opts.HTTPTimeout,
		Transport: &userAgentTransport{userAgent: opts.UserAgent, base: http.DefaultTransport},
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	client := cc.Client(ctx)
	client.Timeout = opts.HTTPTimeout
	return client
}

type userAgentTransport struct {
	userAgent string
	base      http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(req)
}

func (f *APIFetcher) Fetch(ctx context.Context, req Request) ([]Post, error) {
	if req.Subreddit == "" {
		return nil, errors.New("subreddit is required")
	}
	f.logger.Debug("Fetching Reddit posts",
		slog.String("subreddit", req.Subreddit),
		slog.String("sort", req.Sort),
		slog.Int("limit", req.Limit))

	return Paginate(ctx, req.Limit, func(ctx context.Context, size int, after string) ([]Post, string, error) {
		return f.fetchPage(ctx, req, size, after)
	})
}

func (f *APIFetcher) fetchPage(ctx context.Context, req Request, size int, after string) ([]Post, string, error) {
	var (
		posts []*goreddit.Post
		resp  *goreddit.Response
	)
	err := retry.Do(ctx, f.retry, func() error {
		if err := f.limiter.Wait(ctx); err != nil {
			return retry.Permanent(err)
		}
		list := goreddit.ListOptions{Limit: size, After: after}
		var err error
		switch req.Sort {
		case "hot":
			posts, resp, err = f.client.Subreddit.HotPosts(ctx, req.Subreddit, &list)
		case "new":
			posts, resp, err = f.client.Subreddit.NewPosts(ctx, req.Subreddit, &list)
		case "top":
			posts, resp, err = f.client.Subreddit.TopPosts(ctx, req.Subreddit, &goreddit.ListPostOptions{
				ListOptions: list,
				Time:        req.TimeFilter,
			})
		case "controversial":
			posts, resp, err = f.client.Subreddit.ControversialPosts(ctx, req.Subreddit, &goreddit.ListPostOptions{
				ListOptions: list,
				Time:        req.TimeFilter,
			})
		default:
			return retry.Permanent(fmt.Errorf("unsupported reddit sort: %q", req.Sort))
		}
		if err != nil {
			if resp != nil && !transientStatus(resp.StatusCode) {
				return retry.Permanent(err)
			}
			return fmt.Errorf("reddit transient error: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		if p == nil {
			continue
		}
		out = append(out, fromListing(p))
	}
	next := ""
	if resp != nil {
		next = resp.After
	}
	return out, next, nil
}

func transientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func fromListing(p *goreddit.Post) Post {
	post := Post{
		ID:        p.ID,
		Title:     p.Title,
		Score:     p.Score,
		URL:       p.URL,
		Subreddit: p.SubredditName,
		Permalink: CanonicalPermalink(p.Permalink),
		Author:    p.Author,
	}
	if p.Created != nil {
		post.CreatedAt = p.Created.Time.UTC()
	}
	return post
}
