package reddit

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

type fakeRedditAPI struct {
	mu       sync.Mutex
	listings []*http.Request
}

func (f *fakeRedditAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/access_token", func(w http.ResponseWriter, r *http.Request) {
		if id, secret, ok := r.BasicAuth(); !ok || id != "id" || secret != "secret" {
			t.Errorf("token request basic auth = %q/%q", id, secret)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"access_token":"tok","token_type":"bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.listings = append(f.listings, r.Clone(context.Background()))
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"kind": "Listing",
			"data": map[string]any{
				"after": "",
				"children": []map[string]any{
					{"kind": "t3", "data": map[string]any{
						"id": "a1", "name": "t3_a1", "title": "First", "score": 42,
						"url": "https://example.com/1", "permalink": "/r/golang/comments/a1/first/",
						"subreddit": "golang", "author": "gopher", "created_utc": 1600000000.0,
					}},
					{"kind": "t3", "data": map[string]any{
						"id": "a2", "name": "t3_a2", "title": "Second", "score": -3,
						"url": "https://example.com/2", "permalink": "/r/golang/comments/a2/second/",
						"subreddit": "golang", "author": "gopher", "created_utc": 1600000100.0,
					}},
				},
			},
		})
	})
	return mux
}

func (f *fakeRedditAPI) requests() []*http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*http.Request(nil), f.listings...)
}

func newTestAPIFetcher(t *testing.T, srv *httptest.Server) *APIFetcher {
	t.Helper()
	fetcher, err := NewAPIFetcher(slog.New(slog.NewTextHandler(io.Discard, nil)), Options{
		HTTPTimeout:   5 * time.Second,
		UserAgent:     "scraper-test/1.0",
		ClientID:      "id",
		ClientSecret:  "secret",
		RetryAttempts: 1,
		BaseURL:       srv.URL + "/",
		TokenURL:      srv.URL + "/api/v1/access_token",
	})
	if err != nil {
		t.Fatalf("NewAPIFetcher: %v", err)
	}
	return fetcher
}

func TestAPIFetcher_TopPassesTimeFilter(t *testing.T) {
	api := &fakeRedditAPI{}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	posts, err := newTestAPIFetcher(t, srv).Fetch(context.Background(), Request{
		Subreddit:  "golang",
		Sort:       "top",
		TimeFilter: "week",
		Limit:      2,
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("posts = %d, want 2", len(posts))
	}
	if posts[0].ID != "a1" || posts[0].Title != "First" || posts[0].Score != 42 || posts[0].URL != "https://example.com/1" {
		t.Fatalf("post 0 = %+v", posts[0])
	}
	if posts[1].Score != -3 {
		t.Fatalf("negative score lost: %+v", posts[1])
	}
	if posts[0].Permalink != "https://www.reddit.com/r/golang/comments/a1/first/" {
		t.Fatalf("permalink = %q", posts[0].Permalink)
	}

	listings := api.requests()
	if len(listings) != 1 {
		t.Fatalf("listing requests = %d, want 1", len(listings))
	}
	req := listings[0]
	if !strings.HasSuffix(strings.TrimSuffix(req.URL.Path, ".json"), "/r/golang/top") {
		t.Fatalf("path = %q", req.URL.Path)
	}
	if got := req.URL.Query().Get("t"); got != "week" {
		t.Fatalf("t = %q, want week", got)
	}
	if got := req.URL.Query().Get("limit"); got != "2" {
		t.Fatalf("limit = %q, want 2", got)
	}
	if got := req.Header.Get("Authorization"); got != "Bearer tok" {
		t.Fatalf("Authorization = %q", got)
	}
	if got := req.Header.Get("User-Agent"); got != "scraper-test/1.0" {
		t.Fatalf("User-Agent = %q", got)
	}
}

func TestAPIFetcher_HotIgnoresTimeFilter(t *testing.T) {
	api := &fakeRedditAPI{}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	if _, err := newTestAPIFetcher(t, srv).Fetch(context.Background(), Request{
		Subreddit: "golang",
		Sort:      "hot",
		Limit:     2,
	}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	listings := api.requests()
	if len(listings) != 1 {
		t.Fatalf("listing requests = %d, want 1", len(listings))
	}
	req := listings[0]
	if !strings.HasSuffix(strings.TrimSuffix(req.URL.Path, ".json"), "/r/golang/hot") {
		t.Fatalf("path = %q", req.URL.Path)
	}
	if req.URL.Query().Has("t") {
		t.Fatalf("hot listing sent a time filter: %s", req.URL.RawQuery)
	}
}

func TestAPIFetcher_UnsupportedSort(t *testing.T) {
	api := &fakeRedditAPI{}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	_, err := newTestAPIFetcher(t, srv).Fetch(context.Background(), Request{Subreddit: "golang", Sort: "rising", Limit: 1})
	if err == nil || !strings.Contains(err.Error(), "unsupported reddit sort") {
		t.Fatalf("err = %v", err)
	}
	if len(api.requests()) != 0 {
		t.Fatalf("unexpected listing request")
	}
}

func TestNewAPIFetcher_RequiresCredentials(t *testing.T) {
	if _, err := NewAPIFetcher(nil, Options{UserAgent: "ua"}); err == nil {
		t.Fatalf("expected error without credentials")
	}
	if _, err := NewAPIFetcher(nil, Options{ClientID: "id", ClientSecret: "s"}); err == nil {
		t.Fatalf("expected error without user agent")
	}
}
