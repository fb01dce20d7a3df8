package reddit

import (
	"context"
	"strings"
	"time"
)

// MaxPageSize is the most posts Reddit returns for one listing request.
const MaxPageSize = 100

// Request asks for the posts of one subreddit.
type Request struct {
	Subreddit string
	Sort      string
	// TimeFilter is only sent for sorts that rank over a window; see SupportsTimeFilter.
	TimeFilter string
	// Limit bounds the number of posts returned. Fetchers page through listings to reach it.
	Limit int
}

// Post is one fetched submission.
type Post struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Score     int    `json:"score"`
	URL       string `json:"url"`
	Subreddit string `json:"subreddit"`
	Permalink string `json:"permalink,omitempty"`
	Author    string `json:"author,omitempty"`
	// CreatedAt is zero when the source did not report it.
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Fetcher retrieves the posts of a subreddit.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) ([]Post, error)
}

// SupportsTimeFilter reports whether sort ranks posts over a time window.
func SupportsTimeFilter(sort string) bool {
	switch sort {
	case "top", "controversial":
		return true
	default:
		return false
	}
}

// CanonicalPermalink turns a listing permalink into an absolute URL.
func CanonicalPermalink(permalink string) string {
	if permalink == "" {
		return ""
	}
	if strings.HasPrefix(permalink, "http://") || strings.HasPrefix(permalink, "https://") {
		return permalink
	}
	if strings.HasPrefix(permalink, "/") {
		return "https://www.reddit.com" + permalink
	}
	return "https://www.reddit.com/" + permalink
}
