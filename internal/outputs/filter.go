package outputs

import (
	"context"
	"fmt"

	"github.com/bakkerme/reddit-link-scraper/internal/sources/reddit"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// FilterSink forwards only the posts for which the expression is true.
// The expression sees title, score, id, url, subreddit and author.
type FilterSink struct {
	next    Sink
	program *vm.Program
	dropped int
}

// NewFilter compiles expression, for example `score > 10 && title contains "Go"`.
func NewFilter(expression string, next Sink) (*FilterSink, error) {
	program, err := expr.Compile(expression, expr.Env(filterEnv(reddit.Post{})), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile filter: %w", err)
	}
	return &FilterSink{next: next, program: program}, nil
}

func (s *FilterSink) Emit(ctx context.Context, post reddit.Post) error {
	result, err := expr.Run(s.program, filterEnv(post))
	if err != nil {
		return fmt.Errorf("evaluate filter on post %s: %w", post.ID, err)
	}
	if keep, _ := result.(bool); !keep {
		s.dropped++
		return nil
	}
	return s.next.Emit(ctx, post)
}

// Dropped returns how many posts the filter rejected.
func (s *FilterSink) Dropped() int {
	return s.dropped
}

func (s *FilterSink) Close() error {
	return s.next.Close()
}

func filterEnv(post reddit.Post) map[string]interface{} {
	return map[string]interface{}{
		"title":     post.Title,
		"score":     post.Score,
		"id":        post.ID,
		"url":       post.URL,
		"subreddit": post.Subreddit,
		"author":    post.Author,
	}
}
