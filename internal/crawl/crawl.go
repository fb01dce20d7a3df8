// Package crawl drives the per-subreddit fetch loop and forwards every post to a sink.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bakkerme/reddit-link-scraper/internal/logging"
	"github.com/bakkerme/reddit-link-scraper/internal/sources/reddit"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/bakkerme/reddit-link-scraper/internal/crawl"

// Sink receives posts in fetch order.
type Sink interface {
	Emit(ctx context.Context, post reddit.Post) error
}

// Params are the validated listing parameters shared by every subreddit.
type Params struct {
	Sort       string
	TimeFilter string
	Limit      int
}

// ForumResult is the outcome for one subreddit.
type ForumResult struct {
	Subreddit string
	Posts     int
	Err       error
	Duration  time.Duration
}

// Summary reports a run. Forums follows the input order.
type Summary struct {
	RunID  string
	Forums []ForumResult
	Posts  int
	Failed int
}

// Orchestrator fetches subreddits and emits their posts.
//
// With Concurrency above one, fetches overlap but each subreddit's posts are
// still emitted together and in the order the fetcher returned them.
type Orchestrator struct {
	Fetcher     reddit.Fetcher
	Sink        Sink
	Logger      *slog.Logger
	Tracer      trace.Tracer
	Concurrency int
}

// Run crawls forums. A failed fetch is logged and recorded in the summary
// without stopping the run. The returned error is non-nil only when the sink
// fails or ctx is canceled; the summary is valid in both cases.
func (o *Orchestrator) Run(ctx context.Context, forums []string, params Params) (Summary, error) {
	if o.Fetcher == nil {
		return Summary{}, errors.New("crawl: fetcher is required")
	}
	if o.Sink == nil {
		return Summary{}, errors.New("crawl: sink is required")
	}
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tracer := o.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	workers := o.Concurrency
	if workers < 1 {
		workers = 1
	}

	summary := Summary{RunID: uuid.NewString(), Forums: make([]ForumResult, len(forums))}
	logger = logger.With(slog.String("run_id", summary.RunID))
	ctx = logging.WithLogger(ctx, logger)

	if !reddit.SupportsTimeFilter(params.Sort) && params.TimeFilter != "" {
		logger.Debug("Ignoring time filter for sort", slog.String("sort", params.Sort), slog.String("time", params.TimeFilter))
		params.TimeFilter = ""
	}

	var (
		emitMu  sync.Mutex
		sinkErr error
		wg      sync.WaitGroup
		sem     = make(chan struct{}, workers)
	)
	for i, forum := range forums {
		summary.Forums[i].Subreddit = forum

		acquired := false
		select {
		case sem <- struct{}{}:
			acquired = true
		case <-ctx.Done():
		}
		if err := ctx.Err(); err != nil {
			if acquired {
				<-sem
			}
			summary.Forums[i].Err = err
			continue
		}
		emitMu.Lock()
		stop := sinkErr != nil
		emitMu.Unlock()
		if stop {
			<-sem
			summary.Forums[i].Err = errSkipped
			continue
		}

		wg.Add(1)
		go func(i int, forum string) {
			defer wg.Done()
			defer func() { <-sem }()

			result := &summary.Forums[i]
			start := time.Now()
			posts, err := o.fetch(ctx, tracer, forum, params)
			result.Duration = time.Since(start)
			forumLogger := logger.With(slog.String("subreddit", forum))
			if err != nil {
				result.Err = err
				forumLogger.Error("Failed to fetch subreddit", slog.Any("error", err))
				return
			}

			emitMu.Lock()
			defer emitMu.Unlock()
			if sinkErr != nil {
				result.Err = errSkipped
				return
			}
			for _, post := range posts {
				if err := o.Sink.Emit(ctx, post); err != nil {
					sinkErr = fmt.Errorf("emit post %s from r/%s: %w", post.ID, forum, err)
					result.Err = sinkErr
					return
				}
				result.Posts++
			}
			forumLogger.Debug("Subreddit crawled", slog.Int("posts", result.Posts), slog.Duration("duration", result.Duration))
		}(i, forum)
	}
	wg.Wait()

	for _, r := range summary.Forums {
		summary.Posts += r.Posts
		if r.Err != nil {
			summary.Failed++
		}
	}
	if sinkErr != nil {
		return summary, sinkErr
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	return summary, nil
}

var errSkipped = errors.New("skipped after output failure")

func (o *Orchestrator) fetch(ctx context.Context, tracer trace.Tracer, forum string, params Params) ([]reddit.Post, error) {
	ctx, span := tracer.Start(ctx, "crawl.subreddit", trace.WithAttributes(
		attribute.String("reddit.subreddit", forum),
		attribute.String("reddit.sort", params.Sort),
		attribute.String("reddit.time", params.TimeFilter),
		attribute.Int("reddit.limit", params.Limit),
	))
	defer span.End()

	logging.FromContext(ctx, o.Logger).Debug("Beginning crawl", slog.String("subreddit", forum))
	posts, err := o.Fetcher.Fetch(ctx, reddit.Request{
		Subreddit:  forum,
		Sort:       params.Sort,
		TimeFilter: params.TimeFilter,
		Limit:      params.Limit,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("reddit.posts", len(posts)))
	return posts, nil
}
