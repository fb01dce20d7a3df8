// Package factory picks the Reddit fetcher for the configured mode.
package factory

import (
	"fmt"
	"log/slog"

	"github.com/bakkerme/reddit-link-scraper/internal/sources/reddit"
	"github.com/bakkerme/reddit-link-scraper/internal/sources/reddit/impl"
	"github.com/bakkerme/reddit-link-scraper/internal/sources/reddit/mock"
	"golang.org/x/time/rate"
)

const (
	ModeAPI    = "api"
	ModePublic = "public"
	ModeMock   = "mock"
)

// New returns the fetcher for mode: "api" uses OAuth credentials, "public"
// the unauthenticated JSON endpoints, "mock" generated posts.
func New(logger *slog.Logger, mode string, opts reddit.Options) (reddit.Fetcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch mode {
	case ModeAPI, "":
		fetcher, err := reddit.NewAPIFetcher(logger, opts)
		if err != nil {
			return nil, err
		}
		return fetcher, nil
	case ModePublic:
		logger.Info("Using public Reddit JSON endpoints")
		fetcher := impl.NewFetcher(opts.HTTPTimeout, opts.UserAgent, opts.BaseURL, opts.RetryAttempts)
		if limiter := publicLimiter(opts.RatePerSecond); limiter != nil {
			fetcher.WithLimiter(limiter)
		}
		return fetcher, nil
	case ModeMock:
		logger.Warn("Using mock Reddit fetcher; no requests will be made")
		return mock.Generator{}, nil
	default:
		return nil, fmt.Errorf("unknown mode: %s (use '%s', '%s', or '%s')", mode, ModeAPI, ModePublic, ModeMock)
	}
}

// publicLimiter caps public requests at ratePerSecond. It returns nil for a
// non-positive rate, leaving the fetcher's own default in place.
func publicLimiter(ratePerSecond float64) *rate.Limiter {
	if ratePerSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(ratePerSecond), 1)
}
