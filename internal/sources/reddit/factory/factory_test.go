package factory

import (
	"testing"

	"github.com/bakkerme/reddit-link-scraper/internal/logging"
	"github.com/bakkerme/reddit-link-scraper/internal/sources/reddit"
	"github.com/bakkerme/reddit-link-scraper/internal/sources/reddit/impl"
	"github.com/bakkerme/reddit-link-scraper/internal/sources/reddit/mock"
	"golang.org/x/time/rate"
)

func TestNew_Modes(t *testing.T) {
	opts := reddit.Options{ClientID: "id", ClientSecret: "secret", UserAgent: "ua"}
	logger := logging.Discard()

	f, err := New(logger, ModeAPI, opts)
	if err != nil {
		t.Fatalf("api: %v", err)
	}
	if _, ok := f.(*reddit.APIFetcher); !ok {
		t.Fatalf("api mode returned %T", f)
	}

	f, err = New(logger, ModePublic, opts)
	if err != nil {
		t.Fatalf("public: %v", err)
	}
	if _, ok := f.(*impl.Fetcher); !ok {
		t.Fatalf("public mode returned %T", f)
	}

	f, err = New(logger, ModeMock, reddit.Options{})
	if err != nil {
		t.Fatalf("mock: %v", err)
	}
	if _, ok := f.(mock.Generator); !ok {
		t.Fatalf("mock mode returned %T", f)
	}
}

func TestNew_UnknownMode(t *testing.T) {
	if _, err := New(logging.Discard(), "carrier-pigeon", reddit.Options{}); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestPublicLimiter(t *testing.T) {
	if l := publicLimiter(0); l != nil {
		t.Fatalf("publicLimiter(0) = %v, want nil", l.Limit())
	}
	if l := publicLimiter(-1); l != nil {
		t.Fatalf("publicLimiter(-1) = %v, want nil", l.Limit())
	}
	l := publicLimiter(0.5)
	if l == nil || l.Limit() != rate.Limit(0.5) || l.Burst() != 1 {
		t.Fatalf("publicLimiter(0.5) = %+v", l)
	}
}
