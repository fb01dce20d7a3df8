package config

import (
	"testing"
	"time"
)

func TestLoadEnv_Defaults(t *testing.T) {
	for _, key := range []string{"SCRAPER_CONFIG", "SCRAPER_MODE", "SCRAPER_CONCURRENCY", "REDDIT_HTTP_TIMEOUT", "OTEL_EXPORTER_OTLP_ENDPOINT"} {
		t.Setenv(key, "")
	}
	env := LoadEnv()
	if env.ConfigPath != "config.json" {
		t.Fatalf("ConfigPath = %q", env.ConfigPath)
	}
	if env.Mode != "api" || env.Concurrency != 1 {
		t.Fatalf("Mode = %q Concurrency = %d", env.Mode, env.Concurrency)
	}
	if env.Reddit.HTTPTimeout != 10*time.Second {
		t.Fatalf("HTTPTimeout = %v", env.Reddit.HTTPTimeout)
	}
	if !env.OTel.Insecure {
		t.Fatalf("expected insecure OTLP default without endpoint")
	}
}

func TestLoadEnv_Overrides(t *testing.T) {
	t.Setenv("SCRAPER_MODE", "MOCK")
	t.Setenv("SCRAPER_DEBUG", "yes")
	t.Setenv("SCRAPER_CONCURRENCY", "4")
	t.Setenv("REDDIT_HTTP_TIMEOUT", "3s")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "a=1, b = 2,broken,=x")
	t.Setenv("OTEL_TRACES_SAMPLE_RATIO", "7")

	env := LoadEnv()
	if env.Mode != "mock" || !env.Debug || env.Concurrency != 4 {
		t.Fatalf("unexpected env: %+v", env)
	}
	if env.Reddit.HTTPTimeout != 3*time.Second {
		t.Fatalf("HTTPTimeout = %v", env.Reddit.HTTPTimeout)
	}
	if len(env.OTel.Headers) != 2 || env.OTel.Headers["a"] != "1" || env.OTel.Headers["b"] != "2" {
		t.Fatalf("Headers = %v", env.OTel.Headers)
	}
	if env.OTel.SampleRatio != 1 {
		t.Fatalf("SampleRatio = %v, want clamped to 1", env.OTel.SampleRatio)
	}
}

func TestRedditEnvApply(t *testing.T) {
	cfg := Config{ClientID: "doc-id", ClientSecret: "doc-secret", UserAgent: "doc-ua"}
	got := RedditEnvConfig{ClientSecret: "env-secret"}.Apply(cfg)
	if got.ClientID != "doc-id" || got.ClientSecret != "env-secret" || got.UserAgent != "doc-ua" {
		t.Fatalf("Apply = %+v", got)
	}
}

func TestDefaultInsecure(t *testing.T) {
	cases := map[string]bool{
		"":                      true,
		"localhost:4317":        true,
		"http://collector:4318": true,
		"https://collector":     false,
		"collector:4317":        false,
	}
	for endpoint, want := range cases {
		if got := defaultInsecure(endpoint); got != want {
			t.Fatalf("defaultInsecure(%q) = %v, want %v", endpoint, got, want)
		}
	}
}
