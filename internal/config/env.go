package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvConfig holds process settings read from the environment. None of it is
// persisted to the configuration document.
type EnvConfig struct {
	ConfigPath  string
	Mode        string
	Debug       bool
	LogFormat   string
	Concurrency int
	Reddit      RedditEnvConfig
	OTel        OTelEnvConfig
}

type RedditEnvConfig struct {
	HTTPTimeout   time.Duration
	RetryAttempts int
	RatePerSecond float64
	ClientID      string
	ClientSecret  string
	UserAgent     string
	Username      string
	Password      string
}

type OTelEnvConfig struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
	Protocol    string // "grpc" or "http/protobuf"
	Headers     map[string]string
	Insecure    bool
	SampleRatio float64
}

func LoadEnv() EnvConfig {
	otlpEndpoint := envString("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	return EnvConfig{
		ConfigPath:  envString("SCRAPER_CONFIG", "config.json"),
		Mode:        strings.ToLower(envString("SCRAPER_MODE", "api")),
		Debug:       envBool("SCRAPER_DEBUG", false),
		LogFormat:   strings.ToLower(envString("SCRAPER_LOG_FORMAT", "text")),
		Concurrency: envInt("SCRAPER_CONCURRENCY", 1),
		Reddit: RedditEnvConfig{
			HTTPTimeout:   envDuration("REDDIT_HTTP_TIMEOUT", 10*time.Second),
			RetryAttempts: envInt("REDDIT_RETRY_ATTEMPTS", 3),
			RatePerSecond: envFloat("REDDIT_RATE_PER_SECOND", 1),
			ClientID:      envString("REDDIT_CLIENT_ID", ""),
			ClientSecret:  envString("REDDIT_CLIENT_SECRET", ""),
			UserAgent:     envString("REDDIT_USER_AGENT", ""),
			Username:      envString("REDDIT_USERNAME", ""),
			Password:      envString("REDDIT_PASSWORD", ""),
		},
		OTel: OTelEnvConfig{
			Enabled:     envBool("OTEL_ENABLED", false),
			ServiceName: envString("OTEL_SERVICE_NAME", "reddit-link-scraper"),
			Endpoint:    otlpEndpoint,
			Protocol:    strings.ToLower(envString("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")),
			Headers:     parseHeaders(envString("OTEL_EXPORTER_OTLP_HEADERS", "")),
			Insecure:    envBool("OTEL_EXPORTER_OTLP_INSECURE", defaultInsecure(otlpEndpoint)),
			SampleRatio: clamp01(envFloat("OTEL_TRACES_SAMPLE_RATIO", 1.0)),
		},
	}
}

// Apply overlays credentials set in the environment onto cfg. The document on
// disk is left alone.
func (e RedditEnvConfig) Apply(cfg Config) Config {
	if e.ClientID != "" {
		cfg.ClientID = e.ClientID
	}
	if e.ClientSecret != "" {
		cfg.ClientSecret = e.ClientSecret
	}
	if e.UserAgent != "" {
		cfg.UserAgent = e.UserAgent
	}
	return cfg
}

func envString(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func envInt(key string, fallback int) int {
	i, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return i
}

func envFloat(key string, fallback float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64)
	if err != nil {
		return fallback
	}
	return f
}

func envDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}

// parseHeaders reads "k1=v1,k2=v2" as used by OTEL_EXPORTER_OTLP_HEADERS.
func parseHeaders(raw string) map[string]string {
	if raw == "" {
		return nil
	}
	out := map[string]string{}
	for _, part := range strings.Split(raw, ",") {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	return out
}

func defaultInsecure(endpoint string) bool {
	if endpoint == "" {
		return true
	}
	if strings.Contains(endpoint, "://") {
		u, err := url.Parse(endpoint)
		if err != nil {
			return false
		}
		return u.Scheme == "http"
	}
	for _, prefix := range []string{"localhost:", "127.0.0.1:", "0.0.0.0:"} {
		if strings.HasPrefix(endpoint, prefix) {
			return true
		}
	}
	return false
}
