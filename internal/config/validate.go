package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
)

// ErrInvalidConfig is wrapped by Result.Err when any check fails.
var ErrInvalidConfig = errors.New("invalid configuration")

// Diagnostic is one leveled message produced while validating.
type Diagnostic struct {
	Level   slog.Level
	Field   string
	Message string
}

// Result is the outcome of Validate. Config holds the amended configuration,
// which differs from the input only where a default was applied.
type Result struct {
	Config      Config
	Diagnostics []Diagnostic
	OK          bool
}

// Err returns nil when the configuration passed, otherwise an error joining
// ErrInvalidConfig with every error-level diagnostic.
func (r Result) Err() error {
	if r.OK {
		return nil
	}
	errs := []error{ErrInvalidConfig}
	for _, d := range r.Diagnostics {
		if d.Level >= slog.LevelError {
			errs = append(errs, errors.New(d.Message))
		}
	}
	return errors.Join(errs...)
}

// Log emits every diagnostic at its own level.
func (r Result) Log(ctx context.Context, logger *slog.Logger) {
	for _, d := range r.Diagnostics {
		logger.Log(ctx, d.Level, d.Message, slog.String("field", d.Field))
	}
}

type check func(cfg *Config) (bool, []Diagnostic)

// Validate runs every check against cfg and combines the verdicts. All checks
// run even after one fails so the operator sees every problem at once.
func Validate(cfg Config) Result {
	result := Result{Config: cfg, OK: true}
	for _, c := range []check{checkCredentials, checkLimit, checkSort, checkTime} {
		ok, diags := c(&result.Config)
		result.Diagnostics = append(result.Diagnostics, diags...)
		result.OK = result.OK && ok
	}
	return result
}

func checkCredentials(cfg *Config) (bool, []Diagnostic) {
	if cfg.ClientID != "" && cfg.ClientSecret != "" && cfg.UserAgent != "" {
		return true, nil
	}
	return false, []Diagnostic{{
		Level: slog.LevelError,
		Field: strings.Join([]string{KeyClientID, KeyClientSecret, KeyUserAgent}, ","),
		Message: fmt.Sprintf("The %s, %s, or %s is not filled out. These values are necessary to use the Reddit API.",
			KeyClientID, KeyClientSecret, KeyUserAgent),
	}}
}

func checkLimit(cfg *Config) (bool, []Diagnostic) {
	if cfg.Limit == "" {
		cfg.Limit = DefaultLimit
		return true, []Diagnostic{{
			Level:   slog.LevelWarn,
			Field:   KeyLimit,
			Message: "No limit is specified. Using default " + DefaultLimit + ".",
		}}
	}
	if n, err := strconv.Atoi(strings.TrimSpace(cfg.Limit)); err == nil && n > 0 {
		return true, nil
	}
	return false, []Diagnostic{{
		Level:   slog.LevelError,
		Field:   KeyLimit,
		Message: fmt.Sprintf("limit %q must be a positive whole number enclosed in quotations.", cfg.Limit),
	}}
}

func checkSort(cfg *Config) (bool, []Diagnostic) {
	return checkEnum(KeySort, cfg.Sort, SortValues)
}

func checkTime(cfg *Config) (bool, []Diagnostic) {
	return checkEnum(KeyTime, cfg.Time, TimeValues)
}

func checkEnum(field, value string, valid []string) (bool, []Diagnostic) {
	if slices.Contains(valid, value) {
		return true, nil
	}
	return false, []Diagnostic{{
		Level:   slog.LevelError,
		Field:   field,
		Message: fmt.Sprintf("%s value %q is invalid. Valid values are: %s", field, value, strings.Join(valid, ", ")),
	}}
}
