// Package outputs writes fetched posts to the console or to the configured output_path.
package outputs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bakkerme/reddit-link-scraper/internal/sources/reddit"
)

// Sink receives posts one at a time in fetch order.
type Sink interface {
	Emit(ctx context.Context, post reddit.Post) error
	Close() error
}

// Options for Open.
type Options struct {
	// Console receives posts when the path is empty or "-", and in addition to
	// the file when Tee is set.
	Console io.Writer
	Tee     bool
}

// Open returns the sink for path. The extension selects the format:
// .jsonl and .ndjson write JSON lines, .md a markdown list, .html the same list
// rendered to HTML, anything else the plain four-line layout.
func Open(path string, opts Options) (Sink, error) {
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}
	if path == "" || path == "-" {
		return NewText(console, nil), nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output %s: %w", path, err)
	}

	var sink Sink
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		sink = NewJSONLines(f, f)
	case ".md", ".markdown":
		sink = NewMarkdown(f, f)
	case ".html", ".htm":
		sink = NewHTML(f, f)
	default:
		sink = NewText(f, f)
	}
	if opts.Tee {
		sink = Multi(sink, NewText(console, nil))
	}
	return sink, nil
}

type multiSink struct {
	sinks []Sink
}

// Multi fans every post out to each sink in turn. Emit stops at the first error.
func Multi(sinks ...Sink) Sink {
	return &multiSink{sinks: sinks}
}

func (m *multiSink) Emit(ctx context.Context, post reddit.Post) error {
	for _, s := range m.sinks {
		if err := s.Emit(ctx, post); err != nil {
			return err
		}
	}
	return nil
}

func (m *multiSink) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func closeIfSet(c io.Closer) error {
	if c == nil {
		return nil
	}
	return c.Close()
}
