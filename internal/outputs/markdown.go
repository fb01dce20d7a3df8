package outputs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/bakkerme/reddit-link-scraper/internal/sources/reddit"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

var markdownEscaper = strings.NewReplacer(`\`, `\\`, `[`, `\[`, `]`, `\]`, `*`, `\*`, `_`, `\_`, "`", "\\`", `<`, `\<`)

// markdownLine renders one post as a list item. A heading is expected to be
// written whenever the subreddit changes.
func markdownLine(post reddit.Post) string {
	return fmt.Sprintf("- [%s](<%s>) (score %d, id `%s`)\n", markdownEscaper.Replace(post.Title), post.URL, post.Score, post.ID)
}

// MarkdownSink writes posts as a markdown list under one heading per subreddit run.
type MarkdownSink struct {
	w         io.Writer
	closer    io.Closer
	subreddit string
	started   bool
}

func NewMarkdown(w io.Writer, closer io.Closer) *MarkdownSink {
	return &MarkdownSink{w: w, closer: closer}
}

func (s *MarkdownSink) Emit(ctx context.Context, post reddit.Post) error {
	var b strings.Builder
	if !s.started || post.Subreddit != s.subreddit {
		if s.started {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "## r/%s\n\n", post.Subreddit)
		s.subreddit = post.Subreddit
		s.started = true
	}
	b.WriteString(markdownLine(post))
	_, err := io.WriteString(s.w, b.String())
	return err
}

func (s *MarkdownSink) Close() error {
	return closeIfSet(s.closer)
}

// HTMLSink collects posts as markdown and renders the page on Close.
type HTMLSink struct {
	md        *MarkdownSink
	buf       bytes.Buffer
	w         io.Writer
	closer    io.Closer
	converter goldmark.Markdown
}

func NewHTML(w io.Writer, closer io.Closer) *HTMLSink {
	s := &HTMLSink{
		w:      w,
		closer: closer,
		converter: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
	}
	s.md = NewMarkdown(&s.buf, nil)
	return s
}

func (s *HTMLSink) Emit(ctx context.Context, post reddit.Post) error {
	return s.md.Emit(ctx, post)
}

func (s *HTMLSink) Close() error {
	var out bytes.Buffer
	out.WriteString("<!DOCTYPE html>\n<html>\n<head><meta charset=\"utf-8\"><title>Subreddit posts</title></head>\n<body>\n")
	if err := s.converter.Convert(s.buf.Bytes(), &out); err != nil {
		_ = closeIfSet(s.closer)
		return fmt.Errorf("render html: %w", err)
	}
	out.WriteString("</body>\n</html>\n")
	if _, err := s.w.Write(out.Bytes()); err != nil {
		_ = closeIfSet(s.closer)
		return fmt.Errorf("write html: %w", err)
	}
	return closeIfSet(s.closer)
}
