package outputs

import (
	"context"
	"fmt"
	"io"

	"github.com/bakkerme/reddit-link-scraper/internal/sources/reddit"
)

// TextSink writes title, score, id and url on their own lines for every post.
type TextSink struct {
	w      io.Writer
	closer io.Closer
}

// NewText returns a text sink on w. closer, if set, is closed by Close.
func NewText(w io.Writer, closer io.Closer) *TextSink {
	return &TextSink{w: w, closer: closer}
}

func (s *TextSink) Emit(ctx context.Context, post reddit.Post) error {
	_, err := fmt.Fprintf(s.w, "%s\n%d\n%s\n%s\n", post.Title, post.Score, post.ID, post.URL)
	return err
}

func (s *TextSink) Close() error {
	return closeIfSet(s.closer)
}
