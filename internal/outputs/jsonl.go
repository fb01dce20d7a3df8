package outputs

import (
	"context"
	"encoding/json"
	"io"

	"github.com/bakkerme/reddit-link-scraper/internal/sources/reddit"
)

// JSONLinesSink writes one JSON object per post.
type JSONLinesSink struct {
	enc    *json.Encoder
	closer io.Closer
}

func NewJSONLines(w io.Writer, closer io.Closer) *JSONLinesSink {
	return &JSONLinesSink{enc: json.NewEncoder(w), closer: closer}
}

func (s *JSONLinesSink) Emit(ctx context.Context, post reddit.Post) error {
	return s.enc.Encode(post)
}

func (s *JSONLinesSink) Close() error {
	return closeIfSet(s.closer)
}
