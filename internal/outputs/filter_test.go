package outputs

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestFilterSink(t *testing.T) {
	var buf bytes.Buffer
	sink, err := NewFilter(`score > 5 && subreddit == "golang"`, NewText(&buf, nil))
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}
	emitAll(t, sink)
	out := buf.String()
	if !strings.Contains(out, "abc") || strings.Contains(out, "def") || strings.Contains(out, "xyz") {
		t.Fatalf("filtered output:\n%s", out)
	}
	if sink.Dropped() != 2 {
		t.Fatalf("Dropped = %d, want 2", sink.Dropped())
	}
}

func TestFilterSink_Contains(t *testing.T) {
	var buf bytes.Buffer
	sink, err := NewFilter(`title contains "Rust"`, NewText(&buf, nil))
	if err != nil {
		t.Fatalf("NewFilter: %v", err)
	}
	if err := sink.Emit(context.Background(), samplePosts[2]); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "Rust news\n") {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestNewFilter_RejectsBadExpressions(t *testing.T) {
	for _, expression := range []string{`score +`, `score + 1`, `missing_field > 1`} {
		if _, err := NewFilter(expression, NewText(&bytes.Buffer{}, nil)); err == nil {
			t.Fatalf("NewFilter(%q) expected error", expression)
		}
	}
}
