package subreddits

import (
	"errors"
	"slices"
	"testing"
)

func TestParse_WhitespaceVariants(t *testing.T) {
	want := []string{"foo", "bar", "baz"}
	for _, raw := range []string{"foo, bar , baz", "foo,bar,baz", "  foo,bar,baz ", "foo,\tbar,\nbaz", "f oo,bar,baz"} {
		got, err := Parse(raw)
		if err != nil {
			t.Fatalf("Parse(%q): %v", raw, err)
		}
		if !slices.Equal(got, want) {
			t.Fatalf("Parse(%q) = %v, want %v", raw, got, want)
		}
	}
}

func TestParse_KeepsOrderCaseAndDuplicates(t *testing.T) {
	got, err := Parse("Golang,rust,golang,Golang")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []string{"Golang", "rust", "golang", "Golang"}
	if !slices.Equal(got, want) {
		t.Fatalf("Parse = %v, want %v", got, want)
	}
}

func TestParse_Single(t *testing.T) {
	got, err := Parse("testsub")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !slices.Equal(got, []string{"testsub"}) {
		t.Fatalf("Parse = %v", got)
	}
}

func TestParse_DropsEmptySegments(t *testing.T) {
	got, err := Parse("a,,b,")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !slices.Equal(got, []string{"a", "b"}) {
		t.Fatalf("Parse = %v", got)
	}
}

func TestParse_Empty(t *testing.T) {
	for _, raw := range []string{"", "   ", ",", " , ,"} {
		if _, err := Parse(raw); !errors.Is(err, ErrEmptyForumList) {
			t.Fatalf("Parse(%q) err = %v, want ErrEmptyForumList", raw, err)
		}
	}
}
