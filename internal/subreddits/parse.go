// Package subreddits turns the configured subreddit list into names to crawl.
package subreddits

import (
	"errors"
	"strings"
	"unicode"
)

// ErrEmptyForumList is returned when the list names no subreddit at all.
var ErrEmptyForumList = errors.New("no subreddits have been specified")

// Parse strips every whitespace character from raw and splits the rest on
// commas. Order is kept and duplicates are not removed. Empty segments such as
// the one in "a,,b" are dropped; a list with no names left is ErrEmptyForumList.
func Parse(raw string) ([]string, error) {
	if raw == "" {
		return nil, ErrEmptyForumList
	}
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)

	var names []string
	for _, name := range strings.Split(compact, ",") {
		if name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, ErrEmptyForumList
	}
	return names, nil
}
