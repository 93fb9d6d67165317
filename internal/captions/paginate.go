package captions

import (
	"strings"
	"unicode/utf8"
)

// PaginateOptions control page breaks.
type PaginateOptions struct {
	// CharBudget is the rune count at which a page is full.
	CharBudget int
	// Punctuation lists suffixes that end a page early.
	Punctuation []string
}

// Paginate groups cues into pages in order. A new page starts before a cue
// when the current page is non-empty and either its text length plus the
// cue's would reach the budget or its last cue ends in punctuation. Cues are
// never split.
func Paginate(cues []Cue, opts PaginateOptions) []Page {
	if len(cues) == 0 {
		return nil
	}
	var (
		pages   []Page
		current []Cue
		length  int
	)
	for _, cue := range cues {
		next := utf8.RuneCountInString(cue.Text)
		if len(current) > 0 && (length+next >= opts.CharBudget || endsWithAny(current[len(current)-1].Text, opts.Punctuation)) {
			pages = append(pages, newPage(current))
			current = current[:0]
			length = 0
		}
		current = append(current, cue)
		length += next
	}
	return append(pages, newPage(current))
}

func endsWithAny(text string, suffixes []string) bool {
	text = strings.TrimRight(text, " \t")
	if text == "" {
		return false
	}
	for _, suffix := range suffixes {
		if suffix != "" && strings.HasSuffix(text, suffix) {
			return true
		}
	}
	return false
}
