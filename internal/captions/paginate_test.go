package captions_test

import (
	"reflect"
	"strings"
	"testing"

	"stackreel/internal/captions"
)

var punctuation = []string{".", "!", "?", ",", ";", ":"}

func texts(pages []captions.Page) []string {
	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.Text
	}
	return out
}

func TestPaginatePunctuationBreak(t *testing.T) {
	cues := []captions.Cue{{0, 1, "Hi"}, {1, 2, "there."}, {2, 3, "Bob"}}
	pages := captions.Paginate(cues, captions.PaginateOptions{CharBudget: 20, Punctuation: punctuation})
	if got := texts(pages); !reflect.DeepEqual(got, []string{"Hi there.", "Bob"}) {
		t.Fatalf("unexpected pages %q", got)
	}
	if pages[0].Start != 0 || pages[0].End != 2 || pages[1].Start != 2 || pages[1].End != 3 {
		t.Fatalf("unexpected timing %+v", pages)
	}
}

func TestPaginateBudgetBoundary(t *testing.T) {
	cues := []captions.Cue{{0, 1, "Hi"}, {1, 2, "there."}, {2, 3, "Bob"}}
	// 2 + 6 reaches the budget of 8, so "there." starts its own page.
	pages := captions.Paginate(cues, captions.PaginateOptions{CharBudget: 8, Punctuation: punctuation})
	if got := texts(pages); !reflect.DeepEqual(got, []string{"Hi", "there.", "Bob"}) {
		t.Fatalf("unexpected pages %q", got)
	}
	pages = captions.Paginate(cues, captions.PaginateOptions{CharBudget: 9, Punctuation: punctuation})
	if got := texts(pages); !reflect.DeepEqual(got, []string{"Hi there.", "Bob"}) {
		t.Fatalf("unexpected pages %q", got)
	}
}

func TestPaginateCountsRunes(t *testing.T) {
	cues := []captions.Cue{{0, 1, "été"}, {1, 2, "là"}}
	pages := captions.Paginate(cues, captions.PaginateOptions{CharBudget: 6})
	if len(pages) != 1 {
		t.Fatalf("expected one page for 5 runes under budget 6, got %q", texts(pages))
	}
}

func TestPaginateOversizedCueKeepsOwnPage(t *testing.T) {
	long := strings.Repeat("x", 30)
	cues := []captions.Cue{{0, 1, "a"}, {1, 2, long}, {2, 3, "b"}}
	pages := captions.Paginate(cues, captions.PaginateOptions{CharBudget: 8, Punctuation: punctuation})
	if got := texts(pages); !reflect.DeepEqual(got, []string{"a", long, "b"}) {
		t.Fatalf("unexpected pages %q", got)
	}
	single := captions.Paginate([]captions.Cue{{0, 1, long}}, captions.PaginateOptions{CharBudget: 8})
	if len(single) != 1 || single[0].Text != long {
		t.Fatalf("oversized cue must not be split: %q", texts(single))
	}
}

func TestPaginateEmpty(t *testing.T) {
	if pages := captions.Paginate(nil, captions.PaginateOptions{CharBudget: 8}); len(pages) != 0 {
		t.Fatalf("expected no pages, got %d", len(pages))
	}
}

func TestPaginateEmptyTextCue(t *testing.T) {
	cues := []captions.Cue{{0, 1, "go"}, {1, 2, ""}, {2, 3, "on"}}
	pages := captions.Paginate(cues, captions.PaginateOptions{CharBudget: 20})
	if len(pages) != 1 || len(pages[0].Cues) != 3 || pages[0].End != 3 {
		t.Fatalf("empty cue should be paginated normally: %+v", pages)
	}
}

func TestPaginateTrailingSpaceBeforePunctuation(t *testing.T) {
	cues := []captions.Cue{{0, 1, "done. "}, {1, 2, "next"}}
	pages := captions.Paginate(cues, captions.PaginateOptions{CharBudget: 50, Punctuation: punctuation})
	if len(pages) != 2 {
		t.Fatalf("expected break after right-trimmed punctuation, got %q", texts(pages))
	}
}

func TestPaginateIdempotentAndPure(t *testing.T) {
	cues := []captions.Cue{
		{0, 0.5, "So"}, {0.5, 1, "this"}, {1, 1.5, "is"}, {1.5, 2, "it,"},
		{2, 2.4, "the"}, {2.4, 3, "final"}, {3, 3.3, "countdown!"}, {3.3, 4, "ok"},
	}
	original := append([]captions.Cue(nil), cues...)
	opts := captions.PaginateOptions{CharBudget: 8, Punctuation: punctuation}

	first := captions.Paginate(cues, opts)
	if !reflect.DeepEqual(cues, original) {
		t.Fatal("Paginate mutated its input")
	}
	second := captions.Paginate(captions.Flatten(first), opts)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("pagination not idempotent\nfirst  %q\nsecond %q", texts(first), texts(second))
	}
	if !reflect.DeepEqual(captions.Flatten(first), cues) {
		t.Fatal("pages must preserve cue order")
	}
}
