package captions

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"stackreel/internal/services"
)

// Fix records the punctuation re-attached to one cue.
type Fix struct {
	Index    int
	Leading  string
	Trailing string
}

// ReconciliationError reports a cue whose words do not appear next in the
// corrected text.
type ReconciliationError struct {
	Index int
	Want  string
	Got   string
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("reconcile cue %d: expected %q, corrected text continues with %q", e.Index+1, e.Want, e.Got)
}

func (e *ReconciliationError) Unwrap() error { return services.ErrReconciliation }

// Reconcile copies the punctuation around each cue's words from corrected,
// a transcript of the same speech with proper punctuation. The transcript is
// consumed left to right; words are compared case-insensitively with runs of
// whitespace collapsed. Punctuation the transcript puts between a cue's words
// is kept. Cues without any words are passed through unchanged.
func Reconcile(cues []Cue, corrected string) ([]Cue, []Fix, error) {
	out := make([]Cue, len(cues))
	var fixes []Fix
	rest := corrected
	for i, cue := range cues {
		out[i] = cue
		core := strings.TrimFunc(cue.Text, isPunctOrSpace)
		if core == "" {
			continue
		}
		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		leading, after := takeRun(rest, unicode.IsPunct)
		words, remaining, ok := consumeWords(after, core)
		if !ok {
			return nil, nil, &ReconciliationError{Index: i, Want: core, Got: snippet(after, utf8.RuneCountInString(core)+8)}
		}
		trailing, next := takeRun(remaining, unicode.IsPunct)
		rest = next
		out[i].Text = leading + words + trailing
		if leading != "" || trailing != "" {
			fixes = append(fixes, Fix{Index: i, Leading: leading, Trailing: trailing})
		}
	}
	if leftover := strings.TrimFunc(rest, isPunctOrSpace); leftover != "" {
		return nil, nil, &ReconciliationError{Index: len(cues), Want: "end of text", Got: snippet(leftover, 24)}
	}
	return out, fixes, nil
}

func isPunctOrSpace(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSpace(r)
}

func takeRun(s string, pred func(rune) bool) (string, string) {
	end := len(s)
	for i, r := range s {
		if !pred(r) {
			end = i
			break
		}
	}
	return s[:end], s[end:]
}

// consumeWords matches core at the start of s and returns core with any
// punctuation s places between words, plus what follows the match.
func consumeWords(s, core string) (string, string, bool) {
	var matched strings.Builder
	pos := 0
	inSpace := false
	for _, want := range core {
		if unicode.IsSpace(want) {
			inSpace = true
			continue
		}
		if inSpace {
			inner, afterPunct := takeRun(s[pos:], unicode.IsPunct)
			skipped := strings.TrimLeftFunc(afterPunct, unicode.IsSpace)
			if len(skipped) == len(afterPunct) {
				return "", "", false
			}
			matched.WriteString(inner)
			matched.WriteByte(' ')
			pos = len(s) - len(skipped)
			inSpace = false
		}
		got, size := utf8.DecodeRuneInString(s[pos:])
		if size == 0 || !equalFold(got, want) {
			return "", "", false
		}
		matched.WriteRune(want)
		pos += size
	}
	return matched.String(), s[pos:], true
}

func equalFold(a, b rune) bool {
	return a == b || unicode.ToLower(a) == unicode.ToLower(b)
}

func snippet(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
