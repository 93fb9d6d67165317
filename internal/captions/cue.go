package captions

import (
	"fmt"
	"strings"
)

// Cue is one timed subtitle entry. Times are seconds from the start of the track.
type Cue struct {
	Start float64
	End   float64
	Text  string
}

func (c Cue) String() string {
	return fmt.Sprintf("[%s --> %s] %s", FormatTimestamp(c.Start), FormatTimestamp(c.End), c.Text)
}

// Page is a run of cues shown together as one caption.
type Page struct {
	Start float64
	End   float64
	Text  string
	Cues  []Cue
}

func newPage(cues []Cue) Page {
	texts := make([]string, len(cues))
	for i, cue := range cues {
		texts[i] = cue.Text
	}
	return Page{
		Start: cues[0].Start,
		End:   cues[len(cues)-1].End,
		Text:  strings.Join(texts, " "),
		Cues:  append([]Cue(nil), cues...),
	}
}

// Flatten returns the cues of pages in order.
func Flatten(pages []Page) []Cue {
	var out []Cue
	for _, page := range pages {
		out = append(out, page.Cues...)
	}
	return out
}

// FormatTimestamp renders seconds as HH:MM:SS.mmm.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	millis := int64(seconds*1000 + 0.5)
	h := millis / 3_600_000
	m := (millis / 60_000) % 60
	s := (millis / 1000) % 60
	ms := millis % 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", h, m, s, ms)
}
