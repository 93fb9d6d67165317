package captions

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

var typographyReplacer = strings.NewReplacer(
	"’", "'",
	"“", "\"",
	"”", "\"",
	"…", "...",
	"—", "-",
)

// NormalizeTypography composes s to NFC and replaces curly apostrophes and
// quotes, ellipses and em dashes with their ASCII forms.
func NormalizeTypography(s string) string {
	return typographyReplacer.Replace(norm.NFC.String(s))
}

// NormalizeCues applies NormalizeTypography to every cue text.
func NormalizeCues(cues []Cue) []Cue {
	out := make([]Cue, len(cues))
	for i, cue := range cues {
		cue.Text = NormalizeTypography(cue.Text)
		out[i] = cue
	}
	return out
}
