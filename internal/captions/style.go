package captions

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Style adjusts page text before it is drawn.
type Style struct {
	Uppercase bool
	Language  language.Tag
}

// Apply returns text as it should appear on screen.
func (s Style) Apply(text string) string {
	if !s.Uppercase {
		return text
	}
	return cases.Upper(s.Language).String(text)
}

// ApplyPages styles the text of every page.
func (s Style) ApplyPages(pages []Page) []Page {
	out := make([]Page, len(pages))
	for i, page := range pages {
		page.Text = s.Apply(page.Text)
		out[i] = page
	}
	return out
}
