// Package captions turns a subtitle track into on-screen caption pages.
//
// Parse reads WebVTT or SRT style cue blocks. Reconcile re-attaches the
// punctuation of a corrected transcript to the cues, NormalizeTypography
// folds typographic quotes and dashes to plain ASCII, and Paginate groups
// cues into pages under a character budget, breaking early after a cue that
// ends a sentence or clause.
package captions
