// Package filler implements filler-word detection for transcript gating.
package filler

import "strings"

// Sentence punctuation speech providers commonly attach to short utterances.
var punctReplacer = strings.NewReplacer(".", "", ",", "", "?", "", "!", "")

// Normalize lowercases text, strips sentence punctuation and trims
// surrounding whitespace. Empty input yields an empty string.
func Normalize(text string) string {
	return strings.TrimSpace(punctReplacer.Replace(strings.ToLower(text)))
}
