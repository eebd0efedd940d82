package filler

import (
	"context"
	"strings"
)

// Source supplies the current filler vocabulary. Implementations must be
// cheap to call: the classifier consults the source on every classification
// so that lexicon edits take effect without restarting the gate.
type Source interface {
	Words(ctx context.Context) map[string]struct{}
}

// StaticSource is a fixed in-memory vocabulary for deployments that run
// without the persisted lexicon.
type StaticSource map[string]struct{}

// NewStaticSource builds a StaticSource from raw words. Words are normalized
// on the way in; empty entries are discarded.
func NewStaticSource(words ...string) StaticSource {
	s := make(StaticSource, len(words))
	for _, w := range words {
		if n := Normalize(w); n != "" {
			s[n] = struct{}{}
		}
	}
	return s
}

// Words implements Source.
func (s StaticSource) Words(context.Context) map[string]struct{} { return s }

// Classifier decides whether transcript text carries real content or is made
// up entirely of filler tokens.
type Classifier struct {
	source Source
}

// NewClassifier creates a classifier backed by the given vocabulary source.
func NewClassifier(source Source) *Classifier {
	return &Classifier{source: source}
}

// IsFillerOnly reports whether every whitespace-separated token of the
// normalized text is a known filler word. Empty and whitespace-only text is
// treated as filler so it can never interrupt the agent. Returns false on
// the first non-member token.
func (c *Classifier) IsFillerOnly(ctx context.Context, text string) bool {
	clean := Normalize(text)
	if clean == "" {
		return true
	}

	vocab := c.source.Words(ctx)
	for _, token := range strings.Fields(clean) {
		if _, ok := vocab[token]; !ok {
			return false
		}
	}
	return true
}
