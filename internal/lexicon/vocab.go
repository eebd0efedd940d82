// Package lexicon persists the filler-word vocabulary in a single-file
// sqlite database shared by the live gate and the admin tool.
package lexicon

// defaultVocabulary seeds an empty store. English plus the Hindi fillers the
// product ships with ("haan", "acha").
var defaultVocabulary = []string{
	"umm", "uh", "um", "so",
	"hmm", "hm", "ah", "er", "erm", "ok", "ahhh", "hmmm",
	"eh", "ehh", "uhh", "haan", "acha", "uh-huh",
}

// fallbackVocabulary is the core subset served when the store is
// unreachable. Filtering must stay live even without storage.
var fallbackVocabulary = []string{"umm", "uh", "um", "hmm", "hm", "ah", "er"}

// DefaultVocabulary returns a copy of the seed vocabulary.
func DefaultVocabulary() []string {
	return append([]string(nil), defaultVocabulary...)
}

// FallbackVocabulary returns the hardcoded membership set used when storage
// reads fail.
func FallbackVocabulary() map[string]struct{} {
	set := make(map[string]struct{}, len(fallbackVocabulary))
	for _, w := range fallbackVocabulary {
		set[w] = struct{}{}
	}
	return set
}
