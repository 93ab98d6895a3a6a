// Package censor implements the content filter: given message text and a
// group's banned-word list, it decides match/no-match by comparing normalized
// word forms. Morphological normalization is delegated to a pluggable
// collaborator so the matching logic stays language-agnostic.
package censor

import (
	"strings"
)

// Normalizer reduces a word to its base form. Implementations must be pure:
// same input, same output, no side effects. The zero-effort implementation
// is identity; StemNormalizer is the default shipped with the bot.
type Normalizer interface {
	Normalize(word string) string
}

// Filter checks message text against a banned-word list.
type Filter struct {
	// Normalizer reduces tokens (and stored banned words) to base forms
	// before comparison. Must not be nil.
	Normalizer Normalizer
}

// NewFilter returns a Filter backed by the given normalizer.
func NewFilter(n Normalizer) *Filter {
	return &Filter{Normalizer: n}
}

// Censored reports whether text contains any of the banned words.
//
// Algorithm: the text is lowercased and split on whitespace; each token is
// reduced to its base form; each banned word is reduced the same way and
// tested for substring containment within the token's base form. Containment
// rather than equality catches inflected forms whose base still carries the
// banned root. The scan short-circuits on the first match.
//
// Empty text and an empty banned list both yield false.
// Complexity is O(tokens × banned), acceptable for small lists.
func (f *Filter) Censored(text string, banned []string) bool {
	if text == "" || len(banned) == 0 {
		return false
	}

	tokens := strings.Fields(strings.ToLower(text))
	for _, token := range tokens {
		lemma := f.Normalizer.Normalize(token)
		if lemma == "" {
			continue
		}
		for _, w := range banned {
			root := f.Normalizer.Normalize(w)
			if root != "" && strings.Contains(lemma, root) {
				return true
			}
		}
	}
	return false
}
