package censor

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// suffixes holds the inflection endings stripped by StemNormalizer, ordered
// longest first. The table is intentionally small: the normalizer is a light
// stand-in for a full morphological analyzer, good enough to make common
// inflected forms meet their base form on a shared stem.
var suffixes = []string{
	// Russian nominal/verbal endings
	"ишься", "ешься",
	"иями", "ется", "ится", "утся", "ются", "ться",
	"ями", "ами", "ого", "его", "ому", "ему", "ыми", "ими",
	"ешь", "ишь", "ете", "ите", "ала", "ила", "ать", "ять",
	"ить", "ыть", "еть", "тся",
	"ах", "ях", "ов", "ев", "ей", "ой", "ою", "ею", "ый", "ий",
	"ая", "яя", "ое", "ее", "ут", "ют", "ат", "ят", "ся",
	"а", "я", "о", "е", "у", "ю", "ы", "и", "ь",
	// English endings
	"ing", "ies", "ed", "es", "s",
}

// minStemRunes is the shortest stem a suffix strip may leave behind. Short
// words pass through unchanged so that e.g. a three-letter banned word is
// not eaten by its own "suffix".
const minStemRunes = 3

// StemNormalizer reduces words to a crude base form: unicode normalization
// (NFC), language-aware lowercasing, punctuation trimming, and stripping of
// one inflection suffix. It satisfies Normalizer and is safe for concurrent
// use after construction.
//
// Deployments with a real morphological analyzer can drop in their own
// Normalizer; the filter does not care how base forms are produced.
type StemNormalizer struct {
	lower cases.Caser
}

// NewStemNormalizer builds the default normalizer. The caser folds per
// Unicode rules rather than ASCII-only, which matters for Cyrillic input.
func NewStemNormalizer() *StemNormalizer {
	return &StemNormalizer{lower: cases.Lower(language.Und)}
}

// Normalize returns the base form of word. Empty input, or input that is all
// punctuation, normalizes to the empty string.
func (n *StemNormalizer) Normalize(word string) string {
	w := norm.NFC.String(word)
	w = n.lower.String(w)
	w = strings.TrimFunc(w, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r) || unicode.IsSpace(r)
	})
	if w == "" {
		return ""
	}

	runes := []rune(w)
	for _, suf := range suffixes {
		sr := []rune(suf)
		if len(runes)-len(sr) < minStemRunes {
			continue
		}
		if strings.HasSuffix(w, suf) {
			return string(runes[:len(runes)-len(sr)])
		}
	}
	return w
}
