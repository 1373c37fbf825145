package lexicon

import (
	"sort"
	"strings"
)

// Lexicon maps surface variants of a term onto one canonical form, so
// "unmanned aerial vehicle" and "uav" carry the same lexical evidence.
// Variants may span several words; canonicals are single tokens.
type Lexicon struct {
	synonyms map[string][]string // canonical → variants
	reverse  map[string]string   // variant → canonical
	maxLen   int                 // longest variant, in words
}

// New creates an empty lexicon.
func New() *Lexicon {
	return &Lexicon{
		synonyms: make(map[string][]string),
		reverse:  make(map[string]string),
		maxLen:   1,
	}
}

// AddSynonyms registers variants for a canonical term. Everything is
// lowercased; a variant can only belong to one canonical (last wins).
func (l *Lexicon) AddSynonyms(canonical string, variants ...string) {
	canonical = strings.ToLower(strings.TrimSpace(canonical))
	if canonical == "" {
		return
	}
	for _, v := range variants {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" || v == canonical {
			continue
		}
		l.synonyms[canonical] = append(l.synonyms[canonical], v)
		l.reverse[v] = canonical
		if n := len(strings.Fields(v)); n > l.maxLen {
			l.maxLen = n
		}
	}
}

// Normalize maps a single token to its canonical form, or returns it
// unchanged when no synonym is registered.
func (l *Lexicon) Normalize(token string) string {
	if c, ok := l.reverse[token]; ok {
		return c
	}
	return token
}

// Canonical reports the canonical form of a variant.
func (l *Lexicon) Canonical(variant string) (string, bool) {
	c, ok := l.reverse[strings.ToLower(variant)]
	return c, ok
}

// Variants returns the registered variants of a canonical term, sorted.
func (l *Lexicon) Variants(canonical string) []string {
	vs := append([]string(nil), l.synonyms[strings.ToLower(canonical)]...)
	sort.Strings(vs)
	return vs
}

// Canonicalize rewrites a word sequence, replacing registered variants
// with their canonical forms. Multi-word variants are matched greedily,
// longest first, so "automated guided vehicle" collapses before
// "guided vehicle" ever gets a chance.
func (l *Lexicon) Canonicalize(words []string) []string {
	if len(l.reverse) == 0 {
		return words
	}

	result := make([]string, 0, len(words))
	i := 0
	for i < len(words) {
		matched := ""
		matchLen := 1

		maxPhrase := l.maxLen
		if remaining := len(words) - i; maxPhrase > remaining {
			maxPhrase = remaining
		}
		for n := maxPhrase; n >= 2; n-- {
			phrase := strings.Join(words[i:i+n], " ")
			if c, ok := l.reverse[phrase]; ok {
				matched = c
				matchLen = n
				break
			}
		}

		if matched != "" {
			result = append(result, matched)
			i += matchLen
			continue
		}
		result = append(result, l.Normalize(words[i]))
		i++
	}
	return result
}

// Len returns the number of registered variants.
func (l *Lexicon) Len() int {
	return len(l.reverse)
}
