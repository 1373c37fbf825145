package feature

import (
	"strings"

	"github.com/phylobot/phylo/pkg/phylo/lexicon"
)

// PhraseFolder recognizes registered multi-word phrases in a token
// stream and folds each into a single hyphenated token, so "soft body"
// becomes the vector term "soft-body" and carries weight as one unit.
// Matching is greedy, longest phrase first.
type PhraseFolder struct {
	dict   map[string]string // space-joined phrase → folded token
	maxLen int
}

// NewPhraseFolder builds a folder for the given phrases. Single-word
// entries are ignored; phrases are expected in normalized (lowercase,
// space-separated) form, as the registry stores signals.
func NewPhraseFolder(phrases []string) *PhraseFolder {
	dict := make(map[string]string)
	maxLen := 1
	for _, p := range phrases {
		words := strings.Fields(strings.ToLower(p))
		if len(words) < 2 {
			continue
		}
		key := strings.Join(words, " ")
		dict[key] = strings.Join(words, "-")
		if len(words) > maxLen {
			maxLen = len(words)
		}
	}
	return &PhraseFolder{dict: dict, maxLen: maxLen}
}

// Fold rewrites the word sequence, replacing every registered phrase
// occurrence with its folded token.
func (f *PhraseFolder) Fold(words []string) []string {
	if len(f.dict) == 0 {
		return words
	}

	result := make([]string, 0, len(words))
	i := 0
	for i < len(words) {
		matched := ""
		matchLen := 1

		maxPhrase := f.maxLen
		if remaining := len(words) - i; maxPhrase > remaining {
			maxPhrase = remaining
		}
		for n := maxPhrase; n >= 2; n-- {
			phrase := strings.Join(words[i:i+n], " ")
			if folded, ok := f.dict[phrase]; ok {
				matched = folded
				matchLen = n
				break
			}
		}

		if matched != "" {
			result = append(result, matched)
			i += matchLen
			continue
		}
		result = append(result, words[i])
		i++
	}
	return result
}

// Len returns the number of registered phrases.
func (f *PhraseFolder) Len() int {
	return len(f.dict)
}

// FoldTerm returns the vector term a phrase folds to. Single words
// fold to themselves.
func FoldTerm(signal string) string {
	return strings.Join(strings.Fields(signal), "-")
}

// BuildFolder runs registry phrases through the same normalization
// path as record text and returns a folder over the survivors. Phrases
// must be canonicalized with the same lexicon the extractor uses,
// otherwise a phrase written over a variant spelling would never fold.
func BuildFolder(tok *Tokenizer, lex *lexicon.Lexicon, phrases []string) *PhraseFolder {
	normalized := make([]string, 0, len(phrases))
	for _, p := range phrases {
		words := tok.Words(p)
		if lex != nil {
			words = lex.Canonicalize(words)
		}
		if len(words) >= 2 {
			normalized = append(normalized, strings.Join(words, " "))
		}
	}
	return NewPhraseFolder(normalized)
}
